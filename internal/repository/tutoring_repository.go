package repository

import (
	"estudiapro_backend/internal/model"

	"gorm.io/gorm"
)

type TutoringRepository struct {
	DB *gorm.DB
}

func NewTutoringRepository(db *gorm.DB) *TutoringRepository {
	return &TutoringRepository{DB: db}
}

func (r *TutoringRepository) WithTx(tx *gorm.DB) *TutoringRepository {
	return &TutoringRepository{DB: tx}
}

func (r *TutoringRepository) ListActiveTutors() ([]model.TutorProfile, error) {
	var tutors []model.TutorProfile
	err := r.DB.Where("active = ?", true).
		Preload("Creator.User").
		Order("id ASC").
		Find(&tutors).Error
	return tutors, err
}

func (r *TutoringRepository) FindTutor(id uint) (*model.TutorProfile, error) {
	var t model.TutorProfile
	err := r.DB.Preload("Creator.User").First(&t, id).Error
	return &t, err
}

func (r *TutoringRepository) FindTutorByCreator(creatorID uint) (*model.TutorProfile, error) {
	var t model.TutorProfile
	err := r.DB.Where("creator_id = ?", creatorID).First(&t).Error
	return &t, err
}

func (r *TutoringRepository) SaveTutor(t *model.TutorProfile) error {
	return r.DB.Omit("Creator").Save(t).Error
}

func (r *TutoringRepository) CreateSession(s *model.TutoringSession) error {
	return r.DB.Omit("Tutor", "Student").Create(s).Error
}

func (r *TutoringRepository) FindSession(id uint) (*model.TutoringSession, error) {
	var s model.TutoringSession
	err := r.DB.Preload("Tutor.Creator").Preload("Student").First(&s, id).Error
	return &s, err
}

// UpdateStatus moves a session from one status to another. It reports false
// when the session was no longer in the expected status.
func (r *TutoringRepository) UpdateStatus(id uint, from, to model.SessionStatus) (bool, error) {
	res := r.DB.Model(&model.TutoringSession{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected == 1, res.Error
}

func (r *TutoringRepository) ListByStudent(studentID uint) ([]model.TutoringSession, error) {
	var list []model.TutoringSession
	err := r.DB.Where("student_id = ?", studentID).
		Preload("Tutor.Creator.User").
		Order("scheduled_at DESC").
		Find(&list).Error
	return list, err
}

func (r *TutoringRepository) ListByTutor(tutorID uint) ([]model.TutoringSession, error) {
	var list []model.TutoringSession
	err := r.DB.Where("tutor_id = ?", tutorID).
		Preload("Student").
		Order("scheduled_at DESC").
		Find(&list).Error
	return list, err
}

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) WithTx(tx *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: tx}
}

func (r *NotificationRepository) Create(n *model.Notification) error {
	return r.DB.Create(n).Error
}

func (r *NotificationRepository) List(userID uint, unreadOnly bool, page, limit int) ([]model.Notification, int64, error) {
	var list []model.Notification
	var total int64

	query := r.DB.Model(&model.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *NotificationRepository) CountUnread(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) FindForUser(id, userID uint) (*model.Notification, error) {
	var n model.Notification
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	return &n, err
}

func (r *NotificationRepository) MarkRead(id uint) error {
	return r.DB.Model(&model.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *NotificationRepository) MarkAllRead(userID uint) (int64, error) {
	res := r.DB.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
