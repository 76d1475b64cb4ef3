package repository

import (
	"estudiapro_backend/internal/model"

	"gorm.io/gorm"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) WithTx(tx *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: tx}
}

func (r *AchievementRepository) Create(a *model.Achievement) error {
	return r.DB.Create(a).Error
}

func (r *AchievementRepository) FindByID(id uint) (*model.Achievement, error) {
	var a model.Achievement
	err := r.DB.First(&a, id).Error
	return &a, err
}

func (r *AchievementRepository) List(activeOnly bool) ([]model.Achievement, error) {
	var list []model.Achievement
	query := r.DB.Model(&model.Achievement{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Order("type ASC, threshold ASC").Find(&list).Error
	return list, err
}

func (r *AchievementRepository) Update(a *model.Achievement) error {
	return r.DB.Save(a).Error
}

func (r *AchievementRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Achievement{}, id).Error
}

func (r *AchievementRepository) FindStudentAchievement(userID, achievementID uint) (*model.StudentAchievement, error) {
	var sa model.StudentAchievement
	err := r.DB.Where("user_id = ? AND achievement_id = ?", userID, achievementID).First(&sa).Error
	return &sa, err
}

func (r *AchievementRepository) SaveStudentAchievement(sa *model.StudentAchievement) error {
	return r.DB.Omit("Achievement").Save(sa).Error
}

func (r *AchievementRepository) ListStudentAchievements(userID uint) ([]model.StudentAchievement, error) {
	var list []model.StudentAchievement
	err := r.DB.Where("user_id = ?", userID).
		Preload("Achievement").
		Order("unlocked DESC, updated_at DESC").
		Find(&list).Error
	return list, err
}

func (r *AchievementRepository) CreateActivity(a *model.StudentActivity) error {
	return r.DB.Create(a).Error
}

func (r *AchievementRepository) RecentActivities(userID uint, limit int) ([]model.StudentActivity, error) {
	var list []model.StudentActivity
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *AchievementRepository) CountActivities(userID uint, activityType model.ActivityType) (int64, error) {
	var count int64
	err := r.DB.Model(&model.StudentActivity{}).
		Where("user_id = ? AND type = ?", userID, activityType).
		Count(&count).Error
	return count, err
}

func (r *AchievementRepository) HasActivity(userID uint, activityType model.ActivityType, refID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.StudentActivity{}).
		Where("user_id = ? AND type = ? AND reference_id = ?", userID, activityType, refID).
		Count(&count).Error
	return count > 0, err
}

// CalendarRepository stores upcoming activities.
type CalendarRepository struct {
	DB *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) *CalendarRepository {
	return &CalendarRepository{DB: db}
}

func (r *CalendarRepository) WithTx(tx *gorm.DB) *CalendarRepository {
	return &CalendarRepository{DB: tx}
}

func (r *CalendarRepository) Create(a *model.UpcomingActivity) error {
	return r.DB.Create(a).Error
}

func (r *CalendarRepository) Save(a *model.UpcomingActivity) error {
	return r.DB.Save(a).Error
}

func (r *CalendarRepository) FindByID(id uint) (*model.UpcomingActivity, error) {
	var a model.UpcomingActivity
	err := r.DB.First(&a, id).Error
	return &a, err
}

func (r *CalendarRepository) Delete(id uint) error {
	return r.DB.Delete(&model.UpcomingActivity{}, id).Error
}

// Upcoming lists entries dated on or after fromDate ordered by date then time.
func (r *CalendarRepository) Upcoming(userID uint, fromDate string) ([]model.UpcomingActivity, error) {
	var list []model.UpcomingActivity
	err := r.DB.Where("user_id = ? AND date >= ?", userID, fromDate).
		Order("date ASC, time ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *CalendarRepository) FindExamDateEntry(userID, courseID uint) (*model.UpcomingActivity, error) {
	var a model.UpcomingActivity
	err := r.DB.Where("user_id = ? AND course_id = ? AND origin = ?", userID, courseID, model.OriginExamDate).
		First(&a).Error
	return &a, err
}

func (r *CalendarRepository) DeleteExamDateEntries(userID, courseID uint) error {
	return r.DB.Where("user_id = ? AND course_id = ? AND origin = ?", userID, courseID, model.OriginExamDate).
		Delete(&model.UpcomingActivity{}).Error
}
