package repository

import (
	"estudiapro_backend/internal/model"
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

// FindWithProfile loads the user with whichever role profile exists.
func (r *UserRepository) FindWithProfile(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.Preload("StudentProfile").
		Preload("CreatorProfile").
		Preload("AdminProfile").
		First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error
	return &user, err
}

// FindByLogin matches the identifier against username or email, ignoring case.
func (r *UserRepository) FindByLogin(identifier string) (*model.User, error) {
	var user model.User
	id := strings.ToLower(strings.TrimSpace(identifier))
	err := r.DB.Where("LOWER(username) = ? OR LOWER(email) = ?", id, id).First(&user).Error
	return &user, err
}

func (r *UserRepository) EmailExists(email string, excludeID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).
		Where("LOWER(email) = ? AND id <> ?", strings.ToLower(email), excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) UsernameExists(username string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) UpdateFields(userID uint, fields map[string]interface{}) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Updates(fields).Error
}

// AddPoints increments points atomically, then derives level = points/100 + 1
// from the stored total. Returns the new total.
func (r *UserRepository) AddPoints(userID uint, points int) (int, error) {
	err := r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", points)).Error
	if err != nil {
		return 0, err
	}

	var total int
	if err := r.DB.Model(&model.User{}).Where("id = ?", userID).Select("points").Scan(&total).Error; err != nil {
		return 0, err
	}
	err = r.DB.Model(&model.User{}).Where("id = ?", userID).Update("level", total/100+1).Error
	return total, err
}

type UserFilter struct {
	Role   model.UserRole
	Status model.UserStatus
	Search string
}

func (r *UserRepository) List(filter UserFilter, page, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := r.DB.Model(&model.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&users).Error
	return users, total, err
}

func (r *UserRepository) Delete(id uint) error {
	return r.DB.Delete(&model.User{}, id).Error
}

func (r *UserRepository) CountByRole() (map[model.UserRole]int64, error) {
	var rows []struct {
		Role  model.UserRole
		Count int64
	}
	err := r.DB.Model(&model.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.UserRole]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

// CreateProfile inserts the single role profile matching user.Role.
func (r *UserRepository) CreateProfile(user *model.User, schoolLevel, specialty, permission string) error {
	switch user.Role {
	case model.Student:
		return r.DB.Create(&model.StudentProfile{UserID: user.ID, SchoolLevel: schoolLevel}).Error
	case model.Creator:
		return r.DB.Create(&model.CreatorProfile{UserID: user.ID, Specialty: specialty, Active: true}).Error
	case model.Admin:
		return r.DB.Create(&model.AdminProfile{UserID: user.ID, Permission: permission}).Error
	}
	return nil
}

// DeleteProfiles removes every role profile of the user.
func (r *UserRepository) DeleteProfiles(userID uint) error {
	for _, m := range []interface{}{&model.StudentProfile{}, &model.CreatorProfile{}, &model.AdminProfile{}} {
		if err := r.DB.Where("user_id = ?", userID).Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *UserRepository) FindStudentProfile(userID uint) (*model.StudentProfile, error) {
	var p model.StudentProfile
	err := r.DB.Where("user_id = ?", userID).First(&p).Error
	return &p, err
}

func (r *UserRepository) FindCreatorProfile(userID uint) (*model.CreatorProfile, error) {
	var p model.CreatorProfile
	err := r.DB.Where("user_id = ?", userID).First(&p).Error
	return &p, err
}

func (r *UserRepository) FindCreatorProfileByID(id uint) (*model.CreatorProfile, error) {
	var p model.CreatorProfile
	err := r.DB.Preload("User").First(&p, id).Error
	return &p, err
}

func (r *UserRepository) FirstCreatorProfile() (*model.CreatorProfile, error) {
	var p model.CreatorProfile
	err := r.DB.Order("id ASC").First(&p).Error
	return &p, err
}

func (r *UserRepository) AddStudyMinutes(userID uint, minutes int) error {
	return r.DB.Model(&model.StudentProfile{}).
		Where("user_id = ?", userID).
		Update("study_minutes", gorm.Expr("study_minutes + ?", minutes)).Error
}

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(session *model.AuthSession) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) FindByTokenID(tokenID string) (*model.AuthSession, error) {
	var s model.AuthSession
	err := r.DB.Where("token_id = ?", tokenID).First(&s).Error
	return &s, err
}

func (r *SessionRepository) Revoke(tokenID string) error {
	return r.DB.Model(&model.AuthSession{}).
		Where("token_id = ? AND revoked_at IS NULL", tokenID).
		Update("revoked_at", time.Now()).Error
}
