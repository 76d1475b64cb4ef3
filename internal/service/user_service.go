package service

import (
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/util"
	"estudiapro_backend/pkg/logger"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService struct {
	DB            *gorm.DB
	UserRepo      *repository.UserRepository
	DashboardRepo *repository.DashboardRepository
	Achievements  *AchievementService
}

func NewUserService(db *gorm.DB, userRepo *repository.UserRepository, dashboardRepo *repository.DashboardRepository, achievements *AchievementService) *UserService {
	return &UserService{
		DB:            db,
		UserRepo:      userRepo,
		DashboardRepo: dashboardRepo,
		Achievements:  achievements,
	}
}

// UserView is the administrative projection of an account.
type UserView struct {
	ID        uint             `json:"id"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	Role      model.UserRole   `json:"role"`
	Status    model.UserStatus `json:"status"`
	Points    int              `json:"points"`
	Level     int              `json:"level"`
	IsPremium bool             `json:"isPremium"`
	LastLogin *time.Time       `json:"lastLogin,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

func toUserView(u *model.User) (UserView, error) {
	var v UserView
	err := copier.Copy(&v, u)
	return v, err
}

type Profile struct {
	User   *model.User    `json:"user"`
	Points *PointsSummary `json:"points"`
}

func (s *UserService) Profile(userID uint) (*Profile, error) {
	user, err := s.UserRepo.FindWithProfile(userID)
	if err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}
	points, err := s.Achievements.Points(userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Points: points}, nil
}

type RoleInfo struct {
	UserID    uint           `json:"userId"`
	Role      model.UserRole `json:"role"`
	IsStudent bool           `json:"isStudent"`
	IsCreator bool           `json:"isCreator"`
	IsAdmin   bool           `json:"isAdmin"`
}

// VerifyRole reports the caller's role as stored, which may differ from the
// token when an administrator changed it after login.
func (s *UserService) VerifyRole(userID uint) (*RoleInfo, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}
	return &RoleInfo{
		UserID:    user.ID,
		Role:      user.Role,
		IsStudent: user.Role == model.Student,
		IsCreator: user.Role == model.Creator,
		IsAdmin:   user.Role == model.Admin,
	}, nil
}

func (s *UserService) ActivatePremium(userID uint) (*model.User, error) {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}
	if err := s.UserRepo.UpdateFields(userID, map[string]interface{}{"is_premium": true}); err != nil {
		return nil, err
	}
	return s.UserRepo.FindByID(userID)
}

type TrackTimeRequest struct {
	Minutes int `json:"minutes" binding:"required,min=1,max=1440"`
}

type StudyTime struct {
	StudyMinutes int `json:"studyMinutes"`
	Streak       int `json:"streak"`
}

// TrackTime adds study minutes to the student profile and touches the streak.
func (s *UserService) TrackTime(userID uint, minutes int) (*StudyTime, error) {
	if minutes <= 0 {
		return nil, util.Validationf("minutes must be positive")
	}
	if _, err := s.UserRepo.FindStudentProfile(userID); err != nil {
		return nil, notFound(err, util.ErrForbidden)
	}
	if err := s.UserRepo.AddStudyMinutes(userID, minutes); err != nil {
		return nil, err
	}
	streak, err := s.Achievements.TouchStreak(userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.UserRepo.FindStudentProfile(userID)
	if err != nil {
		return nil, err
	}
	return &StudyTime{StudyMinutes: profile.StudyMinutes, Streak: streak}, nil
}

func (s *UserService) List(filter repository.UserFilter, page, limit int) ([]UserView, int64, error) {
	users, total, err := s.UserRepo.List(filter, page, limit)
	if err != nil {
		return nil, 0, err
	}
	views := make([]UserView, 0, len(users))
	for i := range users {
		v, err := toUserView(&users[i])
		if err != nil {
			return nil, 0, err
		}
		views = append(views, v)
	}
	return views, total, nil
}

type AdminUserUpdate struct {
	Email       string           `json:"email" binding:"omitempty,email"`
	FirstName   *string          `json:"firstName"`
	LastName    *string          `json:"lastName"`
	Status      model.UserStatus `json:"status"`
	Role        model.UserRole   `json:"role"`
	SchoolLevel string           `json:"schoolLevel"`
	Specialty   string           `json:"specialty"`
	Permission  string           `json:"permission"`
}

// Update applies an administrator's edit. A role change replaces the role
// profile in the same transaction so the user keeps exactly one.
func (s *UserService) Update(id uint, req *AdminUserUpdate) (*UserView, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}

	if req.Status != "" && !req.Status.Valid() {
		return nil, util.Validationf("unknown status %q", req.Status)
	}
	if req.Role != "" && !req.Role.Valid() {
		return nil, util.Validationf("unknown role %q", req.Role)
	}
	if req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		taken, err := s.UserRepo.EmailExists(email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, util.ErrEmailRegistered
		}
		user.Email = email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Status != "" {
		user.Status = req.Status
	}
	roleChanged := req.Role != "" && req.Role != user.Role
	if roleChanged {
		user.Role = req.Role
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		users := s.UserRepo.WithTx(tx)
		if err := users.Update(user); err != nil {
			return err
		}
		if !roleChanged {
			return nil
		}
		if err := users.DeleteProfiles(user.ID); err != nil {
			return err
		}
		return users.CreateProfile(user, req.SchoolLevel, req.Specialty, req.Permission)
	})
	if err != nil {
		return nil, err
	}

	if roleChanged {
		logger.Log.Info("user role changed", zap.Uint("userID", user.ID), zap.String("role", string(user.Role)))
	}
	view, err := toUserView(user)
	return &view, err
}

func (s *UserService) Delete(adminID, id uint) error {
	if adminID == id {
		return util.ErrCannotDeleteSelf
	}
	if _, err := s.UserRepo.FindByID(id); err != nil {
		return notFound(err, util.ErrUserNotFound)
	}
	return s.UserRepo.Delete(id)
}

func (s *UserService) Stats() (*repository.PlatformStats, error) {
	return s.DashboardRepo.Stats()
}
