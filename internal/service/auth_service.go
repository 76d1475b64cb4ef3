package service

import (
	"context"
	"errors"
	"estudiapro_backend/internal/config"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/util"
	"estudiapro_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	DB       *gorm.DB
	UserRepo *repository.UserRepository
	Sessions SessionStore
	Cfg      *config.Config
}

func NewAuthService(db *gorm.DB, userRepo *repository.UserRepository, sessions SessionStore, cfg *config.Config) *AuthService {
	return &AuthService{
		DB:       db,
		UserRepo: userRepo,
		Sessions: sessions,
		Cfg:      cfg,
	}
}

type RegisterRequest struct {
	Username        string         `json:"username" binding:"required,min=3,max=150"`
	Email           string         `json:"email" binding:"required,email"`
	Password        string         `json:"password" binding:"required,min=8"`
	PasswordConfirm string         `json:"passwordConfirm" binding:"required"`
	FirstName       string         `json:"firstName"`
	LastName        string         `json:"lastName"`
	Role            model.UserRole `json:"role" binding:"required"`
	SchoolLevel     string         `json:"schoolLevel"`
	Specialty       string         `json:"specialty"`
	Permission      string         `json:"permission"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

func (req *RegisterRequest) validate() error {
	if req.Password != req.PasswordConfirm {
		return util.Validationf("passwords do not match")
	}
	switch req.Role {
	case model.Student:
		if strings.TrimSpace(req.SchoolLevel) == "" {
			return util.Validationf("schoolLevel is required for students")
		}
	case model.Creator:
		if strings.TrimSpace(req.Specialty) == "" {
			return util.Validationf("specialty is required for creators")
		}
	case model.Admin:
		if strings.TrimSpace(req.Permission) == "" {
			return util.Validationf("permission is required for administrators")
		}
	default:
		return util.Validationf("unknown role %q", req.Role)
	}
	return nil
}

// Register creates the user and exactly one role profile in one transaction.
func (s *AuthService) Register(req *RegisterRequest) (*model.User, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	taken, err := s.UserRepo.EmailExists(req.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrEmailRegistered
	}
	taken, err = s.UserRepo.UsernameExists(req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Status:    model.StatusActive,
		Level:     1,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		users := s.UserRepo.WithTx(tx)
		if err := users.Create(user); err != nil {
			return err
		}
		return users.CreateProfile(user, req.SchoolLevel, req.Specialty, req.Permission)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("user registered", zap.Uint("userID", user.ID), zap.String("role", string(user.Role)))
	return s.UserRepo.FindWithProfile(user.ID)
}

// Login accepts a username or an email as identifier.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.UserRepo.FindByLogin(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}
	if user.Status != model.StatusActive {
		return nil, util.ErrAccountInactive
	}

	token, claims, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	expiresAt := claims.ExpiresAt.Time
	if err := s.Sessions.Save(ctx, claims.ID, user.ID, expiresAt); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.UserRepo.UpdateFields(user.ID, map[string]interface{}{"last_login": now}); err != nil {
		logger.Log.Warn("failed to record last login", zap.Uint("userID", user.ID), zap.Error(err))
	}
	user.LastLogin = &now

	return &LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	return s.Sessions.Revoke(ctx, claims.ID)
}

// Authenticate parses the token and checks that its session is still live.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*util.Claims, error) {
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret)
	if err != nil {
		return nil, util.ErrUnauthorized
	}
	active, err := s.Sessions.IsActive(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, util.ErrTokenRevoked
	}
	return claims, nil
}
