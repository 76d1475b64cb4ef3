package service

import (
	"errors"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/util"
	"estudiapro_backend/pkg/logger"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	PointsResourceCompleted = 5
	PointsExamPassed        = 20
	PointsCourseCompleted   = 50
)

// AchievementService awards points, keeps streaks and unlocks achievements.
// Callers must not invoke it from inside an open transaction.
type AchievementService struct {
	UserRepo        *repository.UserRepository
	AchievementRepo *repository.AchievementRepository
	ProgressRepo    *repository.ProgressRepository
	ExamRepo        *repository.ExamRepository
	Notifier        Notifier
	Now             func() time.Time
}

func NewAchievementService(
	userRepo *repository.UserRepository,
	achievementRepo *repository.AchievementRepository,
	progressRepo *repository.ProgressRepository,
	examRepo *repository.ExamRepository,
	notifier Notifier,
) *AchievementService {
	return &AchievementService{
		UserRepo:        userRepo,
		AchievementRepo: achievementRepo,
		ProgressRepo:    progressRepo,
		ExamRepo:        examRepo,
		Notifier:        notifier,
		Now:             time.Now,
	}
}

// Record logs a gamified event: it adds points, writes the activity log,
// advances the streak and evaluates achievements.
func (s *AchievementService) Record(userID uint, kind model.ActivityType, points int, description string, refID uint) error {
	if points > 0 {
		if _, err := s.UserRepo.AddPoints(userID, points); err != nil {
			return err
		}
	}

	err := s.AchievementRepo.CreateActivity(&model.StudentActivity{
		UserID:      userID,
		Type:        kind,
		Description: description,
		Points:      points,
		ReferenceID: refID,
	})
	if err != nil {
		return err
	}

	if _, err := s.TouchStreak(userID); err != nil {
		return err
	}
	_, err = s.Evaluate(userID)
	return err
}

// TouchStreak advances the daily streak: activity yesterday extends it,
// activity today keeps it, anything older restarts it at 1.
func (s *AchievementService) TouchStreak(userID uint) (int, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return 0, err
	}

	now := s.Now()
	today := now.Format(util.DateFormat)
	yesterday := now.AddDate(0, 0, -1).Format(util.DateFormat)

	switch user.LastActivityDate {
	case today:
		return user.Streak, nil
	case yesterday:
		user.Streak++
	default:
		user.Streak = 1
	}

	err = s.UserRepo.UpdateFields(userID, map[string]interface{}{
		"streak":             user.Streak,
		"last_activity_date": today,
	})
	return user.Streak, err
}

type achievementMetrics map[model.AchievementType]int

func (s *AchievementService) metrics(userID uint) (achievementMetrics, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	resources, err := s.ProgressRepo.CountStudentCompletedResources(userID)
	if err != nil {
		return nil, err
	}
	exams, err := s.ExamRepo.CountPassedByStudent(userID)
	if err != nil {
		return nil, err
	}
	courses, err := s.ProgressRepo.CountCompletedCourses(userID)
	if err != nil {
		return nil, err
	}

	return achievementMetrics{
		model.AchievementPoints:             user.Points,
		model.AchievementStreak:             user.Streak,
		model.AchievementResourcesCompleted: int(resources),
		model.AchievementExamsPassed:        int(exams),
		model.AchievementCoursesCompleted:   int(courses),
	}, nil
}

// Evaluate unlocks every achievement whose threshold is met. Reward points
// can push the user over further point thresholds, so it repeats until no
// new achievement unlocks. Unlocked achievements are never revoked.
func (s *AchievementService) Evaluate(userID uint) ([]model.Achievement, error) {
	catalog, err := s.AchievementRepo.List(true)
	if err != nil {
		return nil, err
	}

	var unlocked []model.Achievement
	for {
		m, err := s.metrics(userID)
		if err != nil {
			return nil, err
		}

		progressed := false
		for _, a := range catalog {
			sa, err := s.AchievementRepo.FindStudentAchievement(userID, a.ID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				sa = &model.StudentAchievement{UserID: userID, AchievementID: a.ID}
			} else if err != nil {
				return nil, err
			}
			if sa.Unlocked {
				continue
			}

			value := m[a.Type]
			if value > a.Threshold {
				value = a.Threshold
			}
			if value >= a.Threshold {
				now := s.Now()
				sa.Progress = a.Threshold
				sa.Unlocked = true
				sa.UnlockedAt = &now
				if err := s.AchievementRepo.SaveStudentAchievement(sa); err != nil {
					return nil, err
				}
				if err := s.reward(userID, a); err != nil {
					return nil, err
				}
				unlocked = append(unlocked, a)
				progressed = true
				continue
			}

			if sa.ID == 0 || sa.Progress != value {
				sa.Progress = value
				if err := s.AchievementRepo.SaveStudentAchievement(sa); err != nil {
					return nil, err
				}
			}
		}

		if !progressed {
			return unlocked, nil
		}
	}
}

func (s *AchievementService) reward(userID uint, a model.Achievement) error {
	if a.RewardPoints > 0 {
		if _, err := s.UserRepo.AddPoints(userID, a.RewardPoints); err != nil {
			return err
		}
	}
	err := s.AchievementRepo.CreateActivity(&model.StudentActivity{
		UserID:      userID,
		Type:        model.ActivityAchievementUnlocked,
		Description: fmt.Sprintf("Logro desbloqueado: %s", a.Name),
		Points:      a.RewardPoints,
		ReferenceID: a.ID,
	})
	if err != nil {
		return err
	}

	logger.Log.Info("achievement unlocked", zap.Uint("userID", userID), zap.String("achievement", a.Name))
	if s.Notifier != nil {
		if _, err := s.Notifier.Notify(userID, model.NotificationSuccess, "Nuevo logro", a.Name, "/achievements"); err != nil {
			logger.Log.Warn("achievement notification failed", zap.Error(err))
		}
	}
	return nil
}

type AchievementView struct {
	model.Achievement
	Progress   int        `json:"progress"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// ForUser lists the active catalog merged with the user's progress.
func (s *AchievementService) ForUser(userID uint) ([]AchievementView, error) {
	catalog, err := s.AchievementRepo.List(true)
	if err != nil {
		return nil, err
	}
	owned, err := s.AchievementRepo.ListStudentAchievements(userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.StudentAchievement, len(owned))
	for _, sa := range owned {
		byID[sa.AchievementID] = sa
	}

	views := make([]AchievementView, 0, len(catalog))
	for _, a := range catalog {
		v := AchievementView{Achievement: a}
		if sa, ok := byID[a.ID]; ok {
			v.Progress = sa.Progress
			v.Unlocked = sa.Unlocked
			v.UnlockedAt = sa.UnlockedAt
		}
		views = append(views, v)
	}
	return views, nil
}

type PointsSummary struct {
	Points      int `json:"points"`
	Level       int `json:"level"`
	Streak      int `json:"streak"`
	NextLevelAt int `json:"nextLevelAt"`
}

func (s *AchievementService) Points(userID uint) (*PointsSummary, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return &PointsSummary{
		Points:      user.Points,
		Level:       user.Points/100 + 1,
		Streak:      user.Streak,
		NextLevelAt: (user.Points/100 + 1) * 100,
	}, nil
}

func (s *AchievementService) Activity(userID uint, limit int) ([]model.StudentActivity, error) {
	return s.AchievementRepo.RecentActivities(userID, limit)
}

type AchievementRequest struct {
	Name         string                `json:"name" binding:"required,max=100"`
	Description  string                `json:"description"`
	Icon         string                `json:"icon"`
	Type         model.AchievementType `json:"type" binding:"required"`
	Threshold    int                   `json:"threshold" binding:"required,min=1"`
	RewardPoints int                   `json:"rewardPoints" binding:"min=0"`
	Active       *bool                 `json:"active"`
}

func (s *AchievementService) apply(a *model.Achievement, req *AchievementRequest) error {
	if !req.Type.Valid() {
		return util.Validationf("unknown achievement type %q", req.Type)
	}
	a.Name = req.Name
	a.Description = req.Description
	a.Icon = req.Icon
	a.Type = req.Type
	a.Threshold = req.Threshold
	a.RewardPoints = req.RewardPoints
	if req.Active != nil {
		a.Active = *req.Active
	}
	return nil
}

func (s *AchievementService) Create(req *AchievementRequest) (*model.Achievement, error) {
	a := &model.Achievement{Active: true}
	if err := s.apply(a, req); err != nil {
		return nil, err
	}
	return a, s.AchievementRepo.Create(a)
}

func (s *AchievementService) Update(id uint, req *AchievementRequest) (*model.Achievement, error) {
	a, err := s.AchievementRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(a, req); err != nil {
		return nil, err
	}
	return a, s.AchievementRepo.Update(a)
}

func (s *AchievementService) Delete(id uint) error {
	if _, err := s.AchievementRepo.FindByID(id); err != nil {
		return err
	}
	return s.AchievementRepo.Delete(id)
}

func (s *AchievementService) Catalog() ([]model.Achievement, error) {
	return s.AchievementRepo.List(false)
}
