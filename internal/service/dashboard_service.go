package service

import (
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/util"
)

const recentActivityLimit = 10

type DashboardService struct {
	UserRepo     *repository.UserRepository
	ProgressRepo *repository.ProgressRepository
	ExamRepo     *repository.ExamRepository
	Progress     *ProgressService
	Achievements *AchievementService
	Calendar     *CalendarService
}

func NewDashboardService(
	userRepo *repository.UserRepository,
	progressRepo *repository.ProgressRepository,
	examRepo *repository.ExamRepository,
	progress *ProgressService,
	achievements *AchievementService,
	calendar *CalendarService,
) *DashboardService {
	return &DashboardService{
		UserRepo:     userRepo,
		ProgressRepo: progressRepo,
		ExamRepo:     examRepo,
		Progress:     progress,
		Achievements: achievements,
		Calendar:     calendar,
	}
}

type StudentStats struct {
	Points             int     `json:"points"`
	Level              int     `json:"level"`
	Streak             int     `json:"streak"`
	EnrolledCourses    int     `json:"enrolledCourses"`
	CompletedCourses   int64   `json:"completedCourses"`
	CompletedResources int64   `json:"completedResources"`
	ExamsPassed        int64   `json:"examsPassed"`
	AverageScore       float64 `json:"averageScore"`
}

type Dashboard struct {
	InProgress      []CourseProgress         `json:"inProgress"`
	PendingAttempts []model.ExamAttempt      `json:"pendingAttempts"`
	RecentActivity  []model.StudentActivity  `json:"recentActivity"`
	Upcoming        []model.UpcomingActivity `json:"upcoming"`
	Stats           StudentStats             `json:"stats"`
}

// Student assembles the student's home screen. Progress is recomputed for
// every enrollment on the way.
func (s *DashboardService) Student(userID uint) (*Dashboard, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}
	enrollments, err := s.Progress.MyEnrollments(userID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{InProgress: []CourseProgress{}}
	for _, e := range enrollments {
		if !e.Completed {
			d.InProgress = append(d.InProgress, e)
		}
	}
	if d.PendingAttempts, err = s.ExamRepo.PendingAttempts(userID); err != nil {
		return nil, err
	}
	if d.RecentActivity, err = s.Achievements.Activity(userID, recentActivityLimit); err != nil {
		return nil, err
	}
	if d.Upcoming, err = s.Calendar.Upcoming(userID); err != nil {
		return nil, err
	}

	d.Stats = StudentStats{
		Points:          user.Points,
		Level:           user.Level,
		Streak:          user.Streak,
		EnrolledCourses: len(enrollments),
	}
	if d.Stats.CompletedCourses, err = s.ProgressRepo.CountCompletedCourses(userID); err != nil {
		return nil, err
	}
	if d.Stats.CompletedResources, err = s.ProgressRepo.CountStudentCompletedResources(userID); err != nil {
		return nil, err
	}
	if d.Stats.ExamsPassed, err = s.ExamRepo.CountPassedByStudent(userID); err != nil {
		return nil, err
	}
	if d.Stats.AverageScore, err = s.ExamRepo.AverageScore(userID); err != nil {
		return nil, err
	}
	return d, nil
}
