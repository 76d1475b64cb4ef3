package service

import (
	"errors"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/util"
	"estudiapro_backend/pkg/logger"
	"estudiapro_backend/pkg/monitoring"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	resourceWeight = 60.0
	examWeight     = 40.0
)

// CalculateProgress blends resource completion and passed exams. Resources
// weigh 60 and exams 40 when a course has both; a course with only one kind
// uses that kind alone.
func CalculateProgress(completedResources, totalResources, passedExams, totalExams int64) float64 {
	var pct float64
	switch {
	case totalResources > 0 && totalExams > 0:
		pct = resourceWeight*float64(completedResources)/float64(totalResources) +
			examWeight*float64(passedExams)/float64(totalExams)
	case totalResources > 0:
		pct = 100 * float64(completedResources) / float64(totalResources)
	case totalExams > 0:
		pct = 100 * float64(passedExams) / float64(totalExams)
	}
	if pct > 100 {
		pct = 100
	}
	return util.Round2(pct)
}

type ProgressService struct {
	DB           *gorm.DB
	UserRepo     *repository.UserRepository
	ProgressRepo *repository.ProgressRepository
	CourseRepo   *repository.CourseRepository
	ResourceRepo *repository.ResourceRepository
	CalendarRepo *repository.CalendarRepository
	Achievements *AchievementService
}

func NewProgressService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	progressRepo *repository.ProgressRepository,
	courseRepo *repository.CourseRepository,
	resourceRepo *repository.ResourceRepository,
	calendarRepo *repository.CalendarRepository,
	achievements *AchievementService,
) *ProgressService {
	return &ProgressService{
		DB:           db,
		UserRepo:     userRepo,
		ProgressRepo: progressRepo,
		CourseRepo:   courseRepo,
		ResourceRepo: resourceRepo,
		CalendarRepo: calendarRepo,
		Achievements: achievements,
	}
}

type CourseProgress struct {
	EnrollmentID         uint          `json:"enrollmentId"`
	CourseID             uint          `json:"courseId"`
	Course               *model.Course `json:"course,omitempty"`
	Progress             float64       `json:"progress"`
	Completed            bool          `json:"completed"`
	CompletedAt          *time.Time    `json:"completedAt,omitempty"`
	TotalResources       int64         `json:"totalResources"`
	CompletedResources   int64         `json:"completedResources"`
	TotalExams           int64         `json:"totalExams"`
	PassedExams          int64         `json:"passedExams"`
	CompletedResourceIDs []uint        `json:"completedResourceIds,omitempty"`
	ExamDate             string        `json:"examDate,omitempty"`
	ExamTime             string        `json:"examTime,omitempty"`
}

// Recompute derives the enrollment's progress from scratch and persists it.
// The boolean reports whether this call moved the course to completed.
func (s *ProgressService) Recompute(enrollment *model.Enrollment) (*CourseProgress, bool, error) {
	total, err := s.ResourceRepo.CountByCourse(enrollment.CourseID)
	if err != nil {
		return nil, false, err
	}
	done, err := s.ProgressRepo.CountCompletedResources(enrollment.ID, enrollment.CourseID)
	if err != nil {
		return nil, false, err
	}
	exams, err := s.ProgressRepo.CountActiveExams(enrollment.CourseID)
	if err != nil {
		return nil, false, err
	}
	passed, err := s.ProgressRepo.CountPassedExams(enrollment.StudentID, enrollment.CourseID)
	if err != nil {
		return nil, false, err
	}

	pct := CalculateProgress(done, total, passed, exams)
	completed := pct >= 100
	newlyCompleted := completed && !enrollment.Completed

	completedAt := enrollment.CompletedAt
	if !completed {
		completedAt = nil
	} else if completedAt == nil {
		now := time.Now()
		completedAt = &now
	}

	if pct != enrollment.Progress || completed != enrollment.Completed {
		if err := s.ProgressRepo.UpdateProgress(enrollment.ID, pct, completedAt); err != nil {
			return nil, false, err
		}
	}
	enrollment.Progress = pct
	enrollment.Completed = completed
	enrollment.CompletedAt = completedAt

	return &CourseProgress{
		EnrollmentID:       enrollment.ID,
		CourseID:           enrollment.CourseID,
		Course:             enrollment.Course,
		Progress:           pct,
		Completed:          completed,
		CompletedAt:        completedAt,
		TotalResources:     total,
		CompletedResources: done,
		TotalExams:         exams,
		PassedExams:        passed,
		ExamDate:           enrollment.ExamDate,
		ExamTime:           enrollment.ExamTime,
	}, newlyCompleted, nil
}

// Refresh recomputes progress for the student's enrollment in a course and
// awards the completion bonus when the course just became complete.
func (s *ProgressService) Refresh(studentID, courseID uint) (*CourseProgress, error) {
	enrollment, err := s.ProgressRepo.FindEnrollment(studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}
	return s.refresh(enrollment)
}

func (s *ProgressService) refresh(enrollment *model.Enrollment) (*CourseProgress, error) {
	view, newlyCompleted, err := s.Recompute(enrollment)
	if err != nil {
		return nil, err
	}
	if newlyCompleted && s.Achievements != nil {
		logger.Log.Info("course completed", zap.Uint("studentID", enrollment.StudentID), zap.Uint("courseID", enrollment.CourseID))
		awarded, err := s.Achievements.AchievementRepo.HasActivity(enrollment.StudentID, model.ActivityCourseCompleted, enrollment.CourseID)
		if err != nil || awarded {
			return view, err
		}
		err = s.Achievements.Record(enrollment.StudentID, model.ActivityCourseCompleted, PointsCourseCompleted,
			fmt.Sprintf("Curso completado #%d", enrollment.CourseID), enrollment.CourseID)
		if err != nil {
			return nil, err
		}
	}
	return view, nil
}

// Enroll registers a student in an active course. Only accounts with a
// student profile can enroll, administrators included.
func (s *ProgressService) Enroll(studentID, courseID uint) (*model.Enrollment, error) {
	if _, err := s.UserRepo.FindStudentProfile(studentID); err != nil {
		return nil, notFound(err, util.ErrStudentsOnly)
	}

	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if !course.Active {
		return nil, util.ErrCourseNotFound
	}

	if _, err := s.ProgressRepo.FindEnrollment(studentID, courseID); err == nil {
		return nil, util.ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enrollment := &model.Enrollment{StudentID: studentID, CourseID: courseID}
	if err := s.ProgressRepo.CreateEnrollment(enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrAlreadyEnrolled
		}
		return nil, err
	}
	monitoring.Enrollments.WithLabelValues("enroll").Inc()

	if s.Achievements != nil {
		err := s.Achievements.Record(studentID, model.ActivityEnrolled, 0, "Inscripcion en "+course.Title, courseID)
		if err != nil {
			logger.Log.Warn("failed to record enrollment activity", zap.Error(err))
		}
	}
	enrollment.Course = course
	return enrollment, nil
}

// Unenroll removes the enrollment, its progress rows and exam date entries.
func (s *ProgressService) Unenroll(studentID, courseID uint) error {
	enrollment, err := s.ProgressRepo.FindEnrollment(studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotEnrolled
		}
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.ProgressRepo.WithTx(tx).DeleteEnrollment(enrollment.ID); err != nil {
			return err
		}
		return s.CalendarRepo.WithTx(tx).DeleteExamDateEntries(studentID, courseID)
	})
	if err != nil {
		return err
	}
	monitoring.Enrollments.WithLabelValues("unenroll").Inc()
	return nil
}

// MyEnrollments lists enrollments with freshly computed progress.
func (s *ProgressService) MyEnrollments(studentID uint) ([]CourseProgress, error) {
	enrollments, err := s.ProgressRepo.ListEnrollments(studentID)
	if err != nil {
		return nil, err
	}

	views := make([]CourseProgress, 0, len(enrollments))
	for i := range enrollments {
		view, err := s.refresh(&enrollments[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// Detailed is MyEnrollments plus the ids of completed resources per course.
func (s *ProgressService) Detailed(studentID uint) ([]CourseProgress, error) {
	views, err := s.MyEnrollments(studentID)
	if err != nil {
		return nil, err
	}
	for i := range views {
		ids, err := s.ProgressRepo.CompletedResourceIDs(views[i].EnrollmentID)
		if err != nil {
			return nil, err
		}
		views[i].CompletedResourceIDs = ids
	}
	return views, nil
}

type CompleteResourceRequest struct {
	TimeSpentMinutes int `json:"timeSpentMinutes" binding:"min=0"`
}

// CompleteResource marks a resource done, enrolling the student in its
// course first if needed. Points are only granted on the first completion.
func (s *ProgressService) CompleteResource(studentID, resourceID uint, timeSpent int) (*CourseProgress, error) {
	resource, err := s.ResourceRepo.FindByID(resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrResourceNotFound
		}
		return nil, err
	}
	courseID, err := s.ResourceRepo.CourseIDOf(resource.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrResourceNotFound
		}
		return nil, err
	}

	enrollment, err := s.ProgressRepo.FindEnrollment(studentID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if enrollment, err = s.Enroll(studentID, courseID); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	progress, err := s.ProgressRepo.FindResourceProgress(enrollment.ID, resource.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = &model.ResourceProgress{EnrollmentID: enrollment.ID, ResourceID: resource.ID}
	} else if err != nil {
		return nil, err
	}

	firstCompletion := !progress.Completed
	if firstCompletion {
		now := time.Now()
		progress.Completed = true
		progress.CompletedAt = &now
	}
	progress.TimeSpentMinutes += timeSpent
	if err := s.ProgressRepo.SaveResourceProgress(progress); err != nil {
		return nil, err
	}

	if firstCompletion && s.Achievements != nil {
		err := s.Achievements.Record(studentID, model.ActivityResourceCompleted, PointsResourceCompleted,
			"Recurso completado: "+resource.Title, resource.ID)
		if err != nil {
			return nil, err
		}
	}

	return s.refresh(enrollment)
}

type ExamDateRequest struct {
	ExamDate string `json:"examDate" binding:"omitempty,isodate"`
	ExamTime string `json:"examTime" binding:"omitempty,hhmm"`
}

// SetExamDate stores the student's exam date for a course and keeps the
// matching calendar entry in sync. An empty date clears both.
func (s *ProgressService) SetExamDate(studentID, courseID uint, req *ExamDateRequest) (*model.Enrollment, error) {
	if req.ExamDate != "" && !util.ValidDate(req.ExamDate) {
		return nil, util.Validationf("examDate must be YYYY-MM-DD")
	}
	if req.ExamTime != "" && !util.ValidHour(req.ExamTime) {
		return nil, util.Validationf("examTime must be HH:MM")
	}
	if req.ExamDate == "" && req.ExamTime != "" {
		return nil, util.Validationf("examTime requires examDate")
	}

	enrollment, err := s.ProgressRepo.FindEnrollment(studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, err
	}

	enrollment.ExamDate = req.ExamDate
	enrollment.ExamTime = req.ExamTime

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		progress := s.ProgressRepo.WithTx(tx)
		calendar := s.CalendarRepo.WithTx(tx)

		if err := progress.SaveEnrollment(enrollment); err != nil {
			return err
		}
		if req.ExamDate == "" {
			return calendar.DeleteExamDateEntries(studentID, courseID)
		}

		entry, err := calendar.FindExamDateEntry(studentID, courseID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry = &model.UpcomingActivity{
				UserID:   studentID,
				CourseID: &courseID,
				Origin:   model.OriginExamDate,
			}
		} else if err != nil {
			return err
		}
		entry.Title = "Examen: " + course.Title
		entry.Description = "Fecha de examen del curso " + course.Title
		entry.Date = req.ExamDate
		entry.Time = req.ExamTime
		return calendar.Save(entry)
	})
	if err != nil {
		return nil, err
	}

	enrollment.Course = course
	return enrollment, nil
}
