package service

import (
	"estudiapro_backend/internal/config"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/testutil"
	"estudiapro_backend/internal/util"
	"estudiapro_backend/pkg/mailer"
	"math/rand"
	"testing"
	"time"

	"gorm.io/gorm"
)

// harness wires the services over a private sqlite database the same way
// the application does, minus redis and the websocket hub.
type harness struct {
	db  *gorm.DB
	cfg *config.Config

	users     *repository.UserRepository
	examRepo  *repository.ExamRepository
	progRepo  *repository.ProgressRepository
	calRepo   *repository.CalendarRepository
	notifRepo *repository.NotificationRepository

	mail          *mailer.ConsoleMailer
	auth          *AuthService
	notifications *NotificationService
	achievements  *AchievementService
	courses       *CourseService
	progress      *ProgressService
	calendar      *CalendarService
	exams         *ExamService
	forum         *ForumService
	community     *CommunityService
	surveys       *SurveyService
	tutoring      *TutoringService
	userSvc       *UserService
	dashboard     *DashboardService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	cfg.Storage.LocalPath = t.TempDir()

	h := &harness{
		db:        db,
		cfg:       cfg,
		users:     repository.NewUserRepository(db),
		examRepo:  repository.NewExamRepository(db),
		progRepo:  repository.NewProgressRepository(db),
		calRepo:   repository.NewCalendarRepository(db),
		notifRepo: repository.NewNotificationRepository(db),
		mail:      &mailer.ConsoleMailer{},
	}
	courseRepo := repository.NewCourseRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	storage := NewStorageService(cfg)

	h.auth = NewAuthService(db, h.users, NewDBSessionStore(repository.NewSessionRepository(db)), cfg)
	h.notifications = NewNotificationService(h.notifRepo, nil)
	h.achievements = NewAchievementService(h.users, repository.NewAchievementRepository(db), h.progRepo, h.examRepo, h.notifications)
	h.courses = NewCourseService(h.users, courseRepo, resourceRepo, storage)
	h.progress = NewProgressService(db, h.users, h.progRepo, courseRepo, resourceRepo, h.calRepo, h.achievements)
	h.calendar = NewCalendarService(h.calRepo)
	h.exams = NewExamService(db, h.examRepo, resourceRepo, h.courses, h.progress, h.achievements, cfg)
	h.exams.SetRand(rand.New(rand.NewSource(7)))
	h.forum = NewForumService(db, repository.NewForumRepository(db))
	h.community = NewCommunityService(db, repository.NewCommunityRepository(db), storage, true)
	h.surveys = NewSurveyService(repository.NewSurveyRepository(db))
	h.tutoring = NewTutoringService(repository.NewTutoringRepository(db), h.users, h.notifications, h.mail)
	h.userSvc = NewUserService(db, h.users, repository.NewDashboardRepository(db), h.achievements)
	h.dashboard = NewDashboardService(h.users, h.progRepo, h.examRepo, h.progress, h.achievements, h.calendar)
	return h
}

func claimsFor(u *model.User) *util.Claims {
	return &util.Claims{UserID: u.ID, Role: u.Role, Email: u.Email}
}

func (h *harness) user(t *testing.T, role model.UserRole) *model.User {
	return testutil.CreateUser(t, h.db, role)
}

func (h *harness) reload(t *testing.T, u *model.User) *model.User {
	t.Helper()
	fresh, err := h.users.FindByID(u.ID)
	if err != nil {
		t.Fatalf("reload user %d: %v", u.ID, err)
	}
	return fresh
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}
