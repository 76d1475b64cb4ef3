package app

import (
	"context"
	"estudiapro_backend/internal/config"
	"estudiapro_backend/internal/controller"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/service"
	"estudiapro_backend/internal/util"
	"estudiapro_backend/pkg/configwatcher"
	"estudiapro_backend/pkg/database"
	"estudiapro_backend/pkg/logger"
	"estudiapro_backend/pkg/mailer"
	"estudiapro_backend/pkg/monitoring"
	"estudiapro_backend/pkg/security"
	"estudiapro_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const configFile = "configs/config.yaml"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	cancel          context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	session      *repository.SessionRepository
	course       *repository.CourseRepository
	resource     *repository.ResourceRepository
	exam         *repository.ExamRepository
	progress     *repository.ProgressRepository
	achievement  *repository.AchievementRepository
	calendar     *repository.CalendarRepository
	forum        *repository.ForumRepository
	community    *repository.CommunityRepository
	survey       *repository.SurveyRepository
	tutoring     *repository.TutoringRepository
	notification *repository.NotificationRepository
	dashboard    *repository.DashboardRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	hub          *service.NotificationHub
	notification *service.NotificationService
	achievement  *service.AchievementService
	course       *service.CourseService
	progress     *service.ProgressService
	calendar     *service.CalendarService
	exam         *service.ExamService
	forum        *service.ForumService
	community    *service.CommunityService
	survey       *service.SurveyService
	tutoring     *service.TutoringService
	user         *service.UserService
	dashboard    *service.DashboardService
}

type controllers struct {
	health       *controller.HealthController
	auth         *controller.AuthController
	user         *controller.UserController
	course       *controller.CourseController
	exam         *controller.ExamController
	progress     *controller.ProgressController
	achievement  *controller.AchievementController
	calendar     *controller.CalendarController
	forum        *controller.ForumController
	community    *controller.CommunityController
	survey       *controller.SurveyController
	tutoring     *controller.TutoringController
	notification *controller.NotificationController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		session:      repository.NewSessionRepository(db),
		course:       repository.NewCourseRepository(db),
		resource:     repository.NewResourceRepository(db),
		exam:         repository.NewExamRepository(db),
		progress:     repository.NewProgressRepository(db),
		achievement:  repository.NewAchievementRepository(db),
		calendar:     repository.NewCalendarRepository(db),
		forum:        repository.NewForumRepository(db),
		community:    repository.NewCommunityRepository(db),
		survey:       repository.NewSurveyRepository(db),
		tutoring:     repository.NewTutoringRepository(db),
		notification: repository.NewNotificationRepository(db),
		dashboard:    repository.NewDashboardRepository(db),
	}
}

func sessionStore(cfg *config.Config, repos *repositories, rdb *redis.Client) service.SessionStore {
	if cfg.Auth.SessionStore == "redis" && rdb != nil {
		return service.NewRedisSessionStore(rdb)
	}
	if cfg.Auth.SessionStore == "redis" {
		logger.Log.Warn("redis session store requested but redis is disabled, using database")
	}
	return service.NewDBSessionStore(repos.session)
}

func (a *App) initServices(ctx context.Context, repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(db, repos.user, sessionStore(cfg, repos, rdb), cfg)

	s.hub = service.NewNotificationHub(rdb)
	go s.hub.Run(ctx)
	s.notification = service.NewNotificationService(repos.notification, s.hub)

	s.achievement = service.NewAchievementService(repos.user, repos.achievement, repos.progress, repos.exam, s.notification)
	s.course = service.NewCourseService(repos.user, repos.course, repos.resource, s.storage)
	s.progress = service.NewProgressService(db, repos.user, repos.progress, repos.course, repos.resource, repos.calendar, s.achievement)
	s.calendar = service.NewCalendarService(repos.calendar)
	s.exam = service.NewExamService(db, repos.exam, repos.resource, s.course, s.progress, s.achievement, cfg)
	s.forum = service.NewForumService(db, repos.forum)
	s.community = service.NewCommunityService(db, repos.community, s.storage, cfg.Community.AutoApprove)
	s.survey = service.NewSurveyService(repos.survey)
	s.tutoring = service.NewTutoringService(repos.tutoring, repos.user, s.notification, mailer.New(&cfg.Mail))
	s.user = service.NewUserService(db, repos.user, repos.dashboard, s.achievement)
	s.dashboard = service.NewDashboardService(repos.user, repos.progress, repos.exam, s.progress, s.achievement, s.calendar)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		health:       controller.NewHealthController(db, rdb),
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.user),
		course:       controller.NewCourseController(s.course),
		exam:         controller.NewExamController(s.exam),
		progress:     controller.NewProgressController(s.progress, s.dashboard),
		achievement:  controller.NewAchievementController(s.achievement),
		calendar:     controller.NewCalendarController(s.calendar),
		forum:        controller.NewForumController(s.forum),
		community:    controller.NewCommunityController(s.community),
		survey:       controller.NewSurveyController(s.survey),
		tutoring:     controller.NewTutoringController(s.tutoring),
		notification: controller.NewNotificationController(s.notification, s.hub),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimitWindow()))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) watchConfig(ctx context.Context) {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		logger.SetLevel(cfg.Server.Mode)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.services.community.SetAutoApprove(cfg.Community.AutoApprove)
	})

	if _, err := os.Stat(configFile); err != nil {
		logger.Log.Info("no config file to watch", zap.String("file", configFile))
		return
	}
	go func() {
		err := configwatcher.WatchConfig(ctx, filepath.Clean(configFile), func(cfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(cfg)
			}
		})
		if err != nil {
			logger.Log.Error("config watcher stopped", zap.Error(err))
		}
	}()
}

// NewApp wires the application. With MigrateOnly set it returns after the
// schema is migrated and seeded, leaving Router nil.
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	util.RegisterValidators()

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	app.Redis = rdb

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel

	repos := app.initRepositories(db)
	app.services = app.initServices(ctx, repos, cfg, db, rdb)
	controllers := app.initControllers(app.services, db, rdb)

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, app.services)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.watchConfig(ctx)
	return app
}

func ginMode(mode string) string {
	switch mode {
	case gin.ReleaseMode, gin.TestMode:
		return mode
	default:
		return gin.DebugMode
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// stops the notification hub and the config watcher
	if a.cancel != nil {
		a.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	logger.Log.Info("Server exiting")
}
