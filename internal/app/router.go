package app

import (
	"estudiapro_backend/docs"
	"estudiapro_backend/internal/middleware"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	// 1. public routes
	public := router.Group("/api/auth")
	{
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. authenticated routes
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(s.auth))
	{
		api.POST("/auth/logout", c.auth.Logout)

		a.registerUserRoutes(api, c)
		a.registerCatalogRoutes(api, c)
		a.registerExamRoutes(api, c)
		a.registerProgressRoutes(api, c)
		a.registerCommunityRoutes(api, c)
		a.registerSchedulingRoutes(api, c)
	}

	// 3. administration
	a.registerAdminRoutes(api, c)
}

var (
	studentOnly = middleware.RoleMiddleware(model.Student)
	creatorOnly = middleware.RoleMiddleware(model.Creator)
	adminOnly   = middleware.RoleMiddleware()
)

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	users := rg.Group("/users")
	{
		users.GET("/me", c.user.GetProfile)
		users.GET("/verify-role", c.user.VerifyRole)
		users.POST("/premium", c.user.ActivatePremium)
		users.POST("/track-time", c.user.TrackTime)
	}

	rg.GET("/achievements/me", c.achievement.GetUserAchievements)
	rg.GET("/achievements/points", c.achievement.GetPoints)
	rg.GET("/achievements/activity", c.achievement.GetActivity)
}

func (a *App) registerCatalogRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/courses", c.course.ListCourses)
	rg.GET("/courses/:id", c.course.GetCourse)
	rg.POST("/courses", adminOnly, c.course.CreateCourse)
	rg.PUT("/courses/:id", adminOnly, c.course.UpdateCourse)
	rg.DELETE("/courses/:id", adminOnly, c.course.DeleteCourse)

	rg.GET("/courses/:id/modules", c.course.ListModules)
	rg.POST("/courses/:id/modules", creatorOnly, c.course.CreateModule)
	rg.PUT("/modules/:id", creatorOnly, c.course.UpdateModule)
	rg.DELETE("/modules/:id", creatorOnly, c.course.DeleteModule)

	rg.GET("/resources/:id", c.course.GetResource)
	rg.POST("/resources", creatorOnly, c.course.CreateResource)
	rg.PUT("/resources/:id", creatorOnly, c.course.UpdateResource)
	rg.DELETE("/resources/:id", creatorOnly, c.course.DeleteResource)

	rg.GET("/questions", c.course.ListQuestions)
	rg.POST("/questions", creatorOnly, c.course.CreateQuestion)
	rg.PUT("/questions/:id", creatorOnly, c.course.UpdateQuestion)
	rg.DELETE("/questions/:id", creatorOnly, c.course.DeleteQuestion)
}

func (a *App) registerExamRoutes(rg *gin.RouterGroup, c *controllers) {
	exams := rg.Group("/exams")
	{
		exams.GET("", c.exam.ListExams)
		exams.GET("/:id", c.exam.GetExam)
		exams.POST("", creatorOnly, c.exam.CreateExam)
		exams.PUT("/:id", creatorOnly, c.exam.UpdateExam)
		exams.DELETE("/:id", creatorOnly, c.exam.DeleteExam)
		exams.POST("/simulator", creatorOnly, c.exam.GenerateSimulator)

		exams.POST("/:id/start", studentOnly, c.exam.StartExam)
		exams.POST("/:id/submit", studentOnly, c.exam.SubmitExam)
	}

	templates := rg.Group("/exam-templates", adminOnly)
	{
		templates.GET("", c.exam.ListTemplates)
		templates.POST("", c.exam.CreateTemplate)
		templates.DELETE("/:id", c.exam.DeleteTemplate)
	}

	rg.GET("/attempts", c.exam.History)
	rg.GET("/attempts/:id", c.exam.Review)
}

func (a *App) registerProgressRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/courses/:id/enroll", studentOnly, c.progress.Enroll)
	rg.DELETE("/courses/:id/enroll", studentOnly, c.progress.Unenroll)
	rg.GET("/courses/:id/progress", studentOnly, c.progress.CourseProgress)
	rg.PUT("/courses/:id/exam-date", studentOnly, c.progress.SetExamDate)
	rg.GET("/enrollments", studentOnly, c.progress.MyEnrollments)
	rg.GET("/progress", studentOnly, c.progress.Detailed)
	rg.POST("/resources/:id/complete", studentOnly, c.progress.CompleteResource)
	rg.GET("/dashboard", c.progress.Dashboard)

	calendar := rg.Group("/calendar")
	{
		calendar.GET("", c.calendar.Upcoming)
		calendar.POST("", c.calendar.Create)
		calendar.PUT("/:id", c.calendar.Update)
		calendar.DELETE("/:id", c.calendar.Delete)
	}
}

func (a *App) registerCommunityRoutes(rg *gin.RouterGroup, c *controllers) {
	forum := rg.Group("/forum")
	{
		forum.GET("/threads", c.forum.ListThreads)
		forum.GET("/threads/mine", c.forum.MyThreads)
		forum.GET("/threads/:id", c.forum.GetThread)
		forum.POST("/threads", c.forum.CreateThread)
		forum.PUT("/threads/:id", c.forum.UpdateThread)
		forum.DELETE("/threads/:id", c.forum.DeleteThread)
		forum.POST("/threads/:id/resolve", c.forum.ResolveThread)
		forum.POST("/threads/:id/close", c.forum.CloseThread)
		forum.POST("/threads/:id/replies", c.forum.CreateReply)
		forum.POST("/replies/:id/solution", c.forum.MarkSolution)
		forum.POST("/replies/:id/vote", c.forum.Vote)
	}

	community := rg.Group("/community/resources")
	{
		community.GET("", c.community.ListResources)
		community.GET("/mine", c.community.MyResources)
		community.GET("/:id", c.community.GetResource)
		community.POST("", c.community.CreateResource)
		community.PUT("/:id", c.community.UpdateResource)
		community.DELETE("/:id", c.community.DeleteResource)
		community.POST("/:id/rate", c.community.Rate)
		community.POST("/:id/download", c.community.Download)
	}

	surveys := rg.Group("/surveys")
	{
		surveys.GET("", c.survey.Available)
		surveys.GET("/mine", creatorOnly, c.survey.Mine)
		surveys.GET("/:id", c.survey.Detail)
		surveys.POST("", creatorOnly, c.survey.Create)
		surveys.POST("/:id/responses", c.survey.Respond)
		surveys.GET("/:id/results", creatorOnly, c.survey.Results)
	}
}

func (a *App) registerSchedulingRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/tutors", c.tutoring.Tutors)
	rg.GET("/tutors/me", creatorOnly, c.tutoring.GetMe)
	rg.PUT("/tutors/me", creatorOnly, c.tutoring.UpdateMe)

	sessions := rg.Group("/tutoring/sessions")
	{
		sessions.GET("", c.tutoring.Sessions)
		sessions.POST("", studentOnly, c.tutoring.RequestSession)
		sessions.PATCH("/:id/status", c.tutoring.Transition)
	}

	notifications := rg.Group("/notifications")
	{
		notifications.GET("", c.notification.List)
		notifications.GET("/unread-count", c.notification.UnreadCount)
		notifications.PATCH("/:id/read", c.notification.MarkRead)
		notifications.PATCH("/read-all", c.notification.MarkAllRead)
		notifications.GET("/ws", c.notification.Stream)
	}
}

func (a *App) registerAdminRoutes(api *gin.RouterGroup, c *controllers) {
	admin := api.Group("/admin", adminOnly)
	{
		admin.GET("/users", c.user.ListUsers)
		admin.PUT("/users/:id", c.user.UpdateUser)
		admin.DELETE("/users/:id", c.user.DeleteUser)
		admin.GET("/stats", c.user.Stats)

		admin.GET("/courses", c.course.AdminListCourses)
		admin.PATCH("/courses/:id/toggle", c.course.ToggleCourse)

		admin.GET("/achievements", c.achievement.Catalog)
		admin.POST("/achievements", c.achievement.CreateAchievement)
		admin.PUT("/achievements/:id", c.achievement.UpdateAchievement)
		admin.DELETE("/achievements/:id", c.achievement.DeleteAchievement)

		admin.GET("/community/pending", c.community.Pending)
		admin.POST("/community/:id/moderate", c.community.Moderate)
	}
}
