package app

import (
	"waterball_lms_backend/docs"
	"waterball_lms_backend/internal/config"
	"waterball_lms_backend/internal/middleware"
	"waterball_lms_backend/internal/model"
	"waterball_lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/journeys", c.catalog.ListJourneys)
		public.GET("/journeys/:id", c.catalog.GetJourney)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.user.GetProfile)
		authGroup.PUT("/profile", c.user.UpdateProfile)
		authGroup.POST("/profile/avatar", c.user.UploadAvatar)

		// 学习进度与交付
		authGroup.GET("/progress", c.progress.ListProgress)
		authGroup.GET("/rewards", c.progress.ListRewards)
		authGroup.GET("/lessons/:id/progress", c.progress.GetProgress)
		authGroup.PUT("/lessons/:id/progress", c.progress.RecordProgress)
		authGroup.POST("/lessons/:id/deliver", c.progress.Deliver)
		authGroup.GET("/lessons/:id/accessible", c.catalog.CheckLessonAccess)
		authGroup.GET("/journeys/:id/completion", c.progress.JourneyCompletion)

		// 道馆挑战
		authGroup.GET("/gyms/:id", c.gym.GetRecord)
		authGroup.POST("/gyms/:id/attempts", c.gym.StartAttempt)
		authGroup.POST("/gyms/:id/attempts/submit", c.gym.SubmitAttempt)
		authGroup.GET("/journeys/:id/gyms", c.gym.ListRecords)
		authGroup.GET("/journeys/:id/gyms/progress", c.gym.JourneyGymProgress)

		// 排行榜
		authGroup.GET("/leaderboard", c.leaderboard.Get)
		authGroup.GET("/leaderboard/nearby", c.leaderboard.Nearby)
	}

	// 管理员相关接口
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		adminGroup.POST("/journeys/grant", c.user.GrantJourney)
	}
}
