package app

import (
	"skill_assess_backend/docs"
	"skill_assess_backend/internal/config"
	"skill_assess_backend/internal/middleware"
	"skill_assess_backend/internal/model"
	"skill_assess_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerQuizRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/attempts", c.attempt.ListAllAttempts)
	}
}

func (a *App) registerQuizRoutes(group *gin.RouterGroup, c *controllers) {
	skills := group.Group("/skills")
	{
		skills.GET("", c.skill.ListSkills)
		skills.GET("/:skillId/questions", c.skill.SampleQuestions)
	}

	attempts := group.Group("/attempts")
	{
		attempts.POST("", c.attempt.CreateAttempt)
		attempts.GET("", c.attempt.ListMyAttempts)
		attempts.GET("/:id", c.attempt.GetAttempt)
		attempts.POST("/:id/answers", c.attempt.SubmitAnswer)
		attempts.POST("/:id/complete", c.attempt.CompleteAttempt)
	}
}
