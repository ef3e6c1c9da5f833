package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"Seasons/internal/handler"
	"Seasons/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	v1 := h.Group("/v1")

	// 认证相关路由
	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimitMiddleware()) // 认证接口限流
	{
		auth.POST("/sessions", handler.CreateSession)
		auth.POST("/token/refresh", handler.RefreshToken)
	}

	// 引导流程路由
	onboarding := v1.Group("/onboarding")
	{
		// 可用性查询不要求认证，注册前的输入框就要用
		onboarding.GET("/username-availability", handler.CheckUsernameAvailability)

		authed := onboarding.Group("", middleware.AuthMiddleware())
		{
			authed.POST("/steps/username", handler.CompleteUsernameStep)
			authed.POST("/steps/personal-info", handler.CompletePersonalInfoStep)
			authed.POST("/steps/unit-preferences", handler.CompleteUnitPreferencesStep)
			authed.GET("/progress", handler.GetOnboardingProgress)
			authed.GET("/resume", handler.ResolveResume)
		}
	}

	// 用户相关路由
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/me", handler.GetUserProfile)
	}

	// 训练赛季路由
	seasons := v1.Group("/seasons")
	seasons.Use(middleware.AuthMiddleware())
	seasons.Use(middleware.GeneralRateLimitMiddleware())
	{
		seasons.POST("", handler.CreateSeason)
		seasons.GET("", handler.ListSeasons)
		seasons.GET("/current", handler.GetCurrentSeason)
		seasons.POST("/:season_id/complete", handler.CompleteSeason)
		seasons.POST("/:season_id/abandon", handler.AbandonSeason)
	}
}
