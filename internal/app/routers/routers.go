package routers

import (
	"time"

	"github.com/gin-gonic/gin"

	"valsia/internal/app/controllers"
	v1 "valsia/internal/app/controllers/v1"
	"valsia/internal/app/middleware"
	"valsia/internal/app/services"
	"valsia/internal/app/views"
	"valsia/internal/pkg/logging"
	"valsia/internal/pkg/metrics"
)

// Deps 路由依赖，Limiter / Locker 为 nil 时不启用对应中间件
type Deps struct {
	Learning   *services.LearningService
	Presenter  *views.Presenter
	Limiter    middleware.Limiter
	RateWindow time.Duration
	Locker     middleware.Locker
}

func SetUp(deps Deps) *gin.Engine {
	g := gin.New()
	g.Use(gin.Recovery(), middleware.RequestID(), logging.Middleware())

	// 跨域中间件
	g.Use(corsMiddleware())

	g.GET("/health", controllers.Health)
	g.GET("/metrics", metrics.Handler())

	presenter := deps.Presenter
	if presenter == nil {
		presenter = views.NewPresenter(nil, nil)
	}
	learning := v1.NewLearningController(deps.Learning)
	view := v1.NewViewController(deps.Learning, presenter)
	history := v1.NewHistoryController(deps.Learning)

	var generation []gin.HandlerFunc
	if deps.Limiter != nil {
		generation = append(generation, middleware.RateLimit(deps.Limiter, deps.RateWindow))
	}
	if deps.Locker != nil {
		generation = append(generation, middleware.Inflight(deps.Locker))
	}

	apiGroup := g.Group("/api")
	apiGroup.GET("/history", history.List)
	{
		generate := apiGroup.Group("", generation...)
		generate.POST("/chat", learning.Chat)
		generate.POST("/chat/stream", learning.ChatStream)
		generate.POST("/roadmap", learning.Roadmap)
		generate.POST("/project", learning.Project)
		generate.POST("/skill/validate", learning.ValidateSkill)
	}

	viewGroup := g.Group("/view", generation...)
	{
		viewGroup.POST("/chat", view.Chat)
		viewGroup.POST("/roadmap", view.Roadmap)
		viewGroup.POST("/project", view.Project)
		viewGroup.POST("/skill", view.Skill)
	}

	return g
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Origin, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}
