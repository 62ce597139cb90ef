package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nahidfarms/poultrypro/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.FarmHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/state", handler.State)
		api.GET("/dashboard", handler.Dashboard)

		api.POST("/transactions", handler.AddTransaction)
		api.DELETE("/transactions/:id", handler.DeleteTransaction)

		api.POST("/flocks", handler.CreateFlock)
		api.PATCH("/flocks/:id", handler.UpdateFlock)
		api.DELETE("/flocks/:id", handler.DeleteFlock)
		api.POST("/flocks/:id/count", handler.OverrideCount)
		api.POST("/flocks/:id/weights", handler.RecordWeight)
		api.POST("/flocks/:id/mortality", handler.RecordMortality)
		api.POST("/flocks/:id/feed", handler.RecordFeed)
		api.GET("/flocks/:id/report", handler.BatchReport)

		api.POST("/inventory", handler.AddItem)
		api.PATCH("/inventory/:id", handler.UpdateItem)
		api.DELETE("/inventory/:id", handler.DeleteItem)

		api.POST("/undo", handler.Undo)

		api.GET("/insights", handler.LatestInsights)
		api.POST("/insights", handler.RefreshInsights)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
