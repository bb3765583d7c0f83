package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hearthplan/homeplan-backend/internal/handlers"
	"github.com/hearthplan/homeplan-backend/internal/middleware"
)

type RouterConfig struct {
	RequestLog      *middleware.RequestLogMiddleware
	ChildHandler    *handlers.ChildHandler
	TopicHandler    *handlers.TopicHandler
	SessionHandler  *handlers.SessionHandler
	CalendarHandler *handlers.CalendarHandler
	CapacityHandler *handlers.CapacityHandler
	CatchUpHandler  *handlers.CatchUpHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	if cfg.RequestLog != nil {
		router.Use(cfg.RequestLog.Handler())
	}

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Children
		api.POST("/children", cfg.ChildHandler.Create)
		api.GET("/children", cfg.ChildHandler.List)
		api.GET("/children/:id", cfg.ChildHandler.Get)
		api.PUT("/children/:id", cfg.ChildHandler.Update)
		// Topics
		api.POST("/topics", cfg.TopicHandler.Create)
		api.GET("/topics", cfg.TopicHandler.List)
		api.GET("/topics/:id", cfg.TopicHandler.Get)
		// Sessions
		api.POST("/children/:id/sessions", cfg.SessionHandler.Create)
		api.GET("/children/:id/sessions", cfg.SessionHandler.ListForChild)
		api.GET("/sessions/:id", cfg.SessionHandler.Get)
		api.POST("/sessions/:id/plan", cfg.SessionHandler.Plan)
		api.POST("/sessions/:id/schedule", cfg.SessionHandler.Schedule)
		api.POST("/sessions/:id/unschedule", cfg.SessionHandler.Unschedule)
		api.POST("/sessions/:id/skip", cfg.SessionHandler.Skip)
		api.POST("/sessions/:id/complete", cfg.SessionHandler.Complete)
		api.DELETE("/sessions/:id", cfg.SessionHandler.Delete)
		// Calendar
		api.POST("/children/:id/blocks", cfg.CalendarHandler.CreateBlock)
		api.GET("/children/:id/blocks", cfg.CalendarHandler.ListBlocks)
		api.PUT("/blocks/:id", cfg.CalendarHandler.UpdateBlock)
		api.DELETE("/blocks/:id", cfg.CalendarHandler.DeleteBlock)
		api.POST("/children/:id/calendar/import", cfg.CalendarHandler.ImportICS)
		api.GET("/children/:id/events", cfg.CalendarHandler.ListEvents)
		api.DELETE("/events/:id", cfg.CalendarHandler.DeleteEvent)
		api.GET("/children/:id/occurrences", cfg.CalendarHandler.Occurrences)
		// Capacity and advisories
		api.GET("/children/:id/capacity", cfg.CapacityHandler.Week)
		api.GET("/children/:id/advisories", cfg.CapacityHandler.Advisories)
		// Catch-up
		api.GET("/children/:id/catchup", cfg.CatchUpHandler.Queue)
		api.POST("/children/:id/catchup/redistribute", cfg.CatchUpHandler.Redistribute)
	}

	return router
}
