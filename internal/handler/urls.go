package handlers

import (
	"CareLink/pkg/cache"
	"CareLink/pkg/config"
	"CareLink/pkg/metrics"
	"CareLink/pkg/middleware"
	"CareLink/pkg/realtime"
	"CareLink/pkg/sse"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handlers struct {
	db    *gorm.DB
	hub   *realtime.Hub
	cache cache.Cache
	feed  *sse.Feed
}

func NewHandlers(db *gorm.DB, hub *realtime.Hub, c cache.Cache, feed *sse.Feed) *Handlers {
	return &Handlers{
		db:    db,
		hub:   hub,
		cache: c,
		feed:  feed,
	}
}

func (h *Handlers) Register(engine *gin.Engine) {
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.Recovery())
	engine.Use(metrics.GinMiddleware())

	engine.GET("/metrics", metrics.Handler())

	r := engine.Group(config.GlobalConfig.APIPrefix)

	// Register System Module Routes
	h.registerSystemRoutes(r)

	// Register Business Module Routes
	h.registerAlertRoutes(r)

	// Realtime channel
	realtime.NewHandler(h.hub).RegisterRoutes(r)

	// Read-only alert feed for dashboard widgets
	if h.feed != nil {
		r.GET("/events", h.feed.Serve)
	}
}

// System Module
func (h *Handlers) registerSystemRoutes(r *gin.RouterGroup) {
	r.GET("/health", h.HealthCheck)
	r.GET("/system/stats", h.SystemStats)
}

// Patient Alert Module
func (h *Handlers) registerAlertRoutes(r *gin.RouterGroup) {
	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate: config.GlobalConfig.AlertRateLimit,
	}, nil).WithObserver(middleware.NewPrometheusObserver())

	alerts := r.Group("/patient-alerts")
	alerts.Use(limiter.Middleware())
	{
		alerts.POST("/call-caregiver", h.handleCallCaregiver)
		alerts.POST("/emergency-call", h.handleEmergencyCall)
		alerts.POST("/navigation-help", h.handleNavigationHelp)
		alerts.GET("/history", h.handleAlertHistory)
	}
}
