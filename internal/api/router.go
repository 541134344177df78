package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/mmo1994/meetsync/internal/app"
	"github.com/mmo1994/meetsync/internal/handlers"
	"github.com/mmo1994/meetsync/internal/middleware"
	"github.com/mmo1994/meetsync/internal/notifications"
)

// NewRouter builds the Gin engine, wires middleware and registers routes.
// Authentication happens upstream; identity arrives via the trusted header
// enforced by middleware.Identity.
func NewRouter(db *gorm.DB, cfg *app.Config, hub *notifications.Hub) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if hub == nil {
		return nil, fmt.Errorf("notification hub must be provided")
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.NoRoute(middleware.NotFoundHandler)

	r.GET("/health", handlers.Health(db))

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	notificationHandler, err := handlers.NewNotificationHandler(db, hub)
	if err != nil {
		return nil, err
	}
	preferenceHandler, err := handlers.NewPreferenceHandler(db)
	if err != nil {
		return nil, err
	}
	pushHandler, err := handlers.NewPushSubscriptionHandler(db)
	if err != nil {
		return nil, err
	}

	api := r.Group("/api")
	api.Use(middleware.Identity())

	notificationsGroup := api.Group("/notifications")
	{
		notificationsGroup.GET("", notificationHandler.List)
		notificationsGroup.GET("/stream", notificationHandler.Stream)
		notificationsGroup.POST("/read-all", notificationHandler.MarkAllRead)
		notificationsGroup.POST("/:id/read", notificationHandler.MarkRead)
		notificationsGroup.DELETE("/:id", notificationHandler.Delete)
	}

	preferencesGroup := api.Group("/preferences")
	{
		preferencesGroup.GET("", preferenceHandler.Get)
		preferencesGroup.PUT("", preferenceHandler.Update)
	}

	pushGroup := api.Group("/push-subscriptions")
	{
		pushGroup.POST("", pushHandler.Register)
		pushGroup.DELETE("/:id", pushHandler.Unregister)
	}

	return r, nil
}
