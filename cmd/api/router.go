package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"tvshow-catalog/internal/shared/middleware"
	"tvshow-catalog/internal/shared/response"
	"tvshow-catalog/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.CORS.AllowedOrigins),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c.Config.App.Version, map[string]pinger{
			"database": c.DB,
			"cache":    c.Cache,
		}))

		setupShowRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	router.NoRoute(routeNotFound)

	return router
}

// ========================================
// SHOW ROUTES
// ========================================
func setupShowRoutes(v1 *gin.RouterGroup, c *container.Container) {
	shows := v1.Group("/shows")
	{
		shows.GET("", c.ShowHandler.GetPage)
		shows.GET("/search", c.ShowHandler.Search)
		shows.GET("/:id", c.ShowHandler.GetByID)
		shows.POST("", c.ShowHandler.Create)
		shows.POST("/bulk", c.ShowHandler.CreateBulk)
		shows.POST("/:id", c.ShowHandler.Update)
		shows.PATCH("/:id", c.ShowHandler.Update)
		shows.DELETE("/:id", c.ShowHandler.Delete)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin", middleware.AdminMiddleware(c.Config.App.AdminAPIKey))
	{
		admin.POST("/sync", c.SyncHandler.Trigger)
	}
}

// ========================================
// HEALTH
// ========================================

type pinger interface {
	Ping(ctx context.Context) error
}

// healthCheckHandler pings every dependency in parallel. Any failure turns
// the response into 503 with the failing dependency's error.
func healthCheckHandler(version string, deps map[string]pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		statuses := checkDependencies(ctx, deps)

		status := "ok"
		for _, s := range statuses {
			if s != "ok" {
				status = "degraded"
				break
			}
		}

		body := gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   version,
			"services":  statuses,
		}
		if status != "ok" {
			response.ServiceUnavailable(c, body)
			return
		}
		c.JSON(http.StatusOK, body)
	}
}

func routeNotFound(c *gin.Context) {
	response.NotFound(c, "route "+c.Request.Method+" "+c.Request.URL.Path+" not found")
}

func checkDependencies(ctx context.Context, deps map[string]pinger) map[string]string {
	var (
		mu       sync.Mutex
		g        errgroup.Group
		statuses = make(map[string]string, len(deps))
	)

	for name, dep := range deps {
		g.Go(func() error {
			status := "ok"
			if dep == nil {
				status = "disconnected"
			} else if err := dep.Ping(ctx); err != nil {
				status = "error: " + err.Error()
			}

			mu.Lock()
			statuses[name] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return statuses
}
