package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"coursehub/internal/auth"
	"coursehub/internal/catalog"
	"coursehub/internal/discuss"
	"coursehub/internal/enrollment"
	"coursehub/internal/feedback"
	"coursehub/internal/progress"
	synchub "coursehub/internal/sync"
)

type deps struct {
	DB      *sql.DB
	DBPath  string
	Catalog *catalog.Store
	Hub     *synchub.Hub
	Discuss *discuss.Hub
	Tokens  auth.TokenService
	Origins []string // websocket origin allow list
}

func newRouter(d deps) *gin.Engine {
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/ws", synchub.WSHandler(d.Hub, d.Origins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": d.DBPath})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := d.Hub.Stats()
		cat := d.Catalog.Load()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := d.DB.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
			})
			return
		}
		if cat.Len() == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "catalog": "empty"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"topics":      cat.Len(),
			"catalog_at":  cat.BuiltAt(),
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	// Catalog (public)
	catalog.NewHandler(d.Catalog).RegisterRoutes(router.Group(""))

	// Discussion rooms (public)
	discuss.NewHandler(d.Discuss, d.Catalog, d.Origins).RegisterRoutes(router.Group("/discuss"))

	// Auth
	authRepo := auth.NewRepo(d.DB)
	auth.NewHandler(authRepo, d.Tokens).RegisterRoutes(router.Group("/auth"))

	// Protected routes
	protected := router.Group("/users")
	protected.Use(auth.AuthMiddleware(d.Tokens, authRepo))

	progress.NewHandler(progress.NewRepo(d.DB), d.Catalog, d.Hub).RegisterRoutes(protected)
	enrollment.NewHandler(enrollment.NewRepo(d.DB), d.Catalog, d.Hub).RegisterRoutes(protected)

	fb := feedback.NewHandler(feedback.NewRepo(d.DB), d.Catalog)
	fb.RegisterPublicRoutes(router.Group(""))
	fb.RegisterProtectedRoutes(protected)

	return router
}
