// Package server assembles the HTTP handler for the realtime-svg
// service. It accepts all dependencies as parameters so that main() and
// tests build the same route table without drift.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/realtime-svg/realtime-svg/internal/config"
	"github.com/realtime-svg/realtime-svg/internal/credentials"
	"github.com/realtime-svg/realtime-svg/internal/handlers"
	"github.com/realtime-svg/realtime-svg/internal/middleware"
	"github.com/realtime-svg/realtime-svg/internal/session"
	"github.com/realtime-svg/realtime-svg/internal/store"
	"github.com/realtime-svg/realtime-svg/internal/stream"
)

// App holds the dependencies needed to build the HTTP handler.
type App struct {
	Store       store.Store
	Sessions    *session.Manager
	Credentials *credentials.Service
	Config      *config.Config
}

// NewApp wires the service layers over one store.
func NewApp(s store.Store, cfg *config.Config) *App {
	return &App{
		Store:       s,
		Sessions:    session.NewManager(s),
		Credentials: credentials.NewService(s),
		Config:      cfg,
	}
}

// Router builds the complete gin engine with all middleware and routes.
func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.JSONSizeLimiter())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine := stream.NewEngine(a.Store)

	auth := handlers.NewAuthHandler(a.Credentials, a.Config.RequirePassword)
	auth.RegisterRoutes(router)

	api := router.Group("/api")
	handlers.NewSessionHandler(a.Sessions).RegisterRoutes(api)
	handlers.NewUserSessionHandler(a.Sessions, a.Credentials).RegisterRoutes(api)

	handlers.NewStreamHandler(a.Sessions, engine).RegisterRoutes(router)

	return router
}
