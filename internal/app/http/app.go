package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MStepRom/kursova2025/internal/handlers"
	"github.com/MStepRom/kursova2025/internal/middleware"
	"github.com/MStepRom/kursova2025/internal/routes"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type App struct {
	log    *slog.Logger
	engine *gin.Engine
	server *http.Server
	port   int
}

type Options struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	AllowedOrigins []string
}

type Handlers struct {
	Auth  *handlers.AuthHandler
	Tasks *handlers.TaskHandler
	Polls *handlers.PollHandler
}

// NewApp builds the gin engine and wires the routes.
func NewApp(log *slog.Logger, opts Options, h Handlers, authMiddleware gin.HandlerFunc) *App {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.TokenHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	// /api/*
	api := r.Group("/api")
	{
		routes.RegisterAuthRoutes(api.Group("/auth"), h.Auth)
		routes.RegisterTaskRoutes(api.Group("/tasks", authMiddleware), h.Tasks)
		routes.RegisterPollRoutes(api.Group("/polls", authMiddleware), h.Polls)
	}

	// Healthcheck
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      r,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	return &App{
		log:    log,
		engine: r,
		server: httpServer,
		port:   opts.Port,
	}
}

// Run blocks serving HTTP until the server is shut down.
func (a *App) Run() error {
	a.log.Info("HTTP server is running", slog.String("addr", a.server.Addr))
	return a.server.ListenAndServe()
}

func (a *App) Stop(ctx context.Context) error {
	a.log.Info("HTTP server is stopping", slog.Int("port", a.port))
	return a.server.Shutdown(ctx)
}

func (a *App) Engine() *gin.Engine {
	return a.engine
}
