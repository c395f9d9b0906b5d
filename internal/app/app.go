package app

import (
	"context"
	"fmt"
	"log/slog"

	sl "github.com/14kear/sso-prettyslog/slogpretty/errors"
	httpapp "github.com/MStepRom/kursova2025/internal/app/http"
	"github.com/MStepRom/kursova2025/internal/config"
	"github.com/MStepRom/kursova2025/internal/handlers"
	"github.com/MStepRom/kursova2025/internal/middleware"
	"github.com/MStepRom/kursova2025/internal/services/auth"
	"github.com/MStepRom/kursova2025/internal/services/polls"
	"github.com/MStepRom/kursova2025/internal/services/tasks"
	"github.com/MStepRom/kursova2025/internal/storage/memory"
	mongostore "github.com/MStepRom/kursova2025/internal/storage/mongo"
	"github.com/MStepRom/kursova2025/internal/storage/postgres"
)

// Storage is everything the services need from a backend.
type Storage interface {
	auth.UserSaver
	auth.UserProvider
	tasks.TaskStorage
	polls.PollStorage
	polls.VoteStorage
	Close(ctx context.Context) error
}

type App struct {
	HTTPServer *httpapp.App
	Polls      *polls.Polls
	storage    Storage
	log        *slog.Logger
}

// NewApp opens the configured storage and wires services, handlers and the HTTP server.
func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.NewApp"

	storage, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return New(log, cfg, storage), nil
}

// New wires the application around an already opened storage.
func New(log *slog.Logger, cfg *config.Config, storage Storage) *App {
	authService := auth.NewAuth(log, storage, storage, cfg.Auth.Secret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost)
	taskService := tasks.NewTasks(log, storage)
	pollService := polls.NewPolls(log, storage, storage, polls.NewCascadeBreaker(log))

	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.Secret, log)

	httpApp := httpapp.NewApp(log, httpapp.Options{
		Port:           cfg.HTTP.Port,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, httpapp.Handlers{
		Auth:  handlers.NewAuthHandler(authService, log),
		Tasks: handlers.NewTaskHandler(taskService, log),
		Polls: handlers.NewPollHandler(pollService, log),
	}, authMiddleware.Middleware())

	return &App{
		HTTPServer: httpApp,
		Polls:      pollService,
		storage:    storage,
		log:        log,
	}
}

// SweepOrphanVotes clears ledger entries left behind by earlier failed poll deletions.
func (a *App) SweepOrphanVotes(ctx context.Context) {
	if _, err := a.Polls.SweepOrphanVotes(ctx); err != nil {
		a.log.Warn("orphan vote sweep failed", sl.Err(err))
	}
}

func (a *App) Stop(ctx context.Context) error {
	if err := a.HTTPServer.Stop(ctx); err != nil {
		return err
	}
	return a.storage.Close(ctx)
}

func openStorage(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	switch cfg.Driver {
	case config.DriverMongo:
		s, err := mongostore.New(ctx, cfg.Path, cfg.Database)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
