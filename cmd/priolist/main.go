package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sl "github.com/14kear/sso-prettyslog/slogpretty/errors"
	"github.com/MStepRom/kursova2025/internal/app"
	"github.com/MStepRom/kursova2025/internal/config"
	"github.com/MStepRom/kursova2025/utils"
)

func main() {
	cfg := config.MustLoad()

	log := utils.New(cfg.Env, cfg.Log.File)

	log.Info("starting priolist",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage.Driver),
		slog.Int("port", cfg.HTTP.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, log, cfg)
	if err != nil {
		log.Error("failed to init application", sl.Err(err))
		os.Exit(1)
	}

	application.SweepOrphanVotes(ctx)

	go func() {
		if err := application.HTTPServer.Run(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Info("HTTP server closed gracefully")
				return
			}
			log.Error("failed to run HTTP server", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := application.Stop(shutdownCtx); err != nil {
		log.Error("failed to stop application", sl.Err(err))
		os.Exit(1)
	}

	log.Info("application stopped")
}
