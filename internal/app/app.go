package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vidcraft/backend/internal/config"
	"github.com/vidcraft/backend/internal/handlers"
	"github.com/vidcraft/backend/internal/httpserver"
	"github.com/vidcraft/backend/internal/middleware"
)

const usage = "expected command: serve, migrate [up|down|status], seed templates, or user create <username>"

// stdout receives command output; tests swap it.
var stdout io.Writer = os.Stdout

// Run bootstraps the VidCraft backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "migrate":
		return runMigrate(ctx, args[1:])
	case "seed":
		return runSeed(ctx, args[1:])
	case "user":
		return runUser(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q: %s", args[0], usage)
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	svc, err := buildServices(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg.AppPort, newHandler(svc.deps, cfg.RateLimit, logger))
	if err := srv.Listen(); err != nil {
		_ = svc.Close(ctx)
		return err
	}

	logger.Info("starting http server", "addr", srv.Addr(), "store", cfg.Store)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case runErr = <-srvErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", "error", err)
	}
	if err := svc.Close(shutdownCtx); err != nil {
		logger.Warn("generation simulator did not drain", "error", err)
	}

	return runErr
}

// newHandler wraps the API routes with rate limiting and request logging.
func newHandler(deps handlers.Dependencies, limits config.RateLimitConfig, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)

	limiter := middleware.NewClientRateLimiter(limits, 10*time.Minute)
	return middleware.RequestLogger(logger)(middleware.RateLimit(limiter)(mux))
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{AddSource: true, Level: lvl}))
}
