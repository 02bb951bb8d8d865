package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidcraft/backend/internal/catalog"
	"github.com/vidcraft/backend/internal/config"
	"github.com/vidcraft/backend/internal/db"
	"github.com/vidcraft/backend/internal/generation"
	"github.com/vidcraft/backend/internal/handlers"
	"github.com/vidcraft/backend/internal/repositories"
	"github.com/vidcraft/backend/internal/storage"
)

// Seams for tests.
var (
	connect    = db.Connect
	newArchive = func(ctx context.Context, cfg config.ObjectStoreConfig) (generation.ManifestArchive, error) {
		return storage.NewS3Storage(ctx, cfg)
	}
)

// services owns everything serve needs to tear down on exit.
type services struct {
	deps      handlers.Dependencies
	store     repositories.Store
	simulator *generation.Simulator
	closers   []func()
}

// Close drains the simulator until ctx is done, then releases the store.
func (s *services) Close(ctx context.Context) error {
	err := s.simulator.Shutdown(ctx)
	s.close()
	return err
}

// buildServices wires together concrete implementations used by the HTTP handlers.
func buildServices(ctx context.Context, cfg config.Config, logger *slog.Logger) (*services, error) {
	svc := &services{}

	switch cfg.Store {
	case config.StorePostgres:
		pool, err := connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		svc.closers = append(svc.closers, pool.Close)
		svc.store = repositories.NewPostgresStore(pool)
	case config.StoreMemory, "":
		mem := repositories.NewMemoryStore()
		if _, err := mem.SeedTemplates(ctx, catalog.Defaults()); err != nil {
			return nil, fmt.Errorf("seed templates: %w", err)
		}
		svc.store = mem
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	var archive generation.ManifestArchive
	if cfg.ManifestStore.Enabled() {
		a, err := newArchive(ctx, cfg.ManifestStore)
		if err != nil {
			svc.close()
			return nil, fmt.Errorf("configure manifest archive: %w", err)
		}
		archive = a
		logger.Info("archiving render manifests", "bucket", cfg.ManifestStore.Bucket)
	}

	svc.simulator = generation.NewSimulator(svc.store, archive, generation.Config{
		Delay:        cfg.Generation.Delay,
		Workers:      cfg.Generation.Workers,
		VideoURL:     cfg.Generation.VideoURL,
		ThumbnailURL: cfg.Generation.ThumbnailURL,
	}, logger)

	svc.deps = handlers.Dependencies{
		Projects:  svc.store,
		Templates: catalog.NewCachingSource(svc.store, cfg.TemplateCacheTTL),
		Generator: svc.simulator,
		Backend:   cfg.Store,
	}

	return svc, nil
}

func (s *services) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// openPostgres connects the commands that only make sense against a durable store.
func openPostgres(ctx context.Context, cfg config.Config) (*pgxpool.Pool, *repositories.PostgresStore, error) {
	if cfg.Store != config.StorePostgres {
		return nil, nil, errors.New("this command requires VIDCRAFT_STORE=postgres")
	}

	pool, err := connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return pool, repositories.NewPostgresStore(pool), nil
}
