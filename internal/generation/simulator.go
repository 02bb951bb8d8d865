// Package generation simulates asynchronous video rendering. Starting a job
// marks the project as generating; after a fixed delay a worker marks it
// completed and attaches placeholder media.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/vidcraft/backend/internal/logging"
	"github.com/vidcraft/backend/internal/models"
	"github.com/vidcraft/backend/internal/repositories"
)

// ErrSimulatorClosed is returned by Start once Shutdown has begun.
var ErrSimulatorClosed = errors.New("generation simulator closed")

const (
	DefaultDelay        = 3 * time.Second
	DefaultVideoURL     = "https://sample-videos.com/zip/10/mp4/SampleVideo_1280x720_1mb.mp4"
	DefaultThumbnailURL = "https://images.unsplash.com/photo-1542744173-8e7e53415bb0?ixlib=rb-4.0.3&auto=format&fit=crop&w=500&h=281"

	completionWriteTimeout = 5 * time.Second
)

// ProjectUpdater persists the status transitions of a generation.
type ProjectUpdater interface {
	UpdateProject(ctx context.Context, id int64, patch models.ProjectPatch) (models.VideoProject, error)
}

// ManifestArchive stores a render manifest for every completed generation.
type ManifestArchive interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// Config controls timing, concurrency and the placeholder media of the simulator.
type Config struct {
	Delay        time.Duration
	Workers      int
	VideoURL     string
	ThumbnailURL string

	// After replaces time.After so tests can drive the delay.
	After func(time.Duration) <-chan time.Time
}

// Simulator owns the deferred completions of every started generation.
type Simulator struct {
	store   ProjectUpdater
	archive ManifestArchive
	cfg     Config
	logger  *slog.Logger

	jobs    chan job
	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup

	mu       sync.Mutex
	inflight int
	idle     chan struct{}
	fireNow  chan struct{}
	closed   bool
}

type job struct {
	projectID   int64
	scheduledAt time.Time
}

// Manifest is the document archived for a completed generation.
type Manifest struct {
	Project      models.VideoProject `json:"project"`
	VideoURL     string              `json:"videoUrl"`
	ThumbnailURL string              `json:"thumbnailUrl"`
	CompletedAt  time.Time           `json:"completedAt"`
}

// NewSimulator starts the worker pool. archive may be nil.
func NewSimulator(store ProjectUpdater, archive ManifestArchive, cfg Config, logger *slog.Logger) *Simulator {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.VideoURL == "" {
		cfg.VideoURL = DefaultVideoURL
	}
	if cfg.ThumbnailURL == "" {
		cfg.ThumbnailURL = DefaultThumbnailURL
	}
	if cfg.After == nil {
		cfg.After = time.After
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	idle := make(chan struct{})
	close(idle)

	s := &Simulator{
		store:   store,
		archive: archive,
		cfg:     cfg,
		logger:  logger,
		jobs:    make(chan job),
		ctx:     ctx,
		cancel:  cancel,
		idle:    idle,
		fireNow: make(chan struct{}),
	}

	s.workers.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go s.worker()
	}

	return s
}

// Start marks the project as generating and schedules its completion. It
// returns as soon as the first transition is stored.
func (s *Simulator) Start(ctx context.Context, projectID int64) (models.VideoProject, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return models.VideoProject{}, ErrSimulatorClosed
	}

	status := models.StatusGenerating
	project, err := s.store.UpdateProject(ctx, projectID, models.ProjectPatch{Status: &status})
	if err != nil {
		return models.VideoProject{}, err
	}

	if err := s.schedule(projectID); err != nil {
		return models.VideoProject{}, err
	}

	s.logger.Info("generation scheduled",
		"projectId", projectID,
		"delay", s.cfg.Delay,
		"request_id", logging.RequestIDFromContext(ctx),
	)
	return project, nil
}

func (s *Simulator) schedule(projectID int64) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSimulatorClosed
	}
	if s.inflight == 0 {
		s.idle = make(chan struct{})
	}
	s.inflight++
	fire := s.fireNow
	s.mu.Unlock()

	j := job{projectID: projectID, scheduledAt: time.Now()}
	timer := s.cfg.After(s.cfg.Delay)

	go func() {
		select {
		case <-timer:
		case <-fire:
		case <-s.ctx.Done():
			s.abandon(j)
			return
		}

		select {
		case s.jobs <- j:
		case <-s.ctx.Done():
			s.abandon(j)
		}
	}()

	return nil
}

// Pending reports how many completions have been scheduled but not yet run.
func (s *Simulator) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight
}

// Wait blocks until every scheduled completion has run or ctx is done.
func (s *Simulator) Wait(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-idle:
		return nil
	}
}

// Flush fires every pending completion immediately and waits for them.
func (s *Simulator) Flush(ctx context.Context) error {
	s.mu.Lock()
	close(s.fireNow)
	s.fireNow = make(chan struct{})
	s.mu.Unlock()

	return s.Wait(ctx)
}

// Shutdown stops accepting work and waits for pending completions until ctx
// is done. Completions still waiting at that point are dropped and logged.
func (s *Simulator) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	err := s.Wait(ctx)
	if err != nil {
		s.logger.Warn("shutting down with pending generations", "pending", s.Pending())
	}

	s.cancel()
	s.workers.Wait()
	return err
}

func (s *Simulator) worker() {
	defer s.workers.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case j := <-s.jobs:
			s.complete(j)
			s.finish()
		}
	}
}

func (s *Simulator) finish() {
	s.mu.Lock()
	s.inflight--
	if s.inflight == 0 {
		close(s.idle)
	}
	s.mu.Unlock()
}

func (s *Simulator) abandon(j job) {
	s.logger.Warn("generation abandoned before completion", "projectId", j.projectID)
	s.finish()
}

// complete is never retried; a failed write leaves the project generating.
func (s *Simulator) complete(j job) {
	base := s.logger.With("projectId", j.projectID)
	ctx, span := logging.StartSpan(logging.WithLogger(context.Background(), base), "generation.complete")
	defer span.End()
	logger := logging.FromContext(ctx)

	writeCtx, cancel := context.WithTimeout(ctx, completionWriteTimeout)
	defer cancel()

	status := models.StatusCompleted
	project, err := s.store.UpdateProject(writeCtx, j.projectID, models.ProjectPatch{
		Status:       &status,
		VideoURL:     models.Set(s.cfg.VideoURL),
		ThumbnailURL: models.Set(s.cfg.ThumbnailURL),
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("project removed before generation completed")
			return
		}
		span.Fail(fmt.Errorf("record generation completion: %w", err))
		return
	}

	logger.Info("generation completed", "waited", time.Since(j.scheduledAt))
	s.archiveManifest(ctx, logger, project)
}

func (s *Simulator) archiveManifest(ctx context.Context, logger *slog.Logger, project models.VideoProject) {
	if s.archive == nil {
		return
	}

	payload, err := json.Marshal(Manifest{
		Project:      project,
		VideoURL:     s.cfg.VideoURL,
		ThumbnailURL: s.cfg.ThumbnailURL,
		CompletedAt:  project.UpdatedAt,
	})
	if err != nil {
		logger.Error("encode render manifest", "error", err)
		return
	}

	saveCtx, cancel := context.WithTimeout(ctx, completionWriteTimeout)
	defer cancel()

	location, err := s.archive.Save(saveCtx, ManifestKey(project.ID), bytes.NewReader(payload))
	if err != nil {
		logger.Error("archive render manifest", "error", err)
		return
	}
	logger.Info("render manifest archived", "location", location)
}

// ManifestKey is the object name a project's manifest is archived under.
func ManifestKey(projectID int64) string {
	return fmt.Sprintf("projects/%d/manifest.json", projectID)
}
