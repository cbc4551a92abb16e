// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	jobqueue "github.com/okian/gridiron/internal/adapters/mq/queue"
	workerpool "github.com/okian/gridiron/internal/adapters/mq/worker"
	"github.com/okian/gridiron/internal/adapters/repository"
	"github.com/okian/gridiron/internal/domain/feature"
	"github.com/okian/gridiron/internal/domain/form"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/rating"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

// Service wires the rating engine, feature composer, storage and the
// replay worker pool behind one API surface.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	engine   *rating.Engine
	composer *feature.Composer
	jobQueue jobqueue.Queue
	pool     *workerpool.Pool

	// Configuration
	dbDriver        string
	dbDSN           string
	workerCount     int
	queueSize       int
	formWindow      int
	indicatorLeague string
	maxRankingLimit int
	engineOpts      []rating.Option

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects a pre-built store, bypassing the database options.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDatabase selects the storage backend opened at Start.
func WithDatabase(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.dbDriver = driver
			s.dbDSN = dsn
		}
	}
}

// WithWorkerCount sets the number of replay workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the replay job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRatingOptions forwards engine construction options.
func WithRatingOptions(opts ...rating.Option) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithFormWindow sets the rolling form window size.
func WithFormWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.formWindow = n
		}
	}
}

// WithIndicatorLeague sets the league that carries a 1.0 indicator
// feature.
func WithIndicatorLeague(league string) Option {
	return func(s *Service) {
		if league != "" {
			s.indicatorLeague = league
		}
	}
}

// WithMaxRankingLimit caps how many rows a ranking query may return.
func WithMaxRankingLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRankingLimit = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbDriver:        "memory",
		workerCount:     runtime.NumCPU(),
		queueSize:       1024,
		formWindow:      8,
		indicatorLeague: feature.DefaultIndicatorLeague,
		maxRankingLimit: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting rating service...")

	if s.store == nil {
		switch s.dbDriver {
		case "memory":
			s.store = repository.NewMemStore()
		default:
			store, err := repository.OpenSQL(s.dbDriver, s.dbDSN)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			s.store = store
		}
	}
	s.logger.Info(ctx, "store ready", logger.String("driver", s.dbDriver))

	s.engine = rating.NewEngine(s.engineOpts...)
	s.composer = feature.NewComposer(s.store, s.store,
		feature.WithEngine(s.engine),
		feature.WithFormCalculator(form.NewCalculator(form.WithWindow(s.formWindow))),
		feature.WithIndicatorLeague(s.indicatorLeague),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.jobQueue, s.store, s.engine)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "rating service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("formWindow", s.formWindow),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping rating service...")

	if q, ok := s.jobQueue.(*jobqueue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.pool != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := s.pool.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
		}
	}
	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "rating service stopped")
}

// IngestGames validates and stores a batch of games, then enqueues a
// replay for every league+season the batch touched. Returns the number
// of stored games.
func (s *Service) IngestGames(ctx context.Context, games []model.Game) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	touched := make(map[model.ReplayJob]struct{})
	for _, g := range games {
		if g.ID == "" {
			return 0, fmt.Errorf("game without id: %w", ErrInvalidGame)
		}
		if g.League == "" || g.Season <= 0 {
			return 0, fmt.Errorf("game %q lacks a league/season scope: %w", g.ID, ErrInvalidGame)
		}
		if g.Completed && (g.HomeScore == nil || g.AwayScore == nil) {
			return 0, fmt.Errorf("completed game %q is missing scores: %w", g.ID, ErrInvalidGame)
		}
		touched[model.ReplayJob{League: g.League, Season: g.Season}] = struct{}{}
	}

	if err := s.store.InsertGames(ctx, games); err != nil {
		return 0, fmt.Errorf("store games: %w", err)
	}

	for job := range touched {
		if !s.jobQueue.Enqueue(ctx, job) {
			s.logger.Warn(ctx, "replay queue full, scope not refreshed",
				logger.String("league", job.League),
				logger.Int("season", job.Season),
			)
		}
	}
	return len(games), nil
}

// EnqueueReplay schedules an asynchronous replay of one league+season.
func (s *Service) EnqueueReplay(ctx context.Context, league string, season int) error {
	if err := s.ready(); err != nil {
		return err
	}
	if !s.jobQueue.Enqueue(ctx, model.ReplayJob{League: league, Season: season}) {
		return fmt.Errorf("replay %s/%d: %w", league, season, ErrQueueFull)
	}
	return nil
}

// RunReplay replays one league+season synchronously and persists the
// result before returning.
func (s *Service) RunReplay(ctx context.Context, league string, season int) (rating.Result, error) {
	if err := s.ready(); err != nil {
		return rating.Result{}, err
	}
	return workerpool.ReplayOnce(ctx, s.store, s.engine,
		model.ReplayJob{League: league, Season: season}, s.logger)
}

// Rankings returns a season's teams ordered best-first by their final
// stored rating, capped at the configured limit.
func (s *Service) Rankings(ctx context.Context, league string, season, limit int) ([]model.RatingSnapshot, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.maxRankingLimit {
		limit = s.maxRankingLimit
	}

	finals, err := s.store.FinalSnapshots(ctx, league, season)
	if err != nil {
		return nil, fmt.Errorf("rankings %s/%d: %w", league, season, err)
	}
	if len(finals) > limit {
		finals = finals[:limit]
	}
	return finals, nil
}

// TeamRating returns a team's most recent stored rating at or before
// cutoffWeek. A negative cutoff means "latest available".
func (s *Service) TeamRating(ctx context.Context, league string, season int, teamID string, cutoffWeek int) (model.RatingSnapshot, error) {
	if err := s.ready(); err != nil {
		return model.RatingSnapshot{}, err
	}
	if cutoffWeek < 0 {
		cutoffWeek = math.MaxInt32
	}
	return s.store.LatestBefore(ctx, league, season, teamID, cutoffWeek)
}

// FeaturesByWeek derives the week-cutoff training feature vector for a
// stored game. A negative predictionWeek selects the default cutoff.
func (s *Service) FeaturesByWeek(ctx context.Context, gameID string, predictionWeek int) (feature.Vector, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.composer.ByWeek(ctx, gameID, predictionWeek)
}

// FeaturesByDate derives the date-cutoff live feature vector for a
// stored game. A zero asOf uses the game's own date.
func (s *Service) FeaturesByDate(ctx context.Context, gameID string, asOf time.Time) (feature.Vector, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.composer.ByDate(ctx, gameID, asOf)
}

// StrengthOfSchedule computes the whole-season average point
// differential per team, best first. Exploratory only: it reads the
// entire season and is never fed back into training features.
func (s *Service) StrengthOfSchedule(ctx context.Context, league string, season int) ([]model.RatingSnapshot, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	games, err := s.store.GamesFor(ctx, league, season)
	if err != nil {
		return nil, fmt.Errorf("game log %s/%d: %w", league, season, err)
	}
	return rating.SRS(league, season, games), nil
}

// Game returns one stored game by id.
func (s *Service) Game(ctx context.Context, id string) (model.Game, error) {
	if err := s.ready(); err != nil {
		return model.Game{}, err
	}
	return s.store.GameByID(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"formWindow":      s.formWindow,
		"indicatorLeague": s.indicatorLeague,
		"dbDriver":        s.dbDriver,
	}
	if s.started {
		queued := s.jobQueue.Len(context.Background())
		stats["queuedReplays"] = queued
		metrics.UpdateQueueSize(queued)
	}
	return stats
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}
