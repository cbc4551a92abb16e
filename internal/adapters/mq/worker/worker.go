// Package worker runs rating replays asynchronously off the job queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/gridiron/internal/adapters/mq/queue"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/rating"
	"github.com/okian/gridiron/internal/domain/team"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

// Default worker configuration constants.
const (
	metricsUpdateInterval = 5 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = queue.Job

// Store is the storage surface a replay worker needs: the game log in,
// the snapshot set out, plus prior-season finals for seeding.
type Store interface {
	GamesFor(ctx context.Context, league string, season int) ([]model.Game, error)
	FinalSnapshots(ctx context.Context, league string, season int) ([]model.RatingSnapshot, error)
	UpsertSeason(ctx context.Context, league string, season int, rows []model.RatingSnapshot) error
}

// Replayer replays one season's game log into snapshots.
type Replayer interface {
	Replay(ctx context.Context, league string, season int, games []model.Game, priors map[string]float64) (rating.Result, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes replay jobs using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing replay jobs.
type InMemoryWorker struct {
	queue    Queue
	store    Store
	replayer Replayer
	name     string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, store Store, replayer Replayer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		store:    store,
		replayer: replayer,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "replay failed",
					logger.String("league", job.League),
					logger.Int("season", job.Season),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob replays one league+season and persists the full snapshot
// set.
func (w *InMemoryWorker) processJob(ctx context.Context, job Job) error {
	_, err := ReplayOnce(ctx, w.store, w.replayer, job, w.logger)
	return err
}

// ReplayOnce loads, replays and persists one league+season scope. A
// log with no completed games persists nothing: an empty table is a
// valid state and wiping earlier snapshots over a transient empty read
// would not be. Workers and the synchronous service path share this
// routine.
func ReplayOnce(ctx context.Context, store Store, replayer Replayer, job Job, log logger.Logger) (rating.Result, error) {
	metrics.RecordReplayStarted()
	start := time.Now()
	defer func() { metrics.RecordReplayDuration(float64(time.Since(start).Milliseconds())) }()

	games, err := store.GamesFor(ctx, job.League, job.Season)
	if err != nil {
		metrics.RecordReplayError()
		return rating.Result{}, fmt.Errorf("load game log %s/%d: %w", job.League, job.Season, err)
	}

	priors, err := priorSeasonRatings(ctx, store, job)
	if err != nil {
		metrics.RecordReplayError()
		return rating.Result{}, err
	}

	res, err := replayer.Replay(ctx, job.League, job.Season, games, priors)
	if err != nil {
		metrics.RecordReplayError()
		return rating.Result{}, fmt.Errorf("replay %s/%d: %w", job.League, job.Season, err)
	}

	for _, id := range res.Skipped {
		log.Warn(ctx, "game skipped: team identifier could not be canonicalized",
			logger.String("league", job.League),
			logger.Int("season", job.Season),
			logger.String("gameID", id),
		)
	}
	if len(res.Duplicates) > 0 {
		log.Warn(ctx, "duplicate game ids in log",
			logger.String("league", job.League),
			logger.Int("season", job.Season),
			logger.Int("count", len(res.Duplicates)),
		)
	}

	if res.Processed == 0 {
		log.Info(ctx, "no completed games to replay",
			logger.String("league", job.League),
			logger.Int("season", job.Season),
		)
		metrics.RecordReplayCompleted()
		return res, nil
	}

	if err := store.UpsertSeason(ctx, job.League, job.Season, res.Checkpoints); err != nil {
		metrics.RecordReplayError()
		return rating.Result{}, fmt.Errorf("persist snapshots %s/%d: %w", job.League, job.Season, err)
	}

	metrics.RecordReplayCompleted()
	metrics.UpdateTeamsTracked(len(res.Snapshots))
	log.Info(ctx, "replay complete",
		logger.String("league", job.League),
		logger.Int("season", job.Season),
		logger.Int("processed", res.Processed),
		logger.Int("teams", len(res.Snapshots)),
	)
	return res, nil
}

// priorSeasonRatings maps canonical team ids to last season's final
// ratings for mean-reverted seeding.
func priorSeasonRatings(ctx context.Context, store Store, job Job) (map[string]float64, error) {
	finals, err := store.FinalSnapshots(ctx, job.League, job.Season-1)
	if err != nil {
		return nil, fmt.Errorf("prior finals %s/%d: %w", job.League, job.Season-1, err)
	}
	if len(finals) == 0 {
		return nil, nil
	}
	priors := make(map[string]float64, len(finals))
	for _, s := range finals {
		priors[team.Normalize(s.TeamID, job.League)] = s.Rating
	}
	return priors, nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker

	// Shutdown control
	shutdown chan struct{}

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool. A workerCount below one falls
// back to the CPU count.
func NewPool(workerCount int, q Queue, store Store, replayer Replayer) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, store, replayer,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.watchQueueDepth(ctx)
}

// watchQueueDepth periodically refreshes queue gauges while the pool
// runs.
func (p *Pool) watchQueueDepth(ctx context.Context) {
	sized, ok := p.workers[0].queue.(interface{ Len(ctx context.Context) int })
	if !ok {
		return
	}

	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			metrics.UpdateQueueSize(sized.Len(ctx))
		}
	}
}

// Shutdown gracefully stops every worker in the pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	close(p.shutdown)

	var firstErr error
	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
