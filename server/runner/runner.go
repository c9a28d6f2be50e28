// Package runner manages ingestion run execution for the server.
//
// The runner starts runs in the background, refuses a second concurrent run
// for the same season, tracks live instances for status queries, and
// persists terminal snapshots through a StateStore.
//
// Pipelines come from a factory so the caller decides whether runs share one
// pipeline or get a fresh one each time.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/azrulhm/eplingest/workflow"
)

// ErrSeasonInProgress is returned when a run for the requested season is
// already in flight.
var ErrSeasonInProgress = errors.New("ingestion already in progress for this season")

// PipelineFactory builds a fresh pipeline for each run.
type PipelineFactory interface {
	NewPipeline() (*workflow.Pipeline, error)
}

// PipelineFactoryFunc adapts a function to the PipelineFactory interface.
type PipelineFactoryFunc func() (*workflow.Pipeline, error)

func (f PipelineFactoryFunc) NewPipeline() (*workflow.Pipeline, error) {
	return f()
}

// Runner manages ingestion run execution.
type Runner struct {
	logger  *slog.Logger
	factory PipelineFactory
	store   StateStore

	mu        sync.Mutex
	active    map[int]*workflow.Instance    // in-flight instance per season
	instances map[string]*workflow.Instance // every instance this process started, by ID
}

// Option configures a Runner.
type Option func(*Runner)

// WithStateStore configures the runner to persist terminal runs to the
// provided store.
func WithStateStore(store StateStore) Option {
	return func(r *Runner) {
		r.store = store
	}
}

// New creates a Runner.
func New(logger *slog.Logger, factory PipelineFactory, opts ...Option) *Runner {
	r := &Runner{
		logger:    logger.With("component", "runner"),
		factory:   factory,
		store:     NewMemoryStore(),
		active:    make(map[int]*workflow.Instance),
		instances: make(map[string]*workflow.Instance),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches an ingestion run for the season in the background and
// returns the new instance's ID. If a run for the season is already in
// flight, the in-flight instance's ID is returned with ErrSeasonInProgress.
func (r *Runner) Start(season int) (string, error) {
	r.mu.Lock()
	if inst, ok := r.active[season]; ok {
		id := inst.ID()
		r.mu.Unlock()
		return id, ErrSeasonInProgress
	}

	pipeline, err := r.factory.NewPipeline()
	if err != nil {
		r.mu.Unlock()
		return "", err
	}

	inst := workflow.NewInstance(season)
	r.active[season] = inst
	r.instances[inst.ID()] = inst
	r.mu.Unlock()

	r.logger.Info("starting ingestion run", "instance_id", inst.ID(), "season", season)

	go func() {
		err := pipeline.Run(context.Background(), inst)
		r.finish(inst, err)
	}()

	return inst.ID(), nil
}

// Instance returns a snapshot of the instance with the given ID.
func (r *Runner) Instance(id string) (workflow.Status, bool) {
	r.mu.Lock()
	inst, ok := r.instances[id]
	r.mu.Unlock()

	if !ok {
		return workflow.Status{}, false
	}
	return inst.Snapshot(), true
}

// IsRunning reports whether a run for the season is in flight.
func (r *Runner) IsRunning(season int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[season]
	return ok
}

// History returns persisted terminal runs, most recent first.
func (r *Runner) History() []workflow.Status {
	return r.store.Runs()
}

// finish releases the season slot and persists the terminal snapshot.
func (r *Runner) finish(inst *workflow.Instance, err error) {
	r.mu.Lock()
	delete(r.active, inst.Season())
	r.mu.Unlock()

	status := inst.Snapshot()
	logger := r.logger.With("instance_id", status.ID, "season", status.Season, "phase", status.Phase.String())
	switch {
	case err == nil:
		logger.Info("ingestion run completed", "records", status.RecordCount)
	case status.Phase == workflow.PhaseRejected:
		logger.Warn("ingestion run rejected", "error", err)
	default:
		logger.Error("ingestion run failed", "error", err)
	}

	if err := r.store.Save(status); err != nil {
		logger.Error("failed to save run to store", "error", err)
	}
}
