package cascade

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/cascade/internal/runtime"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/ports"
	"github.com/google/uuid"
)

// StartPolicy decides what Start does while a previous run is still in flight.
type StartPolicy int

const (
	// RejectIfActive fails Start with domain.ErrRunActive.
	RejectIfActive StartPolicy = iota
	// CancelPrevious cancels the active run, waits for it to finish, then starts.
	CancelPrevious
)

// DefaultUpdateBuffer is the capacity of a run's update channel.
const DefaultUpdateBuffer = 64

// Engine is the high-level entry point for the cascade library.
// It allows one active run at a time; use pkg/session for many concurrent runs.
type Engine struct {
	runtime *runtime.Engine
	hooks   domain.Hooks
	logger  *slog.Logger
	policy  StartPolicy
	buffer  int

	mu     sync.Mutex
	active *Run
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks. Multiple calls are merged.
func WithLifecycleHooks(hooks domain.Hooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStartPolicy selects the behaviour of Start while a run is active (default RejectIfActive).
func WithStartPolicy(policy StartPolicy) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}

// WithUpdateBuffer sets the capacity of each run's update channel. Values below 1 are raised to 1.
func WithUpdateBuffer(n int) Option {
	return func(e *Engine) {
		e.buffer = max(n, 1)
	}
}

// New initializes an Engine over a read-only reaction source.
func New(source ports.ReactionSource, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, errors.New("reaction source is required")
	}

	eng := &Engine{buffer: DefaultUpdateBuffer}
	for _, opt := range opts {
		opt(eng)
	}

	// Ensure logger is initialized so the runtime never logs to a nil handler
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	eng.runtime = runtime.NewEngine(source,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)
	return eng, nil
}

// Start validates params and launches a run on its own goroutine.
// Invalid parameters are reported here and no run is created.
// Cancelling ctx cancels the run.
func (e *Engine) Start(ctx context.Context, params domain.Parameters) (*Run, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if prev := e.active; prev != nil && !prev.finished() {
		if e.policy == RejectIfActive {
			return nil, domain.ErrRunActive
		}
		e.logger.Info("cancelling previous run", "run_id", prev.ID())
		prev.Cancel()
		<-prev.Done()
	}

	run := newRun(ctx, uuid.NewString(), params.Clone(), e.buffer)
	e.active = run
	go run.work(e.runtime)
	return run, nil
}

// Simulate starts a run and blocks until it finishes, discarding progress.
func (e *Engine) Simulate(ctx context.Context, params domain.Parameters) (*domain.Result, error) {
	run, err := e.Start(ctx, params)
	if err != nil {
		return nil, err
	}
	return run.Wait()
}

// Active returns the run currently in flight, if any.
func (e *Engine) Active() (*Run, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil || e.active.finished() {
		return nil, false
	}
	return e.active, true
}
