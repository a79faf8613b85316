package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/cascade"
	"github.com/aretw0/cascade/internal/logging"
	"github.com/aretw0/cascade/pkg/adapters/memory"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/ports"
)

// State is the coarse lifecycle state of a run.
type State string

const (
	StateRunning State = "running"
	StateDone    State = "done"
)

// Status is a point-in-time view of a run.
type Status struct {
	ID       string           `json:"id"`
	State    State            `json:"state"`
	Progress *domain.Progress `json:"progress,omitempty"`
	Result   *domain.Result   `json:"result,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager starts runs and tracks them until their result is persisted.
type Manager struct {
	source     ports.ReactionSource
	store      ports.ResultStore
	engineOpts []cascade.Option
	logger     *slog.Logger

	mu    sync.Mutex              // Global lock for the maps
	runs  map[string]*cascade.Run // Runs not yet persisted
	locks map[string]*lockEntry   // Per-run store locks
	wg    sync.WaitGroup
}

// Option configures the Manager.
type Option func(*Manager)

// WithStore sets the result store. Defaults to an in-memory store.
func WithStore(store ports.ResultStore) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEngineOptions forwards options to the engine created for each run.
func WithEngineOptions(opts ...cascade.Option) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// NewManager creates a run manager over a shared reaction source.
func NewManager(source ports.ReactionSource, opts ...Option) (*Manager, error) {
	if source == nil {
		return nil, errors.New("reaction source is required")
	}
	m := &Manager{
		source: source,
		runs:   make(map[string]*cascade.Run),
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = memory.NewStore()
	}
	return m, nil
}

// Start launches a new run. The run outlives ctx's values but not its cancellation.
func (m *Manager) Start(ctx context.Context, params domain.Parameters) (*cascade.Run, error) {
	eng, err := cascade.New(m.source, append(m.engineOpts, cascade.WithLogger(m.logger))...)
	if err != nil {
		return nil, err
	}
	run, err := eng.Start(ctx, params)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.runs[run.ID()] = run
	m.mu.Unlock()

	m.wg.Add(1)
	go m.persist(run)
	return run, nil
}

func (m *Manager) persist(run *cascade.Run) {
	defer m.wg.Done()
	result, runErr := run.Wait()
	if runErr != nil {
		m.logger.Warn("run failed", "run_id", run.ID(), "err", runErr)
		if result != nil {
			failed := *result
			failed.Error = runErr.Error()
			result = &failed
		}
	}

	err := m.WithLock(context.Background(), run.ID(), func(ctx context.Context) error {
		m.mu.Lock()
		_, tracked := m.runs[run.ID()]
		m.mu.Unlock()
		if !tracked {
			return nil // deleted while running
		}
		return m.store.Save(ctx, run.ID(), result)
	})
	if err != nil {
		m.logger.Error("failed to persist result", "run_id", run.ID(), "err", err)
		return
	}

	m.mu.Lock()
	delete(m.runs, run.ID())
	m.mu.Unlock()
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(runID) after unlocking.
func (m *Manager) acquire(runID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[runID]
	if !exists {
		entry = &lockEntry{}
		m.locks[runID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[runID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, runID)
	}
}

// WithLock executes fn while holding the store lock of runID.
func (m *Manager) WithLock(ctx context.Context, runID string, fn func(context.Context) error) error {
	entry := m.acquire(runID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(runID)
	}()
	return fn(ctx)
}

func (m *Manager) tracked(runID string) (*cascade.Run, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	return run, ok
}

// Get returns the live handle of a run that has not been persisted yet.
func (m *Manager) Get(runID string) (*cascade.Run, bool) {
	return m.tracked(runID)
}

// Status reports a live run's progress, or a finished run's result.
func (m *Manager) Status(ctx context.Context, runID string) (*Status, error) {
	if run, ok := m.tracked(runID); ok {
		select {
		case <-run.Done():
			result, err := run.Wait()
			st := &Status{ID: runID, State: StateDone, Result: result}
			if err != nil {
				st.Error = err.Error()
			}
			return st, nil
		default:
		}
		st := &Status{ID: runID, State: StateRunning}
		if p, ok := run.Progress(); ok {
			st.Progress = &p
		}
		return st, nil
	}

	result, err := m.store.Load(ctx, runID)
	if err != nil {
		return nil, err
	}
	return &Status{ID: runID, State: StateDone, Result: result, Error: result.Error}, nil
}

// Result returns a finished run's result. Runs still in flight report domain.ErrRunActive.
func (m *Manager) Result(ctx context.Context, runID string) (*domain.Result, error) {
	st, err := m.Status(ctx, runID)
	if err != nil {
		return nil, err
	}
	if st.State != StateDone {
		return nil, domain.ErrRunActive
	}
	return st.Result, nil
}

// Cancel stops a live run. Finished runs are left untouched.
func (m *Manager) Cancel(ctx context.Context, runID string) error {
	if run, ok := m.tracked(runID); ok {
		run.Cancel()
		return nil
	}
	if _, err := m.store.Load(ctx, runID); err != nil {
		return err
	}
	return nil
}

// Delete cancels the run if needed and forgets it, result included.
func (m *Manager) Delete(ctx context.Context, runID string) error {
	run, live := m.tracked(runID)
	if live {
		run.Cancel()
	}
	return m.WithLock(ctx, runID, func(ctx context.Context) error {
		m.mu.Lock()
		delete(m.runs, runID)
		m.mu.Unlock()

		if !live {
			if _, err := m.store.Load(ctx, runID); err != nil {
				return err
			}
		}
		if err := m.store.Delete(ctx, runID); err != nil {
			return fmt.Errorf("failed to delete result: %w", err)
		}
		return nil
	})
}

// List returns live and stored run IDs, sorted.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	stored, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(stored))
	for _, id := range stored {
		ids[id] = struct{}{}
	}
	m.mu.Lock()
	for id := range m.runs {
		ids[id] = struct{}{}
	}
	m.mu.Unlock()

	return slices.Sorted(maps.Keys(ids)), nil
}

// Store returns the underlying result store.
func (m *Manager) Store() ports.ResultStore {
	return m.store
}

// Shutdown cancels every live run and waits until their results are persisted
// or ctx is done.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	for _, run := range m.runs {
		run.Cancel()
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
