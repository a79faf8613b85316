package runtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/ports"
)

// Engine runs the cascade expansion loop against a reaction source.
// A single Engine may execute many runs, sequentially or concurrently; each
// run owns its pool and aggregator.
type Engine struct {
	source ports.ReactionSource
	hooks  domain.Hooks
	logger *slog.Logger
	now    func() time.Time
}

// EngineOption configures the runtime engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.Hooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides time.Now, for deterministic elapsed times in tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a runtime engine over source.
func NewEngine(source ports.ReactionSource, opts ...EngineOption) *Engine {
	e := &Engine{
		source: source,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProgressFunc receives one Progress per completed loop, in loop order.
type ProgressFunc func(domain.Progress)

// Run executes one cascade to completion on the calling goroutine.
//
// Invalid parameters return (nil, *domain.ParameterError) before any work.
// Cancelling ctx stops the run at the next loop boundary and returns the
// result of every completed loop with ReasonCancelled and a nil error.
// A failing data source returns the partial result alongside a
// *domain.DataSourceError.
func (e *Engine) Run(ctx context.Context, runID string, params domain.Parameters, progress ProgressFunc) (*domain.Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	params = params.Clone()
	started := e.now()
	logger := e.logger.With("run_id", runID)

	r := &run{
		engine: e,
		params: params,
		pool:   NewPool(params.MaxNuclides),
		agg:    NewAggregator(),
		seen:   make(map[domain.ReactionKey]struct{}),
		filter: &admission{params: params, cls: newClassifier(e.source)},
	}

	// 1. Seeding
	for _, n := range params.Fuel {
		r.pool.Admit(n)
	}
	base := domain.RunEvent{Timestamp: started, RunID: runID, Params: params}
	if e.hooks.OnRunStart != nil {
		ev := base
		e.hooks.OnRunStart(ctx, &ev)
	}
	logger.Info("cascade started", "fuel", len(params.Fuel), "max_loops", params.MaxLoops, "max_nuclides", params.MaxNuclides)

	// 2. Iterating
	reason, loops, err := r.iterate(ctx, logger, base, progress)

	// 3. Done
	if err != nil {
		reason = domain.ReasonFailed
	}
	elapsed := e.now().Sub(started)
	result := r.agg.Freeze(r.pool, loops, elapsed, reason)

	if e.hooks.OnRunDone != nil {
		ev := domain.DoneEvent{
			RunEvent:      base,
			Reason:        reason,
			LoopsExecuted: loops,
			Reactions:     len(result.Reactions),
			Elapsed:       elapsed,
			Err:           err,
		}
		ev.Timestamp = e.now()
		e.hooks.OnRunDone(ctx, &ev)
	}

	if err != nil {
		logger.Error("cascade failed", "error", err, "loops", loops)
		return result, err
	}
	logger.Info("cascade finished", "reason", reason, "loops", loops, "reactions", len(result.Reactions), "pool", len(result.Pool))
	return result, nil
}

type run struct {
	engine *Engine
	params domain.Parameters
	pool   *Pool
	agg    *Aggregator
	seen   map[domain.ReactionKey]struct{}
	filter *admission
}

// iterate runs loops until a termination condition holds. loops is the number
// of completed loops that recorded at least one reaction.
func (r *run) iterate(ctx context.Context, logger *slog.Logger, base domain.RunEvent, progress ProgressFunc) (domain.Reason, int, error) {
	loops := 0
	for loop := 0; ; loop++ {
		if ctx.Err() != nil {
			return domain.ReasonCancelled, loops, nil
		}
		loopStarted := r.engine.now()

		found, err := r.discover(ctx, loop)
		if ctx.Err() != nil {
			return domain.ReasonCancelled, loops, nil
		}
		if err != nil {
			return "", loops, err
		}

		candidates, err := r.filter.filter(ctx, found)
		if ctx.Err() != nil {
			return domain.ReasonCancelled, loops, nil
		}
		if err != nil {
			return "", loops, &domain.DataSourceError{Loop: loop, Op: "classify", Err: err}
		}

		admitted := 0
		for _, c := range candidates {
			r.seen[c.reaction.Key()] = struct{}{}
			r.agg.Record(loop, c.reaction)
			for i, out := range c.reaction.Outputs() {
				if c.feed[i] && r.pool.Admit(out) {
					admitted++
				}
			}
		}
		if len(candidates) > 0 {
			loops = loop + 1
		}

		p := domain.Progress{LoopIndex: loop, PoolSize: r.pool.Len(), ReactionsFound: r.agg.Len()}
		if progress != nil {
			progress(p)
		}
		if hook := r.engine.hooks.OnLoop; hook != nil {
			ev := domain.LoopEvent{
				RunEvent:    base,
				Progress:    p,
				Admitted:    len(candidates),
				NewNuclides: admitted,
				Duration:    r.engine.now().Sub(loopStarted),
			}
			ev.Timestamp = r.engine.now()
			hook(ctx, &ev)
		}
		logger.Debug("loop completed", "loop", loop, "reactions", len(candidates), "new_nuclides", admitted, "pool", r.pool.Len())

		switch {
		case loop+1 >= r.params.MaxLoops:
			return domain.ReasonMaxLoops, loops, nil
		case r.pool.Len() >= r.params.MaxNuclides:
			return domain.ReasonMaxNuclides, loops, nil
		case admitted == 0:
			return domain.ReasonNoNewProducts, loops, nil
		}
	}
}

// discover queries both reaction families for the current pool and drops
// reactions admitted in earlier loops, or repeated within this one.
func (r *run) discover(ctx context.Context, loop int) ([]domain.Reaction, error) {
	members := r.pool.Members()

	fusion, err := r.engine.source.FindFusionReactions(ctx, members)
	if err != nil {
		return nil, &domain.DataSourceError{Loop: loop, Op: "find fusion reactions", Err: err}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	twoToTwo, err := r.engine.source.FindTwoToTwoReactions(ctx, members)
	if err != nil {
		return nil, &domain.DataSourceError{Loop: loop, Op: "find two-to-two reactions", Err: err}
	}

	batch := make(map[domain.ReactionKey]struct{}, len(fusion)+len(twoToTwo))
	var out []domain.Reaction
	add := func(rx domain.Reaction) {
		k := rx.Key()
		if _, ok := r.seen[k]; ok {
			return
		}
		if _, ok := batch[k]; ok {
			return
		}
		batch[k] = struct{}{}
		out = append(out, rx)
	}
	for _, f := range fusion {
		add(f)
	}
	for _, t := range twoToTwo {
		add(t)
	}
	return out, nil
}
