package domain

import (
	"context"
	"time"
)

// Progress is emitted after every completed loop.
type Progress struct {
	LoopIndex      int `json:"loop_index"`
	PoolSize       int `json:"pool_size"`
	ReactionsFound int `json:"reactions_found"`
}

// Update is a message on a run's update stream. Exactly one Update per run has
// Final set, and it is always the last one.
type Update struct {
	Progress *Progress `json:"progress,omitempty"`

	Final  bool    `json:"final"`
	Result *Result `json:"result,omitempty"`
	// Err is nil for completed and cancelled runs.
	Err error `json:"-"`
}

// RunEvent describes a run as seen by lifecycle hooks.
type RunEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	RunID     string     `json:"run_id,omitempty"`
	Params    Parameters `json:"params"`
}

// LoopEvent describes one completed loop.
type LoopEvent struct {
	RunEvent
	Progress
	Admitted    int           `json:"admitted"`
	NewNuclides int           `json:"new_nuclides"`
	Duration    time.Duration `json:"duration"`
}

// DoneEvent describes the end of a run.
type DoneEvent struct {
	RunEvent
	Reason        Reason        `json:"reason"`
	LoopsExecuted int           `json:"loops_executed"`
	Reactions     int           `json:"reactions"`
	Elapsed       time.Duration `json:"elapsed"`
	Err           error         `json:"-"`
}

// Hooks defines callbacks for engine observability. Nil fields are skipped.
// Hooks run on the engine's worker goroutine and must not block.
type Hooks struct {
	OnRunStart func(context.Context, *RunEvent)
	OnLoop     func(context.Context, *LoopEvent)
	OnRunDone  func(context.Context, *DoneEvent)
}

// Merge returns hooks that call h first and then other.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		OnRunStart: chain(h.OnRunStart, other.OnRunStart),
		OnLoop:     chain(h.OnLoop, other.OnLoop),
		OnRunDone:  chain(h.OnRunDone, other.OnRunDone),
	}
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
