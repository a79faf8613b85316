package cascade

import (
	"context"
	"sync/atomic"

	"github.com/aretw0/cascade/internal/runtime"
	"github.com/aretw0/cascade/pkg/domain"
)

// Run is the handle of one cascade run.
//
// Updates delivers progress in loop order, then exactly one final Update,
// then is closed. Sends never block the run: when the buffer is full the
// oldest pending progress is dropped. The final update is never dropped.
type Run struct {
	id     string
	params domain.Parameters

	ctx     context.Context
	cancel  context.CancelFunc
	updates chan domain.Update
	done    chan struct{}
	latest  atomic.Pointer[domain.Progress]

	result *domain.Result
	err    error
}

func newRun(parent context.Context, id string, params domain.Parameters, buffer int) *Run {
	ctx, cancel := context.WithCancel(parent)
	return &Run{
		id:      id,
		params:  params,
		ctx:     ctx,
		cancel:  cancel,
		updates: make(chan domain.Update, buffer),
		done:    make(chan struct{}),
	}
}

// ID returns the run identifier.
func (r *Run) ID() string { return r.id }

// Parameters returns the parameters the run was started with.
func (r *Run) Parameters() domain.Parameters { return r.params.Clone() }

// Updates returns the update stream.
func (r *Run) Updates() <-chan domain.Update { return r.updates }

// Done is closed once the final update was published.
func (r *Run) Done() <-chan struct{} { return r.done }

// Cancel asks the run to stop at the next loop boundary. It is idempotent
// and a no-op on a finished run.
func (r *Run) Cancel() { r.cancel() }

// Wait blocks until the run finishes. The result is non-nil for completed,
// cancelled and failed runs alike.
func (r *Run) Wait() (*domain.Result, error) {
	<-r.done
	return r.result, r.err
}

// Progress returns the latest progress, if any loop completed yet.
func (r *Run) Progress() (domain.Progress, bool) {
	p := r.latest.Load()
	if p == nil {
		return domain.Progress{}, false
	}
	return *p, true
}

func (r *Run) finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

func (r *Run) work(rt *runtime.Engine) {
	defer r.cancel()

	result, err := rt.Run(r.ctx, r.id, r.params, func(p domain.Progress) {
		r.latest.Store(&p)
		r.publish(domain.Update{Progress: &p})
	})

	r.result, r.err = result, err
	r.publish(domain.Update{Final: true, Result: result, Err: err})
	close(r.updates)
	close(r.done)
}

// publish never blocks. The worker is the only sender, so draining one
// element always frees a slot for the next attempt.
func (r *Run) publish(u domain.Update) {
	for {
		select {
		case r.updates <- u:
			return
		default:
		}
		select {
		case <-r.updates:
		default:
		}
	}
}
