package cascade_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/cascade"
	"github.com/aretw0/cascade/pkg/adapters/memory"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	h1 = domain.N("H", 1)
	x1 = domain.N("X", 1)
)

// chain builds H-1 + X-i -> X-(i+1), growing the pool by one nuclide per loop.
func chain(n int) *memory.Source {
	src := memory.NewSource()
	for i := 1; i <= n; i++ {
		src.AddFusion(domain.Fusion{
			In:     [2]domain.Nuclide{h1, domain.N("X", i)},
			Out:    domain.N("X", i+1),
			Energy: 1,
		})
	}
	return src
}

// blockingSource parks every fusion query until release is closed.
type blockingSource struct {
	*memory.Source
	entered chan struct{}
	release chan struct{}
}

func newBlockingSource() *blockingSource {
	return &blockingSource{
		Source:  chain(100),
		entered: make(chan struct{}, 1000),
		release: make(chan struct{}),
	}
}

func (b *blockingSource) FindFusionReactions(ctx context.Context, pool []domain.Nuclide) ([]domain.Fusion, error) {
	b.entered <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return b.Source.FindFusionReactions(context.Background(), pool)
}

func params(loops int) domain.Parameters {
	p := domain.DefaultParameters()
	p.Fuel = []domain.Nuclide{h1, x1}
	p.MaxLoops = loops
	p.MaxNuclides = 1000
	return p
}

func TestNew_RequiresSource(t *testing.T) {
	_, err := cascade.New(nil)
	assert.Error(t, err)
}

func TestEngine_UpdateStream(t *testing.T) {
	// 1. Setup
	eng, err := cascade.New(chain(5))
	require.NoError(t, err)

	// 2. Execute
	run, err := eng.Start(context.Background(), params(20))
	require.NoError(t, err)
	require.NotEmpty(t, run.ID())

	// 3. Collect
	var progress []domain.Progress
	var finals []domain.Update
	for u := range run.Updates() {
		if u.Final {
			finals = append(finals, u)
			continue
		}
		require.Empty(t, finals, "no progress after the final update")
		progress = append(progress, *u.Progress)
	}

	// 4. Assert
	require.Len(t, finals, 1)
	assert.NoError(t, finals[0].Err)
	assert.Equal(t, domain.ReasonNoNewProducts, finals[0].Result.Reason)
	assert.Equal(t, 5, finals[0].Result.LoopsExecuted)

	require.Len(t, progress, 6)
	for i, p := range progress {
		assert.Equal(t, i, p.LoopIndex)
	}

	result, err := run.Wait()
	require.NoError(t, err)
	assert.Same(t, finals[0].Result, result)

	last, ok := run.Progress()
	require.True(t, ok)
	assert.Equal(t, 5, last.LoopIndex)
}

func TestEngine_LaggingConsumerStillGetsFinal(t *testing.T) {
	eng, err := cascade.New(chain(50), cascade.WithUpdateBuffer(2))
	require.NoError(t, err)

	run, err := eng.Start(context.Background(), params(100))
	require.NoError(t, err)

	// Do not read until the run is over.
	<-run.Done()

	var got []domain.Update
	for u := range run.Updates() {
		got = append(got, u)
	}
	require.Len(t, got, 2)
	assert.False(t, got[0].Final)
	assert.Equal(t, 50, got[0].Progress.LoopIndex, "only the newest progress survives")
	assert.True(t, got[1].Final)
	assert.Equal(t, 50, got[1].Result.LoopsExecuted)
}

func TestEngine_InvalidParameters(t *testing.T) {
	eng, err := cascade.New(chain(1))
	require.NoError(t, err)

	run, err := eng.Start(context.Background(), domain.DefaultParameters())
	assert.Nil(t, run)
	assert.ErrorIs(t, err, domain.ErrInvalidParameters)

	_, active := eng.Active()
	assert.False(t, active)
}

func TestEngine_Cancel(t *testing.T) {
	src := newBlockingSource()
	eng, err := cascade.New(src)
	require.NoError(t, err)

	run, err := eng.Start(context.Background(), params(100))
	require.NoError(t, err)

	<-src.entered
	run.Cancel()
	run.Cancel()

	result, err := run.Wait()
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonCancelled, result.Reason)
	assert.Empty(t, result.Reactions, "the interrupted loop contributes nothing")

	run.Cancel() // no-op after completion
}

func TestEngine_ParentContextCancels(t *testing.T) {
	src := newBlockingSource()
	eng, err := cascade.New(src)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	run, err := eng.Start(ctx, params(100))
	require.NoError(t, err)

	<-src.entered
	cancel()

	result, err := run.Wait()
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonCancelled, result.Reason)
}

func TestEngine_RejectIfActive(t *testing.T) {
	src := newBlockingSource()
	eng, err := cascade.New(src)
	require.NoError(t, err)

	first, err := eng.Start(context.Background(), params(100))
	require.NoError(t, err)
	<-src.entered

	_, err = eng.Start(context.Background(), params(100))
	assert.ErrorIs(t, err, domain.ErrRunActive)

	active, ok := eng.Active()
	require.True(t, ok)
	assert.Equal(t, first.ID(), active.ID())

	first.Cancel()
	_, _ = first.Wait()

	// A finished run no longer blocks Start.
	close(src.release)
	second, err := eng.Start(context.Background(), params(3))
	require.NoError(t, err)
	result, err := second.Wait()
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonMaxLoops, result.Reason)
}

func TestEngine_CancelPrevious(t *testing.T) {
	src := newBlockingSource()
	eng, err := cascade.New(src, cascade.WithStartPolicy(cascade.CancelPrevious))
	require.NoError(t, err)

	first, err := eng.Start(context.Background(), params(100))
	require.NoError(t, err)
	<-src.entered

	second, err := eng.Start(context.Background(), params(100))
	require.NoError(t, err)

	select {
	case <-first.Done():
	default:
		t.Fatal("previous run must be finished before the new one starts")
	}
	prev, _ := first.Wait()
	assert.Equal(t, domain.ReasonCancelled, prev.Reason)

	<-src.entered
	second.Cancel()
	_, err = second.Wait()
	require.NoError(t, err)
}

func TestEngine_Hooks(t *testing.T) {
	var loops int
	done := make(chan domain.Reason, 1)
	eng, err := cascade.New(chain(2),
		cascade.WithLifecycleHooks(domain.Hooks{
			OnLoop: func(context.Context, *domain.LoopEvent) { loops++ },
		}),
		cascade.WithLifecycleHooks(domain.Hooks{
			OnRunDone: func(_ context.Context, e *domain.DoneEvent) { done <- e.Reason },
		}),
	)
	require.NoError(t, err)

	_, err = eng.Simulate(context.Background(), params(10))
	require.NoError(t, err)

	select {
	case reason := <-done:
		assert.Equal(t, domain.ReasonNoNewProducts, reason)
	case <-time.After(time.Second):
		t.Fatal("OnRunDone not called")
	}
	assert.Equal(t, 3, loops)
}
