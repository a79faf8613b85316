package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/cascade/internal/runtime"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_SingleLoop(t *testing.T) {
	// 1. Setup
	engine := runtime.NewEngine(singleFusion())
	p := params(h1)
	p.MaxLoops = 1
	p.MaxNuclides = 10

	// 2. Execute
	result, err := engine.Run(context.Background(), "single", p, nil)
	require.NoError(t, err)

	// 3. Assert
	require.Len(t, result.Reactions, 1)
	assert.Equal(t, 0, result.Reactions[0].Loop)
	assert.Equal(t, fusionHH.Key(), result.Reactions[0].Reaction.Key())
	assert.Equal(t, map[domain.Nuclide]int{he2: 1}, result.Distribution)
	assert.InDelta(t, 3.0, result.TotalEnergy, 1e-12)
	assert.Equal(t, 1, result.LoopsExecuted)
	assert.Equal(t, domain.ReasonMaxLoops, result.Reason)
}

func TestEngine_Saturation(t *testing.T) {
	engine := runtime.NewEngine(singleFusion())
	p := params(h1)
	p.MaxLoops = 5
	p.MaxNuclides = 10

	result, err := engine.Run(context.Background(), "saturation", p, nil)
	require.NoError(t, err)

	assert.Len(t, result.Reactions, 1)
	assert.Equal(t, 1, result.LoopsExecuted)
	assert.Equal(t, domain.ReasonNoNewProducts, result.Reason)
	assert.Equal(t, []domain.Nuclide{h1, he2}, result.Pool)
}

func TestEngine_CapacityCheckedAfterAdmission(t *testing.T) {
	engine := runtime.NewEngine(singleFusion())
	p := params(h1)
	p.MaxNuclides = 1
	p.MaxLoops = 5

	result, err := engine.Run(context.Background(), "capacity", p, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.ReasonMaxNuclides, result.Reason)
	assert.Equal(t, map[domain.Nuclide]int{he2: 1}, result.Distribution, "products are counted even when the pool is full")
	assert.Equal(t, []domain.Nuclide{h1}, result.Pool)
	assert.Equal(t, 1, result.LoopsExecuted)
}

func TestEngine_MaxLoopsTakesPriority(t *testing.T) {
	// Loop 0 fills the pool and hits max_loops at the same time.
	engine := runtime.NewEngine(singleFusion())
	p := params(h1)
	p.MaxNuclides = 2
	p.MaxLoops = 1

	result, err := engine.Run(context.Background(), "priority", p, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonMaxLoops, result.Reason)
}

func TestEngine_PoolGrowthIsMonotonicAndCapped(t *testing.T) {
	engine := runtime.NewEngine(chain(50))
	p := params(h1, domain.N("X", 1))
	p.MaxNuclides = 7
	p.MaxLoops = 100

	var sizes []int
	result, err := engine.Run(context.Background(), "growth", p, func(pr domain.Progress) {
		sizes = append(sizes, pr.PoolSize)
	})
	require.NoError(t, err)

	require.NotEmpty(t, sizes)
	for i := 1; i < len(sizes); i++ {
		assert.GreaterOrEqual(t, sizes[i], sizes[i-1])
	}
	for _, s := range sizes {
		assert.LessOrEqual(t, s, p.MaxNuclides)
	}
	assert.Len(t, result.Pool, p.MaxNuclides)
	assert.Equal(t, domain.ReasonMaxNuclides, result.Reason)
}

func TestEngine_TerminatesOnFiniteData(t *testing.T) {
	engine := runtime.NewEngine(chain(6))
	p := params(h1, domain.N("X", 1))
	p.MaxNuclides = 1000
	p.MaxLoops = 1000

	result, err := engine.Run(context.Background(), "finite", p, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.ReasonNoNewProducts, result.Reason)
	assert.Equal(t, 6, result.LoopsExecuted)
	assert.Len(t, result.Reactions, 6)
	assert.InDelta(t, 6.0, result.TotalEnergy, 1e-12)
}

func TestEngine_ProgressOrdering(t *testing.T) {
	engine := runtime.NewEngine(chain(4))
	p := params(h1, domain.N("X", 1))

	var got []domain.Progress
	_, err := engine.Run(context.Background(), "progress", p, func(pr domain.Progress) {
		got = append(got, pr)
	})
	require.NoError(t, err)

	require.Len(t, got, 5, "four productive loops plus the saturation probe")
	for i, pr := range got {
		assert.Equal(t, i, pr.LoopIndex)
	}
	assert.Equal(t, 4, got[len(got)-1].ReactionsFound)
}

func TestEngine_IdempotentRediscovery(t *testing.T) {
	// H-1 + Li-7 -> He-4 + He-4 is found in every loop once He-4 joins the pool.
	src := singleFusion().
		AddTwoToTwo(domain.TwoToTwo{In: [2]domain.Nuclide{h1, li7}, Out: [2]domain.Nuclide{domain.N("He", 4), domain.N("He", 4)}, Energy: 17.35})
	engine := runtime.NewEngine(src)
	p := params(h1, li7)

	result, err := engine.Run(context.Background(), "dedupe", p, nil)
	require.NoError(t, err)

	assert.Len(t, result.Reactions, 2)
	assert.Equal(t, 2, result.Distribution[domain.N("He", 4)], "two outputs of one admission")
	assert.Equal(t, 1, result.Distribution[he2])
	assert.InDelta(t, 20.35, result.TotalEnergy, 1e-9)
}

func TestEngine_DuplicateRowsWithinOneLoop(t *testing.T) {
	src := singleFusion().AddFusion(fusionHH)
	engine := runtime.NewEngine(src)

	result, err := engine.Run(context.Background(), "dupes", params(h1), nil)
	require.NoError(t, err)
	assert.Len(t, result.Reactions, 1)
}

func TestEngine_InvalidParameters(t *testing.T) {
	var hooked bool
	engine := runtime.NewEngine(singleFusion(), runtime.WithLifecycleHooks(domain.Hooks{
		OnRunStart: func(context.Context, *domain.RunEvent) { hooked = true },
	}))

	p := params()
	p.MaxLoops = 0
	result, err := engine.Run(context.Background(), "invalid", p, nil)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInvalidParameters)
	var perr *domain.ParameterError
	require.ErrorAs(t, err, &perr)
	assert.Len(t, perr.Problems, 2)
	assert.False(t, hooked, "no work is attempted")
}

func TestEngine_DataSourceError(t *testing.T) {
	// Loops 0 and 1 succeed, loop 2 fails.
	src := &failingSource{Source: chain(10), okCalls: 2}
	engine := runtime.NewEngine(src)
	p := params(h1, domain.N("X", 1))

	result, err := engine.Run(context.Background(), "failing", p, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataSource)
	assert.ErrorIs(t, err, errBoom)
	var dse *domain.DataSourceError
	require.ErrorAs(t, err, &dse)
	assert.Equal(t, 2, dse.Loop)

	require.NotNil(t, result, "partial result is returned with the error")
	assert.Len(t, result.Reactions, 2)
	assert.Equal(t, 2, result.LoopsExecuted)
	assert.Equal(t, domain.ReasonFailed, result.Reason)
}

func TestEngine_CancellationPreservesPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := runtime.NewEngine(chain(20))
	p := params(h1, domain.N("X", 1))
	p.MaxLoops = 50

	const k = 3
	result, err := engine.Run(ctx, "cancel", p, func(pr domain.Progress) {
		if pr.LoopIndex == k-1 {
			cancel()
		}
	})

	require.NoError(t, err, "cancellation is not an error")
	assert.Equal(t, domain.ReasonCancelled, result.Reason)
	assert.Equal(t, k, result.LoopsExecuted)
	require.Len(t, result.Reactions, k)
	for i, ar := range result.Reactions {
		assert.Equal(t, i, ar.Loop)
	}
}

func TestEngine_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := runtime.NewEngine(singleFusion()).Run(ctx, "early", params(h1), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonCancelled, result.Reason)
	assert.Empty(t, result.Reactions)
	assert.Equal(t, []domain.Nuclide{h1}, result.Pool, "fuel is seeded before the first loop")
}

func TestEngine_Hooks(t *testing.T) {
	var starts, loops, dones int
	var done *domain.DoneEvent
	hooks := domain.Hooks{
		OnRunStart: func(_ context.Context, e *domain.RunEvent) { starts++ },
		OnLoop:     func(_ context.Context, e *domain.LoopEvent) { loops++ },
		OnRunDone: func(_ context.Context, e *domain.DoneEvent) {
			dones++
			done = e
		},
	}
	engine := runtime.NewEngine(chain(3), runtime.WithLifecycleHooks(hooks))

	_, err := engine.Run(context.Background(), "hooked", params(h1, domain.N("X", 1)), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, starts)
	assert.Equal(t, 4, loops)
	assert.Equal(t, 1, dones)
	require.NotNil(t, done)
	assert.Equal(t, "hooked", done.RunID)
	assert.Equal(t, domain.ReasonNoNewProducts, done.Reason)
	assert.Equal(t, 3, done.Reactions)
}

func TestEngine_DoesNotRetainCallerParameters(t *testing.T) {
	fuel := []domain.Nuclide{h1}
	p := params(fuel...)

	var seen domain.Parameters
	engine := runtime.NewEngine(singleFusion(), runtime.WithLifecycleHooks(domain.Hooks{
		OnRunStart: func(_ context.Context, e *domain.RunEvent) { seen = e.Params },
	}))
	_, err := engine.Run(context.Background(), "clone", p, nil)
	require.NoError(t, err)

	fuel[0] = li7
	assert.Equal(t, h1, seen.Fuel[0])
}
