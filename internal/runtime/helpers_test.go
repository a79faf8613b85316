package runtime_test

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/cascade/pkg/adapters/memory"
	"github.com/aretw0/cascade/pkg/domain"
)

var (
	h1  = domain.N("H", 1)
	he2 = domain.N("He", 2)
	li7 = domain.N("Li", 7)

	fusionHH = domain.Fusion{In: [2]domain.Nuclide{h1, h1}, Out: he2, Energy: 3, Neutrino: domain.NeutrinoNone}
)

// singleFusion holds exactly H-1 + H-1 -> He-2 (3 MeV).
func singleFusion() *memory.Source {
	return memory.NewSource().AddFusion(fusionHH)
}

// chain builds H-1 + X-i -> X-(i+1) for i in [1, n]; fuel H-1, X-1 grows it by
// one nuclide per loop.
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

func params(fuel ...domain.Nuclide) domain.Parameters {
	p := domain.DefaultParameters()
	p.Fuel = fuel
	return p
}

var errBoom = errors.New("disk on fire")

// failingSource fails FindTwoToTwoReactions once it was called more than okCalls times.
type failingSource struct {
	*memory.Source
	okCalls int
	calls   int
}

func (f *failingSource) FindTwoToTwoReactions(ctx context.Context, pool []domain.Nuclide) ([]domain.TwoToTwo, error) {
	f.calls++
	if f.calls > f.okCalls {
		return nil, errBoom
	}
	return f.Source.FindTwoToTwoReactions(ctx, pool)
}

// countingSource counts Classify calls per nuclide.
type countingSource struct {
	*memory.Source
	mu    sync.Mutex
	calls map[domain.Nuclide]int
}

func newCountingSource(src *memory.Source) *countingSource {
	return &countingSource{Source: src, calls: make(map[domain.Nuclide]int)}
}

func (c *countingSource) Classify(ctx context.Context, n domain.Nuclide) (domain.Classification, error) {
	c.mu.Lock()
	c.calls[n]++
	c.mu.Unlock()
	return c.Source.Classify(ctx, n)
}
