package runtime

import (
	"slices"

	"github.com/aretw0/cascade/pkg/domain"
)

// Pool is the set of nuclides available as reactants. It only grows, and
// never beyond its capacity. A Pool is owned by a single run.
type Pool struct {
	capacity int
	set      map[domain.Nuclide]struct{}
	order    []domain.Nuclide
}

// NewPool creates an empty pool holding at most capacity nuclides.
func NewPool(capacity int) *Pool {
	return &Pool{
		capacity: capacity,
		set:      make(map[domain.Nuclide]struct{}),
	}
}

// Contains reports pool membership.
func (p *Pool) Contains(n domain.Nuclide) bool {
	_, ok := p.set[n]
	return ok
}

// Admit inserts n and reports whether the pool grew. Members and a full pool
// refuse silently.
func (p *Pool) Admit(n domain.Nuclide) bool {
	if p.Contains(n) || p.Full() {
		return false
	}
	p.set[n] = struct{}{}
	p.order = append(p.order, n)
	return true
}

// Len returns the number of members.
func (p *Pool) Len() int {
	return len(p.order)
}

// Full reports whether the pool reached its capacity.
func (p *Pool) Full() bool {
	return len(p.order) >= p.capacity
}

// Members returns the members in admission order, for batch queries.
func (p *Pool) Members() []domain.Nuclide {
	return slices.Clone(p.order)
}

// Snapshot returns the members sorted by symbol, then mass number.
func (p *Pool) Snapshot() []domain.Nuclide {
	out := slices.Clone(p.order)
	domain.SortNuclides(out)
	return out
}
