package runtime

import (
	"maps"
	"time"

	"github.com/aretw0/cascade/pkg/domain"
)

// Aggregator folds admitted reactions into the running totals of a result.
type Aggregator struct {
	reactions    []domain.AdmittedReaction
	distribution map[domain.Nuclide]int
	energy       float64
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{distribution: make(map[domain.Nuclide]int)}
}

// Record appends r to the reaction sequence and counts every output as a
// product, whether or not it was admitted to the pool.
func (a *Aggregator) Record(loop int, r domain.Reaction) {
	a.reactions = append(a.reactions, domain.AdmittedReaction{Loop: loop, Reaction: r})
	a.energy += r.MeV()
	for _, out := range r.Outputs() {
		a.distribution[out]++
	}
}

// Len returns the number of reactions recorded so far.
func (a *Aggregator) Len() int {
	return len(a.reactions)
}

// TotalEnergy returns the energy sum in admission order.
func (a *Aggregator) TotalEnergy() float64 {
	return a.energy
}

// Freeze builds a Result that shares no memory with the aggregator or the pool.
func (a *Aggregator) Freeze(pool *Pool, loops int, elapsed time.Duration, reason domain.Reason) *domain.Result {
	reactions := make([]domain.AdmittedReaction, len(a.reactions))
	copy(reactions, a.reactions)
	return &domain.Result{
		Reactions:     reactions,
		Distribution:  maps.Clone(a.distribution),
		Pool:          pool.Snapshot(),
		TotalEnergy:   a.energy,
		LoopsExecuted: loops,
		Elapsed:       elapsed,
		Reason:        reason,
	}
}
