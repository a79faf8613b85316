package domain

import (
	"slices"
	"time"
)

// Reason records why a cascade run stopped.
type Reason string

const (
	ReasonMaxLoops      Reason = "max_loops"
	ReasonMaxNuclides   Reason = "max_nuclides"
	ReasonNoNewProducts Reason = "no_new_products"
	ReasonCancelled     Reason = "cancelled"
	// ReasonFailed marks the partial result returned alongside a data source error.
	ReasonFailed Reason = "failed"
)

// AdmittedReaction is a reaction tagged with the loop index it was admitted in.
type AdmittedReaction struct {
	Loop     int `json:"loop"`
	Reaction Reaction
}

// ProductCount pairs a nuclide with its number of occurrences as a product.
type ProductCount struct {
	Nuclide Nuclide `json:"nuclide"`
	Count   int     `json:"count"`
}

// Result is the immutable outcome of a cascade run.
// Partial results (cancelled or failed runs) use the same shape.
type Result struct {
	Reactions     []AdmittedReaction `json:"reactions"`
	Distribution  map[Nuclide]int    `json:"distribution"`
	Pool          []Nuclide          `json:"pool"`
	TotalEnergy   float64            `json:"total_energy_mev"`
	LoopsExecuted int                `json:"loops_executed"`
	Elapsed       time.Duration      `json:"elapsed"`
	Reason        Reason             `json:"reason"`
	// Error is the message of the error a failed run stopped on, kept with the stored result.
	Error string `json:"error,omitempty"`
}

// TopProducts returns the product distribution sorted by descending count,
// ties broken by nuclide order. n <= 0 returns every entry.
func (r *Result) TopProducts(n int) []ProductCount {
	out := make([]ProductCount, 0, len(r.Distribution))
	for nuc, c := range r.Distribution {
		out = append(out, ProductCount{Nuclide: nuc, Count: c})
	}
	slices.SortFunc(out, func(a, b ProductCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return a.Nuclide.Compare(b.Nuclide)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ReactionsInLoop returns the reactions admitted during the given loop index.
func (r *Result) ReactionsInLoop(loop int) []Reaction {
	var out []Reaction
	for _, ar := range r.Reactions {
		if ar.Loop == loop {
			out = append(out, ar.Reaction)
		}
	}
	return out
}
