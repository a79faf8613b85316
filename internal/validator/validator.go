package validator

import (
	"fmt"
	"math"
	"strings"

	"github.com/aretw0/cascade/pkg/domain"
)

// energyTolerance absorbs float summation drift over long runs.
const energyTolerance = 1e-6

// ValidateResult audits a result for internal consistency: reactions in loop
// order, inputs drawn from the pool, nucleon number conserved, and totals
// matching the reaction log.
func ValidateResult(result *domain.Result) error {
	if result == nil {
		return fmt.Errorf("nil result")
	}

	pool := make(map[domain.Nuclide]bool, len(result.Pool))
	for _, n := range result.Pool {
		pool[n] = true
	}

	var errors []string
	distribution := make(map[domain.Nuclide]int)
	energy := 0.0
	lastLoop := -1

	for i, ar := range result.Reactions {
		r := ar.Reaction
		if ar.Loop < lastLoop {
			errors = append(errors, fmt.Sprintf("reaction %d (%s) admitted in loop %d after loop %d", i, r, ar.Loop, lastLoop))
		}
		lastLoop = ar.Loop

		for _, in := range r.Inputs() {
			if !pool[in] {
				errors = append(errors, fmt.Sprintf("reaction %d (%s) consumes %s which is not in the pool", i, r, in))
			}
		}

		if in, out := nucleons(r.Inputs()), nucleons(r.Outputs()); in != out {
			errors = append(errors, fmt.Sprintf("reaction %d (%s) does not conserve nucleons: %d -> %d", i, r, in, out))
		}

		energy += r.MeV()
		for _, out := range r.Outputs() {
			distribution[out]++
		}
	}

	if math.Abs(energy-result.TotalEnergy) > energyTolerance {
		errors = append(errors, fmt.Sprintf("total energy %.6f MeV does not match the reaction log (%.6f MeV)", result.TotalEnergy, energy))
	}

	for n, want := range distribution {
		if got := result.Distribution[n]; got != want {
			errors = append(errors, fmt.Sprintf("distribution counts %s %d times, the reaction log %d", n, got, want))
		}
	}
	for n, got := range result.Distribution {
		if _, ok := distribution[n]; !ok {
			errors = append(errors, fmt.Sprintf("distribution counts %s %d times but no reaction produced it", n, got))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}

	return nil
}

// nucleons sums mass numbers. Particles are written with A = 0 except the neutron.
func nucleons(ns []domain.Nuclide) int {
	total := 0
	for _, n := range ns {
		total += n.A
	}
	return total
}
