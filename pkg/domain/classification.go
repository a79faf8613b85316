package domain

import "fmt"

// Statistics is the particle-statistics category of a nuclide.
type Statistics string

const (
	Boson   Statistics = "boson"
	Fermion Statistics = "fermion"
)

// ParseStatistics reads the dataset's "b"/"f" flags as well as the long names.
func ParseStatistics(raw string) (Statistics, error) {
	switch raw {
	case "b", "B", "boson":
		return Boson, nil
	case "f", "F", "fermion":
		return Fermion, nil
	}
	return "", fmt.Errorf("unknown particle statistics %q", raw)
}

// StatisticsBasis selects which boson/fermion column drives the feedback gates.
type StatisticsBasis string

const (
	// BasisNuclear classifies by the nucleus alone (nBorF).
	BasisNuclear StatisticsBasis = "nuclear"
	// BasisAtomic classifies the neutral atom, electrons included (aBorF).
	BasisAtomic StatisticsBasis = "atomic"
)

// Classification is the per-nuclide data used by the optional admission filters.
// A nil temperature means the property is unknown or undefined.
type Classification struct {
	Nuclear  Statistics `json:"nuclear"`
	Atomic   Statistics `json:"atomic"`
	MeltingK *float64   `json:"melting_k,omitempty"`
	BoilingK *float64   `json:"boiling_k,omitempty"`
}

// Statistics returns the category for the requested basis.
func (c Classification) Statistics(basis StatisticsBasis) Statistics {
	if basis == BasisAtomic {
		return c.Atomic
	}
	return c.Nuclear
}

// Melted reports whether the host element is liquid (or hotter) at temperatureK.
func (c Classification) Melted(temperatureK float64) bool {
	return c.MeltingK != nil && *c.MeltingK <= temperatureK
}

// BoiledOff reports whether the host element is gaseous at temperatureK.
func (c Classification) BoiledOff(temperatureK float64) bool {
	return c.BoilingK != nil && *c.BoilingK <= temperatureK
}

// StatisticsFromMass derives boson/fermion from nucleon (and electron) counts.
// It is the fallback when the dataset carries no explicit flag for a nuclide.
func StatisticsFromMass(n Nuclide, z int, basis StatisticsBasis) Statistics {
	fermions := n.A
	if basis == BasisAtomic {
		fermions += z
	}
	if fermions%2 == 0 {
		return Boson
	}
	return Fermion
}
