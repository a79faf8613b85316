package domain

import (
	"fmt"
	"math"
	"strings"
)

// Defaults applied by DefaultParameters. Nothing else in the module holds a default.
const (
	DefaultTemperatureK = 2400.0
	DefaultMaxNuclides  = 100
	DefaultMaxLoops     = 10
)

// dimerSymbols are the elements that form homonuclear diatomic molecules.
// D and T are stored under their own symbols in the dataset and pair like H.
var dimerSymbols = map[string]bool{
	"H": true, "D": true, "T": true,
	"N": true, "O": true, "F": true,
	"Cl": true, "Br": true, "I": true,
}

// IsDimerElement reports whether symbol belongs to a diatomic-forming element.
func IsDimerElement(symbol string) bool {
	return dimerSymbols[symbol]
}

// Parameters configures a single cascade run.
type Parameters struct {
	Fuel []Nuclide `json:"fuel" yaml:"fuel" mapstructure:"fuel"`

	// TemperatureK only gates the melting/boiling exclusions.
	TemperatureK float64 `json:"temperature_k" yaml:"temperature_k" mapstructure:"temperature_k"`

	MinFusionMeV   float64 `json:"min_fusion_mev" yaml:"min_fusion_mev" mapstructure:"min_fusion_mev"`
	MinTwoToTwoMeV float64 `json:"min_two_to_two_mev" yaml:"min_two_to_two_mev" mapstructure:"min_two_to_two_mev"`

	MaxNuclides int `json:"max_nuclides" yaml:"max_nuclides" mapstructure:"max_nuclides"`
	MaxLoops    int `json:"max_loops" yaml:"max_loops" mapstructure:"max_loops"`

	FeedbackBosons   bool `json:"feedback_bosons" yaml:"feedback_bosons" mapstructure:"feedback_bosons"`
	FeedbackFermions bool `json:"feedback_fermions" yaml:"feedback_fermions" mapstructure:"feedback_fermions"`

	AllowDimers      bool `json:"allow_dimers" yaml:"allow_dimers" mapstructure:"allow_dimers"`
	ExcludeMelted    bool `json:"exclude_melted" yaml:"exclude_melted" mapstructure:"exclude_melted"`
	ExcludeBoiledOff bool `json:"exclude_boiled_off" yaml:"exclude_boiled_off" mapstructure:"exclude_boiled_off"`

	StatisticsBasis StatisticsBasis `json:"statistics_basis" yaml:"statistics_basis" mapstructure:"statistics_basis"`
}

// DefaultParameters returns the parameter set used when the caller specifies nothing but fuel.
func DefaultParameters() Parameters {
	return Parameters{
		TemperatureK:     DefaultTemperatureK,
		MaxNuclides:      DefaultMaxNuclides,
		MaxLoops:         DefaultMaxLoops,
		FeedbackBosons:   true,
		FeedbackFermions: true,
		AllowDimers:      true,
		StatisticsBasis:  BasisNuclear,
	}
}

// Validate checks the parameters before any work is done.
// All violations are collected into a single *ParameterError.
func (p Parameters) Validate() error {
	var problems []string
	if len(p.Fuel) == 0 {
		problems = append(problems, "fuel list is empty")
	}
	for _, n := range p.Fuel {
		if n.Symbol == "" || n.A < 0 {
			problems = append(problems, fmt.Sprintf("invalid fuel nuclide %q", n.String()))
		}
	}
	if p.MaxNuclides <= 0 {
		problems = append(problems, fmt.Sprintf("max_nuclides must be positive (got %d)", p.MaxNuclides))
	}
	if p.MaxLoops <= 0 {
		problems = append(problems, fmt.Sprintf("max_loops must be positive (got %d)", p.MaxLoops))
	}
	if math.IsNaN(p.TemperatureK) || p.TemperatureK < 0 {
		problems = append(problems, fmt.Sprintf("temperature_k must be a non-negative number (got %v)", p.TemperatureK))
	}
	if math.IsNaN(p.MinFusionMeV) || math.IsNaN(p.MinTwoToTwoMeV) {
		problems = append(problems, "energy thresholds must be numbers")
	}
	switch p.StatisticsBasis {
	case "", BasisNuclear, BasisAtomic:
	default:
		problems = append(problems, fmt.Sprintf("unknown statistics_basis %q", p.StatisticsBasis))
	}

	if len(problems) > 0 {
		return &ParameterError{Problems: problems}
	}
	return nil
}

// Basis returns the statistics basis, defaulting to nuclear.
func (p Parameters) Basis() StatisticsBasis {
	if p.StatisticsBasis == "" {
		return BasisNuclear
	}
	return p.StatisticsBasis
}

// Clone returns a copy that shares no memory with p.
func (p Parameters) Clone() Parameters {
	out := p
	out.Fuel = append([]Nuclide(nil), p.Fuel...)
	return out
}

// String is a compact single-line summary used in logs.
func (p Parameters) String() string {
	fuel := make([]string, len(p.Fuel))
	for i, n := range p.Fuel {
		fuel[i] = n.String()
	}
	return fmt.Sprintf("fuel=[%s] T=%gK loops=%d nuclides=%d", strings.Join(fuel, ","), p.TemperatureK, p.MaxLoops, p.MaxNuclides)
}
