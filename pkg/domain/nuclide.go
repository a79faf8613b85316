package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Reserved symbols for the non-element particles that appear in the reaction tables.
const (
	SymbolElectron = "e-"
	SymbolNeutron  = "n"
	SymbolNeutrino = "nu"
)

// Nuclide identifies a specific isotope by element symbol and mass number.
// It is a comparable value type and is safe to use as a map key.
type Nuclide struct {
	Symbol string `json:"symbol" yaml:"symbol" mapstructure:"symbol"`
	A      int    `json:"a" yaml:"a" mapstructure:"a"`
}

// N is a small constructor used heavily by tests and fixtures.
func N(symbol string, a int) Nuclide {
	return Nuclide{Symbol: symbol, A: a}
}

// String renders the nuclide as "Symbol-A" (e.g. "Ni-58").
func (n Nuclide) String() string {
	return n.Symbol + "-" + strconv.Itoa(n.A)
}

// IsParticle reports whether the nuclide is one of the reserved non-element particles.
// Element properties such as melting or boiling points are undefined for them.
func (n Nuclide) IsParticle() bool {
	switch n.Symbol {
	case SymbolElectron, SymbolNeutron, SymbolNeutrino:
		return true
	}
	return false
}

// Compare orders nuclides by element symbol, then by mass number.
func (n Nuclide) Compare(other Nuclide) int {
	if c := cmp.Compare(n.Symbol, other.Symbol); c != 0 {
		return c
	}
	return cmp.Compare(n.A, other.A)
}

// SortNuclides sorts in place using Nuclide.Compare. The sort is stable.
func SortNuclides(ns []Nuclide) {
	slices.SortStableFunc(ns, Nuclide.Compare)
}

// MarshalText allows nuclides to be used as JSON object keys.
func (n Nuclide) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (n *Nuclide) UnmarshalText(text []byte) error {
	parsed, err := ParseNuclide(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// ParseNuclide accepts "Ni-58", "Ni58" and "ni-58" style identifiers.
// Particles are written with their reserved lowercase symbol and mass number
// ("n-1", "e--0"); "N-14" is nitrogen.
func ParseNuclide(raw string) (Nuclide, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Nuclide{}, fmt.Errorf("empty nuclide identifier")
	}

	// Split at the last run of digits.
	i := len(s)
	for i > 0 && unicode.IsDigit(rune(s[i-1])) {
		i--
	}
	if i == len(s) || i == 0 {
		return Nuclide{}, fmt.Errorf("invalid nuclide identifier %q", raw)
	}

	symbol := s[:i]
	if strings.HasSuffix(symbol, "-") && symbol != SymbolElectron {
		symbol = strings.TrimSuffix(symbol, "-")
	}
	if symbol == "" {
		return Nuclide{}, fmt.Errorf("invalid nuclide identifier %q", raw)
	}

	a, err := strconv.Atoi(s[i:])
	if err != nil {
		return Nuclide{}, fmt.Errorf("invalid mass number in %q: %w", raw, err)
	}

	return Nuclide{Symbol: normalizeSymbol(symbol), A: a}, nil
}

// ParseNuclides parses a comma separated list such as "H-1, Ni-58".
func ParseNuclides(raw string) ([]Nuclide, error) {
	var out []Nuclide
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		n, err := ParseNuclide(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// normalizeSymbol title-cases element symbols. Reserved particle symbols
// match exactly, so "N" stays nitrogen while "n" is the neutron.
func normalizeSymbol(symbol string) string {
	switch symbol {
	case SymbolElectron, SymbolNeutron, SymbolNeutrino:
		return symbol
	}
	r := []rune(strings.ToLower(symbol))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
