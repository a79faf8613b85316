package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/cascade/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNuclide(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.Nuclide
	}{
		{"Ni-58", domain.N("Ni", 58)},
		{"Ni58", domain.N("Ni", 58)},
		{" ni-58 ", domain.N("Ni", 58)},
		{"H-1", domain.N("H", 1)},
		{"D-2", domain.N("D", 2)},
		{"n-1", domain.N(domain.SymbolNeutron, 1)},
		{"e--0", domain.N(domain.SymbolElectron, 0)},
		{"e-0", domain.N(domain.SymbolElectron, 0)},
		{"nu-0", domain.N(domain.SymbolNeutrino, 0)},
		{"N-14", domain.N("N", 14)},
		{"N14", domain.N("N", 14)},
		{"NI-58", domain.N("Ni", 58)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := domain.ParseNuclide(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "Ni", "58", "-58", "58Ni"} {
		_, err := domain.ParseNuclide(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestNuclide_NitrogenIsNotNeutron(t *testing.T) {
	// 1. Parse
	n14, err := domain.ParseNuclide("N-14")
	require.NoError(t, err)
	assert.Equal(t, domain.N("N", 14), n14)
	assert.False(t, n14.IsParticle())

	// 2. JSON round trip, as value and as map key
	type payload struct {
		Pool  []domain.Nuclide       `json:"pool"`
		Count map[domain.Nuclide]int `json:"count"`
	}
	in := payload{
		Pool:  []domain.Nuclide{domain.N("N", 14), domain.N(domain.SymbolNeutron, 1)},
		Count: map[domain.Nuclide]int{domain.N("N", 14): 2, domain.N(domain.SymbolNeutron, 1): 1},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out payload
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestParseNuclides(t *testing.T) {
	got, err := domain.ParseNuclides("H-1, Li-7,,Ni-58")
	require.NoError(t, err)
	assert.Equal(t, []domain.Nuclide{domain.N("H", 1), domain.N("Li", 7), domain.N("Ni", 58)}, got)

	_, err = domain.ParseNuclides("H-1,bogus")
	assert.Error(t, err)
}

func TestNuclide_Ordering(t *testing.T) {
	ns := []domain.Nuclide{domain.N("Ni", 60), domain.N("H", 2), domain.N("Ni", 58), domain.N("H", 1)}
	domain.SortNuclides(ns)
	assert.Equal(t, []domain.Nuclide{domain.N("H", 1), domain.N("H", 2), domain.N("Ni", 58), domain.N("Ni", 60)}, ns)
}

func TestNuclide_IsParticle(t *testing.T) {
	assert.True(t, domain.N(domain.SymbolNeutron, 1).IsParticle())
	assert.True(t, domain.N(domain.SymbolNeutrino, 0).IsParticle())
	assert.False(t, domain.N("Ni", 58).IsParticle())
}
