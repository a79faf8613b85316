package tests

import (
	"context"
	"testing"

	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NuclideRow is one row of the nuclide classification table.
type NuclideRow struct {
	Nuclide domain.Nuclide
	Z       int
	Nuclear domain.Statistics
	Atomic  domain.Statistics
}

// ElementRow is one row of the element properties table.
type ElementRow struct {
	Symbol   string
	Z        int
	MeltingK *float64
	BoilingK *float64
}

// Fixture is a tiny, hand-checked reaction dataset shared by every source adapter test.
type Fixture struct {
	Fusion   []domain.Fusion
	TwoToTwo []domain.TwoToTwo
	Fission  []domain.Fission
	Nuclides []NuclideRow
	Elements []ElementRow
}

func k(v float64) *float64 { return &v }

var (
	fusionHH   = domain.Fusion{In: [2]domain.Nuclide{domain.N("H", 1), domain.N("H", 1)}, Out: domain.N("He", 2), Energy: 3, Neutrino: domain.NeutrinoNone}
	fusionHLi  = domain.Fusion{In: [2]domain.Nuclide{domain.N("H", 1), domain.N("Li", 7)}, Out: domain.N("Be", 8), Energy: 17.25, Neutrino: domain.NeutrinoNone}
	fusionHeLi = domain.Fusion{In: [2]domain.Nuclide{domain.N("He", 2), domain.N("Li", 7)}, Out: domain.N("B", 9), Energy: 5, Neutrino: domain.NeutrinoLeft}
	ttHLi      = domain.TwoToTwo{In: [2]domain.Nuclide{domain.N("H", 1), domain.N("Li", 7)}, Out: [2]domain.Nuclide{domain.N("He", 4), domain.N("He", 4)}, Energy: 17.35, Neutrino: domain.NeutrinoNone}
	ttLiNi     = domain.TwoToTwo{In: [2]domain.Nuclide{domain.N("Li", 7), domain.N("Ni", 58)}, Out: [2]domain.Nuclide{domain.N("Be", 8), domain.N("Co", 57)}, Energy: 1.2, Neutrino: domain.NeutrinoRight}
	fissionBe  = domain.Fission{Parent: domain.N("Be", 8), Out: [2]domain.Nuclide{domain.N("He", 4), domain.N("He", 4)}, Energy: 0.09, Neutrino: domain.NeutrinoNone}
)

// StandardFixture returns the dataset expected by ReactionSourceContractTest.
func StandardFixture() Fixture {
	return Fixture{
		Fusion:   []domain.Fusion{fusionHH, fusionHLi, fusionHeLi},
		TwoToTwo: []domain.TwoToTwo{ttHLi, ttLiNi},
		Fission:  []domain.Fission{fissionBe},
		Nuclides: []NuclideRow{
			{Nuclide: domain.N("H", 1), Z: 1, Nuclear: domain.Fermion, Atomic: domain.Boson},
			{Nuclide: domain.N("He", 2), Z: 2, Nuclear: domain.Boson, Atomic: domain.Boson},
			{Nuclide: domain.N("He", 4), Z: 2, Nuclear: domain.Boson, Atomic: domain.Boson},
			{Nuclide: domain.N("Li", 7), Z: 3, Nuclear: domain.Fermion, Atomic: domain.Boson},
			{Nuclide: domain.N("Be", 8), Z: 4, Nuclear: domain.Boson, Atomic: domain.Boson},
			{Nuclide: domain.N("B", 9), Z: 5, Nuclear: domain.Fermion, Atomic: domain.Boson},
			{Nuclide: domain.N("Co", 57), Z: 27, Nuclear: domain.Fermion, Atomic: domain.Boson},
			{Nuclide: domain.N("Ni", 58), Z: 28, Nuclear: domain.Boson, Atomic: domain.Boson},
		},
		Elements: []ElementRow{
			{Symbol: "H", Z: 1, MeltingK: k(14.01), BoilingK: k(20.28)},
			{Symbol: "He", Z: 2, MeltingK: k(0.95), BoilingK: k(4.22)},
			{Symbol: "Li", Z: 3, MeltingK: k(453.69), BoilingK: k(1615)},
			{Symbol: "Be", Z: 4, MeltingK: k(1560), BoilingK: k(2742)},
			{Symbol: "B", Z: 5, MeltingK: k(2349), BoilingK: k(4200)},
			{Symbol: "Co", Z: 27, MeltingK: k(1768), BoilingK: k(3200)},
			{Symbol: "Ni", Z: 28, MeltingK: k(1728), BoilingK: nil},
		},
	}
}

func keys[R domain.Reaction](rs []R) []domain.ReactionKey {
	out := make([]domain.ReactionKey, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Key())
	}
	return out
}

// ReactionSourceContractTest is a reusable test suite that verifies if an adapter complies
// with ports.ReactionSource. The source must be seeded with StandardFixture.
func ReactionSourceContractTest(t *testing.T, src ports.ReactionSource) {
	t.Helper()
	ctx := context.Background()

	// 1. Both inputs must be in the pool
	t.Run("Fusion_BothInputsRequired", func(t *testing.T) {
		got, err := src.FindFusionReactions(ctx, []domain.Nuclide{domain.N("H", 1)})
		require.NoError(t, err)
		assert.ElementsMatch(t, keys([]domain.Fusion{fusionHH}), keys(got))

		got, err = src.FindFusionReactions(ctx, []domain.Nuclide{domain.N("He", 2)})
		require.NoError(t, err)
		assert.Empty(t, got, "He-2 + Li-7 must not match without Li-7 in the pool")
	})

	t.Run("Fusion_Pool", func(t *testing.T) {
		got, err := src.FindFusionReactions(ctx, []domain.Nuclide{domain.N("H", 1), domain.N("Li", 7)})
		require.NoError(t, err)
		assert.ElementsMatch(t, keys([]domain.Fusion{fusionHH, fusionHLi}), keys(got))
	})

	t.Run("Fusion_PreservesRecord", func(t *testing.T) {
		got, err := src.FindFusionReactions(ctx, []domain.Nuclide{domain.N("He", 2), domain.N("Li", 7)})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.InDelta(t, 5.0, got[0].MeV(), 1e-9)
		assert.Equal(t, domain.NeutrinoLeft, got[0].NeutrinoClass())
	})

	// 2. Mass numbers are part of identity, not just symbols
	t.Run("TwoToTwo_MatchesMassNumber", func(t *testing.T) {
		got, err := src.FindTwoToTwoReactions(ctx, []domain.Nuclide{domain.N("Li", 7), domain.N("Ni", 60)})
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = src.FindTwoToTwoReactions(ctx, []domain.Nuclide{domain.N("Li", 7), domain.N("Ni", 58), domain.N("H", 1)})
		require.NoError(t, err)
		assert.ElementsMatch(t, keys([]domain.TwoToTwo{ttHLi, ttLiNi}), keys(got))
	})

	t.Run("EmptyPool", func(t *testing.T) {
		f, err := src.FindFusionReactions(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, f)
		tt, err := src.FindTwoToTwoReactions(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, tt)
	})

	// 3. Classification
	t.Run("Classify_Known", func(t *testing.T) {
		c, err := src.Classify(ctx, domain.N("H", 1))
		require.NoError(t, err)
		assert.Equal(t, domain.Fermion, c.Nuclear)
		assert.Equal(t, domain.Boson, c.Atomic)
		require.NotNil(t, c.MeltingK)
		assert.InDelta(t, 14.01, *c.MeltingK, 1e-9)

		c, err = src.Classify(ctx, domain.N("Ni", 58))
		require.NoError(t, err)
		assert.Nil(t, c.BoilingK, "unknown boiling point must be nil")
	})

	t.Run("Classify_Particle", func(t *testing.T) {
		c, err := src.Classify(ctx, domain.N(domain.SymbolNeutron, 1))
		require.NoError(t, err)
		assert.Equal(t, domain.Fermion, c.Nuclear)
		assert.Nil(t, c.MeltingK)
		assert.Nil(t, c.BoilingK)
	})

	t.Run("Classify_UnknownFallsBackToMass", func(t *testing.T) {
		c, err := src.Classify(ctx, domain.N("He", 3))
		require.NoError(t, err)
		assert.Equal(t, domain.Fermion, c.Nuclear)
		require.NotNil(t, c.MeltingK, "element data still applies to an unlisted isotope")
	})

	// 4. Browsing, when supported
	if browser, ok := src.(ports.ReactionBrowser); ok {
		t.Run("Browser_Fission", func(t *testing.T) {
			got, err := browser.FissionOf(ctx, domain.N("Be", 8))
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, fissionBe.Out, got[0].Out)
		})

		t.Run("Browser_ReactionsWith", func(t *testing.T) {
			got, err := browser.ReactionsWith(ctx, domain.N("Li", 7))
			require.NoError(t, err)
			want := []domain.ReactionKey{fusionHLi.Key(), fusionHeLi.Key(), ttHLi.Key(), ttLiNi.Key()}
			assert.ElementsMatch(t, want, keys(got))
		})
	}
}
