package memory_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/cascade/pkg/adapters/memory"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() *memory.Source {
	fx := tests.StandardFixture()
	src := memory.NewSource().
		AddFusion(fx.Fusion...).
		AddTwoToTwo(fx.TwoToTwo...).
		AddFission(fx.Fission...)
	for _, n := range fx.Nuclides {
		src.SetNuclide(n.Nuclide, n.Z, n.Nuclear, n.Atomic)
	}
	for _, e := range fx.Elements {
		src.SetElement(e.Symbol, e.Z, e.MeltingK, e.BoilingK)
	}
	return src
}

func TestMemorySource_Contract(t *testing.T) {
	tests.ReactionSourceContractTest(t, seeded())
}

func TestMemorySource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := seeded().FindFusionReactions(ctx, []domain.Nuclide{domain.N("H", 1)})
	assert.ErrorIs(t, err, context.Canceled)
}

const datasetYAML = `
fusion:
  - in: [H-1, H-1]
    out: [He-2]
    mev: 3
    neutrino: none
  - in: [H-1, Li-7]
    out: [Be-8]
    mev: 17.25
two_to_two:
  - in: [H-1, Li-7]
    out: [He-4, He-4]
    mev: 17.35
    neutrino: left
fission:
  - parent: Be-8
    out: [He-4, He-4]
    mev: 0.09
nuclides:
  - id: H-1
    z: 1
    nuclear: f
    atomic: b
elements:
  - symbol: H
    z: 1
    melting_k: 14.01
    boiling_k: 20.28
  - symbol: Li
    z: 3
    melting_k: 453.69
`

func TestLoadDataset(t *testing.T) {
	src, err := memory.LoadDataset(strings.NewReader(datasetYAML))
	require.NoError(t, err)
	ctx := context.Background()

	fusion, err := src.FindFusionReactions(ctx, []domain.Nuclide{domain.N("H", 1), domain.N("Li", 7)})
	require.NoError(t, err)
	require.Len(t, fusion, 2)
	assert.Equal(t, domain.NeutrinoNone, fusion[1].NeutrinoClass(), "missing neutrino column defaults to none")

	tt, err := src.FindTwoToTwoReactions(ctx, []domain.Nuclide{domain.N("H", 1), domain.N("Li", 7)})
	require.NoError(t, err)
	require.Len(t, tt, 1)
	assert.Equal(t, domain.NeutrinoLeft, tt[0].Neutrino)

	c, err := src.Classify(ctx, domain.N("Li", 7))
	require.NoError(t, err)
	require.NotNil(t, c.MeltingK)
	assert.Nil(t, c.BoilingK)

	fission, err := src.FissionOf(ctx, domain.N("Be", 8))
	require.NoError(t, err)
	assert.Len(t, fission, 1)
}

func TestLoadDataset_Errors(t *testing.T) {
	cases := map[string]string{
		"bad nuclide":     "fusion:\n  - in: [H-1, ZZ]\n    out: [He-2]\n",
		"wrong arity":     "two_to_two:\n  - in: [H-1, H-1]\n    out: [He-2]\n",
		"bad statistics":  "nuclides:\n  - id: H-1\n    nuclear: x\n    atomic: b\n",
		"bad neutrino":    "fusion:\n  - in: [H-1, H-1]\n    out: [He-2]\n    neutrino: sideways\n",
		"malformed yaml":  "fusion: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := memory.LoadDataset(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}
