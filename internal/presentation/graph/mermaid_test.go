package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/cascade/internal/presentation/graph"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/stretchr/testify/assert"
)

var (
	h1  = domain.N("H", 1)
	li7 = domain.N("Li", 7)
	he4 = domain.N("He", 4)
	be8 = domain.N("Be", 8)
)

func sample() *domain.Result {
	return &domain.Result{
		Reactions: []domain.AdmittedReaction{
			{Loop: 0, Reaction: domain.Fusion{In: [2]domain.Nuclide{h1, li7}, Out: be8, Energy: 17.25}},
			{Loop: 1, Reaction: domain.TwoToTwo{In: [2]domain.Nuclide{h1, li7}, Out: [2]domain.Nuclide{he4, he4}, Energy: 17.35}},
		},
		Pool: []domain.Nuclide{be8, h1, he4, li7},
	}
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name: "Nuclide Nodes",
			contains: []string{
				"graph LR\n",
				"H_1((\"H-1\"))",
				"Be_8((\"Be-8\"))",
			},
		},
		{
			name: "Reaction Nodes",
			contains: []string{
				"r0[\"L0: 17.25 MeV\"]",
				"r1[\"L1: 17.35 MeV\"]",
			},
		},
		{
			name: "Fusion Edges Are Solid",
			contains: []string{
				"H_1 --> r0",
				"Li_7 --> r0",
				"r0 --> Be_8",
			},
		},
		{
			name: "TwoToTwo Edges Are Dotted",
			contains: []string{
				"H_1 -.-> r1",
				"r1 -.-> He_4",
			},
		},
		{
			name:     "No Overlay",
			excludes: []string{"classDef"},
		},
		{
			name:    "Fuel Overlay",
			overlay: &graph.Overlay{Fuel: []domain.Nuclide{h1, li7, h1}},
			contains: []string{
				"classDef fuel",
				"class H_1 fuel;",
				"class Li_7 fuel;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(sample(), tt.overlay)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestGenerateMermaid_OverlayDeduplicates(t *testing.T) {
	got := graph.GenerateMermaid(sample(), &graph.Overlay{Fuel: []domain.Nuclide{h1, h1}})
	assert.Equal(t, 1, strings.Count(got, "class H_1 fuel;"))
}

func TestGenerateMermaid_Empty(t *testing.T) {
	assert.Equal(t, "graph LR\n", graph.GenerateMermaid(&domain.Result{}, nil))
}
