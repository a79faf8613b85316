package domain_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/cascade/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_TopProducts(t *testing.T) {
	r := &domain.Result{Distribution: map[domain.Nuclide]int{
		domain.N("He", 4): 3,
		domain.N("Be", 8): 1,
		domain.N("B", 9):  3,
		domain.N("Li", 6): 2,
	}}

	top := r.TopProducts(3)
	require.Len(t, top, 3)
	assert.Equal(t, domain.N("B", 9), top[0].Nuclide, "ties are broken by nuclide order")
	assert.Equal(t, domain.N("He", 4), top[1].Nuclide)
	assert.Equal(t, 2, top[2].Count)

	assert.Len(t, r.TopProducts(0), 4)
}

func TestResult_JSON(t *testing.T) {
	h1, li7, he4 := domain.N("H", 1), domain.N("Li", 7), domain.N("He", 4)
	in := &domain.Result{
		Reactions: []domain.AdmittedReaction{
			{Loop: 2, Reaction: domain.TwoToTwo{In: [2]domain.Nuclide{h1, li7}, Out: [2]domain.Nuclide{he4, he4}, Energy: 17.35, Neutrino: domain.NeutrinoRight}},
		},
		Distribution:  map[domain.Nuclide]int{he4: 2},
		Pool:          []domain.Nuclide{h1, he4, li7},
		TotalEnergy:   17.35,
		LoopsExecuted: 3,
		Elapsed:       time.Second,
		Reason:        domain.ReasonMaxLoops,
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"distribution":{"He-4":2}`)
	assert.Contains(t, string(data), `"type":"two_to_two"`)

	var out domain.Result
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.Reactions[0].Reaction, out.Reactions[0].Reaction)
	assert.Equal(t, in.Distribution, out.Distribution)
	assert.Equal(t, in.Pool, out.Pool)
}

func TestReactionRecord_RejectsFission(t *testing.T) {
	rec := domain.ReactionRecord{
		Family:  domain.FamilyFission,
		Inputs:  []domain.Nuclide{domain.N("Be", 8), domain.N("Be", 8)},
		Outputs: []domain.Nuclide{domain.N("He", 4), domain.N("He", 4)},
	}
	_, err := rec.Reaction()
	assert.Error(t, err)

	rec.Family = domain.FamilyFusion
	_, err = rec.Reaction()
	assert.Error(t, err, "fusion has exactly one output")
}

func TestHooks_Merge(t *testing.T) {
	var calls []string
	a := domain.Hooks{OnRunStart: func(_ context.Context, _ *domain.RunEvent) { calls = append(calls, "a") }}
	b := domain.Hooks{OnRunStart: func(_ context.Context, _ *domain.RunEvent) { calls = append(calls, "b") }}

	merged := a.Merge(b)
	merged.OnRunStart(context.Background(), &domain.RunEvent{})
	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Nil(t, merged.OnLoop)
}
