package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/cascade/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunResultStoreContract runs a suite of tests to verify that a ResultStore implementation
// adheres to the defined interface contract.
func RunResultStoreContract(t *testing.T, store ResultStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	sample := func() *domain.Result {
		return &domain.Result{
			Reactions: []domain.AdmittedReaction{
				{Loop: 0, Reaction: domain.Fusion{
					In:  [2]domain.Nuclide{domain.N("H", 1), domain.N("H", 1)},
					Out: domain.N("He", 2), Energy: 3, Neutrino: domain.NeutrinoNone,
				}},
				{Loop: 1, Reaction: domain.TwoToTwo{
					In:  [2]domain.Nuclide{domain.N("H", 1), domain.N("Li", 7)},
					Out: [2]domain.Nuclide{domain.N("He", 4), domain.N("He", 4)}, Energy: 17.35, Neutrino: domain.NeutrinoLeft,
				}},
			},
			Distribution:  map[domain.Nuclide]int{domain.N("He", 2): 1, domain.N("He", 4): 2},
			Pool:          []domain.Nuclide{domain.N("H", 1), domain.N("He", 2), domain.N("He", 4), domain.N("Li", 7)},
			TotalEnergy:   20.35,
			LoopsExecuted: 2,
			Elapsed:       1500 * time.Millisecond,
			Reason:        domain.ReasonNoNewProducts,
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Save
		err := store.Save(ctx, runID, sample())
		require.NoError(t, err, "Save should not return error")

		// 2. Load
		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")

		want := sample()
		assert.Equal(t, want.Reason, loaded.Reason)
		assert.Equal(t, want.LoopsExecuted, loaded.LoopsExecuted)
		assert.InDelta(t, want.TotalEnergy, loaded.TotalEnergy, 1e-9)
		assert.Equal(t, want.Distribution, loaded.Distribution)
		assert.Equal(t, want.Pool, loaded.Pool)
		require.Len(t, loaded.Reactions, 2)
		assert.Equal(t, want.Reactions[0].Reaction.Key(), loaded.Reactions[0].Reaction.Key())
		assert.Equal(t, want.Reactions[1].Loop, loaded.Reactions[1].Loop)
		assert.Equal(t, domain.NeutrinoLeft, loaded.Reactions[1].Reaction.NeutrinoClass())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, runID, sample())
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, id1, sample())
		_ = store.Save(ctx, id2, sample())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
