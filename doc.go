/*
Package cascade simulates chains of low-energy nuclear reactions over a fixed reaction dataset.

Starting from a set of fuel nuclides, the engine repeatedly asks a reaction source for every
fusion and two-to-two reaction whose inputs are all present in the current pool, filters them
(energy thresholds, dimer suppression, phase exclusion, feedback gates), records the survivors
and feeds their products back into the pool. It stops on a loop cap, a pool cap, saturation or
cancellation.

# Concept

The dataset is reached through ports.ReactionSource, so the same engine runs against the SQLite
dataset (pkg/adapters/sqlite), an in-memory fixture (pkg/adapters/memory) or any other backend.
Runs execute on their own goroutine and talk to the caller through a Run handle: a channel of
progress updates terminated by exactly one final update, and an idempotent Cancel.

# Usage

	src, err := sqlite.Open(ctx, "parkhomov.db")
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	eng, err := cascade.New(src)
	if err != nil {
		log.Fatal(err)
	}

	params := domain.DefaultParameters()
	params.Fuel = []domain.Nuclide{domain.N("H", 1), domain.N("Li", 7), domain.N("Ni", 58)}

	run, err := eng.Start(ctx, params)
	if err != nil {
		log.Fatal(err)
	}
	for u := range run.Updates() {
		if u.Progress != nil {
			fmt.Printf("loop %d: %d nuclides\n", u.Progress.LoopIndex, u.Progress.PoolSize)
		}
		if u.Final {
			fmt.Println(u.Result.Reason, u.Result.TotalEnergy)
		}
	}

# Architecture

  - pkg/domain: nuclides, reactions, parameters, results. No I/O.
  - pkg/ports: the boundaries (ReactionSource, ResultStore) and their contract tests.
  - internal/runtime: the synchronous expansion loop.
  - pkg/session: many concurrent runs keyed by ID, with result persistence.
  - pkg/adapters: sqlite, memory, redis, http and mcp.
*/
package cascade
