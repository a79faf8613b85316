package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/aretw0/cascade/pkg/adapters/sqlite"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// schema mirrors the columns of the published dataset that the adapter reads.
const schema = `
CREATE TABLE FusionAll (
	id INTEGER PRIMARY KEY, neutrino TEXT, id_sub INTEGER,
	E1 TEXT, A1 INTEGER, nBorF1 TEXT, Z1 INTEGER, aBorF1 TEXT,
	E2 TEXT, A2 INTEGER, nBorF2 TEXT, Z2 INTEGER, aBorF2 TEXT,
	E TEXT, A INTEGER, nBorF TEXT, Z INTEGER, aBorF TEXT,
	MeV REAL
);
CREATE TABLE TwoToTwoAll (
	id INTEGER PRIMARY KEY, neutrino TEXT, id_sub INTEGER,
	E1 TEXT, A1 INTEGER, E2 TEXT, A2 INTEGER,
	E3 TEXT, A3 INTEGER, E4 TEXT, A4 INTEGER,
	MeV REAL
);
CREATE TABLE FissionAll (
	id INTEGER PRIMARY KEY, neutrino TEXT,
	E TEXT, A INTEGER, E1 TEXT, A1 INTEGER, E2 TEXT, A2 INTEGER,
	MeV REAL
);
CREATE TABLE NuclidesPlus (id INTEGER PRIMARY KEY, A INTEGER, Z INTEGER, nBorF TEXT, aBorF TEXT, E TEXT);
CREATE TABLE ElementPropertiesPlus (Z INTEGER PRIMARY KEY, E TEXT, EName TEXT, Melting REAL, Boiling REAL);
`

func flag(s domain.Statistics) string {
	if s == domain.Boson {
		return "b"
	}
	return "f"
}

func seedDatabase(t *testing.T, fx tests.Fixture) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reactions.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(schema)
	require.NoError(t, err)

	for _, r := range fx.Fusion {
		_, err = db.Exec(`INSERT INTO FusionAll (neutrino, E1, A1, E2, A2, E, A, MeV) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			string(r.Neutrino), r.In[0].Symbol, r.In[0].A, r.In[1].Symbol, r.In[1].A, r.Out.Symbol, r.Out.A, r.Energy)
		require.NoError(t, err)
	}
	for _, r := range fx.TwoToTwo {
		_, err = db.Exec(`INSERT INTO TwoToTwoAll (neutrino, E1, A1, E2, A2, E3, A3, E4, A4, MeV) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(r.Neutrino), r.In[0].Symbol, r.In[0].A, r.In[1].Symbol, r.In[1].A,
			r.Out[0].Symbol, r.Out[0].A, r.Out[1].Symbol, r.Out[1].A, r.Energy)
		require.NoError(t, err)
	}
	for _, r := range fx.Fission {
		_, err = db.Exec(`INSERT INTO FissionAll (neutrino, E, A, E1, A1, E2, A2, MeV) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			string(r.Neutrino), r.Parent.Symbol, r.Parent.A, r.Out[0].Symbol, r.Out[0].A, r.Out[1].Symbol, r.Out[1].A, r.Energy)
		require.NoError(t, err)
	}
	for _, n := range fx.Nuclides {
		_, err = db.Exec(`INSERT INTO NuclidesPlus (A, Z, nBorF, aBorF, E) VALUES (?, ?, ?, ?, ?)`,
			n.Nuclide.A, n.Z, flag(n.Nuclear), flag(n.Atomic), n.Nuclide.Symbol)
		require.NoError(t, err)
	}
	for _, e := range fx.Elements {
		_, err = db.Exec(`INSERT INTO ElementPropertiesPlus (Z, E, Melting, Boiling) VALUES (?, ?, ?, ?)`,
			e.Z, e.Symbol, e.MeltingK, e.BoilingK)
		require.NoError(t, err)
	}
	return path
}

func openFixture(t *testing.T) *sqlite.Source {
	t.Helper()
	src, err := sqlite.Open(context.Background(), seedDatabase(t, tests.StandardFixture()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })
	return src
}

func TestSQLiteSource_Contract(t *testing.T) {
	tests.ReactionSourceContractTest(t, openFixture(t))
}

func TestSQLiteSource_BlankNeutrinoIsNone(t *testing.T) {
	fx := tests.Fixture{
		Fusion: []domain.Fusion{{In: [2]domain.Nuclide{domain.N("D", 2), domain.N("D", 2)}, Out: domain.N("He", 4), Energy: 23.8}},
	}
	src, err := sqlite.Open(context.Background(), seedDatabase(t, fx))
	require.NoError(t, err)
	defer src.Close()

	got, err := src.FindFusionReactions(context.Background(), []domain.Nuclide{domain.N("D", 2)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.NeutrinoNone, got[0].Neutrino)
}

func TestSQLiteSource_CancelledContext(t *testing.T) {
	src := openFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.FindTwoToTwoReactions(ctx, []domain.Nuclide{domain.N("Li", 7)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), "")
	assert.Error(t, err)
}
