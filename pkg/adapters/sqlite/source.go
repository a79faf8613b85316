// Package sqlite provides a ports.ReactionSource over the relational reaction
// dataset (FusionAll, TwoToTwoAll, FissionAll, NuclidesPlus, ElementPropertiesPlus).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/cascade/pkg/domain"

	_ "modernc.org/sqlite"
)

// Source implements ports.ReactionSource and ports.ReactionBrowser.
// The database is only ever read; a single Source may back many concurrent runs.
type Source struct {
	db *sql.DB
}

// Open connects to the dataset at path and verifies it is reachable.
func Open(ctx context.Context, path string) (*Source, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach dataset: %w", err)
	}
	return &Source{db: db}, nil
}

// New wraps an already opened database handle.
func New(db *sql.DB) *Source {
	return &Source{db: db}
}

// Close releases the underlying database handle.
func (s *Source) Close() error {
	return s.db.Close()
}

// symbolFilter builds the "IN (?, ?, ...)" placeholder list over the pool's
// distinct element symbols. Exact (symbol, A) membership is checked afterwards.
func symbolFilter(pool []domain.Nuclide) (string, []any) {
	seen := make(map[string]bool, len(pool))
	var args []any
	for _, n := range pool {
		if !seen[n.Symbol] {
			seen[n.Symbol] = true
			args = append(args, n.Symbol)
		}
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?,", len(args)), ",") + ")", args
}

func members(pool []domain.Nuclide) map[domain.Nuclide]bool {
	set := make(map[domain.Nuclide]bool, len(pool))
	for _, n := range pool {
		set[n] = true
	}
	return set
}

// FindFusionReactions returns FusionAll rows whose two inputs are both pool members.
func (s *Source) FindFusionReactions(ctx context.Context, pool []domain.Nuclide) ([]domain.Fusion, error) {
	if len(pool) == 0 {
		return nil, ctx.Err()
	}
	in, args := symbolFilter(pool)
	query := `SELECT E1, A1, E2, A2, E, A, MeV, neutrino FROM FusionAll
		WHERE E1 IN ` + in + ` AND E2 IN ` + in + ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, append(args, args...)...)
	if err != nil {
		return nil, fmt.Errorf("query fusion: %w", err)
	}
	defer rows.Close()

	set := members(pool)
	var out []domain.Fusion
	for rows.Next() {
		r, err := scanFusion(rows)
		if err != nil {
			return nil, err
		}
		if set[r.In[0]] && set[r.In[1]] {
			out = append(out, r)
		}
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFusion(row scanner) (domain.Fusion, error) {
	var (
		e1, e2, e string
		a1, a2, a int
		mev       sql.NullFloat64
		nu        sql.NullString
	)
	if err := row.Scan(&e1, &a1, &e2, &a2, &e, &a, &mev, &nu); err != nil {
		return domain.Fusion{}, fmt.Errorf("scan fusion: %w", err)
	}
	neutrino, err := domain.ParseNeutrino(nu.String)
	if err != nil {
		return domain.Fusion{}, err
	}
	return domain.Fusion{
		In:       [2]domain.Nuclide{domain.N(e1, a1), domain.N(e2, a2)},
		Out:      domain.N(e, a),
		Energy:   mev.Float64,
		Neutrino: neutrino,
	}, nil
}

// FindTwoToTwoReactions returns TwoToTwoAll rows whose two inputs are both pool members.
func (s *Source) FindTwoToTwoReactions(ctx context.Context, pool []domain.Nuclide) ([]domain.TwoToTwo, error) {
	if len(pool) == 0 {
		return nil, ctx.Err()
	}
	in, args := symbolFilter(pool)
	query := `SELECT E1, A1, E2, A2, E3, A3, E4, A4, MeV, neutrino FROM TwoToTwoAll
		WHERE E1 IN ` + in + ` AND E2 IN ` + in + ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, append(args, args...)...)
	if err != nil {
		return nil, fmt.Errorf("query two-to-two: %w", err)
	}
	defer rows.Close()

	set := members(pool)
	var out []domain.TwoToTwo
	for rows.Next() {
		r, err := scanTwoToTwo(rows)
		if err != nil {
			return nil, err
		}
		if set[r.In[0]] && set[r.In[1]] {
			out = append(out, r)
		}
	}
	return out, rows.Err()
}

func scanTwoToTwo(row scanner) (domain.TwoToTwo, error) {
	var (
		e1, e2, e3, e4 string
		a1, a2, a3, a4 int
		mev            sql.NullFloat64
		nu             sql.NullString
	)
	if err := row.Scan(&e1, &a1, &e2, &a2, &e3, &a3, &e4, &a4, &mev, &nu); err != nil {
		return domain.TwoToTwo{}, fmt.Errorf("scan two-to-two: %w", err)
	}
	neutrino, err := domain.ParseNeutrino(nu.String)
	if err != nil {
		return domain.TwoToTwo{}, err
	}
	return domain.TwoToTwo{
		In:       [2]domain.Nuclide{domain.N(e1, a1), domain.N(e2, a2)},
		Out:      [2]domain.Nuclide{domain.N(e3, a3), domain.N(e4, a4)},
		Energy:   mev.Float64,
		Neutrino: neutrino,
	}, nil
}

// Classify reads NuclidesPlus for the boson/fermion flags and ElementPropertiesPlus
// for the phase thresholds. Isotopes without a NuclidesPlus row fall back to
// nucleon parity.
func (s *Source) Classify(ctx context.Context, id domain.Nuclide) (domain.Classification, error) {
	var (
		z          sql.NullInt64
		melt, boil sql.NullFloat64
		classified domain.Classification
	)
	hasElement := true

	err := s.db.QueryRowContext(ctx,
		`SELECT Z, Melting, Boiling FROM ElementPropertiesPlus WHERE E = ?`, id.Symbol,
	).Scan(&z, &melt, &boil)
	if errors.Is(err, sql.ErrNoRows) {
		hasElement = false
	} else if err != nil {
		return domain.Classification{}, fmt.Errorf("query element %s: %w", id.Symbol, err)
	}

	var nuclear, atom sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT nBorF, aBorF FROM NuclidesPlus WHERE E = ? AND A = ? LIMIT 1`, id.Symbol, id.A,
	).Scan(&nuclear, &atom)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		classified.Nuclear = domain.StatisticsFromMass(id, int(z.Int64), domain.BasisNuclear)
		classified.Atomic = domain.StatisticsFromMass(id, int(z.Int64), domain.BasisAtomic)
	case err != nil:
		return domain.Classification{}, fmt.Errorf("query nuclide %s: %w", id, err)
	default:
		if classified.Nuclear, err = domain.ParseStatistics(nuclear.String); err != nil {
			return domain.Classification{}, fmt.Errorf("nuclide %s: %w", id, err)
		}
		if classified.Atomic, err = domain.ParseStatistics(atom.String); err != nil {
			return domain.Classification{}, fmt.Errorf("nuclide %s: %w", id, err)
		}
	}

	if hasElement && !id.IsParticle() {
		if melt.Valid {
			classified.MeltingK = &melt.Float64
		}
		if boil.Valid {
			classified.BoilingK = &boil.Float64
		}
	}
	return classified, nil
}

// FissionOf returns the FissionAll channels of parent.
func (s *Source) FissionOf(ctx context.Context, parent domain.Nuclide) ([]domain.Fission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT E1, A1, E2, A2, MeV, neutrino FROM FissionAll WHERE E = ? AND A = ? ORDER BY id`,
		parent.Symbol, parent.A)
	if err != nil {
		return nil, fmt.Errorf("query fission: %w", err)
	}
	defer rows.Close()

	var out []domain.Fission
	for rows.Next() {
		var (
			e1, e2 string
			a1, a2 int
			mev    sql.NullFloat64
			nu     sql.NullString
		)
		if err := rows.Scan(&e1, &a1, &e2, &a2, &mev, &nu); err != nil {
			return nil, fmt.Errorf("scan fission: %w", err)
		}
		neutrino, err := domain.ParseNeutrino(nu.String)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Fission{
			Parent:   parent,
			Out:      [2]domain.Nuclide{domain.N(e1, a1), domain.N(e2, a2)},
			Energy:   mev.Float64,
			Neutrino: neutrino,
		})
	}
	return out, rows.Err()
}

// ReactionsWith returns every fusion and two-to-two reaction that consumes id.
func (s *Source) ReactionsWith(ctx context.Context, id domain.Nuclide) ([]domain.Reaction, error) {
	const where = ` WHERE (E1 = ? AND A1 = ?) OR (E2 = ? AND A2 = ?) ORDER BY id`
	args := []any{id.Symbol, id.A, id.Symbol, id.A}

	var out []domain.Reaction
	err := s.each(ctx, `SELECT E1, A1, E2, A2, E, A, MeV, neutrino FROM FusionAll`+where, args, func(row scanner) error {
		r, err := scanFusion(row)
		if err == nil {
			out = append(out, r)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fusion with %s: %w", id, err)
	}

	err = s.each(ctx, `SELECT E1, A1, E2, A2, E3, A3, E4, A4, MeV, neutrino FROM TwoToTwoAll`+where, args, func(row scanner) error {
		r, err := scanTwoToTwo(row)
		if err == nil {
			out = append(out, r)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("two-to-two with %s: %w", id, err)
	}
	return out, nil
}

func (s *Source) each(ctx context.Context, query string, args []any, fn func(scanner) error) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
