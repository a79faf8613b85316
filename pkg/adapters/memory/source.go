package memory

import (
	"context"
	"sync"

	"github.com/aretw0/cascade/pkg/domain"
)

type nuclideInfo struct {
	z       int
	nuclear domain.Statistics
	atomic  domain.Statistics
}

type elementInfo struct {
	z        int
	meltingK *float64
	boilingK *float64
}

// Source implements ports.ReactionSource and ports.ReactionBrowser over in-memory tables.
// Safe for concurrent use. Seeding methods may be called at any time, but a source
// is expected to be fully seeded before runs start.
type Source struct {
	mu       sync.RWMutex
	fusion   []domain.Fusion
	twoToTwo []domain.TwoToTwo
	fission  []domain.Fission
	nuclides map[domain.Nuclide]nuclideInfo
	elements map[string]elementInfo
}

// NewSource creates an empty in-memory source.
func NewSource() *Source {
	return &Source{
		nuclides: make(map[domain.Nuclide]nuclideInfo),
		elements: make(map[string]elementInfo),
	}
}

// AddFusion appends fusion reactions.
func (s *Source) AddFusion(rs ...domain.Fusion) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fusion = append(s.fusion, rs...)
	return s
}

// AddTwoToTwo appends two-to-two reactions.
func (s *Source) AddTwoToTwo(rs ...domain.TwoToTwo) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.twoToTwo = append(s.twoToTwo, rs...)
	return s
}

// AddFission appends fission channels (browsing only).
func (s *Source) AddFission(rs ...domain.Fission) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fission = append(s.fission, rs...)
	return s
}

// SetNuclide records the boson/fermion flags of a nuclide.
func (s *Source) SetNuclide(n domain.Nuclide, z int, nuclear, atomic domain.Statistics) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nuclides[n] = nuclideInfo{z: z, nuclear: nuclear, atomic: atomic}
	return s
}

// SetElement records the phase thresholds of an element. Nil means unknown.
func (s *Source) SetElement(symbol string, z int, meltingK, boilingK *float64) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[symbol] = elementInfo{z: z, meltingK: meltingK, boilingK: boilingK}
	return s
}

func poolSet(pool []domain.Nuclide) map[domain.Nuclide]struct{} {
	set := make(map[domain.Nuclide]struct{}, len(pool))
	for _, n := range pool {
		set[n] = struct{}{}
	}
	return set
}

func within(set map[domain.Nuclide]struct{}, in [2]domain.Nuclide) bool {
	_, a := set[in[0]]
	_, b := set[in[1]]
	return a && b
}

// FindFusionReactions returns fusion reactions whose inputs are both in pool, in insertion order.
func (s *Source) FindFusionReactions(ctx context.Context, pool []domain.Nuclide) ([]domain.Fusion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	set := poolSet(pool)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Fusion
	for _, r := range s.fusion {
		if within(set, r.In) {
			out = append(out, r)
		}
	}
	return out, nil
}

// FindTwoToTwoReactions returns two-to-two reactions whose inputs are both in pool, in insertion order.
func (s *Source) FindTwoToTwoReactions(ctx context.Context, pool []domain.Nuclide) ([]domain.TwoToTwo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	set := poolSet(pool)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.TwoToTwo
	for _, r := range s.twoToTwo {
		if within(set, r.In) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Classify looks up the nuclide and its host element. Missing flags fall back to
// nucleon parity; missing element data yields unknown thresholds.
func (s *Source) Classify(ctx context.Context, id domain.Nuclide) (domain.Classification, error) {
	if err := ctx.Err(); err != nil {
		return domain.Classification{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	el, hasElement := s.elements[id.Symbol]
	info, ok := s.nuclides[id]
	if !ok {
		info = nuclideInfo{
			z:       el.z,
			nuclear: domain.StatisticsFromMass(id, el.z, domain.BasisNuclear),
			atomic:  domain.StatisticsFromMass(id, el.z, domain.BasisAtomic),
		}
	}

	c := domain.Classification{Nuclear: info.nuclear, Atomic: info.atomic}
	if hasElement && !id.IsParticle() {
		c.MeltingK = el.meltingK
		c.BoilingK = el.boilingK
	}
	return c, nil
}

// FissionOf returns the fission channels of parent.
func (s *Source) FissionOf(ctx context.Context, parent domain.Nuclide) ([]domain.Fission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Fission
	for _, f := range s.fission {
		if f.Parent == parent {
			out = append(out, f)
		}
	}
	return out, nil
}

// ReactionsWith returns every fusion and two-to-two reaction consuming id.
func (s *Source) ReactionsWith(ctx context.Context, id domain.Nuclide) ([]domain.Reaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Reaction
	for _, r := range s.fusion {
		if r.In[0] == id || r.In[1] == id {
			out = append(out, r)
		}
	}
	for _, r := range s.twoToTwo {
		if r.In[0] == id || r.In[1] == id {
			out = append(out, r)
		}
	}
	return out, nil
}
