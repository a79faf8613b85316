package runtime

import (
	"context"

	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/ports"
)

// classifier memoizes ReactionSource.Classify for the lifetime of one run.
type classifier struct {
	source ports.ReactionSource
	cache  map[domain.Nuclide]domain.Classification
}

func newClassifier(source ports.ReactionSource) *classifier {
	return &classifier{
		source: source,
		cache:  make(map[domain.Nuclide]domain.Classification),
	}
}

func (c *classifier) classify(ctx context.Context, n domain.Nuclide) (domain.Classification, error) {
	if cl, ok := c.cache[n]; ok {
		return cl, nil
	}
	cl, err := c.source.Classify(ctx, n)
	if err != nil {
		return domain.Classification{}, err
	}
	c.cache[n] = cl
	return cl, nil
}

// candidate is a reaction that passed every filter, with the per-output
// decision of the feedback gate.
type candidate struct {
	reaction domain.Reaction
	feed     []bool
}

// admission applies the filters of one run, in order: energy threshold,
// dimer suppression, phase exclusion, feedback gate.
type admission struct {
	params domain.Parameters
	cls    *classifier
}

func (a *admission) energyOK(r domain.Reaction) bool {
	switch r.Family() {
	case domain.FamilyFusion:
		return r.MeV() >= a.params.MinFusionMeV
	case domain.FamilyTwoToTwo:
		return r.MeV() >= a.params.MinTwoToTwoMeV
	}
	return false
}

// isDimer reports a self-pairing of a diatomic element, e.g. H-1 + H-2.
func isDimer(r domain.Reaction) bool {
	in := r.Inputs()
	return in[0].Symbol == in[1].Symbol && domain.IsDimerElement(in[0].Symbol)
}

func (a *admission) phaseBlocked(ctx context.Context, r domain.Reaction) (bool, error) {
	if !a.params.ExcludeMelted && !a.params.ExcludeBoiledOff {
		return false, nil
	}
	for _, in := range r.Inputs() {
		cl, err := a.cls.classify(ctx, in)
		if err != nil {
			return false, err
		}
		if a.params.ExcludeMelted && cl.Melted(a.params.TemperatureK) {
			return true, nil
		}
		if a.params.ExcludeBoiledOff && cl.BoiledOff(a.params.TemperatureK) {
			return true, nil
		}
	}
	return false, nil
}

func (a *admission) feedback(ctx context.Context, r domain.Reaction) ([]bool, error) {
	outs := r.Outputs()
	feed := make([]bool, len(outs))
	for i, out := range outs {
		if a.params.FeedbackBosons && a.params.FeedbackFermions {
			feed[i] = true
			continue
		}
		cl, err := a.cls.classify(ctx, out)
		if err != nil {
			return nil, err
		}
		switch cl.Statistics(a.params.Basis()) {
		case domain.Boson:
			feed[i] = a.params.FeedbackBosons
		case domain.Fermion:
			feed[i] = a.params.FeedbackFermions
		default:
			feed[i] = true
		}
	}
	return feed, nil
}

// filter returns the reactions that survive every filter, preserving order.
func (a *admission) filter(ctx context.Context, rs []domain.Reaction) ([]candidate, error) {
	var out []candidate
	for _, r := range rs {
		if !a.energyOK(r) {
			continue
		}
		if !a.params.AllowDimers && isDimer(r) {
			continue
		}
		blocked, err := a.phaseBlocked(ctx, r)
		if err != nil {
			return nil, err
		}
		if blocked {
			continue
		}
		feed, err := a.feedback(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, candidate{reaction: r, feed: feed})
	}
	return out, nil
}
