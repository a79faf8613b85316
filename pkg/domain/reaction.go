package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Family names a reaction table.
type Family string

const (
	FamilyFusion   Family = "fusion"
	FamilyTwoToTwo Family = "two_to_two"
	// FamilyFission is browsable only. Cascades never admit fission reactions.
	FamilyFission Family = "fission"
)

// Neutrino is the neutrino class recorded with each reaction row.
type Neutrino string

const (
	NeutrinoNone  Neutrino = "none"
	NeutrinoLeft  Neutrino = "left"
	NeutrinoRight Neutrino = "right"
)

// ParseNeutrino maps the dataset's neutrino column onto a Neutrino class.
// Empty values are treated as "none".
func ParseNeutrino(raw string) (Neutrino, error) {
	switch Neutrino(strings.ToLower(strings.TrimSpace(raw))) {
	case "", NeutrinoNone:
		return NeutrinoNone, nil
	case NeutrinoLeft:
		return NeutrinoLeft, nil
	case NeutrinoRight:
		return NeutrinoRight, nil
	}
	return "", fmt.Errorf("unknown neutrino class %q", raw)
}

// ReactionKey is the structural identity of a reaction: family plus the ordered
// input and output tuples. Unused output slots hold the zero Nuclide.
type ReactionKey struct {
	Family Family
	In     [2]Nuclide
	Out    [2]Nuclide
}

// Reaction is the closed set of reactions a cascade can admit.
// The only implementations are Fusion and TwoToTwo.
type Reaction interface {
	Family() Family
	Inputs() []Nuclide
	Outputs() []Nuclide
	MeV() float64
	NeutrinoClass() Neutrino
	Key() ReactionKey
	String() string

	sealed()
}

// Fusion is a two-inputs, one-output reaction.
type Fusion struct {
	In       [2]Nuclide `json:"inputs"`
	Out      Nuclide    `json:"output"`
	Energy   float64    `json:"mev"`
	Neutrino Neutrino   `json:"neutrino"`
}

func (Fusion) sealed()                   {}
func (Fusion) Family() Family            { return FamilyFusion }
func (f Fusion) Inputs() []Nuclide       { return []Nuclide{f.In[0], f.In[1]} }
func (f Fusion) Outputs() []Nuclide      { return []Nuclide{f.Out} }
func (f Fusion) MeV() float64            { return f.Energy }
func (f Fusion) NeutrinoClass() Neutrino { return neutrinoOrNone(f.Neutrino) }

func (f Fusion) Key() ReactionKey {
	return ReactionKey{Family: FamilyFusion, In: f.In, Out: [2]Nuclide{f.Out}}
}

func (f Fusion) String() string {
	return fmt.Sprintf("%s + %s -> %s (%s MeV)", f.In[0], f.In[1], f.Out, formatMeV(f.Energy))
}

// TwoToTwo is a two-inputs, two-outputs transmutation.
type TwoToTwo struct {
	In       [2]Nuclide `json:"inputs"`
	Out      [2]Nuclide `json:"outputs"`
	Energy   float64    `json:"mev"`
	Neutrino Neutrino   `json:"neutrino"`
}

func (TwoToTwo) sealed()                   {}
func (TwoToTwo) Family() Family            { return FamilyTwoToTwo }
func (t TwoToTwo) Inputs() []Nuclide       { return []Nuclide{t.In[0], t.In[1]} }
func (t TwoToTwo) Outputs() []Nuclide      { return []Nuclide{t.Out[0], t.Out[1]} }
func (t TwoToTwo) MeV() float64            { return t.Energy }
func (t TwoToTwo) NeutrinoClass() Neutrino { return neutrinoOrNone(t.Neutrino) }

func (t TwoToTwo) Key() ReactionKey {
	return ReactionKey{Family: FamilyTwoToTwo, In: t.In, Out: t.Out}
}

func (t TwoToTwo) String() string {
	return fmt.Sprintf("%s + %s -> %s + %s (%s MeV)", t.In[0], t.In[1], t.Out[0], t.Out[1], formatMeV(t.Energy))
}

// Fission is a one-input, two-outputs reaction. It is not a Reaction: it only
// exists for browsing the dataset.
type Fission struct {
	Parent   Nuclide    `json:"parent"`
	Out      [2]Nuclide `json:"outputs"`
	Energy   float64    `json:"mev"`
	Neutrino Neutrino   `json:"neutrino"`
}

func (f Fission) String() string {
	return fmt.Sprintf("%s -> %s + %s (%s MeV)", f.Parent, f.Out[0], f.Out[1], formatMeV(f.Energy))
}

func neutrinoOrNone(n Neutrino) Neutrino {
	if n == "" {
		return NeutrinoNone
	}
	return n
}

func formatMeV(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
