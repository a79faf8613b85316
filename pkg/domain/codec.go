package domain

import (
	"encoding/json"
	"fmt"
)

// ReactionRecord is the flat wire form of a Reaction (JSON, CSV, persistence).
type ReactionRecord struct {
	Loop     int       `json:"loop"`
	Family   Family    `json:"type"`
	Inputs   []Nuclide `json:"inputs"`
	Outputs  []Nuclide `json:"outputs"`
	MeV      float64   `json:"mev"`
	Neutrino Neutrino  `json:"neutrino"`
}

// Record flattens an admitted reaction.
func (ar AdmittedReaction) Record() ReactionRecord {
	return ReactionRecord{
		Loop:     ar.Loop,
		Family:   ar.Reaction.Family(),
		Inputs:   ar.Reaction.Inputs(),
		Outputs:  ar.Reaction.Outputs(),
		MeV:      ar.Reaction.MeV(),
		Neutrino: ar.Reaction.NeutrinoClass(),
	}
}

// Reaction rebuilds the typed reaction, enforcing the arity of each family.
func (rec ReactionRecord) Reaction() (Reaction, error) {
	if len(rec.Inputs) != 2 {
		return nil, fmt.Errorf("%s reaction needs 2 inputs, got %d", rec.Family, len(rec.Inputs))
	}
	in := [2]Nuclide{rec.Inputs[0], rec.Inputs[1]}
	switch rec.Family {
	case FamilyFusion:
		if len(rec.Outputs) != 1 {
			return nil, fmt.Errorf("fusion reaction needs 1 output, got %d", len(rec.Outputs))
		}
		return Fusion{In: in, Out: rec.Outputs[0], Energy: rec.MeV, Neutrino: rec.Neutrino}, nil
	case FamilyTwoToTwo:
		if len(rec.Outputs) != 2 {
			return nil, fmt.Errorf("two-to-two reaction needs 2 outputs, got %d", len(rec.Outputs))
		}
		return TwoToTwo{In: in, Out: [2]Nuclide{rec.Outputs[0], rec.Outputs[1]}, Energy: rec.MeV, Neutrino: rec.Neutrino}, nil
	}
	return nil, fmt.Errorf("reaction family %q cannot be part of a cascade", rec.Family)
}

func (ar AdmittedReaction) MarshalJSON() ([]byte, error) {
	if ar.Reaction == nil {
		return nil, fmt.Errorf("admitted reaction at loop %d has no reaction", ar.Loop)
	}
	return json.Marshal(ar.Record())
}

func (ar *AdmittedReaction) UnmarshalJSON(data []byte) error {
	var rec ReactionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	r, err := rec.Reaction()
	if err != nil {
		return err
	}
	ar.Loop = rec.Loop
	ar.Reaction = r
	return nil
}
