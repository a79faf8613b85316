// Package export writes cascade results in formats meant for spreadsheets and other tools.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/aretw0/cascade/pkg/domain"
)

var (
	reactionHeader     = []string{"Loop", "Type", "Input1", "Input2", "Output1", "Output2", "Energy_MeV", "Neutrino"}
	distributionHeader = []string{"Nuclide", "Count"}
)

// WriteCSV writes one row per admitted reaction, a blank line, then the
// product distribution sorted by descending count.
func WriteCSV(w io.Writer, result *domain.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(reactionHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, ar := range result.Reactions {
		if err := cw.Write(reactionRow(ar)); err != nil {
			return fmt.Errorf("write reaction: %w", err)
		}
	}

	// The separator is a truly empty line, which csv.Writer cannot emit.
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	if err := cw.Write(distributionHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, pc := range result.TopProducts(0) {
		if err := cw.Write([]string{pc.Nuclide.String(), strconv.Itoa(pc.Count)}); err != nil {
			return fmt.Errorf("write distribution: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func reactionRow(ar domain.AdmittedReaction) []string {
	r := ar.Reaction
	in := r.Inputs()
	out := r.Outputs()
	row := []string{
		strconv.Itoa(ar.Loop),
		string(r.Family()),
		in[0].String(),
		in[1].String(),
		out[0].String(),
		"",
		strconv.FormatFloat(r.MeV(), 'f', -1, 64),
		string(r.NeutrinoClass()),
	}
	if len(out) > 1 {
		row[5] = out[1].String()
	}
	return row
}
