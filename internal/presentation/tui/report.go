package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/cascade/pkg/domain"
)

// Report renders a result as a markdown document. top bounds the product
// table; top <= 0 lists every product.
func Report(result *domain.Result, params domain.Parameters, top int) string {
	var sb strings.Builder

	sb.WriteString("# Cascade report\n\n")
	sb.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Fuel | %s |\n", joinNuclides(params.Fuel))
	fmt.Fprintf(&sb, "| Reason | `%s` |\n", result.Reason)
	fmt.Fprintf(&sb, "| Loops executed | %d |\n", result.LoopsExecuted)
	fmt.Fprintf(&sb, "| Reactions | %d |\n", len(result.Reactions))
	fmt.Fprintf(&sb, "| Pool size | %d |\n", len(result.Pool))
	fmt.Fprintf(&sb, "| Total energy | %s MeV |\n", strconv.FormatFloat(result.TotalEnergy, 'f', 3, 64))
	fmt.Fprintf(&sb, "| Elapsed | %s |\n", result.Elapsed.Round(time.Millisecond))

	products := result.TopProducts(top)
	if len(products) > 0 {
		sb.WriteString("\n## Top products\n\n| Nuclide | Count |\n|---|---:|\n")
		for _, pc := range products {
			fmt.Fprintf(&sb, "| %s | %d |\n", pc.Nuclide, pc.Count)
		}
	}

	if len(result.Reactions) > 0 {
		sb.WriteString("\n## Reactions\n\n| Loop | Type | Reaction | MeV | Neutrino |\n|---:|---|---|---:|---|\n")
		for _, ar := range result.Reactions {
			r := ar.Reaction
			fmt.Fprintf(&sb, "| %d | %s | %s -> %s | %s | %s |\n",
				ar.Loop, r.Family(), joinPlus(r.Inputs()), joinPlus(r.Outputs()),
				strconv.FormatFloat(r.MeV(), 'f', -1, 64), r.NeutrinoClass())
		}
	}

	return sb.String()
}

func joinNuclides(ns []domain.Nuclide) string {
	return join(ns, ", ")
}

func joinPlus(ns []domain.Nuclide) string {
	return join(ns, " + ")
}

func join(ns []domain.Nuclide, sep string) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = n.String()
	}
	return strings.Join(parts, sep)
}
