package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/cascade/pkg/domain"
)

// Overlay highlights nuclides on the generated graph.
type Overlay struct {
	Fuel []domain.Nuclide
}

// GenerateMermaid produces a Mermaid flowchart of the reaction network of a result.
// It applies semantic styling:
// - Nuclide: ((Circle))
// - Reaction: [Rectangle] labelled with the loop index and energy
// - Fusion edges are solid, two-to-two edges are dotted
// Fuel nuclides are styled when an overlay is provided.
func GenerateMermaid(result *domain.Result, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, n := range result.Pool {
		sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", sanitizeMermaidID(n.String()), n))
	}

	for i, ar := range result.Reactions {
		r := ar.Reaction
		rid := fmt.Sprintf("r%d", i)
		sb.WriteString(fmt.Sprintf("    %s[\"L%d: %s MeV\"]\n", rid, ar.Loop, formatMeV(r.MeV())))

		arrow := "-->"
		if r.Family() == domain.FamilyTwoToTwo {
			arrow = "-.->"
		}
		for _, in := range r.Inputs() {
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(in.String()), arrow, rid))
		}
		for _, out := range r.Outputs() {
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", rid, arrow, sanitizeMermaidID(out.String())))
		}
	}

	if overlay != nil && len(overlay.Fuel) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef fuel fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")

		seen := make(map[string]bool)
		for _, n := range overlay.Fuel {
			safeID := sanitizeMermaidID(n.String())
			if !seen[safeID] {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s fuel;\n", safeID))
			}
		}
	}

	return sb.String()
}

func formatMeV(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
