package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/cardflow/pkg/domain"
	model "github.com/aretw0/cardflow/pkg/graph"
)

// GraphOverlay contains inspection findings to visualize on the graph.
type GraphOverlay struct {
	InvalidEdges []string
	CyclicNodes  []string
	Highlight    []string
}

// OverlayFor builds an overlay from an inspection and the cyclic node set.
func OverlayFor(in model.Inspection, cyclic []string) *GraphOverlay {
	o := &GraphOverlay{CyclicNodes: cyclic}
	for _, e := range in.InvalidEdges() {
		o.InvalidEdges = append(o.InvalidEdges, e.EdgeID)
	}
	return o
}

// Inspected renders g with the overlay derived from inspecting it: invalid
// edges and, when g has a cycle, the cyclic nodes.
func Inspected(g *model.Graph, resolver domain.CardResolver) string {
	var cyclic []string
	if model.TopologicalSort(g) == nil {
		cyclic = model.CyclicNodes(g)
	}
	return GenerateMermaid(g, resolver, OverlayFor(model.Inspect(g, resolver), cyclic))
}

// GenerateMermaid produces a left-to-right Mermaid flowchart of g.
// Node shapes follow the card category when resolver finds the card:
// - Generators: ([Stadium])
// - Routing: {{Hexagon}}
// - Analysis: [/Parallelogram/]
// - Default: [Rectangle]
// Edges are labelled "sourcePort → targetPort". Invalid edges are dotted.
func GenerateMermaid(g *model.Graph, resolver domain.CardResolver, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	invalid := map[string]bool{}
	if overlay != nil {
		for _, id := range overlay.InvalidEdges {
			invalid[id] = true
		}
	}

	for _, node := range g.Nodes() {
		safeID := sanitizeMermaidID(node.ID)
		opener, closer := "[", "]"

		if c, ok := g.CardFor(node.ID, resolver); ok {
			switch c.Meta().Category {
			case domain.CategoryGenerators:
				opener, closer = "([", "])"
			case domain.CategoryRouting:
				opener, closer = "{{", "}}"
			case domain.CategoryAnalysis:
				opener, closer = "[/", "/]"
			}
		}

		label := escapeLabel(node.ID)
		if node.CardID != "" && node.CardID != node.ID {
			label = fmt.Sprintf("%s <br/> <i>%s</i>", label, escapeLabel(node.CardID))
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)
	}

	var invalidLinks []int
	for i, e := range g.Edges() {
		arrow := fmt.Sprintf("-- \"%s → %s\" -->", escapeLabel(e.SourcePort), escapeLabel(e.TargetPort))
		if invalid[e.ID] {
			arrow = fmt.Sprintf("-. \"%s → %s\" .->", escapeLabel(e.SourcePort), escapeLabel(e.TargetPort))
			invalidLinks = append(invalidLinks, i)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.Source), arrow, sanitizeMermaidID(e.Target))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text stays readable on light fills in both themes.
		sb.WriteString("    classDef cyclic fill:#ffcdd2,stroke:#b71c1c,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef highlight fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		writeClass(&sb, overlay.CyclicNodes, "cyclic")
		writeClass(&sb, overlay.Highlight, "highlight")
		for _, i := range invalidLinks {
			fmt.Fprintf(&sb, "    linkStyle %d stroke:#d32f2f,stroke-width:2px;\n", i)
		}
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, ids []string, class string) {
	seen := make(map[string]bool)
	for _, id := range ids {
		safeID := sanitizeMermaidID(id)
		if safeID == "" || seen[safeID] {
			continue
		}
		seen[safeID] = true
		fmt.Fprintf(sb, "    class %s %s;\n", safeID, class)
	}
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_", ":", "_")
	return r.Replace(id)
}
