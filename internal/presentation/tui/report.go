package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/cardflow/internal/validator"
)

// MarkdownReport renders a validator report as markdown.
func MarkdownReport(r validator.Report) string {
	var sb strings.Builder

	status := "valid"
	if !r.OK() {
		status = "invalid"
	}
	fmt.Fprintf(&sb, "# Graph `%s`: %s\n\n", r.GraphID, status)

	if len(r.Issues) > 0 {
		sb.WriteString("## Errors\n\n")
		for _, issue := range r.Issues {
			fmt.Fprintf(&sb, "- **%s** %s\n", issue.Kind, issue.Message)
		}
		sb.WriteString("\n")
	}
	if len(r.Validation.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range r.Validation.Warnings {
			fmt.Fprintf(&sb, "- **%s** %s\n", w.Kind, w.Message)
		}
		sb.WriteString("\n")
	}

	if len(r.Inspection.Nodes) > 0 {
		sb.WriteString("## Nodes\n\n")
		sb.WriteString("| Node | Card | Inputs | Outputs | Degree |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, n := range r.Inspection.Nodes {
			card := n.CardID
			if !n.Resolved {
				card += " _(unresolved)_"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %d |\n",
				n.NodeID, card, list(n.Inputs), list(n.Outputs), n.Degree)
		}
		sb.WriteString("\n")
	}

	if len(r.Inspection.Edges) > 0 {
		sb.WriteString("## Edges\n\n")
		sb.WriteString("| Edge | Status | Reason |\n")
		sb.WriteString("|---|---|---|\n")
		for _, e := range r.Inspection.Edges {
			state := "ok"
			switch {
			case !e.IsValid:
				state = "invalid"
			case !e.Checked:
				state = "unchecked"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", e.EdgeID, state, e.Reason)
		}
	}
	return sb.String()
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
