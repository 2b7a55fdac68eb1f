package domain

// IssueKind classifies a validation finding.
type IssueKind string

const (
	IssueMissingNode  IssueKind = "missing_node"
	IssueCycle        IssueKind = "cycle"
	IssueInvalidPort  IssueKind = "invalid_port"
	IssueDisconnected IssueKind = "disconnected"
	IssueEmptyGraph   IssueKind = "empty_graph"
)

// ValidationIssue is one error or warning found in a graph.
type ValidationIssue struct {
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
	NodeIDs []string  `json:"node_ids,omitempty"`
	EdgeID  string    `json:"edge_id,omitempty"`
}

// ValidationResult collects structural findings. Valid is true iff Errors is empty;
// warnings never make a graph invalid.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

// HasKind reports whether any error of the given kind was found.
func (r ValidationResult) HasKind(kind IssueKind) bool {
	for _, e := range r.Errors {
		if e.Kind == kind {
			return true
		}
	}
	return false
}
