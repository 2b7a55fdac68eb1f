package ports

import (
	"context"

	"github.com/aretw0/cardflow/pkg/compiler"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/aretw0/cardflow/pkg/runner"
)

// GraphService is the engine surface used by transport adapters (HTTP, MCP).
// Implementations hold no per-graph state: every call receives the graph.
type GraphService interface {
	// Parse decodes a graph document. format is "json", "yaml" or "hcl".
	Parse(data []byte, format string) (*graph.Graph, error)

	// Validate reports structural errors plus port and parameter mismatches.
	Validate(g *graph.Graph) domain.ValidationResult

	// Compile derives an execution plan. It fails with domain.ErrCycle on cyclic graphs.
	Compile(g *graph.Graph) (*compiler.Plan, error)

	// Inspect reports resolved ports and edge checks.
	Inspect(g *graph.Graph) graph.Inspection

	// Layout assigns layered positions.
	Layout(g *graph.Graph) *graph.Graph

	// Optimize removes pass-through nodes.
	Optimize(g *graph.Graph) *graph.Graph

	// Run executes the graph once.
	Run(ctx context.Context, g *graph.Graph, req runner.Request) (*runner.Report, error)
	// CardIDs lists the cards the service can materialize, sorted.
	CardIDs() []string
	// Resolver materializes cards by id.
	Resolver() domain.CardResolver
}
