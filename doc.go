/*
Package cardflow is a dataflow engine for music production tools.

Processing units are cards: immutable, typed transformations with named ports
and tunable parameters. Cards are wired into graphs; a graph is validated,
inspected for port compatibility, compiled into an execution plan and run
against an input, with card state threaded between runs.

# Architecture

The engine follows a hexagonal layout. The core lives under pkg/ (domain,
card, graph, compiler, runner) and has no knowledge of storage or transport.
Adapters plug in through the interfaces in pkg/ports:

  - Card catalogs (Loam descriptor directories, in-memory tables).
  - Snapshot stores for edit sessions (memory, filesystem, Redis).
  - Transports (HTTP with an OpenAPI contract, MCP tools for agents).

# Usage

	eng, err := cardflow.New(cardflow.WithCards(osc, gain))
	if err != nil {
		log.Fatal(err)
	}

	g, err := eng.ParseFile("patch.yaml")
	if err != nil {
		log.Fatal(err)
	}

	if res := eng.Validate(g); !res.Valid {
		log.Fatalf("invalid graph: %v", res.Errors)
	}

	report, err := eng.Run(ctx, g, runner.Request{Input: 0.5})

Graphs are values: every edit returns a new graph and leaves the original
untouched, so snapshots, undo and concurrent readers need no locking.
*/
package cardflow
