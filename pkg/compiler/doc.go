// Package compiler turns a graph into an execution plan.
//
// A Plan lists every node in dependency order together with its direct
// predecessors, the nodes that take the run input (Inputs) and the nodes whose
// outputs are the run result (Outputs). Plans are disposable: recompile after
// every graph edit.
//
// Fold goes one step further and packs a whole graph into a single domain.Card
// that can be embedded in another graph or composed with card combinators.
package compiler
