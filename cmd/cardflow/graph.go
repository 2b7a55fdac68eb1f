package main

import (
	"fmt"

	"github.com/aretw0/cardflow"
	"github.com/aretw0/cardflow/internal/cli"
	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [graph]",
	Short: "Export the graph visualization",
	Long:  `Outputs a Mermaid flowchart of the graph. Invalid edges and cyclic nodes are highlighted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGraph(cmd, args, func(engine *cardflow.Engine, g *graph.Graph) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), engine.Mermaid(g))
			return err
		})
	},
}

var layoutCmd = &cobra.Command{
	Use:   "layout [graph]",
	Short: "Assign layered canvas positions to every node",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		return withGraph(cmd, args, func(engine *cardflow.Engine, g *graph.Graph) error {
			return cli.PrintDocument(cmd.OutOrStdout(), engine.Layout(g), output)
		})
	},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize [graph]",
	Short: "Remove pass-through nodes, reconnecting their neighbours",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		return withGraph(cmd, args, func(engine *cardflow.Engine, g *graph.Graph) error {
			return cli.PrintDocument(cmd.OutOrStdout(), engine.Optimize(g), output)
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(optimizeCmd)
	layoutCmd.Flags().StringP("output", "o", "json", "Output format: json or yaml")
	optimizeCmd.Flags().StringP("output", "o", "json", "Output format: json or yaml")
}
