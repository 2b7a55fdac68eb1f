package main

import (
	"github.com/aretw0/cardflow"
	"github.com/aretw0/cardflow/internal/cli"
	plan "github.com/aretw0/cardflow/pkg/compiler"
	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile [graph]",
	Short: "Print the execution plan of a graph",
	Long:  `Compiles the graph into a dependency-ordered plan and prints it as JSON, with steps grouped by depth.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGraph(cmd, args, func(engine *cardflow.Engine, g *graph.Graph) error {
			p, err := engine.Compile(g)
			if err != nil {
				return err
			}
			return cli.PrintJSON(cmd.OutOrStdout(), struct {
				*plan.Plan
				Levels [][]string `json:"levels"`
			}{p, p.Levels()})
		})
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [graph]",
	Short: "Print resolved ports and edge checks as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGraph(cmd, args, func(engine *cardflow.Engine, g *graph.Graph) error {
			return cli.PrintJSON(cmd.OutOrStdout(), engine.Inspect(g))
		})
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(inspectCmd)
}
