package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/cardflow"
	"github.com/aretw0/cardflow/internal/cli"
	"github.com/aretw0/cardflow/internal/presentation/tui"
	"github.com/aretw0/cardflow/internal/validator"
	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/spf13/cobra"
)

var errInvalidGraph = errors.New("graph is invalid")

var validateCmd = &cobra.Command{
	Use:   "validate [graph]",
	Short: "Check the graph for consistency",
	Long: `Reports missing nodes, cycles, port type mismatches and parameter values
out of range. Reads the graph from stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")
		asJSON, _ := cmd.Flags().GetBool("json")

		return withGraph(cmd, args, func(engine *cardflow.Engine, g *graph.Graph) error {
			report := engine.Check(g, strict)
			if err := printReport(cmd.OutOrStdout(), report, asJSON); err != nil {
				return err
			}
			if !report.OK() {
				return errInvalidGraph
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Treat warnings and unresolved cards as failures")
	validateCmd.Flags().Bool("json", false, "Print the report as JSON")
}

func printReport(w io.Writer, report validator.Report, asJSON bool) error {
	if asJSON {
		return cli.PrintJSON(w, struct {
			validator.Report
			OK bool `json:"ok"`
		}{report, report.OK()})
	}

	markdown := tui.MarkdownReport(report)
	if tui.IsTerminal(os.Stdout) {
		rendered, err := tui.NewRenderer()(markdown)
		if err == nil {
			markdown = rendered
		}
	}
	fmt.Fprint(w, markdown)

	if report.OK() {
		fmt.Fprintln(w, tui.Status(true, "Graph is valid"))
	} else {
		fmt.Fprintln(w, tui.Status(false, "Graph is invalid"))
	}
	return nil
}
