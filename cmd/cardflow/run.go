package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/cardflow"
	"github.com/aretw0/cardflow/internal/cli"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/aretw0/cardflow/pkg/runner"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [graph]",
	Short: "Execute a graph once",
	Long: `Compiles and executes the graph, feeding --input to every input node, and
prints the run report as JSON. Card errors are reported, never fatal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawInput, _ := cmd.Flags().GetString("input")
		tempo, _ := cmd.Flags().GetFloat64("tempo")
		sampleRate, _ := cmd.Flags().GetInt("sample-rate")

		req := runner.Request{
			Context: domain.CardContext{
				Transport: domain.Transport{Tempo: tempo, TimeSignature: [2]int{4, 4}},
				Engine:    domain.EngineInfo{SampleRate: sampleRate},
			},
		}
		if rawInput != "" {
			if err := json.Unmarshal([]byte(rawInput), &req.Input); err != nil {
				return fmt.Errorf("--input is not valid JSON: %w", err)
			}
		}

		return withGraph(cmd, args, func(engine *cardflow.Engine, g *graph.Graph) error {
			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()

			report, err := engine.Run(ctx, g, req)
			if err != nil {
				return err
			}
			for _, e := range report.Errors() {
				fmt.Fprintln(os.Stderr, "card error:", e)
			}
			return cli.PrintJSON(cmd.OutOrStdout(), report)
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("input", "", "JSON value fed to every input node")
	runCmd.Flags().Float64("tempo", 120, "Transport tempo in BPM")
	runCmd.Flags().Int("sample-rate", 48000, "Engine sample rate")
}
