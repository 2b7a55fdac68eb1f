package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/cardflow"
	"github.com/aretw0/cardflow/internal/cli"
	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cardflow",
	Short: "cardflow validates, compiles and runs card graphs",
	Long: `cardflow is a dataflow engine for music-production cards.
Graphs of typed cards are validated, compiled into execution plans and run,
from the command line or behind an HTTP or MCP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().String("catalog", "", "Directory of card descriptors (Markdown, JSON or YAML)")
	rootCmd.PersistentFlags().String("process-cards", "", "File declaring cards backed by local programs")
	rootCmd.PersistentFlags().String("format", "", "Graph document format: json, yaml or hcl (default: from extension)")
	rootCmd.PersistentFlags().Int("concurrency", 0, "Maximum parallel steps per run (0 runs serially)")
}

func engineOptions(cmd *cobra.Command) cli.Options {
	debug, _ := cmd.Flags().GetBool("debug")
	catalog, _ := cmd.Flags().GetString("catalog")
	processCards, _ := cmd.Flags().GetString("process-cards")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	return cli.Options{
		Debug:        debug,
		Catalog:      catalog,
		ProcessCards: processCards,
		Concurrency:  concurrency,
	}
}

func newEngine(cmd *cobra.Command) (*cardflow.Engine, *slog.Logger, error) {
	opts := engineOptions(cmd)
	logger := cli.NewLogger(opts.Debug)
	engine, err := cli.NewEngine(opts, logger)
	return engine, logger, err
}

// loadGraph reads the graph named by args[0], or stdin when absent.
func loadGraph(cmd *cobra.Command, engine *cardflow.Engine, args []string) (*graph.Graph, error) {
	path := "-"
	if len(args) > 0 {
		path = args[0]
	}
	format, _ := cmd.Flags().GetString("format")
	return cli.LoadGraph(engine, path, format, cmd.InOrStdin())
}

// withGraph builds the engine, loads the graph and hands both to fn.
func withGraph(cmd *cobra.Command, args []string, fn func(*cardflow.Engine, *graph.Graph) error) error {
	engine, _, err := newEngine(cmd)
	if err != nil {
		return err
	}
	g, err := loadGraph(cmd, engine, args)
	if err != nil {
		return err
	}
	return fn(engine, g)
}
