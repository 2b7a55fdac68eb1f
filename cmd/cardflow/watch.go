package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/cardflow/internal/cli"
	"github.com/aretw0/cardflow/internal/presentation/tui"
	"github.com/aretw0/cardflow/internal/validator"
	"github.com/aretw0/cardflow/pkg/ports"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <graph>",
	Short: "Re-validate a graph whenever the card catalog changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")
		format, _ := cmd.Flags().GetString("format")
		opts := engineOptions(cmd)
		if opts.Catalog == "" {
			return errors.New("watch requires --catalog")
		}

		out := cmd.OutOrStdout()
		tui.PrintBanner(os.Stderr)
		cli.PrintSystemMessage(out, "Watching '%s' for changes to '%s'.", opts.Catalog, args[0])

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		err := cli.Watch(ctx, opts, args[0], format, strict, cli.NewLogger(opts.Debug), func(r validator.Report) {
			if err := printReport(out, r, false); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			cli.PrintSystemMessage(out, "Waiting for changes...")
		})
		if errors.Is(err, ports.ErrWatchUnsupported) {
			return fmt.Errorf("catalog %s cannot be watched: %w", opts.Catalog, err)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Bool("strict", false, "Treat warnings and unresolved cards as failures")
}
