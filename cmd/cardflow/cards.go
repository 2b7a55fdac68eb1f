package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/cardflow/internal/cli"
	"github.com/aretw0/cardflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "List the available cards",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		engine, _, err := newEngine(cmd)
		if err != nil {
			return err
		}

		var sb strings.Builder
		sb.WriteString("| Card | Name | Category | Inputs | Outputs |\n|---|---|---|---|---|\n")
		var metas []any
		for _, id := range engine.CardIDs() {
			c, ok := engine.Cards().Resolve(id)
			if !ok {
				continue
			}
			meta, sig := c.Meta(), c.Signature()
			metas = append(metas, map[string]any{"meta": meta, "signature": sig})
			fmt.Fprintf(&sb, "| %s | %s | %s | %d | %d |\n", meta.ID, meta.Name, meta.Category, len(sig.Inputs), len(sig.Outputs))
		}

		if asJSON {
			return cli.PrintJSON(cmd.OutOrStdout(), metas)
		}
		if len(metas) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No cards found. Use --catalog or --process-cards.")
			return nil
		}
		out := sb.String()
		if tui.IsTerminal(os.Stdout) {
			if rendered, err := tui.NewRenderer()(out); err == nil {
				out = rendered
			}
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(cardsCmd)
	cardsCmd.Flags().Bool("json", false, "Print cards as JSON")
}
