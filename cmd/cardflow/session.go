package main

import (
	"fmt"

	"github.com/aretw0/cardflow/internal/cli"
	"github.com/aretw0/cardflow/pkg/session"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent edit sessions",
	Long:  `List, inspect, undo and remove edit sessions kept by a session store (default: .cardflow/sessions).`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newSessionManager(cmd)
		if err != nil {
			return err
		}
		ids, err := mgr.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}
		fmt.Fprintln(out, "Sessions:")
		for _, id := range ids {
			depth, err := mgr.History(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "- %s (%d undo steps)\n", id, depth)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the current graph of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		mgr, err := newSessionManager(cmd)
		if err != nil {
			return err
		}
		g, err := mgr.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}
		return cli.PrintDocument(cmd.OutOrStdout(), g, output)
	},
}

var sessionUndoCmd = &cobra.Command{
	Use:   "undo <session-id>",
	Short: "Revert the last edit of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newSessionManager(cmd)
		if err != nil {
			return err
		}
		g, err := mgr.Undo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session '%s' reverted (%d nodes, %d edges).\n", args[0], g.NodeCount(), g.EdgeCount())
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:     "rm <session-id>...",
	Aliases: []string{"delete"},
	Short:   "Remove sessions and their history",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newSessionManager(cmd)
		if err != nil {
			return err
		}
		for _, id := range args {
			if err := mgr.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("error removing session '%s': %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session '%s' removed.\n", id)
		}
		return nil
	},
}

func newSessionManager(cmd *cobra.Command) (*session.Manager, error) {
	engine, logger, err := newEngine(cmd)
	if err != nil {
		return nil, err
	}
	return cli.NewSessionManager(storeOptions(cmd), engine.Resolver(), logger)
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	for _, c := range []*cobra.Command{sessionLsCmd, sessionInspectCmd, sessionUndoCmd, sessionRmCmd} {
		addStoreFlags(c, cli.StoreFile)
		sessionCmd.AddCommand(c)
	}
	sessionInspectCmd.Flags().StringP("output", "o", "json", "Output format: json or yaml")
}
