package main

import (
	"os"
	"strings"

	"github.com/aretw0/cardflow/internal/cli"
	"github.com/spf13/cobra"
)

// EncryptionKeyEnv holds comma separated hex keys; the first one encrypts.
const EncryptionKeyEnv = "CARDFLOW_ENCRYPTION_KEY"

func addStoreFlags(cmd *cobra.Command, backend string) {
	cmd.Flags().String("store", backend, "Session store: memory, file or redis")
	cmd.Flags().String("store-path", ".cardflow/sessions", "Directory of the file store")
	cmd.Flags().String("redis-addr", "localhost:6379", "Redis address")
	cmd.Flags().String("redis-password", "", "Redis password")
	cmd.Flags().Int("redis-db", 0, "Redis database")
	cmd.Flags().StringSlice("redact", nil, "Patterns of data keys masked before saving")
	cmd.Flags().Int("history", 0, "Maximum undo steps kept per session (0 keeps all)")
}

func storeOptions(cmd *cobra.Command) cli.StoreOptions {
	backend, _ := cmd.Flags().GetString("store")
	path, _ := cmd.Flags().GetString("store-path")
	addr, _ := cmd.Flags().GetString("redis-addr")
	password, _ := cmd.Flags().GetString("redis-password")
	db, _ := cmd.Flags().GetInt("redis-db")
	redact, _ := cmd.Flags().GetStringSlice("redact")
	history, _ := cmd.Flags().GetInt("history")

	opts := cli.StoreOptions{
		Backend:       backend,
		Path:          path,
		RedisAddr:     addr,
		RedisPassword: password,
		RedisDB:       db,
		Redact:        redact,
		HistoryLimit:  history,
	}
	if keys := os.Getenv(EncryptionKeyEnv); keys != "" {
		opts.EncryptionKeys = strings.Split(keys, ",")
	}
	return opts
}
