// Package cli wires configuration, stores and services into the
// library-backend commands.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"library-backend/internal/platform/db"
)

type rootOptions struct {
	configPath string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "library-backend",
		Short:        "Library catalog and borrow ledger service",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", db.DefaultConfigPath, "path to config.yaml")

	cmd.AddCommand(
		newServeCmd(opts),
		newCheckStoreCmd(opts),
		newSeedDemoCmd(opts),
		newMigrateSQLiteCmd(opts),
	)
	return cmd
}

func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
