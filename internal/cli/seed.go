package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"library-backend/internal/platform/db"
	"library-backend/internal/seed"
)

func newSeedDemoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-demo",
		Short: "Create the demo admin account and sample books",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := db.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			conn, authSvc, err := openAccounts(ctx, cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			docs := openDocumentStore(ctx, cfg)
			defer docs.Close()
			if !docs.status.Connected {
				return fmt.Errorf("document store: %s", docs.status.Error)
			}

			res, err := seed.Demo(ctx, authSvc, docs.store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin created: %t, sample books created: %d\n", res.AdminCreated, res.BooksCreated)
			return nil
		},
	}
}
