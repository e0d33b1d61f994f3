package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"library-backend/internal/migrate"
	"library-backend/internal/platform/db"
)

func newMigrateSQLiteCmd(opts *rootOptions) *cobra.Command {
	var sqlitePath string
	cmd := &cobra.Command{
		Use:   "migrate-sqlite",
		Short: "Import books and borrow records from the legacy SQLite database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := db.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			src, err := migrate.OpenSQLite(sqlitePath)
			if err != nil {
				return err
			}
			defer src.Close()

			docs := openDocumentStore(ctx, cfg)
			defer docs.Close()
			if !docs.status.Connected {
				return fmt.Errorf("document store: %s", docs.status.Error)
			}

			rep, err := migrate.FromSQLite(ctx, src, docs.store)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d books (%d already present)\n", rep.BooksImported, rep.BooksExisting)
			fmt.Fprintf(out, "Imported %d borrow records\n", rep.BorrowsImported)
			for _, s := range rep.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %s\n", s)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "db.sqlite3", "path to the legacy SQLite database")
	return cmd
}
