package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/userstore/internal/sqlexport"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		dbPath        string
		includeHashes bool
	)
	cmd := &cobra.Command{
		Use:   "export --sqlite <db>",
		Short: "Copy the users file into a SQLite database",
		Long: `Write every record into a fresh SQLite database (table "users") for ad hoc
queries. The database is replaced on every run; the users file is not changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.store.LoadAll()
			if err != nil {
				return err
			}
			if err := sqlexport.Export(cmd.Context(), dbPath, users, includeHashes); err != nil {
				return err
			}
			a.logger.Info("export complete", "db", dbPath, "records", len(users))
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(users), dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "sqlite", "", "target SQLite database file")
	cmd.Flags().BoolVar(&includeHashes, "include-hashes", false, "copy password hashes into the database")
	_ = cmd.MarkFlagRequired("sqlite")
	return cmd
}
