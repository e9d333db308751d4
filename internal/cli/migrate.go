package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/userstore/internal/migrate"
)

type migrateJSON struct {
	RunID        string `json:"run_id"`
	Path         string `json:"path"`
	Records      int    `json:"records"`
	Upgraded     int    `json:"upgraded"`
	UIDsAssigned int    `json:"uids_assigned"`
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade every record to schema v2",
		Long: `Set schema_version to 2 on every record, assign sequential uids starting at 1
to records with uid 0, and fill empty nicknames with the username.

The counter used for new uids does not skip uids already in the file;
check for duplicates afterwards if the file mixes assigned and unassigned
records.

The file is rewritten through <file>.tmp and the previous content is kept in
<file>.bak. If the run is interrupted, restore <file> from <file>.bak (or
from <file>.tmp when it is complete) before running again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureDataDir(); err != nil {
				return err
			}
			report, err := migrate.V1ToV2(a.store.Path(), a.logger)
			if err != nil {
				return err
			}
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), migrateJSON{
					RunID:        report.RunID.String(),
					Path:         report.Path,
					Records:      report.Records,
					Upgraded:     report.Upgraded,
					UIDsAssigned: report.UIDsAssigned,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d records (%d upgraded, %d uids assigned)\n",
				report.Records, report.Upgraded, report.UIDsAssigned)
			return nil
		},
	}
}
