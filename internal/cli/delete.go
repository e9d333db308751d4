package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Remove a user",
		Long: `Remove every record with the given username. The file is rewritten through
<file>.tmp; the previous content is kept in <file>.bak.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Delete(args[0]); err != nil {
				return err
			}
			a.logger.Info("user deleted", "username", args[0], "backup", a.store.BackupPath())
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
