package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/userstore/pkg/types"
)

func newUpdateCmd(a *app) *cobra.Command {
	var f recordFlags
	cmd := &cobra.Command{
		Use:   "update <username>",
		Short: "Change fields of an existing user",
		Long: `Load the user, overlay the fields given as flags, and store the result in
place. The file is rewritten through <file>.tmp; the previous content is kept
in <file>.bak.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			rec, ok, err := a.store.FindByUsername(username)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("user %q: %w", username, types.ErrNotFound)
			}
			if f.apply(cmd.Flags(), &rec) == 0 {
				return userErrorf("nothing to update: pass at least one field flag")
			}
			if err := validSchema(rec.SchemaVersion); err != nil {
				return err
			}
			rec.NormalizeNickname()

			if err := a.store.Update(rec); err != nil {
				return err
			}
			a.logger.Info("user updated", "username", username, "backup", a.store.BackupPath())
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", username)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}
