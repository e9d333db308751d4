package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/userstore/pkg/types"
)

func newGetCmd(a *app) *cobra.Command {
	var showHash bool
	cmd := &cobra.Command{
		Use:   "get <username>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, ok, err := a.store.FindByUsername(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("user %q: %w", args[0], types.ErrNotFound)
			}
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), toJSON(u, showHash))
			}
			return writeUserDetail(cmd.OutOrStdout(), u, showHash)
		},
	}
	cmd.Flags().BoolVar(&showHash, "show-hash", false, "include the password hash")
	return cmd
}
