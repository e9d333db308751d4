package cli

import (
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var showHash bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every user in file order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.store.LoadAll()
			if err != nil {
				return err
			}
			if a.jsonMode {
				out := make([]userJSON, 0, len(users))
				for _, u := range users {
					out = append(out, toJSON(u, showHash))
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}
			return writeUserTable(cmd.OutOrStdout(), users)
		},
	}
	cmd.Flags().BoolVar(&showHash, "show-hash", false, "include password hashes in JSON output")
	return cmd
}
