package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/userstore/pkg/types"
)

// recordFlags are the per-field flags shared by add and update.
type recordFlags struct {
	schemaVersion int
	uid           int64
	passwordHash  string
	createdAt     string
	nickname      string
	goal          string
	location      string
	time          string
}

func (f *recordFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.schemaVersion, "schema-version", types.SchemaV2, "record schema version (1 or 2)")
	fs.Int64Var(&f.uid, "uid", 0, "numeric user id (0 = unassigned)")
	fs.StringVar(&f.passwordHash, "password-hash", "", "already-hashed password")
	fs.StringVar(&f.createdAt, "created-at", "", "creation timestamp (default: now, RFC 3339 UTC)")
	fs.StringVar(&f.nickname, "nickname", "", "display name (default: username)")
	fs.StringVar(&f.goal, "goal", "", "study goal")
	fs.StringVar(&f.location, "location", "", "study location")
	fs.StringVar(&f.time, "time", "", "preferred study time")
}

// apply copies every field flag the user set onto rec and returns how many
// were applied.
func (f *recordFlags) apply(fs *pflag.FlagSet, rec *types.UserRecord) int {
	set := map[string]func(){
		"schema-version": func() { rec.SchemaVersion = f.schemaVersion },
		"uid":            func() { rec.UID = f.uid },
		"password-hash":  func() { rec.PasswordHash = f.passwordHash },
		"created-at":     func() { rec.CreatedAt = f.createdAt },
		"nickname":       func() { rec.Nickname = f.nickname },
		"goal":           func() { rec.Goal = f.goal },
		"location":       func() { rec.Location = f.location },
		"time":           func() { rec.Time = f.time },
	}
	n := 0
	fs.Visit(func(fl *pflag.Flag) {
		if fn, ok := set[fl.Name]; ok {
			fn()
			n++
		}
	})
	return n
}

func validSchema(v int) error {
	if v != types.SchemaV1 && v != types.SchemaV2 {
		return userErrorf("schema version must be %d or %d, got %d", types.SchemaV1, types.SchemaV2, v)
	}
	return nil
}

func newAddCmd(a *app) *cobra.Command {
	var (
		f        recordFlags
		username string
		now      = func() time.Time { return time.Now().UTC() }
	)
	cmd := &cobra.Command{
		Use:   "add --username <name> --password-hash <hash>",
		Short: "Append a new user",
		Long: `Append a new user record at the end of the users file. The username must not
already exist; the password must already be hashed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return userErrorf("--username must not be empty")
			}
			rec := types.UserRecord{
				SchemaVersion: f.schemaVersion,
				Username:      username,
				CreatedAt:     now().Format(time.RFC3339),
			}
			f.apply(cmd.Flags(), &rec)
			if err := validSchema(rec.SchemaVersion); err != nil {
				return err
			}
			rec.NormalizeNickname()

			_, exists, err := a.store.FindByUsername(username)
			if err != nil {
				return err
			}
			if exists {
				return userErrorf("user %q already exists", username)
			}
			if err := a.ensureDataDir(); err != nil {
				return err
			}
			if err := a.store.Append(rec); err != nil {
				return err
			}
			a.logger.Info("user added", "username", username, "path", a.store.Path())
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "unique username")
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password-hash")
	return cmd
}
