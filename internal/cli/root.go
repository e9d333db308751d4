// Package cli implements the userstore command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/userstore/internal/paths"
	"github.com/mesh-intelligence/userstore/internal/userstore"
	"github.com/mesh-intelligence/userstore/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app holds global flag values and the state PersistentPreRunE resolves for
// every subcommand.
type app struct {
	configDir string
	dataDir   string
	file      string
	logLevel  string
	jsonMode  bool

	cfg    types.Config
	logger *slog.Logger
	store  *userstore.Store
}

// userError marks failures caused by the caller's input.
type userError struct{ msg string }

func (e *userError) Error() string { return e.msg }

func userErrorf(format string, args ...any) error {
	return &userError{msg: fmt.Sprintf(format, args...)}
}

// NewRootCmd creates the top-level "userstore" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "userstore",
		Short: "Inspect and maintain a JSONL user account store",
		Long: `userstore manages the users file: one JSON object per line holding a user
account. Update, delete and migrate rewrite the file through <file>.tmp and
keep the previous content in <file>.bak.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/userstore)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/.userstore-db)")
	root.PersistentFlags().StringVar(&a.file, "file", "", "users file path, overrides data dir and users_file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newListCmd(a),
		newGetCmd(a),
		newAddCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newMigrateCmd(a),
		newExportCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "userstore:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var ue *userError
	switch {
	case err == nil:
		return exitSuccess
	case errors.As(err, &ue), errors.Is(err, types.ErrNotFound):
		return exitUserError
	default:
		return exitSysError
	}
}

// setup loads config.yaml, resolves the users file and builds the logger and
// store used by subcommands.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	switch cmd.Name() {
	case "version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return nil
	}
	if p := cmd.Parent(); p != nil && p.Name() == "completion" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	a.configDir = configDir

	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}

	dataDir, err := paths.ResolveDataDir(a.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	a.cfg = types.Config{
		DataDir:   dataDir,
		UsersFile: v.GetString(cfgKeyUsersFile),
		LogLevel:  v.GetString(cfgKeyLogLevel),
	}
	if a.logLevel != "" {
		a.cfg.LogLevel = a.logLevel
	}
	if err := a.cfg.Validate(); err != nil {
		return userErrorf("invalid configuration: %s", err)
	}

	usersPath, err := paths.ResolveUsersFile(a.file, a.cfg.DataDir, a.cfg.UsersFile)
	if err != nil {
		return fmt.Errorf("resolve users file: %w", err)
	}

	a.logger = newLogger(cmd.ErrOrStderr(), a.cfg.LogLevel)
	a.store = userstore.New(usersPath, userstore.WithLogger(a.logger))
	a.logger.Debug("configuration resolved", "config_dir", configDir, "users_file", usersPath)
	return nil
}

// ensureDataDir creates the directory holding the users file.
func (a *app) ensureDataDir() error {
	if err := os.MkdirAll(filepath.Dir(a.store.Path()), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return nil
}
