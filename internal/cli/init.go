package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/userstore/pkg/types"
)

// configFile is the structure written to config.yaml.
type configFile struct {
	DataDir   string `yaml:"data_dir,omitempty"`
	UsersFile string `yaml:"users_file"`
	LogLevel  string `yaml:"log_level"`
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and data directories",
		Long: `Create the configuration directory with a default config.yaml, and the data
directory that holds the users file. Existing files are left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(a.configDir, 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			configPath := filepath.Join(a.configDir, configFileExt)
			created, err := writeConfigIfMissing(configPath, a.cfg)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			if err := a.ensureDataDir(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if created {
				fmt.Fprintf(out, "Wrote %s\n", configPath)
			}
			fmt.Fprintf(out, "Users file: %s\n", a.store.Path())
			return nil
		},
	}
}

// writeConfigIfMissing creates config.yaml from cfg when the file does not
// exist. It reports whether a file was written.
func writeConfigIfMissing(path string, cfg types.Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	data, err := yaml.Marshal(&configFile{
		DataDir:   cfg.DataDir,
		UsersFile: cfg.UsersFile,
		LogLevel:  cfg.LogLevel,
	})
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# userstore configuration\n")
	return true, os.WriteFile(path, append(header, data...), 0o644)
}
