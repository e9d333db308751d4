// Package paths resolves where userstore keeps its configuration and its
// users file. Every resolver returns an absolute path.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory name used under the platform config and data roots.
const AppName = "userstore"

// DefaultDataDirName is the CWD-relative data directory used when nothing
// else is configured.
const DefaultDataDirName = ".userstore-db"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "USERSTORE_CONFIG_DIR"
	EnvDataDir   = "USERSTORE_DATA_DIR"
)

// platformDir holds platform lookups that tests override.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/userstore (fallback ~/.config/userstore)
// Others:  os.UserConfigDir()/userstore
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

func xdgDir(env, homeRel string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if v := os.Getenv(env); v != "" {
		return filepath.Join(v, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, AppName), nil
}

// ResolveConfigDir applies flag > USERSTORE_CONFIG_DIR > DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir applies flag > config data_dir > USERSTORE_DATA_DIR >
// $(CWD)/.userstore-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	for _, v := range []string{flag, configValue, os.Getenv(EnvDataDir)} {
		if v != "" {
			return filepath.Abs(v)
		}
	}
	return filepath.Abs(DefaultDataDirName)
}

// ResolveUsersFile returns fileFlag when set, otherwise usersFile inside
// dataDir.
func ResolveUsersFile(fileFlag, dataDir, usersFile string) (string, error) {
	if fileFlag != "" {
		return filepath.Abs(fileFlag)
	}
	return filepath.Abs(filepath.Join(dataDir, usersFile))
}
