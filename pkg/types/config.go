package types

import (
	"errors"
	"path/filepath"
	"strings"
)

// Config describes where the users file lives and how loudly to log.
type Config struct {
	DataDir   string `json:"data_dir" yaml:"data_dir"`
	UsersFile string `json:"users_file" yaml:"users_file"`
	LogLevel  string `json:"log_level" yaml:"log_level"`
}

// Defaults applied when a config key is absent.
const (
	DefaultUsersFile = "users.jsonl"
	DefaultLogLevel  = "info"
)

// Config validation errors.
var (
	ErrUsersFileEmpty  = errors.New("users file must not be empty")
	ErrUsersFileNested = errors.New("users file must be a plain file name")
	ErrLogLevelUnknown = errors.New("unknown log level")
)

var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the Config is well-formed. An empty DataDir is valid
// and means the current directory.
func (c Config) Validate() error {
	if c.UsersFile == "" {
		return ErrUsersFileEmpty
	}
	if strings.ContainsAny(c.UsersFile, `/\`) {
		return ErrUsersFileNested
	}
	if c.LogLevel != "" && !knownLogLevels[strings.ToLower(c.LogLevel)] {
		return ErrLogLevelUnknown
	}
	return nil
}

// UsersPath joins DataDir and UsersFile.
func (c Config) UsersPath() string {
	return filepath.Join(c.DataDir, c.UsersFile)
}
