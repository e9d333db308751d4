package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain builds the userstore binary once before running tests.
func TestMain(m *testing.M) {
	projectRoot, err := FindProjectRoot()
	if err != nil {
		buildErr = err
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "userstore-test-*")
	if err != nil {
		buildErr = err
		os.Exit(1)
	}
	userstoreBin = filepath.Join(tmpDir, "userstore")

	cmd := exec.Command("go", "build", "-o", userstoreBin, "./cmd/userstore")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		buildErr = &BuildError{Err: err, Output: string(output)}
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

func TestUserLifecycle(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRun("init")

	env.MustRun("add", "--username", "alice", "--password-hash", `h"1\x`)
	env.MustRun("add", "--username", "bob", "--password-hash", "h2", "--goal", "toefl")
	env.MustRun("add", "--username", "carol", "--password-hash", "h3")

	env.MustRun("update", "bob", "--location", "cafe")
	env.MustRun("delete", "carol")

	users := ReadJSONLFile[User](t, env.UsersFile())
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, `h"1\x`, users[0].PasswordHash)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, "toefl", users[1].Goal)
	assert.Equal(t, "cafe", users[1].Location)

	backup := ReadJSONLFile[User](t, env.UsersFile()+".bak")
	require.Len(t, backup, 3, "backup holds the content before the last rewrite")
	assert.NoFileExists(t, env.UsersFile()+".tmp")
}

func TestExitCodes(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRun("add", "--username", "alice", "--password-hash", "h")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"version", []string{"version"}, 0},
		{"missing user", []string{"get", "nobody"}, 1},
		{"duplicate add", []string{"add", "--username", "alice", "--password-hash", "h"}, 1},
		{"delete missing", []string{"delete", "nobody"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := env.Run(tt.args...)
			assert.Equal(t, tt.code, result.ExitCode, "stderr: %s", result.Stderr)
		})
	}
}

func TestCorruptFileExitsWithSystemError(t *testing.T) {
	env := NewTestEnv(t)
	env.WriteUsersFile(`{"schema_version":2,"uid":1,"username":"a","password_hash":"x"}` + "\n" +
		`{"schema_version":2,"uid":"oops","username":"b"}` + "\n")

	result := env.Run("list")
	assert.Equal(t, 2, result.ExitCode)
	assert.Contains(t, result.Stderr, "line 2")

	result = env.Run("delete", "a")
	assert.Equal(t, 2, result.ExitCode)
	data, err := os.ReadFile(env.UsersFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"oops"`, "failed mutation leaves the file untouched")
	assert.NoFileExists(t, env.UsersFile()+".bak")
}

func TestMigrateV1File(t *testing.T) {
	env := NewTestEnv(t)
	v1 := `{"schema_version":1,"uid":0,"username":"old1","password_hash":"x","created_at":"2024-01-01"}` + "\n" +
		`{"schema_version":1,"uid":0,"username":"old2","password_hash":"y","created_at":"2024-01-02"}` + "\n"
	env.WriteUsersFile(v1)

	result := env.MustRun("migrate")
	assert.True(t, strings.HasPrefix(result.Stdout, "Migrated 2 records"), result.Stdout)

	users := ReadJSONLFile[User](t, env.UsersFile())
	require.Len(t, users, 2)
	for i, u := range users {
		assert.Equal(t, 2, u.SchemaVersion)
		assert.Equal(t, int64(i+1), u.UID)
		assert.Equal(t, u.Username, u.Nickname)
	}

	bak, err := os.ReadFile(env.UsersFile() + ".bak")
	require.NoError(t, err)
	assert.Equal(t, v1, string(bak))
}
