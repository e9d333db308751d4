// Package sqlexport writes a snapshot of user records into a SQLite database
// so operators can inspect a users file with SQL. The export is one-way: the
// JSONL file stays the source of truth and the database is recreated on every
// run.
package sqlexport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/userstore/pkg/types"
)

// Schema for the exported table. line is the 1-based position of the record
// among the non-empty records of the users file; usernames are not unique.
const createUsers = `CREATE TABLE users (
    line INTEGER PRIMARY KEY,
    schema_version INTEGER NOT NULL,
    uid INTEGER NOT NULL,
    username TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TEXT NOT NULL,
    nickname TEXT NOT NULL,
    goal TEXT NOT NULL,
    location TEXT NOT NULL,
    time TEXT NOT NULL
);`

const insertUser = `INSERT INTO users
    (line, schema_version, uid, username, password_hash, created_at, nickname, goal, location, time)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Export replaces dbPath with a fresh database holding records in order.
// Password hashes are exported only when includeHashes is true; otherwise the
// column is empty.
func Export(ctx context.Context, dbPath string, records []types.UserRecord, includeHashes bool) error {
	if err := os.Remove(dbPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing old export %s: %w", dbPath, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, createUsers); err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning export transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertUser)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		hash := ""
		if includeHashes {
			hash = r.PasswordHash
		}
		if _, err := stmt.ExecContext(ctx, i+1, r.SchemaVersion, r.UID, r.Username, hash,
			r.CreatedAt, r.Nickname, r.Goal, r.Location, r.Time); err != nil {
			return fmt.Errorf("inserting %q: %w", r.Username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}
	return nil
}
