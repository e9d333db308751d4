package userstore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/mesh-intelligence/userstore/internal/codec"
	"github.com/mesh-intelligence/userstore/pkg/types"
)

// Side file suffixes.
const (
	tmpSuffix = ".tmp"
	bakSuffix = ".bak"
)

// Store reads and writes the users file at a fixed path.
type Store struct {
	path   string
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for rewrite diagnostics. The default
// discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Store for the users file at path. The file does not need to
// exist.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the users file path.
func (s *Store) Path() string { return s.path }

// TempPath returns the path rewrites stage new content in.
func (s *Store) TempPath() string { return s.path + tmpSuffix }

// BackupPath returns the path holding the content before the last rewrite.
func (s *Store) BackupPath() string { return s.path + bakSuffix }

// Append writes rec as a new line at the end of the file, creating the file
// if needed. It does not check for an existing record with the same username.
// A failed write may leave a partial line behind. Append does not add a
// missing newline to the current last line, so a record appended to a file
// that does not end in '\n' joins that line and cannot be found afterwards.
func (s *Store) Append(rec types.UserRecord) error {
	f, err := fileOps.openFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &types.Error{Op: "append", Kind: types.ErrFileOpen, Path: s.path, Err: err}
	}
	if _, err := io.WriteString(f, codec.Serialize(rec)); err != nil {
		_ = f.Close()
		return &types.Error{Op: "append", Kind: types.ErrWrite, Path: s.path, Err: err}
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return &types.Error{Op: "append", Kind: types.ErrWrite, Path: s.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &types.Error{Op: "append", Kind: types.ErrWrite, Path: s.path, Err: err}
	}
	return nil
}

// LoadAll returns every record in file order. A missing file yields an empty
// slice. The first unparseable line aborts the read and nothing is returned.
func (s *Store) LoadAll() ([]types.UserRecord, error) {
	return s.loadAll("load")
}

func (s *Store) loadAll(op string) ([]types.UserRecord, error) {
	records := []types.UserRecord{}
	err := s.scan(op, func(rec types.UserRecord) bool {
		records = append(records, rec)
		return true
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FindByUsername streams the file and returns the first record whose
// username equals name. The bool is false when no record matches or the file
// does not exist. A malformed line read before the match is an error.
func (s *Store) FindByUsername(name string) (types.UserRecord, bool, error) {
	var (
		found types.UserRecord
		ok    bool
	)
	err := s.scan("find", func(rec types.UserRecord) bool {
		if rec.Username == name {
			found, ok = rec, true
			return false
		}
		return true
	})
	if err != nil {
		return types.UserRecord{}, false, err
	}
	return found, ok, nil
}

// Update replaces the first record with rec.Username by rec and rewrites the
// file. Other records keep their content and order.
func (s *Store) Update(rec types.UserRecord) error {
	records, err := s.loadAll("update")
	if err != nil {
		return err
	}

	found := false
	for i := range records {
		if records[i].Username == rec.Username {
			records[i] = rec
			found = true
			break
		}
	}
	if !found {
		return &types.Error{Op: "update", Kind: types.ErrNotFound, Path: s.path, Err: usernameErr(rec.Username)}
	}
	return s.rewrite("update", records)
}

// Delete removes every record with the given username and rewrites the file
// with the rest in their original order.
func (s *Store) Delete(username string) error {
	records, err := s.loadAll("delete")
	if err != nil {
		return err
	}

	kept := records[:0]
	for _, rec := range records {
		if rec.Username == username {
			continue
		}
		kept = append(kept, rec)
	}
	if len(kept) == len(records) {
		return &types.Error{Op: "delete", Kind: types.ErrNotFound, Path: s.path, Err: usernameErr(username)}
	}
	return s.rewrite("delete", kept)
}

// Replace rewrites the whole file with records using the crash-safe rewrite.
func (s *Store) Replace(records []types.UserRecord) error {
	return s.rewrite("replace", records)
}

// scan calls fn for each parsed record until fn returns false or the file
// ends. Lines are split on '\n' only and may be of any length.
func (s *Store) scan(op string, fn func(types.UserRecord) bool) error {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &types.Error{Op: op, Kind: types.ErrFileOpen, Path: s.path, Err: err}
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for lineNo := 1; ; lineNo++ {
		line, readErr := r.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return &types.Error{Op: op, Kind: types.ErrFileOpen, Path: s.path, Line: lineNo, Err: readErr}
		}
		line = strings.TrimSuffix(line, "\n")
		if line != "" {
			rec, err := codec.Parse(line)
			if err != nil {
				return &types.Error{Op: op, Kind: types.ErrParse, Path: s.path, Line: lineNo, Err: err}
			}
			if !fn(rec) {
				return nil
			}
		}
		if readErr != nil {
			return nil
		}
	}
}

func usernameErr(name string) error {
	return fmt.Errorf("username %q", name)
}
