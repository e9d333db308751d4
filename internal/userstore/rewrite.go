package userstore

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/userstore/internal/codec"
	"github.com/mesh-intelligence/userstore/pkg/types"
)

// writableFile is the subset of *os.File the store writes through.
type writableFile interface {
	io.Writer
	Sync() error
	Close() error
}

// fileOps holds the file system calls used for mutation. Tests override
// them to simulate failures at each phase.
var fileOps = struct {
	openFile func(name string, flag int, perm os.FileMode) (writableFile, error)
	rename   func(oldpath, newpath string) error
	remove   func(name string) error
}{
	openFile: func(name string, flag int, perm os.FileMode) (writableFile, error) {
		return os.OpenFile(name, flag, perm)
	},
	rename: os.Rename,
	remove: os.Remove,
}

// Phase identifies a step of the crash-safe rewrite.
type Phase int

// Rewrite phases in execution order.
const (
	PhaseWriteTemp Phase = iota + 1
	PhaseRotateBackup
	PhasePromote
)

func (p Phase) String() string {
	switch p {
	case PhaseWriteTemp:
		return "write-temp"
	case PhaseRotateBackup:
		return "rotate-backup"
	case PhasePromote:
		return "promote"
	default:
		return "unknown"
	}
}

// PhaseOf returns the rewrite phase an error from Update, Delete or Replace
// came from, or 0 when it did not come from a rewrite.
func PhaseOf(err error) Phase {
	var pe *phaseError
	if errors.As(err, &pe) {
		return pe.phase
	}
	return 0
}

// phaseError tags a *types.Error with the rewrite phase that produced it.
type phaseError struct {
	phase Phase
	err   *types.Error
}

func (e *phaseError) Error() string { return e.phase.String() + ": " + e.err.Error() }

func (e *phaseError) Unwrap() error { return e.err }

// rewrite replaces the users file with records: write-temp, rotate-backup,
// promote.
func (s *Store) rewrite(op string, records []types.UserRecord) error {
	log := s.logger.With("op", op, "path", s.path)

	if err := s.writeTemp(op, records); err != nil {
		return &phaseError{phase: PhaseWriteTemp, err: err}
	}
	log.Debug("rewrite phase done", "phase", PhaseWriteTemp, "records", len(records))

	s.rotateBackup(op)
	log.Debug("rewrite phase done", "phase", PhaseRotateBackup, "backup", s.BackupPath())

	if err := s.promote(op); err != nil {
		return &phaseError{phase: PhasePromote, err: err}
	}
	log.Debug("rewrite phase done", "phase", PhasePromote)
	return nil
}

// writeTemp serializes records into the temp file, truncating it first. On
// failure the temp file is removed and the canonical file is not touched.
func (s *Store) writeTemp(op string, records []types.UserRecord) *types.Error {
	tmp := s.TempPath()
	f, err := fileOps.openFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return &types.Error{Op: op, Kind: types.ErrFileOpen, Path: tmp, Err: err}
	}

	fail := func(err error) *types.Error {
		_ = f.Close()
		_ = fileOps.remove(tmp)
		return &types.Error{Op: op, Kind: types.ErrWrite, Path: tmp, Err: err}
	}

	w := bufio.NewWriter(f)
	for _, rec := range records {
		if _, err := w.WriteString(codec.Serialize(rec)); err != nil {
			return fail(err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail(err)
	}
	if err := f.Sync(); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		_ = fileOps.remove(tmp)
		return &types.Error{Op: op, Kind: types.ErrWrite, Path: tmp, Err: err}
	}
	return nil
}

// rotateBackup moves the current file to the backup path. Both steps are
// best-effort: the users file may not exist yet, and a failed rename still
// lets the promote step overwrite the canonical file.
func (s *Store) rotateBackup(op string) {
	bak := s.BackupPath()
	_ = fileOps.remove(bak)
	if err := fileOps.rename(s.path, bak); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("backup rotation failed, continuing",
			"op", op, "path", s.path, "backup", bak, "err", err)
	}
}

// promote renames the temp file over the canonical path.
func (s *Store) promote(op string) *types.Error {
	tmp := s.TempPath()
	if err := fileOps.rename(tmp, s.path); err != nil {
		return &types.Error{Op: op, Kind: types.ErrRename, Path: tmp, Err: err, Backup: s.BackupPath()}
	}
	syncDir(filepath.Dir(s.path))
	return nil
}

// syncDir flushes the directory entry after a rename. Errors are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
