package types

import (
	"errors"
	"fmt"
	"strings"
)

// Store error kinds. Each names the phase that failed so an operator knows
// whether the canonical file was touched.
var (
	// ErrFileOpen: the users file (append) or the temp file (rewrite) could
	// not be opened. Nothing destructive happened.
	ErrFileOpen = errors.New("open failed")
	// ErrWrite: a write, flush, sync or close failed. The canonical file is
	// untouched for rewrites; append may leave a partial line.
	ErrWrite = errors.New("write failed")
	// ErrParse: a non-empty line did not yield a username.
	ErrParse = errors.New("parse failed")
	// ErrNotFound: update or delete target username is absent.
	ErrNotFound = errors.New("user not found")
	// ErrRename: promoting the temp file over the canonical path failed.
	// The pre-rewrite content may only exist in the .bak file.
	ErrRename = errors.New("rename failed")
)

// Error is the structured error returned by store operations.
type Error struct {
	Op   string // append, load, find, update, delete, rewrite.
	Kind error  // One of the Err* sentinels above.
	Path string // File the failing phase was operating on.
	Line int    // 1-based line number for ErrParse, 0 otherwise.
	Err  error  // Underlying cause, may be nil.

	// Backup names the .bak file to restore from. Set for ErrRename.
	Backup string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Backup != "" {
		fmt.Fprintf(&b, " (previous content kept in %s; restore it manually)", e.Backup)
	}
	return b.String()
}

// Is reports whether target is the error kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}
