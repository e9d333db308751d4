// Package types defines the user record, its schema versions, the store
// configuration, and the error kinds shared by the codec, the store, the
// migration and the CLI.
//
// Error kinds are sentinels (ErrFileOpen, ErrWrite, ErrParse, ErrNotFound,
// ErrRename). Store operations return *Error values whose Kind is one of those
// sentinels, so callers test with errors.Is and read the phase-specific
// message with Error().
package types
