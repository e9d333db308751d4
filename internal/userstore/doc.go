// Package userstore persists user records in a single JSONL file.
//
// # File Layout
//
// The users file holds one record per line in the fixed field order written
// by the codec package. A missing file is an empty store. Every line written
// by the store ends in '\n'. A last line without one is still read, but the
// next Append joins it, and only the first record on that line is visible.
// Two side files sit next to it:
//
//   - <path>.tmp is the next version of the file while a rewrite is in
//     progress. It only survives a crash between writing and promoting.
//   - <path>.bak is the content before the most recent rewrite. Operators
//     restore from it by hand when a rewrite fails at the promote step.
//
// # Mutation
//
// Append writes one line at the end of the file. Update, Delete and Replace
// load every record, change the list in memory, and rewrite the whole file in
// three phases: write-temp, rotate-backup, promote. A failure in write-temp
// leaves the canonical file untouched. A failed backup rotation is logged and
// ignored. A failed promote is reported with the backup path and is not
// rolled back.
//
// # Concurrency
//
// A Store keeps no state besides the path and holds no file open between
// calls. It takes no locks: concurrent callers, in one process or several,
// can interleave writes and break the temp/backup rename sequence. Use one
// caller per file.
package userstore
