// Package migrate upgrades a users file from record schema v1 to v2.
//
// Migration is a client of the userstore package: it loads every record,
// upgrades them in memory, and writes the result back with the same
// crash-safe rewrite used by Update and Delete. It is not a multi-file
// transaction. A crash between writing the temp file and promoting it can
// leave the data in <path>.tmp or <path>.bak for manual recovery.
package migrate

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/userstore/internal/userstore"
	"github.com/mesh-intelligence/userstore/pkg/types"
)

// Result counts what Upgrade changed.
type Result struct {
	Records         int // Records visited.
	Upgraded        int // Records whose schema version changed.
	UIDsAssigned    int // Records that had uid 0.
	NicknamesFilled int // Records whose empty nickname was set.
}

// Report describes one completed migration run.
type Report struct {
	RunID uuid.UUID
	Path  string
	Result
}

// Upgrade rewrites records in place to schema v2. Records with uid 0 get the
// next value of a counter starting at 1, in record order. The counter only
// advances on assignment and does not skip uids already present in the
// file, so an old uid can collide with a newly assigned one.
func Upgrade(records []types.UserRecord) Result {
	res := Result{Records: len(records)}
	var nextUID int64 = 1
	for i := range records {
		u := &records[i]
		if u.SchemaVersion != types.SchemaV2 {
			u.SchemaVersion = types.SchemaV2
			res.Upgraded++
		}
		if u.UID == 0 {
			u.UID = nextUID
			nextUID++
			res.UIDsAssigned++
		}
		if u.Nickname == "" {
			u.NormalizeNickname()
			res.NicknamesFilled++
		}
	}
	return res
}

// V1ToV2 migrates the users file at path. A parse error aborts before
// anything is written. Running it again on v2 data assigns nothing new but
// still rewrites the file and rotates the backup.
func V1ToV2(path string, logger *slog.Logger) (Report, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	runID, err := uuid.NewV7()
	if err != nil {
		return Report{}, fmt.Errorf("generate run id: %w", err)
	}
	log := logger.With("run_id", runID.String(), "path", path)

	st := userstore.New(path, userstore.WithLogger(log))
	records, err := st.LoadAll()
	if err != nil {
		return Report{}, fmt.Errorf("migrate: %w", err)
	}

	res := Upgrade(records)
	log.Debug("records upgraded in memory",
		"records", res.Records, "upgraded", res.Upgraded, "uids_assigned", res.UIDsAssigned)

	if err := st.Replace(records); err != nil {
		return Report{}, fmt.Errorf("migrate: %w", err)
	}

	log.Info("migration complete",
		"records", res.Records, "upgraded", res.Upgraded,
		"uids_assigned", res.UIDsAssigned, "backup", st.BackupPath())
	return Report{RunID: runID, Path: path, Result: res}, nil
}
