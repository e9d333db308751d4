package types

// Record schema versions. Version 2 added uid assignment and the goal,
// location and time profile fields.
const (
	SchemaV1 = 1
	SchemaV2 = 2
)

// UserRecord is one user account as persisted in the users file.
// Username is the unique key; the store does not enforce uniqueness on
// append, callers check with FindByUsername first.
type UserRecord struct {
	SchemaVersion int    // 1 or 2.
	UID           int64  // 0 means unassigned; positive after migration.
	Username      string // Required, non-empty.
	PasswordHash  string // Opaque; never hashed or checked here.
	CreatedAt     string // Free-form timestamp.
	Nickname      string // Defaults to Username when empty.
	Goal          string
	Location      string
	Time          string
}

// NormalizeNickname sets Nickname to Username when it is empty.
func (u *UserRecord) NormalizeNickname() {
	if u.Nickname == "" {
		u.Nickname = u.Username
	}
}
