package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mesh-intelligence/userstore/pkg/types"
)

// userJSON is the --json rendering of a record. The password hash is only
// included when explicitly requested.
type userJSON struct {
	SchemaVersion int    `json:"schema_version"`
	UID           int64  `json:"uid"`
	Username      string `json:"username"`
	PasswordHash  string `json:"password_hash,omitempty"`
	CreatedAt     string `json:"created_at"`
	Nickname      string `json:"nickname"`
	Goal          string `json:"goal"`
	Location      string `json:"location"`
	Time          string `json:"time"`
}

func toJSON(u types.UserRecord, showHash bool) userJSON {
	j := userJSON{
		SchemaVersion: u.SchemaVersion,
		UID:           u.UID,
		Username:      u.Username,
		CreatedAt:     u.CreatedAt,
		Nickname:      u.Nickname,
		Goal:          u.Goal,
		Location:      u.Location,
		Time:          u.Time,
	}
	if showHash {
		j.PasswordHash = u.PasswordHash
	}
	return j
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeUserTable(w io.Writer, users []types.UserRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "UID\tUSERNAME\tNICKNAME\tSCHEMA\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\tv%d\t%s\n", u.UID, u.Username, u.Nickname, u.SchemaVersion, u.CreatedAt)
	}
	return tw.Flush()
}

func writeUserDetail(w io.Writer, u types.UserRecord, showHash bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "username:\t%s\n", u.Username)
	fmt.Fprintf(tw, "uid:\t%d\n", u.UID)
	fmt.Fprintf(tw, "schema_version:\t%d\n", u.SchemaVersion)
	fmt.Fprintf(tw, "nickname:\t%s\n", u.Nickname)
	fmt.Fprintf(tw, "created_at:\t%s\n", u.CreatedAt)
	fmt.Fprintf(tw, "goal:\t%s\n", u.Goal)
	fmt.Fprintf(tw, "location:\t%s\n", u.Location)
	fmt.Fprintf(tw, "time:\t%s\n", u.Time)
	if showHash {
		fmt.Fprintf(tw, "password_hash:\t%s\n", u.PasswordHash)
	}
	return tw.Flush()
}
