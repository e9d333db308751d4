// Package codec converts user records to and from single JSONL lines.
//
// The parser is not a general JSON parser. It looks up each known key by
// literal substring search on one line and extracts the value up to the next
// unescaped delimiter. Nested objects, arrays, unicode escapes and numbers
// other than integers are not understood. Malformed or partial lines are
// tolerated the same way every time: unknown or missing fields default to the
// zero value, and only a line that yields no username is rejected.
//
// Serialize escapes only backslash and double quote. Control characters and
// non-ASCII text are written as-is, so a value containing a newline cannot be
// stored faithfully.
package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/userstore/pkg/types"
)

// Field keys in persisted order.
const (
	keySchemaVersion = "schema_version"
	keyUID           = "uid"
	keyUsername      = "username"
	keyPasswordHash  = "password_hash"
	keyCreatedAt     = "created_at"
	keyNickname      = "nickname"
	keyGoal          = "goal"
	keyLocation      = "location"
	keyTime          = "time"
)

// ErrMissingUsername is the cause of a parse failure when the line has no
// usable username.
var ErrMissingUsername = errors.New("missing username")

// ParseError reports why a line was rejected. It matches types.ErrParse.
type ParseError struct {
	Field string // Empty when the username is missing.
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return "field " + e.Field + ": " + e.Err.Error()
}

func (e *ParseError) Is(target error) bool { return target == types.ErrParse }

func (e *ParseError) Unwrap() error { return e.Err }

// Serialize renders rec as one JSON object followed by a newline.
func Serialize(rec types.UserRecord) string {
	var b strings.Builder
	b.Grow(160 + len(rec.Username) + len(rec.PasswordHash) + len(rec.Nickname))

	b.WriteByte('{')
	writeInt(&b, keySchemaVersion, int64(rec.SchemaVersion))
	b.WriteByte(',')
	writeInt(&b, keyUID, rec.UID)
	b.WriteByte(',')
	writeString(&b, keyUsername, rec.Username)
	b.WriteByte(',')
	writeString(&b, keyPasswordHash, rec.PasswordHash)
	b.WriteByte(',')
	writeString(&b, keyCreatedAt, rec.CreatedAt)
	b.WriteByte(',')
	writeString(&b, keyNickname, rec.Nickname)
	b.WriteByte(',')
	writeString(&b, keyGoal, rec.Goal)
	b.WriteByte(',')
	writeString(&b, keyLocation, rec.Location)
	b.WriteByte(',')
	writeString(&b, keyTime, rec.Time)
	b.WriteString("}\n")
	return b.String()
}

func writeInt(b *strings.Builder, key string, v int64) {
	b.WriteByte('"')
	b.WriteString(key)
	b.WriteString(`":`)
	b.WriteString(strconv.FormatInt(v, 10))
}

func writeString(b *strings.Builder, key, v string) {
	b.WriteByte('"')
	b.WriteString(key)
	b.WriteString(`":"`)
	b.WriteString(Escape(v))
	b.WriteByte('"')
}

// Escape prefixes every backslash and double quote with a backslash.
func Escape(s string) string {
	if !strings.ContainsAny(s, `\"`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' || c == '"' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Unescape reverses Escape. Backslash sequences other than \\ and \" are
// kept literally.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == '"') {
			i++
			c = s[i]
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Parse extracts a record from one line. It returns a *ParseError when the
// username is empty or an integer field holds non-numeric content. Nickname
// defaults to Username.
func Parse(line string) (types.UserRecord, error) {
	var rec types.UserRecord

	sv, err := intField(line, keySchemaVersion)
	if err != nil {
		return types.UserRecord{}, err
	}
	rec.SchemaVersion = int(sv)
	if rec.UID, err = intField(line, keyUID); err != nil {
		return types.UserRecord{}, err
	}
	rec.Username = stringField(line, keyUsername)
	rec.PasswordHash = stringField(line, keyPasswordHash)
	rec.CreatedAt = stringField(line, keyCreatedAt)
	rec.Nickname = stringField(line, keyNickname)
	rec.Goal = stringField(line, keyGoal)
	rec.Location = stringField(line, keyLocation)
	rec.Time = stringField(line, keyTime)

	if rec.Username == "" {
		return types.UserRecord{}, &ParseError{Err: ErrMissingUsername}
	}
	rec.NormalizeNickname()
	return rec, nil
}

// stringField returns the unescaped value of "key":"..." or "" when the key
// or its closing quote is missing.
func stringField(line, key string) string {
	pat := `"` + key + `":"`
	pos := strings.Index(line, pat)
	if pos < 0 {
		return ""
	}
	start := pos + len(pat)
	for i := start; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '"':
			return Unescape(line[start:i])
		}
	}
	return ""
}

// intField returns the integer after "key": up to the next ',' or '}'.
// A missing key or delimiter yields 0.
func intField(line, key string) (int64, error) {
	pat := `"` + key + `":`
	pos := strings.Index(line, pat)
	if pos < 0 {
		return 0, nil
	}
	start := pos + len(pat)
	end := strings.IndexAny(line[start:], ",}")
	if end < 0 {
		return 0, nil
	}
	v, err := leadingInt(line[start : start+end])
	if err != nil {
		return 0, &ParseError{Field: key, Err: err}
	}
	return v, nil
}

// leadingInt parses an optionally signed decimal prefix after leading
// whitespace, ignoring whatever follows the digits.
func leadingInt(s string) (int64, error) {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	n := 0
	if n < len(s) && (s[n] == '+' || s[n] == '-') {
		n++
	}
	digits := n
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == digits {
		return 0, fmt.Errorf("no digits in %q", s)
	}
	return strconv.ParseInt(s[:n], 10, 64)
}
