package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/userstore/pkg/types"
)

func TestSerializeFieldOrder(t *testing.T) {
	rec := types.UserRecord{
		SchemaVersion: 2,
		UID:           7,
		Username:      "alice",
		PasswordHash:  "h$1",
		CreatedAt:     "2025-01-15T10:00:00Z",
		Nickname:      "Al",
		Goal:          "ielts",
		Location:      "library",
		Time:          "evening",
	}

	want := `{"schema_version":2,"uid":7,"username":"alice","password_hash":"h$1",` +
		`"created_at":"2025-01-15T10:00:00Z","nickname":"Al","goal":"ielts",` +
		`"location":"library","time":"evening"}` + "\n"
	assert.Equal(t, want, Serialize(rec))
}

func TestSerializeEmptyRecordIsOneLine(t *testing.T) {
	line := Serialize(types.UserRecord{})
	assert.True(t, strings.HasSuffix(line, "}\n"))
	assert.Equal(t, 1, strings.Count(line, "\n"))
	assert.Contains(t, line, `"uid":0,`)
	assert.Contains(t, line, `"time":""}`)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		rec  types.UserRecord
	}{
		{
			name: "all fields set",
			rec: types.UserRecord{
				SchemaVersion: 2, UID: 42, Username: "bob", PasswordHash: "sha256:abc",
				CreatedAt: "2025-02-01 08:00:00", Nickname: "Bobby",
				Goal: "gre", Location: "home", Time: "morning",
			},
		},
		{
			name: "v1 record with zero uid",
			rec: types.UserRecord{
				SchemaVersion: 1, Username: "carol", PasswordHash: "x", Nickname: "carol",
			},
		},
		{
			name: "quote and backslash in username and hash",
			rec: types.UserRecord{
				SchemaVersion: 2, UID: 1, Username: `we"ird\name`, PasswordHash: `p\"q"\\`,
				Nickname: `nick "n"`,
			},
		},
		{
			name: "value that looks like another key",
			rec: types.UserRecord{
				SchemaVersion: 2, UID: 3, Username: `eve","uid":99,"x":"`, PasswordHash: "h",
				Nickname: "eve",
			},
		},
		{
			name: "negative uid and unicode",
			rec: types.UserRecord{
				SchemaVersion: 2, UID: -5, Username: "ジョン", PasswordHash: "h", Nickname: "ジョン",
				Location: "東京",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := Serialize(tt.rec)
			got, err := Parse(strings.TrimSuffix(line, "\n"))
			require.NoError(t, err)
			assert.Equal(t, tt.rec, got)
		})
	}
}

func TestRoundTripDefaultsEmptyNickname(t *testing.T) {
	rec := types.UserRecord{SchemaVersion: 2, UID: 1, Username: "dave", PasswordHash: "h"}

	got, err := Parse(Serialize(rec))
	require.NoError(t, err)

	want := rec
	want.Nickname = "dave"
	assert.Equal(t, want, got)
}

func TestParseMissingFieldsDefault(t *testing.T) {
	got, err := Parse(`{"username":"frank","password_hash":"abc","created_at":"yesterday"}`)
	require.NoError(t, err)

	assert.Equal(t, types.UserRecord{
		Username:     "frank",
		PasswordHash: "abc",
		CreatedAt:    "yesterday",
		Nickname:     "frank",
	}, got)
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		field string
	}{
		{name: "no username key", line: `{"schema_version":1,"uid":0,"password_hash":"x"}`},
		{name: "empty username", line: `{"schema_version":1,"username":"","password_hash":"x"}`},
		{name: "not json at all", line: `garbage`},
		{name: "unterminated username", line: `{"schema_version":1,"username":"abc`},
		{name: "non-numeric uid", line: `{"uid":abc,"username":"x"}`, field: "uid"},
		{name: "non-numeric schema version", line: `{"schema_version":"2","username":"x"}`, field: "schema_version"},
		{name: "uid overflows int64", line: `{"uid":99999999999999999999,"username":"x"}`, field: "uid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.line)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrParse)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.field, pe.Field)
			if tt.field == "" {
				assert.ErrorIs(t, err, ErrMissingUsername)
			}
		})
	}
}

func TestParseIntegerTolerance(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int64
	}{
		{name: "leading whitespace", line: `{"uid": 12,"username":"x"}`, want: 12},
		{name: "trailing junk before delimiter", line: `{"uid":12abc,"username":"x"}`, want: 12},
		{name: "explicit plus sign", line: `{"uid":+8,"username":"x"}`, want: 8},
		{name: "no delimiter after value", line: `{"username":"x","uid":5`, want: 0},
		{name: "value ends at closing brace", line: `{"username":"x","uid":9}`, want: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.UID)
		})
	}
}

func TestParseUnterminatedOptionalStringDefaults(t *testing.T) {
	got, err := Parse(`{"username":"gina","goal":"unfinished`)
	require.NoError(t, err)
	assert.Equal(t, "gina", got.Username)
	assert.Empty(t, got.Goal)
}

func TestParseKeepsStoredNicknameAndIgnoresUnknownFields(t *testing.T) {
	got, err := Parse(`{"username":"hank","nickname":"H","extra":{"nested":[1,2]}}`)
	require.NoError(t, err)
	assert.Equal(t, "H", got.Nickname)
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, `a"b\c`, Unescape(`a\"b\\c`))
	assert.Equal(t, `\n stays`, Unescape(`\n stays`))
	assert.Equal(t, `trailing\`, Unescape(`trailing\`))
	assert.Equal(t, `plain`, Unescape(Escape(`plain`)))
}
