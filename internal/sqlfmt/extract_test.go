package sqlfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want Shape
	}{
		{"plain sql", "SELECT 1", PlainSQL},
		{"json payload", `{"sql_query": "SELECT 1", "commentary": "one"}`, JSONPayload},
		{"hybrid fragment", `SELECT 1 , "commentary": "one"}`, HybridMalformed},
		{"empty", "", PlainSQL},
		{"object without sql_query", `{"foo": 1}`, PlainSQL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.blob))
		})
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name       string
		sqlText    string
		commentary string
		wantSQL    string
		wantComm   string
	}{
		{
			name:     "plain sql untouched",
			sqlText:  "SELECT COUNT(*) FROM orders",
			wantSQL:  "SELECT COUNT(*) FROM orders",
			wantComm: "",
		},
		{
			name:     "json payload with both fields",
			sqlText:  `{"sql_query": "SELECT 1", "commentary": "picks one"}`,
			wantSQL:  "SELECT 1",
			wantComm: "picks one",
		},
		{
			name:       "json payload keeps separate commentary",
			sqlText:    `{"sql_query": "SELECT 1"}`,
			commentary: "from the side channel",
			wantSQL:    "SELECT 1",
			wantComm:   "from the side channel",
		},
		{
			name:     "hybrid blob split",
			sqlText:  `SELECT a FROM t , "commentary": "explains the join"}`,
			wantSQL:  "SELECT a FROM t",
			wantComm: "explains the join",
		},
		{
			name:       "hybrid with brace falls back to originals",
			sqlText:    `SELECT '{' , "commentary": "x"}`,
			commentary: "side",
			wantSQL:    `SELECT '{' , "commentary": "x"}`,
			wantComm:   "side",
		},
		{
			name:       "broken json falls back to originals",
			sqlText:    `{"sql_query": "SELECT 1`,
			commentary: "side",
			wantSQL:    `{"sql_query": "SELECT 1`,
			wantComm:   "side",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.sqlText, tt.commentary)
			assert.Equal(t, tt.wantSQL, got.SQL)
			assert.Equal(t, tt.wantComm, got.Commentary)
		})
	}
}

func TestExtractIdempotent(t *testing.T) {
	blobs := []string{
		`SELECT a FROM t , "commentary": "explains"}`,
		`{"sql_query": "SELECT 1", "commentary": "one"}`,
		"SELECT COUNT(*) FROM orders",
	}

	for _, blob := range blobs {
		first := Extract(blob, "")
		second := Extract(first.SQL, first.Commentary)
		assert.Equal(t, first, second, "re-extracting output of %q must be stable", blob)
	}
}

func TestCleanCommentary(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text", "counts all rows", "counts all rows"},
		{"json envelope", `{"commentary": "counts all rows"}`, "counts all rows"},
		{"escaped newlines", `line one\nline two`, "line one\nline two"},
		{"broken json kept", `{"commentary": `, `{"commentary":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanCommentary(tt.in))
		})
	}
}
