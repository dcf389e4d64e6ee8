// Package sqlfmt holds tolerant parsers for backend query responses.
//
// Generation endpoints are backed by a language model, so their payloads
// arrive in three shapes: plain SQL text, a JSON object with sql_query and
// commentary fields, or SQL concatenated with a trailing commentary fragment
// that is not valid JSON. Every function here is pure and never fails; on
// any parse problem the original input is returned unchanged.
package sqlfmt

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Shape classifies a generation response body.
type Shape int

// All response shapes handled by Extract.
const (
	PlainSQL Shape = iota
	JSONPayload
	HybridMalformed
)

// Extracted is the result of splitting a response into SQL and commentary.
type Extracted struct {
	SQL        string
	Commentary string
}

// hybridRe splits `SELECT ... , "commentary": "..."}` blobs. The SQL part
// must be brace-free or the blob is left alone.
var hybridRe = regexp.MustCompile(`^([^{]*?)(?:\s*,\s*"commentary":\s*"([^"]*)"\s*\})?$`)

// Classify reports which response shape the blob is.
func Classify(blob string) Shape {
	blob = strings.TrimSpace(blob)
	switch {
	case strings.HasPrefix(blob, "{") && strings.Contains(blob, `"sql_query"`):
		return JSONPayload
	case strings.Contains(blob, `"commentary":`):
		return HybridMalformed
	default:
		return PlainSQL
	}
}

// Extract pulls SQL and commentary out of a generation response.
// Running Extract on its own SQL output is idempotent: once the commentary
// fragment is stripped, the remainder classifies as plain SQL.
func Extract(sqlText, commentaryText string) Extracted {
	out := Extracted{SQL: sqlText, Commentary: commentaryText}
	blob := strings.TrimSpace(sqlText)

	switch Classify(blob) {
	case JSONPayload:
		var payload struct {
			SQLQuery   string `json:"sql_query"`
			Commentary string `json:"commentary"`
		}
		if err := json.Unmarshal([]byte(blob), &payload); err != nil {
			return out
		}
		if payload.SQLQuery != "" {
			out.SQL = payload.SQLQuery
		}
		if payload.Commentary != "" {
			out.Commentary = payload.Commentary
		}
	case HybridMalformed:
		m := hybridRe.FindStringSubmatch(blob)
		if m == nil {
			return out
		}
		out.SQL = strings.TrimSpace(m[1])
		if m[2] != "" {
			out.Commentary = m[2]
		}
	}
	return out
}

// CleanCommentary unwraps a {"commentary": ...} JSON envelope and unescapes
// literal \n sequences so commentary reads as plain prose.
func CleanCommentary(text string) string {
	if text == "" {
		return ""
	}
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		var obj struct {
			Commentary string `json:"commentary"`
		}
		if err := json.Unmarshal([]byte(trimmed), &obj); err == nil && obj.Commentary != "" {
			return obj.Commentary
		}
	}
	return strings.TrimSpace(strings.ReplaceAll(text, `\n`, "\n"))
}
