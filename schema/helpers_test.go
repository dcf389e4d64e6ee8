package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisStateSymbol(t *testing.T) {
	tests := []struct {
		name  string
		state AnalysisState
		want  string
	}{
		{"present", AnalysisPresent, "yes"},
		{"absent", AnalysisAbsent, "no"},
		{"unknown", AnalysisUnknown, "?"},
		{"zero value", AnalysisState(""), "?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Symbol())
		})
	}
}

func TestMessageRecordRoundTrip(t *testing.T) {
	msg := ChatMessage{
		ID:          "1700000000000",
		UserQuery:   "count rows",
		SQLQuery:    "SELECT COUNT(*) FROM orders",
		Commentary:  "counts all rows",
		Timestamp:   "2026-08-30T10:00:00Z",
		Executed:    true,
		ResultCount: 1,
	}

	rec := MessageRecordFromChat("run-1", msg)
	assert.Equal(t, "run-1", rec.RunID)
	assert.Equal(t, msg, ChatFromMessageRecord(rec))
}
