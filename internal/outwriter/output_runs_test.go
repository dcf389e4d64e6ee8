package outwriter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemapilot/pilotctl/schema"
)

func sampleRuns() []schema.Run {
	return []schema.Run{
		{
			RunID:           "run-1",
			CreatedAt:       "2026-08-01T10:00:00Z",
			Status:          "active",
			FilesUploaded:   2,
			QueriesCount:    5,
			ExecutionsCount: 3,
			Analysis:        schema.AnalysisPresent,
		},
		{
			RunID:     "run-2",
			CreatedAt: "2026-08-02T11:00:00Z",
			Status:    "idle",
			Analysis:  schema.AnalysisUnknown,
		},
	}
}

func TestWriteCSVResultsForRuns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSVResultsForRuns(&buf, sampleRuns()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "run_id,created_at,status,files_uploaded,queries_count,executions_count,analysis", lines[0])
	assert.Equal(t, "run-1,2026-08-01T10:00:00Z,active,2,5,3,present", lines[1])
	assert.Equal(t, "run-2,2026-08-02T11:00:00Z,idle,0,0,0,unknown", lines[2])
}

func TestWriteJSONResultsForRuns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSONResultsForRuns(&buf, sampleRuns()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "run-1", decoded[0]["run_id"])
	assert.Equal(t, "present", decoded[0]["analysis"])
}

func TestWriteRunTableIncludesAnalysisSymbol(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRunTable(&buf, sampleRuns()))

	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "run-2")
	assert.Contains(t, out, "Showing 2 runs")
	assert.Contains(t, out, schema.AnalysisPresent.Symbol())
	assert.Contains(t, out, schema.AnalysisUnknown.Symbol())
}
