package parquet

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemapilot/pilotctl/schema"
)

func TestConvertAnalysisOrdersByTableThenColumn(t *testing.T) {
	mean := 4.5
	analysis := &schema.SchemaAnalysis{
		RunID: "run-1",
		Tables: map[string][]schema.FieldStats{
			"users": {
				{ColumnName: "email", InferredType: "string", TotalCount: 10},
			},
			"orders": {
				{ColumnName: "id", InferredType: "integer", TotalCount: 10, MeanValue: &mean},
				{ColumnName: "amount", InferredType: "float", TotalCount: 10},
			},
		},
	}

	rows := ConvertAnalysis(analysis)
	require.Len(t, rows, 3)
	assert.Equal(t, "orders", rows[0].TableName)
	assert.Equal(t, "id", rows[0].ColumnName)
	assert.Equal(t, "amount", rows[1].ColumnName)
	assert.Equal(t, "users", rows[2].TableName)

	require.NotNil(t, rows[0].MeanValue)
	assert.InDelta(t, 4.5, *rows[0].MeanValue, 1e-9)
	assert.Nil(t, rows[1].MeanValue)
	assert.Equal(t, "run-1", rows[0].RunID)
}

func TestConvertAnalysisNil(t *testing.T) {
	assert.Nil(t, ConvertAnalysis(nil))
}

func TestConvertChatHistory(t *testing.T) {
	rows := ConvertChatHistory("run-2", []schema.ChatMessage{
		{ID: "m-1", UserQuery: "count orders", SQLQuery: "SELECT COUNT(*) FROM orders", Executed: true, ResultCount: 1},
		{ID: "m-2", UserQuery: "list users", SQLQuery: "SELECT * FROM users"},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "run-2", rows[0].RunID)
	assert.Equal(t, "m-1", rows[0].MessageID)
	assert.True(t, rows[0].Executed)
	assert.Equal(t, int32(1), rows[0].ResultCount)
	assert.False(t, rows[1].Executed)
}

func TestWriteFieldStatsParquet(t *testing.T) {
	path := t.TempDir() + "/stats.parquet"
	rows := ConvertAnalysis(&schema.SchemaAnalysis{
		RunID: "run-1",
		Tables: map[string][]schema.FieldStats{
			"orders": {{ColumnName: "id", InferredType: "integer"}},
		},
	})
	require.NoError(t, WriteFieldStatsParquet(rows, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
