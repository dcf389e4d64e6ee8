// Package parquet exports run artifacts to Parquet files using
// github.com/parquet-go/parquet-go, for loading into local analysis tools.
package parquet

import (
	"fmt"
	"os"
	"sort"

	"github.com/parquet-go/parquet-go"

	"github.com/schemapilot/pilotctl/schema"
)

// FieldStatsRow is one column's statistics flattened for Parquet export.
// This struct maps one row of the schema analysis grid.
type FieldStatsRow struct {
	// RunID identifies the analysis run the row belongs to
	RunID string `parquet:"run_id,snappy"`

	// TableName is the uploaded table the column lives in
	TableName string `parquet:"table_name,snappy"`

	// ColumnName is the column header from the uploaded file
	ColumnName string `parquet:"column_name,snappy"`

	// DataType is the raw storage type reported by the backend
	DataType string `parquet:"data_type,snappy"`

	// InferredType is the semantic type inferred by the backend
	InferredType string `parquet:"inferred_type,snappy"`

	// TotalCount is the number of rows scanned
	TotalCount int64 `parquet:"total_count,snappy"`

	// NonNullCount is the number of non-null values
	NonNullCount int64 `parquet:"non_null_count,snappy"`

	// NullCount is the number of null values
	NullCount int64 `parquet:"null_count,snappy"`

	// NullPercentage is the null share in percent
	NullPercentage float64 `parquet:"null_percentage,snappy"`

	// UniqueCount is the number of distinct values
	UniqueCount int64 `parquet:"unique_count,snappy"`

	// UniquePercentage is the distinct share in percent
	UniquePercentage float64 `parquet:"unique_percentage,snappy"`

	// MeanValue is the arithmetic mean (nullable, numeric columns only)
	MeanValue *float64 `parquet:"mean_value,optional,snappy"`

	// MedianValue is the median (nullable, numeric columns only)
	MedianValue *float64 `parquet:"median_value,optional,snappy"`

	// StdValue is the standard deviation (nullable, numeric columns only)
	StdValue *float64 `parquet:"std_value,optional,snappy"`

	// Description is the AI-generated or user-edited column description
	Description string `parquet:"description,snappy"`
}

// ChatMessageRow is one chat exchange flattened for Parquet export.
type ChatMessageRow struct {
	// RunID identifies the analysis run the message belongs to
	RunID string `parquet:"run_id,snappy"`

	// MessageID is the server or locally minted message id
	MessageID string `parquet:"message_id,snappy"`

	// UserQuery is the natural-language question
	UserQuery string `parquet:"user_query,snappy"`

	// SQLQuery is the generated SQL
	SQLQuery string `parquet:"sql_query,snappy"`

	// Commentary is the model commentary attached to the SQL
	Commentary string `parquet:"commentary,snappy"`

	// Timestamp is the RFC 3339 creation time
	Timestamp string `parquet:"timestamp,snappy"`

	// Executed reports whether the SQL was run
	Executed bool `parquet:"executed,snappy"`

	// ResultCount is the number of rows the execution returned
	ResultCount int32 `parquet:"result_count,snappy"`
}

// ConvertAnalysis flattens a schema analysis into export rows, ordered by
// table then column so repeated exports diff cleanly.
func ConvertAnalysis(analysis *schema.SchemaAnalysis) []FieldStatsRow {
	if analysis == nil {
		return nil
	}

	tables := make([]string, 0, len(analysis.Tables))
	for name := range analysis.Tables {
		tables = append(tables, name)
	}
	sort.Strings(tables)

	var rows []FieldStatsRow
	for _, table := range tables {
		for _, f := range analysis.Tables[table] {
			rows = append(rows, FieldStatsRow{
				RunID:            analysis.RunID,
				TableName:        table,
				ColumnName:       f.ColumnName,
				DataType:         f.DataType,
				InferredType:     f.InferredType,
				TotalCount:       int64(f.TotalCount),
				NonNullCount:     int64(f.NonNullCount),
				NullCount:        int64(f.NullCount),
				NullPercentage:   f.NullPercentage,
				UniqueCount:      int64(f.UniqueCount),
				UniquePercentage: f.UniquePercentage,
				MeanValue:        f.MeanValue,
				MedianValue:      f.MedianValue,
				StdValue:         f.StdValue,
				Description:      f.Description,
			})
		}
	}
	return rows
}

// ConvertChatHistory flattens chat messages into export rows.
func ConvertChatHistory(runID string, msgs []schema.ChatMessage) []ChatMessageRow {
	rows := make([]ChatMessageRow, len(msgs))
	for i, m := range msgs {
		rows[i] = ChatMessageRow{
			RunID:       runID,
			MessageID:   m.ID,
			UserQuery:   m.UserQuery,
			SQLQuery:    m.SQLQuery,
			Commentary:  m.Commentary,
			Timestamp:   m.Timestamp,
			Executed:    m.Executed,
			ResultCount: int32(m.ResultCount),
		}
	}
	return rows
}

// WriteFieldStatsParquet writes field statistics rows to a Parquet file.
func WriteFieldStatsParquet(rows []FieldStatsRow, outputPath string) error {
	return writeParquet(rows, outputPath)
}

// WriteChatMessagesParquet writes chat message rows to a Parquet file.
func WriteChatMessagesParquet(rows []ChatMessageRow, outputPath string) error {
	return writeParquet(rows, outputPath)
}

// writeParquet writes rows to a Parquet file using struct schema inference.
func writeParquet[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}
