// Package schema has configs, models and global variables for all parts of pilotctl.
package schema

// Run represents a backend analysis run: one unit of uploaded files plus
// whatever artifacts (schemas, descriptions, queries, results) the backend
// derived from them. The id is opaque and minted by the server.
type Run struct {
	RunID           string `json:"run_id"`
	CreatedAt       string `json:"created_at"`
	Status          string `json:"status"`
	FilesUploaded   int    `json:"files_uploaded"`
	QueriesCount    int    `json:"queries_count"`
	ExecutionsCount int    `json:"executions_count"`

	// Analysis is probed client-side and never sent over the wire.
	Analysis AnalysisState `json:"-"`
}

// TableInfo represents one uploaded table within a run.
// Selected is client-local UI state; servers that omit it mean "selected".
type TableInfo struct {
	Name            string `json:"name"`
	HasDescriptions bool   `json:"hasDescriptions"`
	Selected        bool   `json:"selected"`
}

// FieldStats holds the backend-computed statistics for a single column.
// Numeric summary fields are pointers because they only apply to numeric
// columns; Histogram is a raw JSON string rendered by the formatter.
type FieldStats struct {
	ColumnName       string   `json:"column_name"`
	DataType         string   `json:"data_type"`
	InferredType     string   `json:"inferred_type"`
	TotalCount       int      `json:"total_count"`
	NonNullCount     int      `json:"non_null_count"`
	NullCount        int      `json:"null_count"`
	NullPercentage   float64  `json:"null_percentage"`
	UniqueCount      int      `json:"unique_count"`
	UniquePercentage float64  `json:"unique_percentage"`
	MinValue         any      `json:"min_value,omitempty"`
	MaxValue         any      `json:"max_value,omitempty"`
	MeanValue        *float64 `json:"mean_value,omitempty"`
	MedianValue      *float64 `json:"median_value,omitempty"`
	StdValue         *float64 `json:"std_value,omitempty"`
	Description      string   `json:"description"`
	UniqueValues     string   `json:"unique_values,omitempty"`
	Histogram        string   `json:"histogram,omitempty"`
}

// SchemaAnalysis maps table names to their per-column statistics.
type SchemaAnalysis struct {
	RunID  string                  `json:"run_id"`
	Tables map[string][]FieldStats `json:"tables"`
}

// ChatMessage is one entry in a run's chat history. Ids are opaque server
// ids except for locally minted drafts, which use millisecond unix time
// until the save round-trip.
type ChatMessage struct {
	ID          string `json:"id"`
	UserQuery   string `json:"userQuery"`
	SQLQuery    string `json:"sqlQuery"`
	Commentary  string `json:"commentary"`
	Timestamp   string `json:"timestamp"`
	Executed    bool   `json:"executed"`
	ResultCount int    `json:"resultCount"`
}

// SavedQuery is SQL text persisted server-side under an id, distinct from
// an unsaved draft held in the editor.
type SavedQuery struct {
	QueryID  string `json:"query_id"`
	SQLQuery string `json:"sql_query"`
}

// QueryResult holds an executed query's output: ordered column names plus
// row objects keyed by column name. Held in memory only.
type QueryResult struct {
	Columns []string         `json:"columns"`
	Data    []map[string]any `json:"data"`
}

// TablePreview holds a bounded sample of raw table rows.
type TablePreview struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// DescriptionFile references an AI-generated description artifact on the server.
type DescriptionFile struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// UploadResult is the server acknowledgment for a file upload.
type UploadResult struct {
	RunID  string   `json:"run_id"`
	Tables []string `json:"tables"`
}

// ExecuteResult references the server-side file holding execution output.
type ExecuteResult struct {
	ResultFile string `json:"result_file"`
}

// GeneratedQuery is the (possibly messy) payload from query generation.
// Raw carries the untouched body for the tolerant extraction pass.
type GeneratedQuery struct {
	SQLQuery   string `json:"sql_query"`
	Commentary string `json:"commentary"`
	Raw        string `json:"-"`
}

// ModifiedQuery is the payload from query refinement.
type ModifiedQuery struct {
	ModifiedSQLQuery string `json:"modified_sql_query"`
	Commentary       string `json:"commentary"`
	Raw              string `json:"-"`
}
