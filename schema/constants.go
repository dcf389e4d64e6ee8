package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the workspace store.
	DatabaseBackend string

	// AnalysisState represents what the client knows about a run's schema analysis.
	AnalysisState string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All workspace store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All analysis states. A failed probe is recorded as unknown rather than
// being collapsed into absent.
const (
	AnalysisPresent AnalysisState = "present"
	AnalysisAbsent  AnalysisState = "absent"
	AnalysisUnknown AnalysisState = "unknown"
)

// Preview row limits offered to the user.
var PreviewLimits = []int{20, 50, 100, 200}

// ResultsPageSize is the fixed client-side page size for query results.
const ResultsPageSize = 50

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid workspace store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidAnalysisStates lists all valid analysis states.
var ValidAnalysisStates = map[AnalysisState]struct{}{
	AnalysisPresent: {},
	AnalysisAbsent:  {},
	AnalysisUnknown: {},
}
