// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"io"

	"github.com/schemapilot/pilotctl/schema"
)

// Backend defines the operations of the SchemaPilot REST API.
// This allows controllers and commands to be tested without a live server.
type Backend interface {
	// --- Diagnostics ---

	// EnvCheck returns the backend environment report.
	EnvCheck(ctx context.Context) (map[string]any, error)

	// --- Upload / analysis pipeline ---

	// UploadTables uploads local files into a run. An empty runID creates a new run.
	UploadTables(ctx context.Context, runID string, paths []string) (*schema.UploadResult, error)

	// GenerateSchema triggers server-side schema inference for the run.
	GenerateSchema(ctx context.Context, runID string) (map[string]any, error)

	// GenerateDescriptions triggers AI field descriptions for the run.
	GenerateDescriptions(ctx context.Context, runID string) (map[string]any, error)

	// GetDescriptions lists the description artifacts produced for the run.
	GetDescriptions(ctx context.Context, runID string) ([]schema.DescriptionFile, error)

	// GetTables lists the run's tables. Tables missing a selected flag count as selected.
	GetTables(ctx context.Context, runID string) ([]schema.TableInfo, error)

	// GetSchemaAnalysis returns per-table column statistics for the run.
	GetSchemaAnalysis(ctx context.Context, runID string) (*schema.SchemaAnalysis, error)

	// UpdateFieldDescription edits one column's description.
	UpdateFieldDescription(ctx context.Context, runID, tableName, fieldName, description string) error

	// GetTablePreview fetches up to limit raw rows of a table.
	GetTablePreview(ctx context.Context, runID, tableName string, limit int) (*schema.TablePreview, error)

	// ProbeAnalysis reports whether the run has a schema analysis.
	// A transport or timeout failure yields AnalysisUnknown, not AnalysisAbsent.
	ProbeAnalysis(ctx context.Context, runID string) schema.AnalysisState

	// --- Query pipeline ---

	// GenerateQuery converts a natural-language question into SQL.
	GenerateQuery(ctx context.Context, runID, userQuery string, contextTables []string) (*schema.GeneratedQuery, error)

	// SaveQuery persists SQL server-side and returns its query id.
	SaveQuery(ctx context.Context, runID, sqlQuery string) (string, error)

	// ExecuteQuery runs a saved query and returns the result file reference.
	ExecuteQuery(ctx context.Context, runID, queryID string) (*schema.ExecuteResult, error)

	// GetQueryResults fetches the columns and rows held in a result file.
	GetQueryResults(ctx context.Context, runID, resultFile string) (*schema.QueryResult, error)

	// ModifyQuery refines a saved query with a natural-language instruction.
	ModifyQuery(ctx context.Context, runID, queryID, instructions string) (*schema.ModifiedQuery, error)

	// ExportResults streams the server-rendered CSV for the given rows into w.
	ExportResults(ctx context.Context, runID string, data []map[string]any, w io.Writer) error

	// --- Chat history ---

	// GetChatHistory lists chat messages, best effort: failures yield an empty list.
	GetChatHistory(ctx context.Context, runID string) []schema.ChatMessage

	// SaveChatMessage persists one chat message.
	SaveChatMessage(ctx context.Context, runID string, msg schema.ChatMessage) error

	// DeleteChatMessage removes one chat message by id.
	DeleteChatMessage(ctx context.Context, runID, messageID string) error

	// --- Saved queries / runs ---

	// GetQueries lists saved queries, best effort: failures yield an empty list.
	GetQueries(ctx context.Context, runID string) []schema.SavedQuery

	// GetRuns lists runs, best effort: failures yield an empty list.
	GetRuns(ctx context.Context) []schema.Run

	// GetRunInfo fetches one run by id.
	GetRunInfo(ctx context.Context, runID string) (*schema.Run, error)

	// LoadRun restores a run's working state server-side.
	LoadRun(ctx context.Context, runID string) error

	// DeleteRun removes a run and its artifacts.
	DeleteRun(ctx context.Context, runID string) error

	// DeleteFile removes one uploaded file from a run.
	DeleteFile(ctx context.Context, runID, filename string) error

	// --- Downloads ---

	// DownloadDescription streams a description artifact into w.
	DownloadDescription(ctx context.Context, runID, filename string, w io.Writer) error

	// DownloadQuery streams saved query SQL into w.
	DownloadQuery(ctx context.Context, runID, queryID string, w io.Writer) error

	// DownloadResult streams a result file into w.
	DownloadResult(ctx context.Context, runID, filename string, w io.Writer) error
}

// StoreManager defines the interface for managing the workspace store.
// This allows the store layer to be mocked for testing.
type StoreManager interface {
	GetWorkspaceStore() WorkspaceStore
}

// WorkspaceStore defines the local record of runs seen and chat mirrors.
// This allows mocking the store for testing.
type WorkspaceStore interface {
	UpsertRun(rec schema.RunRecord) error
	GetRun(runID string) (*schema.RunRecord, error)
	ListRuns() ([]schema.RunRecord, error)
	DeleteRun(runID string) error

	SetActiveRun(runID string) error
	GetActiveRun() (string, error)

	SaveMessages(runID string, msgs []schema.MessageRecord) error
	ListMessages(runID string) ([]schema.MessageRecord, error)

	GetStatus() (schema.StoreStatus, error)
	Close() error
}
