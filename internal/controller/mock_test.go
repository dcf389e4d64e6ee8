package controller

import (
	"context"
	"io"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/schema"
)

var _ contract.Backend = (*mockBackend)(nil)

// mockBackend implements contract.Backend with per-method hooks. Unset
// hooks return zero values so each test only wires what it exercises.
type mockBackend struct {
	uploadTablesFn    func(runID string, paths []string) (*schema.UploadResult, error)
	generateSchemaFn  func(runID string) (map[string]any, error)
	generateDescsFn   func(runID string) (map[string]any, error)
	getTablesFn       func(runID string) ([]schema.TableInfo, error)
	getAnalysisFn     func(runID string) (*schema.SchemaAnalysis, error)
	updateFieldFn     func(runID, table, field, desc string) error
	getPreviewFn      func(runID, table string, limit int) (*schema.TablePreview, error)
	probeAnalysisFn   func(runID string) schema.AnalysisState
	generateQueryFn   func(runID, userQuery string, tables []string) (*schema.GeneratedQuery, error)
	saveQueryFn       func(runID, sqlQuery string) (string, error)
	executeQueryFn    func(runID, queryID string) (*schema.ExecuteResult, error)
	getResultsFn      func(runID, resultFile string) (*schema.QueryResult, error)
	modifyQueryFn     func(runID, queryID, instructions string) (*schema.ModifiedQuery, error)
	getChatHistoryFn  func(runID string) []schema.ChatMessage
	saveChatMsgFn     func(runID string, msg schema.ChatMessage) error
	deleteChatMsgFn   func(runID, messageID string) error
	getQueriesFn      func(runID string) []schema.SavedQuery
	loadRunFn         func(runID string) error
	deleteFileFn      func(runID, filename string) error
}

func (m *mockBackend) EnvCheck(context.Context) (map[string]any, error) { return nil, nil }

func (m *mockBackend) UploadTables(_ context.Context, runID string, paths []string) (*schema.UploadResult, error) {
	if m.uploadTablesFn != nil {
		return m.uploadTablesFn(runID, paths)
	}
	return &schema.UploadResult{RunID: runID}, nil
}

func (m *mockBackend) GenerateSchema(_ context.Context, runID string) (map[string]any, error) {
	if m.generateSchemaFn != nil {
		return m.generateSchemaFn(runID)
	}
	return nil, nil
}

func (m *mockBackend) GenerateDescriptions(_ context.Context, runID string) (map[string]any, error) {
	if m.generateDescsFn != nil {
		return m.generateDescsFn(runID)
	}
	return nil, nil
}

func (m *mockBackend) GetDescriptions(context.Context, string) ([]schema.DescriptionFile, error) {
	return nil, nil
}

func (m *mockBackend) GetTables(_ context.Context, runID string) ([]schema.TableInfo, error) {
	if m.getTablesFn != nil {
		return m.getTablesFn(runID)
	}
	return nil, nil
}

func (m *mockBackend) GetSchemaAnalysis(_ context.Context, runID string) (*schema.SchemaAnalysis, error) {
	if m.getAnalysisFn != nil {
		return m.getAnalysisFn(runID)
	}
	return &schema.SchemaAnalysis{RunID: runID}, nil
}

func (m *mockBackend) UpdateFieldDescription(_ context.Context, runID, table, field, desc string) error {
	if m.updateFieldFn != nil {
		return m.updateFieldFn(runID, table, field, desc)
	}
	return nil
}

func (m *mockBackend) GetTablePreview(_ context.Context, runID, table string, limit int) (*schema.TablePreview, error) {
	if m.getPreviewFn != nil {
		return m.getPreviewFn(runID, table, limit)
	}
	return &schema.TablePreview{}, nil
}

func (m *mockBackend) ProbeAnalysis(_ context.Context, runID string) schema.AnalysisState {
	if m.probeAnalysisFn != nil {
		return m.probeAnalysisFn(runID)
	}
	return schema.AnalysisAbsent
}

func (m *mockBackend) GenerateQuery(_ context.Context, runID, userQuery string, tables []string) (*schema.GeneratedQuery, error) {
	if m.generateQueryFn != nil {
		return m.generateQueryFn(runID, userQuery, tables)
	}
	return &schema.GeneratedQuery{}, nil
}

func (m *mockBackend) SaveQuery(_ context.Context, runID, sqlQuery string) (string, error) {
	if m.saveQueryFn != nil {
		return m.saveQueryFn(runID, sqlQuery)
	}
	return "q-1", nil
}

func (m *mockBackend) ExecuteQuery(_ context.Context, runID, queryID string) (*schema.ExecuteResult, error) {
	if m.executeQueryFn != nil {
		return m.executeQueryFn(runID, queryID)
	}
	return &schema.ExecuteResult{ResultFile: "result.json"}, nil
}

func (m *mockBackend) GetQueryResults(_ context.Context, runID, resultFile string) (*schema.QueryResult, error) {
	if m.getResultsFn != nil {
		return m.getResultsFn(runID, resultFile)
	}
	return &schema.QueryResult{}, nil
}

func (m *mockBackend) ModifyQuery(_ context.Context, runID, queryID, instructions string) (*schema.ModifiedQuery, error) {
	if m.modifyQueryFn != nil {
		return m.modifyQueryFn(runID, queryID, instructions)
	}
	return &schema.ModifiedQuery{}, nil
}

func (m *mockBackend) ExportResults(context.Context, string, []map[string]any, io.Writer) error {
	return nil
}

func (m *mockBackend) GetChatHistory(_ context.Context, runID string) []schema.ChatMessage {
	if m.getChatHistoryFn != nil {
		return m.getChatHistoryFn(runID)
	}
	return nil
}

func (m *mockBackend) SaveChatMessage(_ context.Context, runID string, msg schema.ChatMessage) error {
	if m.saveChatMsgFn != nil {
		return m.saveChatMsgFn(runID, msg)
	}
	return nil
}

func (m *mockBackend) DeleteChatMessage(_ context.Context, runID, messageID string) error {
	if m.deleteChatMsgFn != nil {
		return m.deleteChatMsgFn(runID, messageID)
	}
	return nil
}

func (m *mockBackend) GetQueries(_ context.Context, runID string) []schema.SavedQuery {
	if m.getQueriesFn != nil {
		return m.getQueriesFn(runID)
	}
	return nil
}

func (m *mockBackend) GetRuns(context.Context) []schema.Run { return nil }

func (m *mockBackend) GetRunInfo(_ context.Context, runID string) (*schema.Run, error) {
	return &schema.Run{RunID: runID}, nil
}

func (m *mockBackend) LoadRun(_ context.Context, runID string) error {
	if m.loadRunFn != nil {
		return m.loadRunFn(runID)
	}
	return nil
}

func (m *mockBackend) DeleteRun(context.Context, string) error { return nil }

func (m *mockBackend) DeleteFile(_ context.Context, runID, filename string) error {
	if m.deleteFileFn != nil {
		return m.deleteFileFn(runID, filename)
	}
	return nil
}

func (m *mockBackend) DownloadDescription(context.Context, string, string, io.Writer) error {
	return nil
}

func (m *mockBackend) DownloadQuery(context.Context, string, string, io.Writer) error { return nil }

func (m *mockBackend) DownloadResult(context.Context, string, string, io.Writer) error { return nil }
