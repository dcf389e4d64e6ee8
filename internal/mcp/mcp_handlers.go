package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/internal/sqlfmt"
	"github.com/schemapilot/pilotctl/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	backend contract.Backend
}

func (h *toolHandler) handleListRuns(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runs := h.backend.GetRuns(ctx)
	jsonData, _ := json.MarshalIndent(runs, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := request.GetString("run_id", "")
	if runID == "" {
		return mcp.NewToolResultError("run_id is required"), nil
	}

	analysis, err := h.backend.GetSchemaAnalysis(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("schema fetch failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(analysis, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGenerateSQL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := request.GetString("run_id", "")
	if runID == "" {
		return mcp.NewToolResultError("run_id is required"), nil
	}
	question := strings.TrimSpace(request.GetString("question", ""))
	if question == "" {
		return mcp.NewToolResultError("question is required"), nil
	}

	contextTables := splitTables(request.GetString("tables", ""))
	if len(contextTables) == 0 {
		tables, err := h.backend.GetTables(ctx, runID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("table listing failed: %v", err)), nil
		}
		for _, t := range tables {
			contextTables = append(contextTables, t.Name)
		}
	}

	res, err := h.backend.GenerateQuery(ctx, runID, question, contextTables)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}

	ex := sqlfmt.Extract(res.SQLQuery, res.Commentary)
	out := map[string]string{
		"sql_query":  sqlfmt.Pretty(ex.SQL),
		"commentary": sqlfmt.CleanCommentary(ex.Commentary),
	}
	jsonData, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRunSQL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := request.GetString("run_id", "")
	if runID == "" {
		return mcp.NewToolResultError("run_id is required"), nil
	}
	sqlText := strings.TrimSpace(request.GetString("sql", ""))
	if sqlText == "" {
		return mcp.NewToolResultError("sql is required"), nil
	}
	maxRows := request.GetInt("max_rows", schema.ResultsPageSize)
	if maxRows < 1 {
		return mcp.NewToolResultError("max_rows must be at least 1"), nil
	}

	queryID, err := h.backend.SaveQuery(ctx, runID, sqlText)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("save failed: %v", err)), nil
	}
	exec, err := h.backend.ExecuteQuery(ctx, runID, queryID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("execution failed: %v", err)), nil
	}
	result, err := h.backend.GetQueryResults(ctx, runID, exec.ResultFile)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("result fetch failed: %v", err)), nil
	}

	totalRows := len(result.Data)
	if totalRows > maxRows {
		result.Data = result.Data[:maxRows]
	}
	out := map[string]any{
		"query_id":   queryID,
		"columns":    result.Columns,
		"rows":       result.Data,
		"total_rows": totalRows,
	}
	jsonData, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// splitTables parses a comma-separated table list, dropping empty entries.
func splitTables(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
