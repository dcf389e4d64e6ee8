// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/schemapilot/pilotctl/internal/contract"
)

// NewMCPServer initializes and configures the SchemaPilot MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, backend contract.Backend) *server.MCPServer {
	s := server.NewMCPServer(
		"SchemaPilot Query Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		backend: backend,
	}

	// --- 1. Tool: list_runs ---
	s.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List the analysis runs available on the SchemaPilot backend."),
	), h.handleListRuns)

	// --- 2. Tool: get_schema ---
	s.AddTool(mcp.NewTool("get_schema",
		mcp.WithDescription("Fetch the inferred schema and per-column statistics for a run."),
		mcp.WithString("run_id", mcp.Description("The analysis run to inspect."), mcp.Required()),
	), h.handleGetSchema)

	// --- 3. Tool: generate_sql ---
	s.AddTool(mcp.NewTool("generate_sql",
		mcp.WithDescription("Convert a natural-language question into SQL against a run's tables."),
		mcp.WithString("run_id", mcp.Description("The analysis run to query."), mcp.Required()),
		mcp.WithString("question", mcp.Description("The natural-language question."), mcp.Required()),
		mcp.WithString("tables", mcp.Description("Comma-separated table names to use as context (defaults to all tables).")),
	), h.handleGenerateSQL)

	// --- 4. Tool: run_sql ---
	s.AddTool(mcp.NewTool("run_sql",
		mcp.WithDescription("Save and execute SQL against a run, returning the result rows."),
		mcp.WithString("run_id", mcp.Description("The analysis run to query."), mcp.Required()),
		mcp.WithString("sql", mcp.Description("The SQL to execute."), mcp.Required()),
		mcp.WithNumber("max_rows", mcp.Description("Cap on returned rows. Defaults to 50.")),
	), h.handleRunSQL)

	return s
}

// StartMCPServer starts the SchemaPilot MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, backend contract.Backend) error {
	s := NewMCPServer(baseCfg, backend)
	return server.ServeStdio(s)
}
