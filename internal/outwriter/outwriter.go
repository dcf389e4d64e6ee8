// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"golang.org/x/term"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the command layer.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRuns prints the run listing using the configured output format.
func (ow *OutWriter) WriteRuns(runs []schema.Run, cfg *contract.Config) error {
	return writeRunResults(runs, cfg)
}

// WriteTables prints the table listing using the configured output format.
func (ow *OutWriter) WriteTables(tables []schema.TableInfo, cfg *contract.Config) error {
	return writeTableResults(tables, cfg)
}

// WriteAnalysis prints per-table column statistics using the configured output format.
func (ow *OutWriter) WriteAnalysis(analysis *schema.SchemaAnalysis, cfg *contract.Config) error {
	return writeAnalysisResults(analysis, cfg)
}

// WriteFieldDetail prints one column's full statistics, including its
// distribution histogram, in text form.
func (ow *OutWriter) WriteFieldDetail(tableName string, field *schema.FieldStats, cfg *contract.Config) error {
	return writeFieldDetail(tableName, field, cfg)
}

// WritePreview prints raw table rows using the configured output format.
func (ow *OutWriter) WritePreview(tableName string, preview *schema.TablePreview, cfg *contract.Config) error {
	return writePreviewResults(tableName, preview, cfg)
}

// WriteQueryResults prints executed query rows using the configured output format.
func (ow *OutWriter) WriteQueryResults(result *schema.QueryResult, cfg *contract.Config) error {
	return writeQueryResults(result, cfg)
}

// WriteChatHistory prints chat messages using the configured output format.
func (ow *OutWriter) WriteChatHistory(runID string, msgs []schema.ChatMessage, cfg *contract.Config) error {
	return writeChatHistoryResults(runID, msgs, cfg)
}

// WriteQueries prints saved queries using the configured output format.
func (ow *OutWriter) WriteQueries(queries []schema.SavedQuery, cfg *contract.Config) error {
	return writeQueryListing(queries, cfg)
}

// getMaxTableCellWidth calculates the maximum width for wide cells (SQL,
// descriptions) in table output based on terminal width.
func getMaxTableCellWidth(cfg *contract.Config, fixedColumns int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space per fixed column plus table borders and padding
	available := termWidth - fixedColumns*12 - 10
	if available < 20 {
		// Minimum reasonable cell width
		return 20
	}
	if available > 80 {
		// Maximum cell width to keep rows scannable
		return 80
	}
	return available
}
