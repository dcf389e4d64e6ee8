package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/internal/parquet"
	"github.com/schemapilot/pilotctl/schema"
)

// writeParquetChat exports chat messages as a Parquet snapshot.
func writeParquetChat(runID string, msgs []schema.ChatMessage, outputPath string) error {
	return parquet.WriteChatMessagesParquet(parquet.ConvertChatHistory(runID, msgs), outputPath)
}

// writeQueryResults outputs executed query rows, dispatching on the output format.
func writeQueryResults(result *schema.QueryResult, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, result.Columns, func(cw *csv.Writer) error {
				return writeDynamicCSVRows(cw, result.Columns, result.Data, fmtFloat)
			})
		}, "CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeDynamicTable(w, result.Columns, result.Data, cfg, fmtFloat); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Showing %d result rows\n", len(result.Data))
			return err
		}, "table")
	}
}

// writeChatHistoryResults outputs chat messages, dispatching on the output
// format. Parquet output requires an output file.
func writeChatHistoryResults(runID string, msgs []schema.ChatMessage, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, msgs)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForChat(w, msgs)
		}, "CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		return writeParquetChat(runID, msgs, cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChatTable(w, msgs, cfg)
		}, "table")
	}
}

// writeChatTable generates and writes the human-readable chat listing.
func writeChatTable(w io.Writer, msgs []schema.ChatMessage, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Time", "Question", "SQL", "Executed", "Rows"})

	maxWidth := getMaxTableCellWidth(cfg, 4) / 2
	var data [][]string
	for _, m := range msgs {
		data = append(data, []string{
			m.ID,
			m.Timestamp,
			contract.TruncateCell(m.UserQuery, maxWidth),
			contract.TruncateCell(m.SQLQuery, maxWidth),
			yesNo(m.Executed),
			fmt.Sprintf("%d", m.ResultCount),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d chat messages\n", len(msgs)); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForChat writes chat messages in CSV format.
func writeCSVResultsForChat(w io.Writer, msgs []schema.ChatMessage) error {
	header := []string{"id", "timestamp", "user_query", "sql_query", "commentary", "executed", "result_count"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, m := range msgs {
			rec := []string{
				m.ID,
				m.Timestamp,
				m.UserQuery,
				m.SQLQuery,
				m.Commentary,
				yesNo(m.Executed),
				fmt.Sprintf("%d", m.ResultCount),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeQueryListing outputs saved queries, dispatching on the output format.
func writeQueryListing(queries []schema.SavedQuery, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, queries)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"query_id", "sql_query"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, q := range queries {
					if err := cw.Write([]string{q.QueryID, q.SQLQuery}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			table := tablewriter.NewWriter(w)
			table.Header([]string{"Query ID", "SQL"})

			maxWidth := getMaxTableCellWidth(cfg, 1)
			var data [][]string
			for _, q := range queries {
				data = append(data, []string{q.QueryID, contract.TruncateCell(q.SQLQuery, maxWidth)})
			}

			if err := table.Bulk(data); err != nil {
				return err
			}
			if err := table.Render(); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Showing %d saved queries\n", len(queries))
			return err
		}, "table")
	}
}
