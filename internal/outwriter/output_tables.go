package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/schema"
)

// writeTableResults outputs the table listing, dispatching on the output format.
func writeTableResults(tables []schema.TableInfo, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, tables)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"name", "has_descriptions", "selected"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, t := range tables {
					if err := cw.Write([]string{t.Name, yesNo(t.HasDescriptions), yesNo(t.Selected)}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTableListing(w, tables)
		}, "table")
	}
}

// writeTableListing generates and writes the human-readable table listing.
func writeTableListing(w io.Writer, tables []schema.TableInfo) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Table", "Descriptions", "Selected"})

	var data [][]string
	for _, t := range tables {
		data = append(data, []string{t.Name, yesNo(t.HasDescriptions), yesNo(t.Selected)})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d tables\n", len(tables)); err != nil {
		return err
	}
	return nil
}

// writePreviewResults outputs raw table rows, dispatching on the output format.
func writePreviewResults(tableName string, preview *schema.TablePreview, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, preview)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, preview.Columns, func(cw *csv.Writer) error {
				return writeDynamicCSVRows(cw, preview.Columns, preview.Rows, fmtFloat)
			})
		}, "CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeDynamicTable(w, preview.Columns, preview.Rows, cfg, fmtFloat); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Showing %d preview rows of %s\n", len(preview.Rows), tableName)
			return err
		}, "table")
	}
}

// writeDynamicTable renders rows keyed by column name in column order.
func writeDynamicTable(w io.Writer, columns []string, rows []map[string]any, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header(columns)

	maxWidth := getMaxTableCellWidth(cfg, len(columns))
	var data [][]string
	for _, row := range rows {
		rec := make([]string, len(columns))
		for i, col := range columns {
			rec[i] = contract.TruncateCell(formatCell(row[col], fmtFloat), maxWidth)
		}
		data = append(data, rec)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeDynamicCSVRows writes rows keyed by column name in column order.
func writeDynamicCSVRows(cw *csv.Writer, columns []string, rows []map[string]any, fmtFloat func(float64) string) error {
	for _, row := range rows {
		rec := make([]string, len(columns))
		for i, col := range columns {
			rec[i] = formatCell(row[col], fmtFloat)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
