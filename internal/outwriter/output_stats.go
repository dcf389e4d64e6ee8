package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/internal/parquet"
	"github.com/schemapilot/pilotctl/internal/sqlfmt"
	"github.com/schemapilot/pilotctl/schema"
)

// writeAnalysisResults outputs per-table column statistics, dispatching on
// the output format. Parquet output requires an output file.
func writeAnalysisResults(analysis *schema.SchemaAnalysis, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, analysis)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForAnalysis(w, analysis, fmtFloat)
		}, "CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		return parquet.WriteFieldStatsParquet(parquet.ConvertAnalysis(analysis), cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAnalysisTables(w, analysis, cfg, fmtFloat)
		}, "table")
	}
}

// sortedTableNames returns the analysis table names in stable order.
func sortedTableNames(analysis *schema.SchemaAnalysis) []string {
	names := make([]string, 0, len(analysis.Tables))
	for name := range analysis.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// writeAnalysisTables generates one human-readable grid per table.
func writeAnalysisTables(w io.Writer, analysis *schema.SchemaAnalysis, cfg *contract.Config, fmtFloat func(float64) string) error {
	typeLabel := contract.GetPlainTypeLabel
	if cfg.UseColors {
		typeLabel = contract.GetColorTypeLabel
	}
	maxWidth := getMaxTableCellWidth(cfg, 6)

	for _, name := range sortedTableNames(analysis) {
		if _, err := fmt.Fprintf(w, "Table: %s\n", name); err != nil {
			return err
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"Column", "Type", "Nulls %", "Unique %", "Min", "Max", "Mean", "Description"})

		var data [][]string
		for _, f := range analysis.Tables[name] {
			data = append(data, []string{
				f.ColumnName,
				typeLabel(f.InferredType),
				fmtFloat(f.NullPercentage),
				fmtFloat(f.UniquePercentage),
				formatCell(f.MinValue, fmtFloat),
				formatCell(f.MaxValue, fmtFloat),
				formatOptionalFloat(f.MeanValue, fmtFloat),
				contract.TruncateCell(f.Description, maxWidth),
			})
		}

		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "\n"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Showing %d tables for run %s\n", len(analysis.Tables), analysis.RunID); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForAnalysis writes column statistics in CSV format.
func writeCSVResultsForAnalysis(w io.Writer, analysis *schema.SchemaAnalysis, fmtFloat func(float64) string) error {
	header := []string{
		"table",
		"column",
		"data_type",
		"inferred_type",
		"type_label",
		"total_count",
		"null_count",
		"null_pct",
		"unique_count",
		"unique_pct",
		"min",
		"max",
		"mean",
		"median",
		"std",
		"description",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, name := range sortedTableNames(analysis) {
			for _, f := range analysis.Tables[name] {
				rec := []string{
					name,
					f.ColumnName,
					f.DataType,
					f.InferredType,
					contract.GetPlainTypeLabel(f.InferredType),
					strconv.Itoa(f.TotalCount),
					strconv.Itoa(f.NullCount),
					fmtFloat(f.NullPercentage),
					strconv.Itoa(f.UniqueCount),
					fmtFloat(f.UniquePercentage),
					formatCell(f.MinValue, fmtFloat),
					formatCell(f.MaxValue, fmtFloat),
					formatOptionalFloat(f.MeanValue, fmtFloat),
					formatOptionalFloat(f.MedianValue, fmtFloat),
					formatOptionalFloat(f.StdValue, fmtFloat),
					f.Description,
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeFieldDetail prints one column's full statistics with its histogram.
func writeFieldDetail(tableName string, field *schema.FieldStats, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		typeLabel := contract.GetPlainTypeLabel
		if cfg.UseColors {
			typeLabel = contract.GetColorTypeLabel
		}

		lines := []struct {
			label string
			value string
		}{
			{"Table", tableName},
			{"Column", field.ColumnName},
			{"Data type", field.DataType},
			{"Inferred type", typeLabel(field.InferredType)},
			{"Total count", strconv.Itoa(field.TotalCount)},
			{"Non-null count", strconv.Itoa(field.NonNullCount)},
			{"Null %", fmtFloat(field.NullPercentage)},
			{"Unique count", strconv.Itoa(field.UniqueCount)},
			{"Unique %", fmtFloat(field.UniquePercentage)},
			{"Min", formatCell(field.MinValue, fmtFloat)},
			{"Max", formatCell(field.MaxValue, fmtFloat)},
			{"Mean", formatOptionalFloat(field.MeanValue, fmtFloat)},
			{"Median", formatOptionalFloat(field.MedianValue, fmtFloat)},
			{"Std", formatOptionalFloat(field.StdValue, fmtFloat)},
			{"Description", field.Description},
		}
		for _, l := range lines {
			if _, err := fmt.Fprintf(w, "%-15s %s\n", l.label+":", l.value); err != nil {
				return err
			}
		}

		if field.UniqueValues != "" {
			if _, err := fmt.Fprintf(w, "\nUnique values: %s\n", field.UniqueValues); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w, "\nDistribution\n%s\n", sqlfmt.FormatHistogram(field.Histogram)); err != nil {
			return err
		}
		return nil
	}, "field detail")
}
