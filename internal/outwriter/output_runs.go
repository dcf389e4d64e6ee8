package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/schema"
)

// writeRunResults outputs the run listing, dispatching on the output format.
func writeRunResults(runs []schema.Run, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForRuns(w, runs)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForRuns(w, runs)
		}, "CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunTable(w, runs)
		}, "table")
	}
}

// writeRunTable generates and writes the human-readable run listing.
func writeRunTable(w io.Writer, runs []schema.Run) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Run ID", "Created", "Status", "Files", "Queries", "Execs", "Analysis"})

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range runs {
		data = append(data, []string{
			r.RunID,
			r.CreatedAt,
			r.Status,
			strconv.Itoa(r.FilesUploaded),
			strconv.Itoa(r.QueriesCount),
			strconv.Itoa(r.ExecutionsCount),
			r.Analysis.Symbol(),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d runs\n", len(runs)); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForRuns writes the run listing in CSV format.
func writeCSVResultsForRuns(w io.Writer, runs []schema.Run) error {
	header := []string{"run_id", "created_at", "status", "files_uploaded", "queries_count", "executions_count", "analysis"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range runs {
			rec := []string{
				r.RunID,
				r.CreatedAt,
				r.Status,
				strconv.Itoa(r.FilesUploaded),
				strconv.Itoa(r.QueriesCount),
				strconv.Itoa(r.ExecutionsCount),
				string(r.Analysis),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONResultsForRuns writes the run listing in JSON format.
func writeJSONResultsForRuns(w io.Writer, runs []schema.Run) error {
	type JSONRun struct {
		schema.Run
		Analysis string `json:"analysis"`
	}

	output := make([]JSONRun, len(runs))
	for i, r := range runs {
		output[i] = JSONRun{Run: r, Analysis: string(r.Analysis)}
	}
	return writeJSON(w, output)
}
