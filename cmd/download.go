package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/schemapilot/pilotctl/internal/contract"
)

// downloadCmd groups artifact downloads.
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download run artifacts to local files",
	Long: `Fetch server-side artifacts of a run to local files.

Subcommands:
  description - Download one AI description artifact
  query       - Download a saved query's SQL
  result      - Download a raw result file

Examples:
  pilotctl download description 3f9c01 orders_descriptions.json
  pilotctl download query 3f9c01 q-42
  pilotctl download result 3f9c01 result_42.json`,
}

// downloadTo streams an artifact into the output file, defaulting the path.
func downloadTo(defaultName string, stream func(w io.Writer) error) {
	outPath := cfg.OutputFile
	if outPath == "" {
		outPath = filepath.Base(defaultName)
	}
	f, err := os.Create(outPath)
	if err != nil {
		contract.LogFatal("Cannot create file", err)
	}
	defer func() { _ = f.Close() }()

	if err := stream(f); err != nil {
		contract.LogFatal("Download failed", err)
	}
	fmt.Printf("Wrote %s.\n", outPath)
}

// downloadDescriptionCmd downloads a description artifact.
var downloadDescriptionCmd = &cobra.Command{
	Use:     "description <run-id> <filename>",
	Short:   "Download one AI description artifact",
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID, filename := args[0], args[1]
		downloadTo(filename, func(w io.Writer) error {
			return backend.DownloadDescription(rootCtx, runID, filename, w)
		})
	},
}

// downloadQueryCmd downloads saved query SQL.
var downloadQueryCmd = &cobra.Command{
	Use:     "query <run-id> <query-id>",
	Short:   "Download a saved query's SQL",
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID, queryID := args[0], args[1]
		downloadTo(queryID+".sql", func(w io.Writer) error {
			return backend.DownloadQuery(rootCtx, runID, queryID, w)
		})
	},
}

// downloadResultCmd downloads a result file.
var downloadResultCmd = &cobra.Command{
	Use:     "result <run-id> <filename>",
	Short:   "Download a raw result file",
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID, filename := args[0], args[1]
		downloadTo(filename, func(w io.Writer) error {
			return backend.DownloadResult(rootCtx, runID, filename, w)
		})
	},
}
