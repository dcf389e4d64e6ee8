// main is the entry point for the pilotctl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/schemapilot/pilotctl/cmd"
	"github.com/schemapilot/pilotctl/internal/workstore"
)

func main() {
	os.Exit(run())
}

// run executes the CLI and closes the workspace store on the way out.
func run() int {
	defer workstore.CloseStores()

	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
