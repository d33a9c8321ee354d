package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kgraphdb/kgraph/internal/config"
)

// jsonOutput reports whether --json was requested, reading it through the
// config layer (flag-bound in root.go's PersistentPreRunE) rather than the
// cobra flag directly, so env-var and config-file overrides also apply.
func jsonOutput() bool {
	return config.JSONOutput()
}

// emit prints v as a single JSON object when --json is set, otherwise
// delegates to humanize for text output.
func emit(cmd *cobra.Command, v any, humanize func()) {
	if jsonOutput() {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			fmt.Fprintln(os.Stderr, "Error encoding JSON output:", err)
		}
		return
	}
	humanize()
}
