package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kgraphdb/kgraph/internal/audit"
	"github.com/kgraphdb/kgraph/internal/cache"
	"github.com/kgraphdb/kgraph/internal/config"
	"github.com/kgraphdb/kgraph/internal/kgerr"
	"github.com/kgraphdb/kgraph/internal/llmcli"
	"github.com/kgraphdb/kgraph/internal/storage"
	"github.com/kgraphdb/kgraph/internal/storage/sqlite"
)

// Process-level singletons, constructed once in PersistentPreRunE from
// config values and shared by every subcommand. Mirrors the teacher's
// cmd/bd pattern of package-level clients wired up before Execute runs.
var (
	store   storage.Storage
	caches  *cache.Manager
	auditor *audit.Logger
	llm     *llmcli.Client
)

var rootCmd = &cobra.Command{
	Use:           "kg",
	Short:         "A personal/team knowledge graph: storage, search, auto-linking, and wiki synthesis",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		for _, key := range []string{"json", "db", "actor"} {
			if err := config.BindFlag(key, rootCmd.PersistentFlags().Lookup(key)); err != nil {
				return fmt.Errorf("binding --%s flag: %w", key, err)
			}
		}

		dbPath := config.DatabasePath()
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}

		st, err := sqlite.New(cmd.Context(), dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		store = st

		specs := make(map[string]cache.Spec)
		for name, spec := range config.Caches() {
			specs[name] = cache.Spec{Capacity: spec.Capacity, TTL: spec.TTL}
		}
		caches = cache.NewManager(specs)
		caches.SetFlushSink(store.FlushAccessCounts)

		auditor = audit.New(filepath.Dir(dbPath))
		llm = llmcli.New(config.LLMCLI(), config.LLMTimeout())

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store == nil {
			return nil
		}
		ctx := cmd.Context()
		if err := caches.FlushAccessCounts(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: flushing access counts: %v\n", err)
		}
		return store.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "emit a single JSON object instead of human-readable output")
	rootCmd.PersistentFlags().String("db", "", "path to the knowledge graph database (default .kg/graph.db)")
	rootCmd.PersistentFlags().String("actor", "", "actor name recorded on provenance fields")

	rootCmd.AddGroup(
		&cobra.Group{ID: "documents", Title: "Document commands:"},
		&cobra.Group{ID: "maintain", Title: "Maintenance commands:"},
		&cobra.Group{ID: "wiki", Title: "Wiki synthesis commands:"},
	)
}

// Execute runs the CLI and returns the process exit code: 0 on success, 1
// for any error, cobra's own arg-parsing errors included (see
// kgerr.ExitCode).
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return kgerr.ExitCode(err)
	}
	return 0
}
