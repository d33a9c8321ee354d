package main

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/cobra"

	"github.com/kgraphdb/kgraph/internal/audit"
	"github.com/kgraphdb/kgraph/internal/cache"
	"github.com/kgraphdb/kgraph/internal/llmcli"
	"github.com/kgraphdb/kgraph/internal/storage/sqlite"
)

// newTestStore wires the package-level singletons (store, caches, auditor,
// llm) against a throwaway SQLite file, mirroring what root.go's
// PersistentPreRunE does for a real invocation. Tests call command RunE
// functions directly rather than going through Execute(), since Execute
// parses os.Args.
func newTestStore(t *testing.T) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "graph.db")
	st, err := sqlite.New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	store = st
	caches = cache.NewManager(map[string]cache.Spec{})
	auditor = audit.New(filepath.Dir(dbPath))
	llm = llmcli.New("claude", 0)
}

// withCtx attaches a background context to cmd and returns it, so RunE
// functions called directly (bypassing Execute) still see cmd.Context() and
// the real cmd's own registered flags.
func withCtx(cmd *cobra.Command) *cobra.Command {
	cmd.SetContext(context.Background())
	return cmd
}

func TestSaveAndViewDocument(t *testing.T) {
	newTestStore(t)

	if err := saveCmd.RunE(withCtx(saveCmd), []string{"My Title", "Some content"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	doc, err := store.GetDocumentByTitle(context.Background(), "My Title")
	if err != nil {
		t.Fatalf("fetching saved document: %v", err)
	}
	if doc.Content != "Some content" {
		t.Errorf("expected content %q, got %q", "Some content", doc.Content)
	}

	if err := viewCmd.RunE(withCtx(viewCmd), []string{strconv.FormatInt(doc.ID, 10)}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestSaveOverwritesByTitle(t *testing.T) {
	newTestStore(t)

	if err := saveCmd.RunE(withCtx(saveCmd), []string{"Dup", "first"}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := saveCmd.RunE(withCtx(saveCmd), []string{"Dup", "second"}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	docs, err := store.ListDocuments(context.Background(), "", 50)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document after overwrite, got %d", len(docs))
	}

	doc, err := store.GetDocumentByTitle(context.Background(), "Dup")
	if err != nil {
		t.Fatalf("fetching: %v", err)
	}
	if doc.Content != "second" {
		t.Errorf("expected overwritten content %q, got %q", "second", doc.Content)
	}
}

func TestDeleteAndRestoreDocument(t *testing.T) {
	newTestStore(t)
	deleteCmd.Flags().Set("force", "true")

	if err := saveCmd.RunE(withCtx(saveCmd), []string{"Gone", "x"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc, err := store.GetDocumentByTitle(context.Background(), "Gone")
	if err != nil {
		t.Fatalf("fetching: %v", err)
	}

	if err := deleteCmd.RunE(withCtx(deleteCmd), []string{strconv.FormatInt(doc.ID, 10)}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetDocument(context.Background(), doc.ID); err == nil {
		t.Fatalf("expected deleted document to be unreachable via GetDocument")
	}

	if err := restoreCmd.RunE(withCtx(restoreCmd), []string{strconv.FormatInt(doc.ID, 10)}); err != nil {
		t.Fatalf("restore: %v", err)
	}
	restored, err := store.GetDocument(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("fetching restored document: %v", err)
	}
	if restored.Title != "Gone" {
		t.Errorf("expected restored title %q, got %q", "Gone", restored.Title)
	}
}
