package embed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kgraphdb/kgraph/internal/storage/sqlite"
	"github.com/kgraphdb/kgraph/internal/types"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestMatchDocumentCreatesAutoLinkAboveThreshold(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	a, err := st.SaveDocument(ctx, &types.Document{Title: "A", Content: "kubernetes terraform deployment pipeline infrastructure"})
	if err != nil {
		t.Fatalf("saving document a: %v", err)
	}
	b, err := st.SaveDocument(ctx, &types.Document{Title: "B", Content: "kubernetes terraform deployment pipeline infrastructure"})
	if err != nil {
		t.Fatalf("saving document b: %v", err)
	}
	c, err := st.SaveDocument(ctx, &types.Document{Title: "C", Content: "grocery list milk eggs bread"})
	if err != nil {
		t.Fatalf("saving document c: %v", err)
	}

	for _, id := range []int64{a, b, c} {
		doc, err := st.GetDocument(ctx, id)
		if err != nil {
			t.Fatalf("fetching document %d: %v", id, err)
		}
		if err := IndexDocument(ctx, st, id, doc.Content, false, false); err != nil {
			t.Fatalf("indexing document %d: %v", id, err)
		}
	}

	result, err := MatchDocument(ctx, st, a, DefaultThreshold, DefaultMaxLinks, "", false)
	if err != nil {
		t.Fatalf("matching document: %v", err)
	}
	if result.LinksCreated != 1 || len(result.LinkedDocIDs) != 1 || result.LinkedDocIDs[0] != b {
		t.Fatalf("expected exactly one auto link to document b, got %+v", result)
	}

	exists, err := st.LinkExists(ctx, a, b)
	if err != nil {
		t.Fatalf("checking link existence: %v", err)
	}
	if !exists {
		t.Fatalf("expected an auto link between a and b")
	}

	links, err := st.GetLinksForDocument(ctx, a)
	if err != nil {
		t.Fatalf("fetching links: %v", err)
	}
	foundAuto := false
	for _, l := range links {
		if l.Method == types.LinkMethodAuto {
			foundAuto = true
		}
	}
	if !foundAuto {
		t.Fatalf("expected the new link to record method=auto, got %+v", links)
	}
}

func TestMatchDocumentSkipsUnindexedDocument(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	a, err := st.SaveDocument(ctx, &types.Document{Title: "A", Content: "unindexed"})
	if err != nil {
		t.Fatalf("saving document: %v", err)
	}

	result, err := MatchDocument(ctx, st, a, DefaultThreshold, DefaultMaxLinks, "", false)
	if err != nil {
		t.Fatalf("matching document: %v", err)
	}
	if len(result.LinkedDocIDs) != 0 {
		t.Fatalf("expected no matches for a document with no embedding, got %+v", result)
	}
}

func TestIndexAllSkipsAlreadyIndexedUnlessForced(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	if _, err := st.SaveDocument(ctx, &types.Document{Title: "A", Content: "one two three"}); err != nil {
		t.Fatalf("saving document: %v", err)
	}

	first, err := IndexAll(ctx, st, false, 0, false)
	if err != nil {
		t.Fatalf("first index pass: %v", err)
	}
	if first != 1 {
		t.Fatalf("expected 1 document indexed, got %d", first)
	}

	second, err := IndexAll(ctx, st, false, 0, false)
	if err != nil {
		t.Fatalf("second index pass: %v", err)
	}
	if second != 0 {
		t.Fatalf("expected 0 newly indexed documents on the second pass, got %d", second)
	}

	forced, err := IndexAll(ctx, st, true, 0, false)
	if err != nil {
		t.Fatalf("forced index pass: %v", err)
	}
	if forced != 1 {
		t.Fatalf("expected forced reindex to count as 1, got %d", forced)
	}
}

func TestClearRemovesEmbeddings(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	if _, err := st.SaveDocument(ctx, &types.Document{Title: "A", Content: "one two three"}); err != nil {
		t.Fatalf("saving document: %v", err)
	}
	if _, err := IndexAll(ctx, st, false, 0, false); err != nil {
		t.Fatalf("indexing: %v", err)
	}

	stats, err := Stats(ctx, st)
	if err != nil {
		t.Fatalf("fetching stats: %v", err)
	}
	if stats.IndexedDocuments != 1 {
		t.Fatalf("expected 1 indexed document before clear, got %d", stats.IndexedDocuments)
	}

	if _, err := Clear(ctx, st); err != nil {
		t.Fatalf("clearing index: %v", err)
	}

	stats, err = Stats(ctx, st)
	if err != nil {
		t.Fatalf("fetching stats after clear: %v", err)
	}
	if stats.IndexedDocuments != 0 {
		t.Fatalf("expected 0 indexed documents after clear, got %d", stats.IndexedDocuments)
	}
}
