package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kgraphdb/kgraph/internal/storage"
	"github.com/kgraphdb/kgraph/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(context.Background(), filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSaveAndGetDocument(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, err := st.SaveDocument(ctx, &types.Document{Title: "Kubernetes Notes", Content: "kubectl apply -f"})
	if err != nil {
		t.Fatalf("saving document: %v", err)
	}

	doc, err := st.GetDocument(ctx, id)
	if err != nil {
		t.Fatalf("fetching document: %v", err)
	}
	if doc.Title != "Kubernetes Notes" || doc.Content != "kubectl apply -f" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.Kind != types.DocKindUser {
		t.Fatalf("expected default kind %q, got %q", types.DocKindUser, doc.Kind)
	}
}

func TestGetDocumentByTitle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, err := st.SaveDocument(ctx, &types.Document{Title: "Weekly Notes", Content: "body"})
	if err != nil {
		t.Fatalf("saving document: %v", err)
	}

	doc, err := st.GetDocumentByTitle(ctx, "Weekly Notes")
	if err != nil {
		t.Fatalf("fetching by title: %v", err)
	}
	if doc.ID != id {
		t.Fatalf("expected id %d, got %d", id, doc.ID)
	}

	if _, err := st.GetDocumentByTitle(ctx, "No Such Title"); err == nil {
		t.Fatalf("expected error for missing title")
	}
}

func TestUpdateDocument(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, err := st.SaveDocument(ctx, &types.Document{Title: "Draft", Content: "v1"})
	if err != nil {
		t.Fatalf("saving document: %v", err)
	}

	ok, err := st.UpdateDocument(ctx, id, "Draft", "v2")
	if err != nil {
		t.Fatalf("updating document: %v", err)
	}
	if !ok {
		t.Fatalf("expected update to report success")
	}

	doc, err := st.GetDocument(ctx, id)
	if err != nil {
		t.Fatalf("fetching document: %v", err)
	}
	if doc.Content != "v2" {
		t.Fatalf("expected updated content, got %q", doc.Content)
	}
}

func TestDeleteRestorePurge(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, err := st.SaveDocument(ctx, &types.Document{Title: "Temp", Content: "x"})
	if err != nil {
		t.Fatalf("saving document: %v", err)
	}

	ok, err := st.DeleteDocument(ctx, id, false)
	if err != nil || !ok {
		t.Fatalf("soft-deleting document: ok=%v err=%v", ok, err)
	}

	if _, err := st.GetDocument(ctx, id); err == nil {
		t.Fatalf("expected soft-deleted document to be hidden from GetDocument")
	}

	deleted, err := st.ListDeleted(ctx, 30, 10)
	if err != nil {
		t.Fatalf("listing deleted: %v", err)
	}
	if len(deleted) != 1 || deleted[0].ID != id {
		t.Fatalf("expected 1 deleted document with id %d, got %+v", id, deleted)
	}

	restored, err := st.Restore(ctx, id)
	if err != nil || !restored {
		t.Fatalf("restoring document: restored=%v err=%v", restored, err)
	}
	if _, err := st.GetDocument(ctx, id); err != nil {
		t.Fatalf("expected restored document to be visible: %v", err)
	}

	ok, err = st.DeleteDocument(ctx, id, true)
	if err != nil || !ok {
		t.Fatalf("hard-deleting document: ok=%v err=%v", ok, err)
	}
	if _, err := st.GetDocument(ctx, id); err == nil {
		t.Fatalf("expected hard-deleted document to be gone")
	}
}

func TestListDocumentsByProject(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.SaveDocument(ctx, &types.Document{Title: "A", Content: "a", Project: "kg"}); err != nil {
		t.Fatalf("saving document: %v", err)
	}
	if _, err := st.SaveDocument(ctx, &types.Document{Title: "B", Content: "b", Project: "other"}); err != nil {
		t.Fatalf("saving document: %v", err)
	}

	docs, err := st.ListDocuments(ctx, "kg", 10)
	if err != nil {
		t.Fatalf("listing documents: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "A" {
		t.Fatalf("expected only project kg documents, got %+v", docs)
	}
}

func TestTagRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, err := st.SaveDocument(ctx, &types.Document{Title: "Tagged", Content: "x"})
	if err != nil {
		t.Fatalf("saving document: %v", err)
	}

	if err := st.SaveTags(ctx, id, []string{"go", "infra"}); err != nil {
		t.Fatalf("saving tags: %v", err)
	}

	tags, err := st.GetTags(ctx, id)
	if err != nil {
		t.Fatalf("getting tags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", tags)
	}

	docs, err := st.DocsWithTag(ctx, "go")
	if err != nil {
		t.Fatalf("finding docs with tag: %v", err)
	}
	if len(docs) != 1 || docs[0] != id {
		t.Fatalf("expected document %d tagged go, got %v", id, docs)
	}
}

func TestLinkCreateExistsDelete(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a, err := st.SaveDocument(ctx, &types.Document{Title: "A", Content: "a"})
	if err != nil {
		t.Fatalf("saving document: %v", err)
	}
	b, err := st.SaveDocument(ctx, &types.Document{Title: "B", Content: "b"})
	if err != nil {
		t.Fatalf("saving document: %v", err)
	}

	_, created, err := st.CreateLink(ctx, a, b, 1.0, types.LinkMethodTitleMatch)
	if err != nil {
		t.Fatalf("creating link: %v", err)
	}
	if !created {
		t.Fatalf("expected new link to report created")
	}

	exists, err := st.LinkExists(ctx, a, b)
	if err != nil {
		t.Fatalf("checking link existence: %v", err)
	}
	if !exists {
		t.Fatalf("expected link to exist")
	}

	ok, err := st.DeleteLink(ctx, a, b)
	if err != nil || !ok {
		t.Fatalf("deleting link: ok=%v err=%v", ok, err)
	}

	exists, err = st.LinkExists(ctx, a, b)
	if err != nil {
		t.Fatalf("checking link existence: %v", err)
	}
	if exists {
		t.Fatalf("expected link to be gone after delete")
	}
}

func TestCreateLinkSelfLinkIsNoop(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a, err := st.SaveDocument(ctx, &types.Document{Title: "A", Content: "a"})
	if err != nil {
		t.Fatalf("saving document: %v", err)
	}

	id, created, err := st.CreateLink(ctx, a, a, 1.0, types.LinkMethodManual)
	if err != nil {
		t.Fatalf("expected self-link to be a silent no-op, got error: %v", err)
	}
	if created || id != 0 {
		t.Fatalf("expected self-link to report id=0, created=false, got id=%d created=%v", id, created)
	}

	exists, err := st.LinkExists(ctx, a, a)
	if err != nil {
		t.Fatalf("checking link existence: %v", err)
	}
	if exists {
		t.Fatalf("expected self-link to not exist")
	}
}

func TestSearchFindsMatch(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.SaveDocument(ctx, &types.Document{Title: "Kubernetes Notes", Content: "kubectl apply -f deploy.yaml"}); err != nil {
		t.Fatalf("saving document: %v", err)
	}
	if _, err := st.SaveDocument(ctx, &types.Document{Title: "Grocery List", Content: "milk, eggs, bread"}); err != nil {
		t.Fatalf("saving document: %v", err)
	}

	results, err := st.Search(ctx, "kubectl", storage.SearchOptions{Limit: 10})
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Kubernetes Notes" {
		t.Fatalf("expected 1 match for kubectl, got %+v", results)
	}
}
