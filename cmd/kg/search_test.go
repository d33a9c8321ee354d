package main

import (
	"context"
	"strconv"
	"testing"

	"github.com/kgraphdb/kgraph/internal/storage"
)

func TestSearchFindsSavedDocument(t *testing.T) {
	newTestStore(t)

	if err := saveCmd.RunE(withCtx(saveCmd), []string{"Kubernetes Notes", "pods and deployments and services"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := saveCmd.RunE(withCtx(saveCmd), []string{"Unrelated", "nothing interesting here"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := searchCmd.RunE(withCtx(searchCmd), []string{"kubernetes"}); err != nil {
		t.Fatalf("search: %v", err)
	}

	results, err := store.Search(context.Background(), "kubernetes", storage.SearchOptions{Limit: 20})
	if err != nil {
		t.Fatalf("direct search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 search result, got %d", len(results))
	}
	if results[0].Title != "Kubernetes Notes" {
		t.Errorf("expected %q, got %q", "Kubernetes Notes", results[0].Title)
	}
}

func TestTagAddRemoveListRoundTrip(t *testing.T) {
	newTestStore(t)

	if err := saveCmd.RunE(withCtx(saveCmd), []string{"Tagged Doc", "content"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc, err := store.GetDocumentByTitle(context.Background(), "Tagged Doc")
	if err != nil {
		t.Fatalf("fetching: %v", err)
	}
	id := strconv.FormatInt(doc.ID, 10)

	if err := tagAddCmd.RunE(withCtx(tagAddCmd), []string{id, "go,infra"}); err != nil {
		t.Fatalf("tag add: %v", err)
	}
	tags, err := store.GetTags(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("fetching tags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", tags)
	}

	if err := tagRemoveCmd.RunE(withCtx(tagRemoveCmd), []string{id, "go"}); err != nil {
		t.Fatalf("tag remove: %v", err)
	}
	tags, err = store.GetTags(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("fetching tags: %v", err)
	}
	if len(tags) != 1 || tags[0] != "infra" {
		t.Fatalf("expected only %q to remain, got %v", "infra", tags)
	}

	if err := tagListCmd.RunE(withCtx(tagListCmd), nil); err != nil {
		t.Fatalf("tag list: %v", err)
	}
}
