package main

import (
	"context"
	"strconv"
	"testing"
)

func TestMaintainLinkAndUnlink(t *testing.T) {
	newTestStore(t)

	if err := saveCmd.RunE(withCtx(saveCmd), []string{"Doc A", "content a"}); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := saveCmd.RunE(withCtx(saveCmd), []string{"Doc B", "content b"}); err != nil {
		t.Fatalf("save b: %v", err)
	}
	a, err := store.GetDocumentByTitle(context.Background(), "Doc A")
	if err != nil {
		t.Fatalf("fetching a: %v", err)
	}
	b, err := store.GetDocumentByTitle(context.Background(), "Doc B")
	if err != nil {
		t.Fatalf("fetching b: %v", err)
	}
	idA := strconv.FormatInt(a.ID, 10)
	idB := strconv.FormatInt(b.ID, 10)

	if err := maintainLinkCmd.RunE(withCtx(maintainLinkCmd), []string{idA, idB}); err != nil {
		t.Fatalf("link: %v", err)
	}
	exists, err := store.LinkExists(context.Background(), a.ID, b.ID)
	if err != nil {
		t.Fatalf("checking link: %v", err)
	}
	if !exists {
		t.Fatalf("expected link between #%d and #%d", a.ID, b.ID)
	}

	if err := maintainUnlinkCmd.RunE(withCtx(maintainUnlinkCmd), []string{idA, idB}); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	exists, err = store.LinkExists(context.Background(), a.ID, b.ID)
	if err != nil {
		t.Fatalf("checking link: %v", err)
	}
	if exists {
		t.Fatalf("expected link between #%d and #%d to be removed", a.ID, b.ID)
	}
}

func TestMaintainWikifyCreatesTitleMatchLinks(t *testing.T) {
	newTestStore(t)

	if err := saveCmd.RunE(withCtx(saveCmd), []string{"Project Alpha", "the plan for Project Alpha is underway"}); err != nil {
		t.Fatalf("save target: %v", err)
	}
	if err := saveCmd.RunE(withCtx(saveCmd), []string{"Weekly Notes", "today we discussed Project Alpha at length"}); err != nil {
		t.Fatalf("save source: %v", err)
	}

	maintainWikifyCmd.Flags().Set("all", "true")
	if err := maintainWikifyCmd.RunE(withCtx(maintainWikifyCmd), nil); err != nil {
		t.Fatalf("wikify: %v", err)
	}

	source, err := store.GetDocumentByTitle(context.Background(), "Weekly Notes")
	if err != nil {
		t.Fatalf("fetching source: %v", err)
	}
	links, err := store.GetLinksForDocument(context.Background(), source.ID)
	if err != nil {
		t.Fatalf("fetching links: %v", err)
	}
	if len(links) == 0 {
		t.Fatalf("expected wikify to create at least one title-match link for %q", "Weekly Notes")
	}
}

func TestMaintainDedupFindsExactDuplicate(t *testing.T) {
	newTestStore(t)

	if err := saveCmd.RunE(withCtx(saveCmd), []string{"Original", "identical body text"}); err != nil {
		t.Fatalf("save original: %v", err)
	}
	if err := saveCmd.RunE(withCtx(saveCmd), []string{"Copy", "identical body text"}); err != nil {
		t.Fatalf("save copy: %v", err)
	}

	if err := maintainDedupCmd.RunE(withCtx(maintainDedupCmd), nil); err != nil {
		t.Fatalf("dedup: %v", err)
	}
}
