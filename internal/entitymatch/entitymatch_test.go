package entitymatch

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kgraphdb/kgraph/internal/storage/sqlite"
	"github.com/kgraphdb/kgraph/internal/types"
)

func TestSortMatchesDesc(t *testing.T) {
	matches := []Match{
		{TargetID: 1, SharedCount: 2},
		{TargetID: 2, SharedCount: 5},
		{TargetID: 3, SharedCount: 3},
	}
	sortMatchesDesc(matches)
	if matches[0].TargetID != 2 || matches[1].TargetID != 3 || matches[2].TargetID != 1 {
		t.Errorf("expected descending order by SharedCount, got %+v", matches)
	}
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// TestMatchDocumentRequiresTwoSharedEntities pins the spec.md §8 boundary:
// exactly one shared entity yields zero matches, exactly two yields one.
func TestMatchDocumentRequiresTwoSharedEntities(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	a, err := st.SaveDocument(ctx, &types.Document{Title: "Doc A", Content: "a"})
	if err != nil {
		t.Fatalf("saving document a: %v", err)
	}
	one, err := st.SaveDocument(ctx, &types.Document{Title: "Doc One Shared", Content: "b"})
	if err != nil {
		t.Fatalf("saving document one: %v", err)
	}
	two, err := st.SaveDocument(ctx, &types.Document{Title: "Doc Two Shared", Content: "c"})
	if err != nil {
		t.Fatalf("saving document two: %v", err)
	}

	if _, err := st.SaveEntities(ctx, a, []types.DocumentEntity{
		{Entity: "kubernetes", Type: types.EntityTechnology},
		{Entity: "terraform", Type: types.EntityTechnology},
	}); err != nil {
		t.Fatalf("saving entities for a: %v", err)
	}
	if _, err := st.SaveEntities(ctx, one, []types.DocumentEntity{
		{Entity: "kubernetes", Type: types.EntityTechnology},
	}); err != nil {
		t.Fatalf("saving entities for one: %v", err)
	}
	if _, err := st.SaveEntities(ctx, two, []types.DocumentEntity{
		{Entity: "kubernetes", Type: types.EntityTechnology},
		{Entity: "terraform", Type: types.EntityTechnology},
	}); err != nil {
		t.Fatalf("saving entities for two: %v", err)
	}

	result, err := MatchDocument(ctx, st, a, true)
	if err != nil {
		t.Fatalf("matching document: %v", err)
	}

	var matchedOne, matchedTwo bool
	for _, m := range result.Matches {
		if m.TargetID == one {
			matchedOne = true
		}
		if m.TargetID == two {
			matchedTwo = true
		}
	}
	if matchedOne {
		t.Errorf("expected document sharing exactly 1 entity to be excluded, got a match: %+v", result.Matches)
	}
	if !matchedTwo {
		t.Errorf("expected document sharing exactly 2 entities to produce a match")
	}
	if len(result.Matches) != 1 {
		t.Errorf("expected exactly 1 match, got %d: %+v", len(result.Matches), result.Matches)
	}
}
