package cluster

import (
	"math"
	"testing"

	"github.com/kgraphdb/kgraph/internal/types"
)

func TestSlugBasic(t *testing.T) {
	got := Slug("Knowledge Graph / Core Concepts")
	want := "knowledge-graph-core-concepts"
	if got != want {
		t.Errorf("Slug() = %q, want %q", got, want)
	}
}

func TestSlugTruncatesTo80(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += "a"
	}
	got := Slug(long)
	if len(got) > 80 {
		t.Errorf("expected slug capped at 80 chars, got %d", len(got))
	}
}

func TestSlugEmptyFallsBackToTopic(t *testing.T) {
	if got := Slug("***"); got != "topic" {
		t.Errorf("expected fallback slug 'topic', got %q", got)
	}
}

func TestTypeWeightOrdering(t *testing.T) {
	if typeWeight(types.EntityProperNoun) <= typeWeight(types.EntityTechTerm) {
		t.Error("expected proper_noun weight to exceed tech_term weight")
	}
	if typeWeight(types.EntityTechTerm) <= typeWeight(types.EntityConcept) {
		t.Error("expected tech_term weight to exceed concept weight")
	}
	if typeWeight(types.EntityConcept) <= typeWeight(types.EntityHeading) {
		t.Error("expected concept weight to exceed heading weight")
	}
}

func TestPruneEntitiesDropsRareAndCommon(t *testing.T) {
	df := map[string]int{
		"rare":    1,
		"normal":  3,
		"common":  100,
	}
	opts := DefaultOptions()
	survivors := pruneEntities(df, 200, opts)
	if survivors["rare"] {
		t.Error("expected below-min-df entity to be pruned")
	}
	if !survivors["normal"] {
		t.Error("expected mid-frequency entity to survive")
	}
	if survivors["common"] {
		t.Error("expected above-max-df-ratio entity to be pruned")
	}
}

func TestWeightedJaccardIdenticalSets(t *testing.T) {
	idf := map[string]float64{"a": 1.0, "b": 1.0}
	m := map[string]float64{"a": 0.9, "b": 0.8}
	// Shared mass is idf*max(conf) per entity, (0.9+0.8), over an idf sum of 2.
	if sim := weightedJaccard(m, m, idf); math.Abs(sim-0.85) > 1e-9 {
		t.Errorf("expected identical sets to score 0.85, got %v", sim)
	}
}

func TestWeightedJaccardDisjointSets(t *testing.T) {
	idf := map[string]float64{"a": 1.0, "b": 1.0}
	a := map[string]float64{"a": 0.9}
	b := map[string]float64{"b": 0.9}
	if sim := weightedJaccard(a, b, idf); sim != 0 {
		t.Errorf("expected disjoint sets to score 0, got %v", sim)
	}
}

func TestDetectCommunitiesGroupsDenselyConnectedNodes(t *testing.T) {
	nodes := []int64{1, 2, 3, 4, 5, 6}
	edges := []Edge{
		{A: 1, B: 2, Weight: 0.9},
		{A: 2, B: 3, Weight: 0.9},
		{A: 1, B: 3, Weight: 0.9},
		{A: 4, B: 5, Weight: 0.9},
		{A: 5, B: 6, Weight: 0.9},
		{A: 4, B: 6, Weight: 0.9},
	}
	assignment := detectCommunities(nodes, edges, 0.05)
	if assignment[1] != assignment[2] || assignment[2] != assignment[3] {
		t.Errorf("expected nodes 1,2,3 in the same community, got %+v", assignment)
	}
	if assignment[4] != assignment[5] || assignment[5] != assignment[6] {
		t.Errorf("expected nodes 4,5,6 in the same community, got %+v", assignment)
	}
	if assignment[1] == assignment[4] {
		t.Error("expected the two triangles to land in different communities")
	}
}

func TestRenumberBySizeDropsSmallCommunities(t *testing.T) {
	assignment := map[int64]int{1: 0, 2: 0, 3: 0, 4: 1}
	out := renumberBySize(assignment, 3)
	if _, ok := out[4]; ok {
		t.Error("expected the size-1 community to be dropped")
	}
	if len(out) != 3 {
		t.Errorf("expected 3 surviving members, got %d", len(out))
	}
}
