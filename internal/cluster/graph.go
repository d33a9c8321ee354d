// Package cluster implements the topic clusterer (spec.md §4.10): building
// an IDF-weighted document-entity similarity graph, running a Constant
// Potts Model variant of Leiden community detection over it, and labeling
// the surviving clusters via class-TF-IDF. Like internal/analyze, this has
// no direct teacher analogue (see DESIGN.md); it follows the same
// pure-function-over-loaded-data shape the rest of this module uses.
package cluster

import (
	"math"
	"sort"

	"github.com/kgraphdb/kgraph/internal/types"
)

// Options configures the clustering pass; zero values resolve to the
// spec's defaults via DefaultOptions.
type Options struct {
	MinDF          int
	MaxDFRatio     float64
	MinEdgeWeight  float64
	Resolution     float64
	MinClusterSize int
	EntityTypes    map[types.EntityType]bool // nil/empty means "all types"
}

// DefaultOptions matches spec.md §4.10's defaults.
func DefaultOptions() Options {
	return Options{
		MinDF:          2,
		MaxDFRatio:     0.15,
		MinEdgeWeight:  0.05,
		Resolution:     0.05,
		MinClusterSize: 3,
	}
}

// docEntityMatrix is {doc -> {entity -> max_confidence}}.
type docEntityMatrix map[int64]map[string]float64

// buildMatrix constructs the per-document max-confidence entity map and the
// document-frequency count per entity, optionally restricted to a set of
// entity types.
func buildMatrix(entities []types.DocumentEntity, allowedTypes map[types.EntityType]bool) (docEntityMatrix, map[string]int) {
	matrix := make(docEntityMatrix)
	df := make(map[string]int)
	seenForDF := make(map[string]map[int64]bool)

	for _, e := range entities {
		if len(allowedTypes) > 0 && !allowedTypes[e.Type] {
			continue
		}
		if matrix[e.DocumentID] == nil {
			matrix[e.DocumentID] = make(map[string]float64)
		}
		if e.Confidence > matrix[e.DocumentID][e.Entity] {
			matrix[e.DocumentID][e.Entity] = e.Confidence
		}
		if seenForDF[e.Entity] == nil {
			seenForDF[e.Entity] = make(map[int64]bool)
		}
		if !seenForDF[e.Entity][e.DocumentID] {
			seenForDF[e.Entity][e.DocumentID] = true
			df[e.Entity]++
		}
	}
	return matrix, df
}

// pruneEntities removes entities whose document frequency falls outside
// [minDF, maxDF], where maxDF is max(maxDFRatio*totalDocs, 5).
func pruneEntities(df map[string]int, totalDocs int, opts Options) map[string]bool {
	maxDF := opts.MaxDFRatio * float64(totalDocs)
	if maxDF < 5 {
		maxDF = 5
	}
	survivors := make(map[string]bool)
	for entity, count := range df {
		if count < opts.MinDF {
			continue
		}
		if float64(count) > maxDF {
			continue
		}
		survivors[entity] = true
	}
	return survivors
}

// idfScores computes idf(e) = ln(1 + totalDocs/df(e)) for every surviving
// entity.
func idfScores(df map[string]int, survivors map[string]bool, totalDocs int) map[string]float64 {
	idf := make(map[string]float64, len(survivors))
	for entity := range survivors {
		idf[entity] = math.Log(1 + float64(totalDocs)/float64(df[entity]))
	}
	return idf
}

// Edge is a weighted similarity edge between two documents.
type Edge struct {
	A, B   int64
	Weight float64
}

// buildEdges computes IDF-weighted Jaccard similarity between every pair of
// documents over their surviving-entity maps, dropping edges below
// minEdgeWeight.
func buildEdges(matrix docEntityMatrix, survivors map[string]bool, idf map[string]float64, minEdgeWeight float64) []Edge {
	docIDs := make([]int64, 0, len(matrix))
	for id := range matrix {
		docIDs = append(docIDs, id)
	}
	sort.Slice(docIDs, func(i, j int) bool { return docIDs[i] < docIDs[j] })

	var edges []Edge
	for i := 0; i < len(docIDs); i++ {
		ei := survivingEntities(matrix[docIDs[i]], survivors)
		for j := i + 1; j < len(docIDs); j++ {
			ej := survivingEntities(matrix[docIDs[j]], survivors)
			weight := weightedJaccard(ei, ej, idf)
			if weight < minEdgeWeight {
				continue
			}
			edges = append(edges, Edge{A: docIDs[i], B: docIDs[j], Weight: weight})
		}
	}
	return edges
}

func survivingEntities(entities map[string]float64, survivors map[string]bool) map[string]float64 {
	out := make(map[string]float64)
	for e, conf := range entities {
		if survivors[e] {
			out[e] = conf
		}
	}
	return out
}

func weightedJaccard(a, b map[string]float64, idf map[string]float64) float64 {
	var numerator, denominator float64
	seen := make(map[string]bool, len(a)+len(b))

	for e, confA := range a {
		seen[e] = true
		w := idf[e]
		if confB, ok := b[e]; ok {
			numerator += w * math.Max(confA, confB)
		}
		denominator += w
	}
	for e := range b {
		if seen[e] {
			continue
		}
		denominator += idf[e]
	}
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
