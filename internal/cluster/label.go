package cluster

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"

	"github.com/kgraphdb/kgraph/internal/types"
)

// typeWeight is the class-TF-IDF type weighting from spec.md §4.10.
func typeWeight(t types.EntityType) float64 {
	switch t {
	case types.EntityProperNoun:
		return 1.0
	case types.EntityTechTerm:
		return 0.9
	case types.EntityConcept:
		return 0.8
	case types.EntityHeading:
		return 0.7
	default:
		return 0.5
	}
}

// entityScore is one entity's class-TF-IDF contribution to a cluster label.
type entityScore struct {
	Entity string
	Score  float64
}

// labelCluster computes a class-TF-IDF label over a cluster's entities:
// score(e) = (summed confidence across member docs) * typeWeight(e) * idf(e).
// The top 3 entities by score, joined with " / ", form the label; the top
// 10 form the label metadata.
func labelCluster(members []int64, matrix docEntityMatrix, entityTypes map[string]types.EntityType, idf map[string]float64) (label string, topEntities []string) {
	totals := make(map[string]float64)
	for _, doc := range members {
		for entity, conf := range matrix[doc] {
			w, ok := idf[entity]
			if !ok {
				continue
			}
			totals[entity] += conf * typeWeight(entityTypes[entity]) * w
		}
	}

	scores := make([]entityScore, 0, len(totals))
	for e, s := range totals {
		scores = append(scores, entityScore{Entity: e, Score: s})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Entity < scores[j].Entity
	})

	top := scores
	if len(top) > 10 {
		top = top[:10]
	}
	for _, s := range top {
		topEntities = append(topEntities, s.Entity)
	}

	labelCount := 3
	if len(scores) < labelCount {
		labelCount = len(scores)
	}
	names := make([]string, 0, labelCount)
	for i := 0; i < labelCount; i++ {
		names = append(names, scores[i].Entity)
	}
	return strings.Join(names, " / "), topEntities
}

// coherence computes the average pairwise IDF-weighted Jaccard similarity
// among a cluster's members, using the edges already computed for the
// corpus graph.
func coherence(members []int64, edgeWeight map[[2]int64]float64) float64 {
	if len(members) < 2 {
		return 1.0
	}
	var total float64
	var count int
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			a, b := members[i], members[j]
			if a > b {
				a, b = b, a
			}
			total += edgeWeight[[2]int64{a, b}]
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

var slugPunctuation = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives a topic slug: lowercase, runs of non-alphanumeric characters
// collapsed to a single hyphen, trimmed of leading/trailing hyphens, capped
// at 80 characters.
func Slug(label string) string {
	s := strings.ToLower(label)
	s = slugPunctuation.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 80 {
		s = s[:80]
		s = strings.TrimRight(s, "-")
	}
	if s == "" {
		s = "topic"
	}
	return s
}

// Fingerprint is the MD5 of the sorted union of all member-document
// entities, first 16 hex characters, used by save_topics to detect whether
// re-clustering produced the same membership.
func Fingerprint(members []int64, matrix docEntityMatrix) string {
	seen := make(map[string]bool)
	for _, doc := range members {
		for entity := range matrix[doc] {
			seen[entity] = true
		}
	}
	entities := make([]string, 0, len(seen))
	for e := range seen {
		entities = append(entities, e)
	}
	sort.Strings(entities)

	sum := md5.Sum([]byte(strings.Join(entities, ",")))
	return hex.EncodeToString(sum[:])[:16]
}
