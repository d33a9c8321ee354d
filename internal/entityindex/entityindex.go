// Package entityindex implements the entity index (spec.md §4.11): scoring
// and tiering every extracted entity, gathering mention snippets, computing
// PMI-based related entities, and rendering markdown pages with YAML front
// matter. No direct teacher analogue (see DESIGN.md); built in the same
// pure-function shape as internal/analyze and internal/cluster.
package entityindex

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/kgraphdb/kgraph/internal/storage"
	"github.com/kgraphdb/kgraph/internal/types"
)

// Tier classifies an entity's index presence.
type Tier string

const (
	TierA    Tier = "A" // full page
	TierB    Tier = "B" // stub
	TierC    Tier = "C" // alphabetic index only
	TierNone Tier = ""  // noise, df < 2
)

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

// Entry is one scored, tiered entity.
type Entry struct {
	Entity         string
	Type           types.EntityType
	DocFrequency   int
	MeanConfidence float64
	Score          float64
	Tier           Tier
	DocumentIDs    []int64
}

// BuildIndex scores every distinct entity across the corpus and assigns a
// tier per spec.md §4.11's thresholds.
func BuildIndex(ctx context.Context, store storage.Storage) ([]Entry, error) {
	all, err := store.AllEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading entities: %w", err)
	}
	docs, err := store.AllDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}
	totalDocs := len(docs)

	byEntity := make(map[string][]types.DocumentEntity)
	for _, e := range all {
		byEntity[e.Entity] = append(byEntity[e.Entity], e)
	}

	entries := make([]Entry, 0, len(byEntity))
	for name, occurrences := range byEntity {
		docSet := make(map[int64]bool)
		var confSum float64
		entityType := occurrences[0].Type
		for _, o := range occurrences {
			docSet[o.DocumentID] = true
			confSum += o.Confidence
			if typeWeight(o.Type) > typeWeight(entityType) {
				entityType = o.Type
			}
		}
		df := len(docSet)
		if df < 2 {
			continue
		}
		meanConf := confSum / float64(len(occurrences))
		idf := math.Log(1 + float64(totalDocs)/float64(df))
		score := float64(df) * idf * meanConf * typeWeight(entityType)

		tier := TierC
		switch {
		case df >= 5 && score >= 30:
			tier = TierA
		case df >= 3:
			tier = TierB
		}

		ids := make([]int64, 0, len(docSet))
		for id := range docSet {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		entries = append(entries, Entry{
			Entity:         name,
			Type:           entityType,
			DocFrequency:   df,
			MeanConfidence: meanConf,
			Score:          score,
			Tier:           tier,
			DocumentIDs:    ids,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Entity < entries[j].Entity
	})
	return entries, nil
}

// Snippet is one mention of an entity in a source document, with heading
// context for orientation.
type Snippet struct {
	DocumentID int64
	Heading    string
	Text       string
}

const snippetWindow = 250

var headingLine = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

// Snippets gathers one deduplicated ~250-char window per mentioning
// document, centered on the first match, with the nearest heading above it
// recorded for context. Snippets are deduplicated by their lowercased first
// 80 characters.
func Snippets(entity string, docs map[int64]string) []Snippet {
	lowerEntity := strings.ToLower(entity)
	seen := make(map[string]bool)
	var out []Snippet

	ids := make([]int64, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		content := docs[id]
		lower := strings.ToLower(content)
		idx := strings.Index(lower, lowerEntity)
		if idx < 0 {
			continue
		}

		start := idx - snippetWindow/2
		if start < 0 {
			start = 0
		}
		end := idx + len(entity) + snippetWindow/2
		if end > len(content) {
			end = len(content)
		}
		text := strings.TrimSpace(content[start:end])

		key := strings.ToLower(text)
		if len(key) > 80 {
			key = key[:80]
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		heading := nearestHeadingAbove(content, idx)
		out = append(out, Snippet{DocumentID: id, Heading: heading, Text: text})
	}
	return out
}

func nearestHeadingAbove(content string, pos int) string {
	before := content[:pos]
	matches := headingLine.FindAllStringSubmatch(before, -1)
	if len(matches) == 0 {
		return ""
	}
	last := matches[len(matches)-1]
	return last[2]
}

// Related is one PMI-scored related entity.
type Related struct {
	Entity string
	PMI    float64
}

// RelatedEntities computes PMI-based related entities for target: for every
// other entity co-occurring in at least 2 documents with target,
// PMI = log2(N * co_occur / (df_target * df_other)); only positive scores
// are kept, sorted descending, top 10.
func RelatedEntities(target string, all []types.DocumentEntity, totalDocs int) []Related {
	docsOf := make(map[string]map[int64]bool)
	for _, e := range all {
		if docsOf[e.Entity] == nil {
			docsOf[e.Entity] = make(map[int64]bool)
		}
		docsOf[e.Entity][e.DocumentID] = true
	}

	targetDocs := docsOf[target]
	if len(targetDocs) == 0 {
		return nil
	}
	dfTarget := len(targetDocs)

	var related []Related
	for other, docs := range docsOf {
		if other == target {
			continue
		}
		coOccur := 0
		for doc := range targetDocs {
			if docs[doc] {
				coOccur++
			}
		}
		if coOccur < 2 {
			continue
		}
		dfOther := len(docs)
		pmi := math.Log2(float64(totalDocs) * float64(coOccur) / (float64(dfTarget) * float64(dfOther)))
		if pmi <= 0 {
			continue
		}
		related = append(related, Related{Entity: other, PMI: pmi})
	}

	sort.Slice(related, func(i, j int) bool {
		if related[i].PMI != related[j].PMI {
			return related[i].PMI > related[j].PMI
		}
		return related[i].Entity < related[j].Entity
	})
	if len(related) > 10 {
		related = related[:10]
	}
	return related
}
