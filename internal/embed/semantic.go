package embed

import (
	"context"
	"fmt"
	"sort"

	"github.com/kgraphdb/kgraph/internal/storage"
	"github.com/kgraphdb/kgraph/internal/types"
)

// DefaultThreshold and DefaultMaxLinks mirror maintain_index.py's
// create_links defaults (threshold 0.5, max 5 links per document).
const (
	DefaultThreshold = 0.5
	DefaultMaxLinks  = 5
)

// Result reports one document's semantic-linking outcome, mirroring the
// original auto_link_document's links_created/linked_doc_ids/scores triple.
type Result struct {
	DocumentID   int64
	LinksCreated int
	LinkedDocIDs []int64
	Scores       map[int64]float64
}

type candidate struct {
	id    int64
	score float64
}

// MatchDocument compares docID's embedding against every other indexed
// document's embedding by cosine similarity, and creates auto (semantic)
// links for the top maxLinks candidates clearing threshold, unless dryRun.
// A non-empty project restricts candidates to that project, the same
// scoping internal/wikify and internal/dedup already apply. Mirrors the
// original's auto_link_document(doc_id, threshold, max_links, project).
func MatchDocument(ctx context.Context, store storage.Storage, docID int64, threshold float64, maxLinks int, project string, dryRun bool) (*Result, error) {
	own, ok, err := store.GetEmbedding(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("loading embedding for document %d: %w", docID, err)
	}
	if !ok {
		return &Result{DocumentID: docID}, nil
	}

	all, err := store.AllEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading embeddings: %w", err)
	}

	var projectOf map[int64]string
	if project != "" {
		docs, err := store.AllDocuments(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading documents: %w", err)
		}
		projectOf = make(map[int64]string, len(docs))
		for _, d := range docs {
			projectOf[d.ID] = d.Project
		}
	}

	var candidates []candidate
	for id, v := range all {
		if id == docID {
			continue
		}
		if project != "" && projectOf[id] != project {
			continue
		}
		sim := CosineSimilarity(own, v)
		if sim >= threshold {
			candidates = append(candidates, candidate{id: id, score: sim})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if maxLinks > 0 && len(candidates) > maxLinks {
		candidates = candidates[:maxLinks]
	}

	result := &Result{DocumentID: docID, Scores: make(map[int64]float64, len(candidates))}
	for _, c := range candidates {
		result.Scores[c.id] = c.score
		result.LinkedDocIDs = append(result.LinkedDocIDs, c.id)
		if dryRun {
			continue
		}
		_, created, err := store.CreateLink(ctx, docID, c.id, c.score, types.LinkMethodAuto)
		if err != nil {
			return nil, fmt.Errorf("creating auto link %d->%d: %w", docID, c.id, err)
		}
		if created {
			result.LinksCreated++
		}
	}
	return result, nil
}

// MatchAll runs MatchDocument over every document carrying a stored
// embedding, mirroring the original's auto_link_all(threshold, max_links,
// cross_project) - an empty project here is the cross_project=true case,
// a specific project the cross_project=false case (see DESIGN.md).
func MatchAll(ctx context.Context, store storage.Storage, threshold float64, maxLinks int, project string, dryRun bool) ([]Result, error) {
	all, err := store.AllEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading embeddings: %w", err)
	}

	ids := make([]int64, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var results []Result
	for _, id := range ids {
		r, err := MatchDocument(ctx, store, id, threshold, maxLinks, project, dryRun)
		if err != nil {
			return results, fmt.Errorf("matching document %d: %w", id, err)
		}
		if len(r.LinkedDocIDs) > 0 {
			results = append(results, *r)
		}
	}
	return results, nil
}
