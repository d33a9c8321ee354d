// Package entitymatch discovers entity_match links between documents that
// share enough extracted entities to be worth cross-referencing (spec.md
// §4.7). Grounded on internal/wikify's title-match shape (load candidates,
// score, CreateLink unless dry-run) generalized from a regex match to a
// shared-entity-count score. Fuzzy entity-name grouping is grounded on the
// teacher's internal/queries/entity_utils.go (GetAllEntityNames feeding a
// Levenshtein-distance candidate match).
package entitymatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/kgraphdb/kgraph/internal/storage"
	"github.com/kgraphdb/kgraph/internal/types"
)

// fuzzyDistanceThreshold is the maximum Levenshtein distance at which two
// entity names are treated as the same entity for shared-count purposes,
// catching near-miss extraction variants ("Kubernetes" vs "Kubernetes cluster"
// would not match; "Postgres" vs "Postgress" would).
const fuzzyDistanceThreshold = 2

// canonicalize groups entity names that are within fuzzyDistanceThreshold of
// each other under a single representative (the first one seen), so minor
// spelling/casing variants from independent extraction runs count as shared.
// Names shorter than 5 runes are left exact-match only, since short names
// (e.g. "Go", "AI") have too many unrelated close neighbors.
func canonicalize(names []string) map[string]string {
	canon := make(map[string]string, len(names))
	var representatives []string
	for _, n := range names {
		norm := strings.ToLower(strings.TrimSpace(n))
		if norm == "" {
			continue
		}
		if _, ok := canon[norm]; ok {
			continue
		}
		matched := ""
		if len([]rune(norm)) >= 5 {
			for _, rep := range representatives {
				if levenshtein.ComputeDistance(norm, rep) <= fuzzyDistanceThreshold {
					matched = rep
					break
				}
			}
		}
		if matched == "" {
			representatives = append(representatives, norm)
			matched = norm
		}
		canon[norm] = matched
	}
	return canon
}

// MaxEntityLinks bounds how many entity_match links a single document can
// gain in one pass, so a generic high-frequency entity can't fan a document
// out to dozens of unrelated ones.
const MaxEntityLinks = 15

// MinSharedEntities is the minimum number of entities two documents must
// share before they're worth cross-referencing (spec.md §4.7): a single
// shared entity is too weak a signal on its own and would flood the corpus
// with low-value links.
const MinSharedEntities = 2

// Result is one document's entity-match outcome.
type Result struct {
	DocumentID   int64
	LinksFound   int
	LinksCreated int
	Matches      []Match
}

// Match is one candidate entity-sharing link.
type Match struct {
	TargetID     int64
	SharedCount  int
	SharedSample []string
	Score        float64
}

// MatchDocument scores every other document against docID's entities by
// shared-entity count, keeps the top MaxEntityLinks, and creates
// entity_match links for them unless dryRun.
func MatchDocument(ctx context.Context, store storage.Storage, docID int64, dryRun bool) (*Result, error) {
	ownEntities, err := store.GetEntitiesForDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("loading entities for document %d: %w", docID, err)
	}
	if len(ownEntities) == 0 {
		return &Result{DocumentID: docID}, nil
	}

	all, err := store.AllEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading all entities: %w", err)
	}

	names := make([]string, 0, len(all)+len(ownEntities))
	for _, e := range ownEntities {
		names = append(names, e.Entity)
	}
	for _, e := range all {
		names = append(names, e.Entity)
	}
	canon := canonicalize(names)

	ownSet := make(map[string]bool, len(ownEntities))
	for _, e := range ownEntities {
		ownSet[canon[strings.ToLower(strings.TrimSpace(e.Entity))]] = true
	}

	shared := make(map[int64]map[string]bool)
	for _, e := range all {
		if e.DocumentID == docID {
			continue
		}
		key := canon[strings.ToLower(strings.TrimSpace(e.Entity))]
		if !ownSet[key] {
			continue
		}
		if shared[e.DocumentID] == nil {
			shared[e.DocumentID] = make(map[string]bool)
		}
		shared[e.DocumentID][key] = true
	}

	matches := make([]Match, 0, len(shared))
	maxShared := 0
	for _, names := range shared {
		if len(names) > maxShared {
			maxShared = len(names)
		}
	}
	for targetID, names := range shared {
		if len(names) < MinSharedEntities {
			continue
		}
		sample := make([]string, 0, len(names))
		for name := range names {
			sample = append(sample, name)
			if len(sample) >= 5 {
				break
			}
		}
		score := 0.5
		if maxShared > 0 {
			score = 0.5 + 0.5*(float64(len(names))/float64(maxShared))
		}
		matches = append(matches, Match{
			TargetID:     targetID,
			SharedCount:  len(names),
			SharedSample: sample,
			Score:        score,
		})
	}

	sortMatchesDesc(matches)
	if len(matches) > MaxEntityLinks {
		matches = matches[:MaxEntityLinks]
	}

	result := &Result{DocumentID: docID, LinksFound: len(matches), Matches: matches}
	if dryRun {
		return result, nil
	}

	for _, m := range matches {
		_, created, err := store.CreateLink(ctx, docID, m.TargetID, m.Score, types.LinkMethodEntityMatch)
		if err != nil {
			return nil, fmt.Errorf("creating entity_match link %d->%d: %w", docID, m.TargetID, err)
		}
		if created {
			result.LinksCreated++
		}
	}
	return result, nil
}

// MatchAll runs MatchDocument over every document carrying at least one
// extracted entity.
func MatchAll(ctx context.Context, store storage.Storage, dryRun bool) ([]Result, error) {
	all, err := store.AllEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading all entities: %w", err)
	}
	seen := make(map[int64]bool)
	var docIDs []int64
	for _, e := range all {
		if !seen[e.DocumentID] {
			seen[e.DocumentID] = true
			docIDs = append(docIDs, e.DocumentID)
		}
	}

	results := make([]Result, 0, len(docIDs))
	for _, id := range docIDs {
		r, err := MatchDocument(ctx, store, id, dryRun)
		if err != nil {
			return nil, err
		}
		if r.LinksFound > 0 {
			results = append(results, *r)
		}
	}
	return results, nil
}

// Rebuild clears every existing entity_match link and recomputes them from
// scratch, for when entity extraction has been re-run over the corpus.
func Rebuild(ctx context.Context, store storage.Storage) ([]Result, error) {
	if _, err := store.DeleteLinksByMethod(ctx, types.LinkMethodEntityMatch); err != nil {
		return nil, fmt.Errorf("clearing existing entity_match links: %w", err)
	}
	return MatchAll(ctx, store, false)
}

func sortMatchesDesc(matches []Match) {
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].SharedCount > matches[j-1].SharedCount; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
}
