// Package analyze implements the corpus-health analyzers (spec.md §4.9):
// freshness scoring, task-drift detection against the external Task table,
// and coverage-gap reporting. None of these have a direct teacher analogue
// (see DESIGN.md); they follow the report-shape-in/report-shape-out pattern
// already established by internal/types.FreshnessReport etc.
package analyze

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kgraphdb/kgraph/internal/storage"
	"github.com/kgraphdb/kgraph/internal/types"
)

// DefaultFreshnessThreshold is the score below which a document counts as
// stale.
const DefaultFreshnessThreshold = 0.3

// missingTimestampAge is substituted for a zero-value timestamp so a
// document with no recorded activity scores as old rather than infinitely
// fresh.
const missingTimestampAge = 365 * 24 * time.Hour

// Freshness scores every live document in project (or the whole corpus if
// project is empty). When staleOnly is set, only documents below threshold
// are returned in Scores (totals still reflect the full corpus).
func Freshness(ctx context.Context, store storage.Storage, project string, threshold float64, staleOnly bool) (*types.FreshnessReport, error) {
	if threshold <= 0 {
		threshold = DefaultFreshnessThreshold
	}

	docs, err := store.AllDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}

	var filtered []types.Document
	ids := make([]int64, 0, len(docs))
	for _, d := range docs {
		if project != "" && d.Project != project {
			continue
		}
		filtered = append(filtered, d)
		ids = append(ids, d.ID)
	}

	links, err := store.AllLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading links: %w", err)
	}
	neighbors := make(map[int64][]int64)
	for _, l := range links {
		neighbors[l.SourceID] = append(neighbors[l.SourceID], l.TargetID)
		neighbors[l.TargetID] = append(neighbors[l.TargetID], l.SourceID)
	}

	// ListDeleted filters by a recency window and a result limit; freshness
	// needs every soft-deleted id regardless of age, so a large window and
	// cap stand in for "all of them" without adding a dedicated unbounded
	// storage method just for this one check.
	deleted := make(map[int64]bool)
	deletedList, err := store.ListDeleted(ctx, 36500, 100000)
	if err == nil {
		for _, d := range deletedList {
			deleted[d.ID] = true
		}
	}

	tagsByDoc := make(map[int64][]string, len(ids))
	for _, id := range ids {
		tags, err := store.GetTags(ctx, id)
		if err != nil {
			continue
		}
		tagsByDoc[id] = tags
	}

	now := time.Now()
	scores := make([]types.DocFreshnessScore, 0, len(filtered))
	staleCount := 0
	for _, d := range filtered {
		ageDecay := decayFor(now, d.CreatedAt, 30)
		viewRecency := decayFor(now, d.AccessedAt, 14)
		linkHealth := linkHealthScore(d.ID, neighbors, deleted)
		contentLength := contentLengthScore(d.Content)
		tagSignal := tagSignalScore(tagsByDoc[d.ID])

		score := 0.30*ageDecay + 0.25*viewRecency + 0.15*linkHealth + 0.10*contentLength + 0.20*tagSignal

		isStale := score < threshold
		if isStale {
			staleCount++
		}
		if staleOnly && !isStale {
			continue
		}

		scores = append(scores, types.DocFreshnessScore{
			DocumentID:    d.ID,
			Title:         d.Title,
			Score:         score,
			AgeDecay:      ageDecay,
			ViewRecency:   viewRecency,
			LinkHealth:    linkHealth,
			ContentLength: contentLength,
			TagSignal:     tagSignal,
		})
	}

	sort.Slice(scores, func(i, j int) bool { return scores[i].Score < scores[j].Score })

	return &types.FreshnessReport{
		TotalDocs:  len(docs),
		ScoredDocs: len(filtered),
		StaleCount: staleCount,
		Threshold:  threshold,
		Scores:     scores,
	}, nil
}

// decayFor maps elapsed time since t (or missingTimestampAge if t is zero)
// to exp(-ln2 * days / halfLifeDays).
func decayFor(now, t time.Time, halfLifeDays float64) float64 {
	elapsed := missingTimestampAge
	if !t.IsZero() {
		elapsed = now.Sub(t)
		if elapsed < 0 {
			elapsed = 0
		}
	}
	days := elapsed.Hours() / 24
	return math.Exp(-math.Ln2 * days / halfLifeDays)
}

func linkHealthScore(docID int64, neighbors map[int64][]int64, deleted map[int64]bool) float64 {
	ns := neighbors[docID]
	if len(ns) == 0 {
		return 1.0
	}
	alive := 0
	for _, n := range ns {
		if !deleted[n] {
			alive++
		}
	}
	return float64(alive) / float64(len(ns))
}

func contentLengthScore(content string) float64 {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0.0
	}
	if len(trimmed) >= 100 {
		return 1.0
	}
	return float64(len(trimmed)) / 100.0
}

func tagSignalScore(tags []string) float64 {
	score := 0.5
	for _, t := range tags {
		switch t {
		case "active":
			score += 0.2
		case "security", "gameplan", "reference":
			score += 0.1
		case "done":
			score -= 0.3
		case "failed":
			score -= 0.2
		case "archived":
			score -= 0.4
		}
	}
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
