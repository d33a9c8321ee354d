// Package synth implements the synthesis pipeline (spec.md §4.13): the
// central PREPARE -> ROUTE -> OUTLINE -> WRITE -> VALIDATE -> SAVE
// orchestrator that turns a topic's member documents into a generated wiki
// article via internal/llmcli. No direct teacher analogue (see DESIGN.md);
// each step is a small pure-ish function threaded through Pipeline.Generate,
// matching the step-function style the rest of this module uses.
package synth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/kgraphdb/kgraph/internal/privacy"
	"github.com/kgraphdb/kgraph/internal/storage"
	"github.com/kgraphdb/kgraph/internal/types"
)

// MaxDocChars bounds how much of a single source document's content is fed
// into synthesis before relevance-score scaling; not specified numerically
// by the spec (see DESIGN.md's Open Question decision).
const MaxDocChars = 20000

// Source is one prepared, privacy-filtered, truncated source document.
type Source struct {
	DocumentID  int64
	Title       string
	Content     string
	ContentHash string
	Weight      float64
}

// prepareResult is PREPARE's full output.
type prepareResult struct {
	Sources    []Source
	SourceHash string
	Skip       bool
	SkipReason string
}

func prepare(ctx context.Context, store storage.Storage, topic *types.WikiTopic) (*prepareResult, error) {
	members, err := store.GetTopicMembers(ctx, topic.ID)
	if err != nil {
		return nil, fmt.Errorf("loading topic members: %w", err)
	}

	var sources []Source
	for _, m := range members {
		if !m.IsPrimary {
			continue
		}
		charBudget := int(float64(MaxDocChars) * m.RelevanceScore)
		if charBudget <= 0 {
			continue
		}

		doc, err := store.GetDocument(ctx, m.DocumentID)
		if err != nil {
			continue
		}

		filtered, _ := privacy.Redact(doc.Content)
		if len(filtered) > charBudget {
			filtered = filtered[:charBudget]
		}

		sources = append(sources, Source{
			DocumentID:  doc.ID,
			Title:       doc.Title,
			Content:     filtered,
			ContentHash: shortHash(filtered),
			Weight:      m.RelevanceScore,
		})
	}

	sourceHash := combinedSourceHash(sources)

	if topic.Status != types.TopicPinned {
		existing, err := store.GetArticleByTopic(ctx, topic.ID)
		if err == nil && existing != nil && existing.SourceHash == sourceHash && !existing.IsStale {
			return &prepareResult{Sources: sources, SourceHash: sourceHash, Skip: true, SkipReason: "Article up to date"}, nil
		}
	}

	return &prepareResult{Sources: sources, SourceHash: sourceHash}, nil
}

func shortHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}

// combinedSourceHash is the SHA-256 of the sorted "doc_id:content_hash"
// list, first 32 hex characters.
func combinedSourceHash(sources []Source) string {
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		parts = append(parts, fmt.Sprintf("%d:%s", s.DocumentID, s.ContentHash))
	}
	sort.Strings(parts)
	sum := sha256.Sum256([]byte(strings.Join(parts, ",")))
	return hex.EncodeToString(sum[:])[:32]
}
