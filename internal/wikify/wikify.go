// Package wikify implements the title-match auto-linking pass (spec.md
// §4.5): scanning every document's content for other documents' titles and
// recording a document_links row wherever one appears. The word-boundary
// regex construction and lowercase normalization follow the style of the
// teacher's internal/extractor/regex.go (regexp.MustCompile per candidate,
// FindAllString, lowercase dedup via a seen-set).
package wikify

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kgraphdb/kgraph/internal/storage"
	"github.com/kgraphdb/kgraph/internal/types"
)

// MinTitleLength excludes titles too short to be a reliable word-boundary
// match (single short words like "It" or "Go" would false-positive across
// unrelated documents).
const MinTitleLength = 4

// stopTitles holds titles that are too generic to wikify even if they clear
// MinTitleLength, to avoid false positives on ordinary prose.
var stopTitles = map[string]bool{
	"notes": true, "todo": true, "readme": true, "overview": true, "misc": true,
}

// Result reports what a wikify pass did for one source document.
type Result struct {
	DocumentID  int64
	LinksFound  int
	LinksCreated int
	Matches     []Match
}

// Match is one title hit inside a document's content.
type Match struct {
	TargetID    int64
	TargetTitle string
}

// candidate is a precompiled word-boundary matcher for one document's title.
type candidate struct {
	docID int64
	title string
	re    *regexp.Regexp
}

func buildCandidates(docs []types.Document, excludeID int64) []candidate {
	out := make([]candidate, 0, len(docs))
	for _, d := range docs {
		if d.ID == excludeID {
			continue
		}
		normalized := strings.TrimSpace(d.Title)
		if len(normalized) < MinTitleLength {
			continue
		}
		if stopTitles[strings.ToLower(normalized)] {
			continue
		}
		pattern := `(?i)\b` + regexp.QuoteMeta(normalized) + `\b`
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		out = append(out, candidate{docID: d.ID, title: normalized, re: re})
	}
	return out
}

// WikifyDocument scans one document's content against every other
// document's title and creates title_match links for every hit. When
// dryRun is true, matches are computed but no links are written.
func WikifyDocument(ctx context.Context, store storage.Storage, docID int64, dryRun bool) (*Result, error) {
	doc, err := store.GetDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("loading document %d: %w", docID, err)
	}

	all, err := store.AllDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents for wikification: %w", err)
	}
	scoped := make([]types.Document, 0, len(all))
	for _, d := range all {
		if d.Project == doc.Project {
			scoped = append(scoped, d)
		}
	}

	candidates := buildCandidates(scoped, docID)
	result := &Result{DocumentID: docID}

	for _, c := range candidates {
		if !c.re.MatchString(doc.Content) && !c.re.MatchString(doc.Title) {
			continue
		}
		result.Matches = append(result.Matches, Match{TargetID: c.docID, TargetTitle: c.title})
		result.LinksFound++

		if dryRun {
			continue
		}
		_, created, err := store.CreateLink(ctx, docID, c.docID, 1.0, types.LinkMethodTitleMatch)
		if err != nil {
			return nil, fmt.Errorf("linking %d -> %d: %w", docID, c.docID, err)
		}
		if created {
			result.LinksCreated++
		}
	}
	return result, nil
}

// WikifyAll runs WikifyDocument over every live document, optionally scoped
// to one project, and returns one Result per document that had at least one
// match (spec.md §4.5's "wikify_all" batch operation).
func WikifyAll(ctx context.Context, store storage.Storage, project string, dryRun bool) ([]Result, error) {
	docs, err := store.AllDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	var results []Result
	for _, d := range docs {
		if project != "" && d.Project != project {
			continue
		}
		r, err := WikifyDocument(ctx, store, d.ID, dryRun)
		if err != nil {
			return results, fmt.Errorf("wikifying document %d: %w", d.ID, err)
		}
		if r.LinksFound > 0 {
			results = append(results, *r)
		}
	}
	return results, nil
}
