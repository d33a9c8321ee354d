package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kgraphdb/kgraph/internal/entityindex"
)

// indexArticleEntry is one row in the top-level index.md article list.
type indexArticleEntry struct {
	Title string
	Slug  string
}

// RenderIndex renders docs/index.md: a title and a linked list of every
// exported article.
func RenderIndex(articles []indexArticleEntry) string {
	sorted := make([]indexArticleEntry, len(articles))
	copy(sorted, articles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Title < sorted[j].Title })

	var b strings.Builder
	b.WriteString("# Knowledge Graph Wiki\n\n")
	b.WriteString("## Articles\n\n")
	if len(sorted) == 0 {
		b.WriteString("No articles generated yet.\n")
	}
	for _, a := range sorted {
		fmt.Fprintf(&b, "- [%s](articles/%s.md)\n", a.Title, a.Slug)
	}
	return b.String()
}

// RenderEntityIndex renders docs/entities/index.md: an alphabetic list of
// every Tier-A entity page, plus a flat listing of Tier-B/C entity names
// with no page of their own (spec.md §4.11's tiering).
func RenderEntityIndex(entries []entityindex.Entry, slugOf func(string) string) string {
	var tierA, others []entityindex.Entry
	for _, e := range entries {
		if e.Tier == entityindex.TierA {
			tierA = append(tierA, e)
		} else if e.Tier != entityindex.TierNone {
			others = append(others, e)
		}
	}
	sort.Slice(tierA, func(i, j int) bool { return tierA[i].Entity < tierA[j].Entity })
	sort.Slice(others, func(i, j int) bool { return others[i].Entity < others[j].Entity })

	var b strings.Builder
	b.WriteString("# Glossary\n\n")
	b.WriteString("## Entities\n\n")
	for _, e := range tierA {
		fmt.Fprintf(&b, "- [%s](%s.md)\n", e.Entity, slugOf(e.Entity))
	}

	if len(others) > 0 {
		b.WriteString("\n## Other mentioned entities\n\n")
		names := make([]string, len(others))
		for i, e := range others {
			names[i] = e.Entity
		}
		b.WriteString(strings.Join(names, ", "))
		b.WriteString("\n")
	}

	return b.String()
}
