// Package ftsquery builds and escapes SQLite FTS5 MATCH queries for the
// document search surface (spec.md §4.2). It knows nothing about storage
// connections; internal/storage/sqlite calls BuildMatch and
// executes the resulting SQL itself, the same separation the teacher draws
// between its extractor package (pure logic) and storage package (SQL).
package ftsquery

import "strings"

// Escape neutralizes FTS5 query syntax in a single token, doubling any
// internal double quote so it can be safely wrapped in an outer pair
// (SQLite's own escaping convention for quoted literals).
func Escape(raw string) string {
	if raw == "*" {
		return raw
	}
	return strings.ReplaceAll(raw, `"`, `""`)
}

// isQuotedLiteral reports whether raw is already a single quoted phrase
// (e.g. `"event driven"`), in which case BuildMatch passes it through
// unchanged rather than re-splitting it into per-token phrases.
func isQuotedLiteral(raw string) bool {
	return len(raw) >= 2 && strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`)
}

// BuildMatch turns a raw query into the FTS5 MATCH expression to bind as a
// query parameter (spec.md §4.2): an already-quoted literal passes through
// as-is; otherwise the query is split on whitespace and each token is
// independently quoted, producing an implicit AND across tokens rather
// than one contiguous adjacency phrase. Grounded on the original
// emdx/database/search.py:escape_fts5_query, which quotes per-token for
// the same reason.
func BuildMatch(raw string) string {
	if raw == "*" {
		return `"*"` // handled specially by the caller; never sent to MATCH directly
	}
	if isQuotedLiteral(raw) {
		return raw
	}

	tokens := strings.Fields(raw)
	quoted := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		quoted = append(quoted, `"`+Escape(tok)+`"`)
	}
	return strings.Join(quoted, " ")
}
