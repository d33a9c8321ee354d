package extractor

import (
	"regexp"
	"strings"
)

// headingPattern matches Markdown H1-H6 lines, capturing the heading text.
var headingPattern = regexp.MustCompile(`(?m)^#{1,6}\s+(.+?)\s*$`)

// backtickPattern matches `inline code` spans.
var backtickPattern = regexp.MustCompile("`([^`\n]+)`")

// shellLikePattern flags a backtick span as a shell command rather than a
// tech term: it has internal whitespace and also contains a shell
// metacharacter.
var shellLikePattern = regexp.MustCompile(`[/$>]`)

// boldPattern matches **bold** or __bold__ spans.
var boldPattern = regexp.MustCompile(`(?:\*\*([^*]+)\*\*|__([^_]+)__)`)

// properNounPattern matches two or more consecutive Title-Case words.
var properNounPattern = regexp.MustCompile(`\b([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)+)\b`)

// headingStopwords are too generic to index even though they're headings.
var headingStopwords = map[string]bool{
	"summary": true, "overview": true, "conclusion": true, "introduction": true,
	"notes": true, "todo": true, "background": true, "references": true,
}

// leadingStopwords are stripped from the front of a candidate proper noun.
var leadingStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "in": true, "on": true,
	"for": true, "and": true, "or": true, "with": true, "to": true,
}

const minEntityLength = 4

// RegexExtractor is the always-on heuristic tier (spec.md §4.6): headings,
// backtick spans, bold spans, and Title-Case phrases, each with a fixed
// confidence by source trust. Grounded on the teacher's
// internal/extractor/regex.go (regexp.MustCompile per rule, FindAllString,
// lowercase dedup via a seen-set) generalized from CamelCase/kebab-case
// component-name guessing to the spec's markdown-structure rules.
type RegexExtractor struct {
	title string // the document's own title, excluded from results
}

// NewRegexExtractor returns a RegexExtractor that excludes docTitle from its
// results.
func NewRegexExtractor(docTitle string) *RegexExtractor {
	return &RegexExtractor{title: normalizeEntity(docTitle)}
}

func (r *RegexExtractor) Name() string { return "regex" }

func (r *RegexExtractor) Extract(text string) ([]Entity, error) {
	seen := make(map[string]Entity)

	add := func(name, typ string, confidence float64) {
		normalized := normalizeEntity(name)
		if len(normalized) < minEntityLength || normalized == r.title {
			return
		}
		if existing, ok := seen[normalized]; ok && existing.Confidence >= confidence {
			return
		}
		seen[normalized] = Entity{Name: normalized, Type: typ, Confidence: confidence, Source: "regex"}
	}

	for _, m := range headingPattern.FindAllStringSubmatch(text, -1) {
		candidate := normalizeEntity(m[1])
		if headingStopwords[candidate] {
			continue
		}
		add(m[1], "heading", 0.95)
	}

	for _, m := range backtickPattern.FindAllStringSubmatch(text, -1) {
		span := m[1]
		if strings.ContainsAny(span, " \t") && shellLikePattern.MatchString(span) {
			continue
		}
		add(span, "tech_term", 0.9)
	}

	for _, m := range boldPattern.FindAllStringSubmatch(text, -1) {
		span := m[1]
		if span == "" {
			span = m[2]
		}
		if len(strings.TrimSpace(span)) < minEntityLength {
			continue
		}
		add(span, "concept", 0.85)
	}

	for _, m := range properNounPattern.FindAllString(text, -1) {
		add(stripLeadingStopwords(m), "proper_noun", 0.7)
	}

	out := make([]Entity, 0, len(seen))
	for _, e := range seen {
		out = append(out, e)
	}
	return out, nil
}

func normalizeEntity(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func stripLeadingStopwords(phrase string) string {
	words := strings.Fields(phrase)
	for len(words) > 1 && leadingStopwords[strings.ToLower(words[0])] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}
