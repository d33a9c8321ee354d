package synth

import "github.com/kgraphdb/kgraph/internal/privacy"

// validateResult is VALIDATE's output: the post-generation-redacted content
// plus any warnings surfaced to the caller (never fatal).
type validateResult struct {
	Content  string
	Warnings []string
}

// validate runs Layer 3 per spec.md §4.13: strip any sensitive content the
// model reintroduced (e.g. quoting a redacted credential back verbatim) and
// any stray temporal markers it invented ("as of today", "currently").
func validate(content string) validateResult {
	cleaned, warnings := privacy.Validate(content)
	return validateResult{Content: cleaned, Warnings: warnings}
}
