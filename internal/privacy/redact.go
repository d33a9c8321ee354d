// Package privacy implements the three-layer privacy filter (spec.md
// §4.12): Layer 1 regex redaction before synthesis, Layer 2 an
// audience-mode prompt section appended to the synthesis system prompt, and
// Layer 3 post-generation validation of LLM output. No direct teacher
// analogue (see DESIGN.md); regex-driven like internal/extractor but
// applied for redaction instead of extraction.
package privacy

import (
	"regexp"
)

// RedactionCounts tallies how many replacements Layer 1 made, per action.
type RedactionCounts struct {
	Credentials     int
	Paths           int
	IPs             int
	TemporalMarkers int
	Boilerplate     int
	BlankLines      int
}

var (
	credentialPattern = regexp.MustCompile(`(?i)\b(?:sk-[a-zA-Z0-9_-]{10,}|api[_-]?key\s*[:=]\s*['"]?[\w-]{8,}['"]?|password\s*[:=]\s*['"]?\S{4,}['"]?|token\s*[:=]\s*['"]?[\w.-]{8,}['"]?)`)

	unixHomePattern    = regexp.MustCompile(`(?:/Users/|/home/)([^/\s]+)(/\S*)?`)
	windowsHomePattern = regexp.MustCompile(`C:\\Users\\([^\\\s]+)(\\\S*)?`)

	rfc1918Pattern = regexp.MustCompile(`\b(?:10(?:\.\d{1,3}){3}|172\.(?:1[6-9]|2\d|3[01])(?:\.\d{1,3}){2}|192\.168(?:\.\d{1,3}){2})\b`)

	temporalPattern = regexp.MustCompile(`(?i)\b(today|tonight|this week|this month|this morning|this afternoon|currently|right now|as of now|at the moment)\b`)

	boilerplatePattern = regexp.MustCompile(`(?m)^.*\b(delegate run|automated agent run|this run was executed by)\b.*$\n?`)

	blankLinesPattern = regexp.MustCompile(`\n{3,}`)
)

// Redact applies every Layer 1 rule to content, returning the redacted text
// and a tally of what was changed.
func Redact(content string) (string, RedactionCounts) {
	var counts RedactionCounts

	content, counts.Credentials = replaceCount(content, credentialPattern, "[REDACTED]")
	content, pathsA := replaceHomePaths(content, unixHomePattern)
	content, pathsB := replaceHomePaths(content, windowsHomePattern)
	counts.Paths = pathsA + pathsB
	content, counts.IPs = replaceCount(content, rfc1918Pattern, "[INTERNAL_IP]")
	content, counts.TemporalMarkers = replaceCount(content, temporalPattern, "[TEMPORAL:$0]")
	content, counts.Boilerplate = removeCount(content, boilerplatePattern)
	content, counts.BlankLines = collapseBlankLines(content)

	return content, counts
}

func replaceCount(content string, pattern *regexp.Regexp, replacement string) (string, int) {
	count := 0
	out := pattern.ReplaceAllStringFunc(content, func(match string) string {
		count++
		return pattern.ReplaceAllString(match, replacement)
	})
	return out, count
}

func replaceHomePaths(content string, pattern *regexp.Regexp) (string, int) {
	count := 0
	out := pattern.ReplaceAllStringFunc(content, func(match string) string {
		count++
		return "~/"
	})
	return out, count
}

func removeCount(content string, pattern *regexp.Regexp) (string, int) {
	count := 0
	out := pattern.ReplaceAllStringFunc(content, func(string) string {
		count++
		return ""
	})
	return out, count
}

func collapseBlankLines(content string) (string, int) {
	count := 0
	out := blankLinesPattern.ReplaceAllStringFunc(content, func(string) string {
		count++
		return "\n\n"
	})
	return out, count
}

// temporalMarkerPattern matches a surviving [TEMPORAL:x] marker, used by
// Layer 3 cleanup.
var temporalMarkerPattern = regexp.MustCompile(`\[TEMPORAL:([^\]]*)\]`)

// StripTemporalMarkers substitutes back the bare text of any surviving
// [TEMPORAL:x] marker - used when the LLM failed to clean one up during
// synthesis.
func StripTemporalMarkers(content string) string {
	return temporalMarkerPattern.ReplaceAllString(content, "$1")
}

// ContainsSensitiveContent reports whether content still has a credential,
// RFC1918 IP, or temporal marker after generation (Layer 3 scan).
func ContainsSensitiveContent(content string) []string {
	var found []string
	if credentialPattern.MatchString(content) {
		found = append(found, "credential")
	}
	if rfc1918Pattern.MatchString(content) {
		found = append(found, "internal_ip")
	}
	if temporalMarkerPattern.MatchString(content) {
		found = append(found, "temporal_marker")
	}
	return found
}

// Validate is Layer 3: re-scan LLM output, redact anything that survived,
// and substitute bare text for any remaining temporal markers. Returns the
// cleaned content and human-readable warnings naming what was found.
func Validate(content string) (string, []string) {
	findings := ContainsSensitiveContent(content)
	var warnings []string
	for _, f := range findings {
		warnings = append(warnings, "found surviving "+f+" in generated content, redacted")
	}

	content, _ = replaceCount(content, credentialPattern, "[REDACTED]")
	content, _ = replaceCount(content, rfc1918Pattern, "[INTERNAL_IP]")
	content = StripTemporalMarkers(content)

	return content, warnings
}
