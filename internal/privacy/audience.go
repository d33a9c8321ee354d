package privacy

// Audience is a synthesis privacy mode.
type Audience string

const (
	AudienceMe     Audience = "me"
	AudienceTeam   Audience = "team"
	AudiencePublic Audience = "public"
)

// PromptSection returns the Layer 2 content-filtering section appended to
// the synthesis system prompt, parameterized by audience.
func PromptSection(audience Audience) string {
	switch audience {
	case AudienceMe:
		return "Privacy mode: personal. Drop any [TEMPORAL:...] markers (replace with their bare text) but keep personal references as written."
	case AudiencePublic:
		return "Privacy mode: public. Remove personal references, internal jargon, and anything revealing internal processes or tooling. Omit any sentence containing a [TEMPORAL:...] marker."
	default:
		return "Privacy mode: team. Preserve factual attributions and decisions. Drop casual remarks about people. Omit any sentence containing a [TEMPORAL:...] marker."
	}
}
