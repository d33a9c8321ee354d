package synth

import "strings"

// Outline is OUTLINE's output: the suggested title, section hints scaled by
// source count, and the entity focus terms to steer WRITE.
type Outline struct {
	Title        string
	Sections     []string
	FocusEntities []string
}

// deriveTitle turns a topic label like "knowledge graph / wikification /
// entity matching" into a human phrase.
func deriveTitle(label string) string {
	parts := strings.Split(label, " / ")
	for i, p := range parts {
		parts[i] = titleCase(p)
	}
	return strings.Join(parts, ": ")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) == 0 {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// buildOutline derives the title and picks section hints per spec.md
// §4.13: Overview and Key Concepts always; Architecture & Design Decisions
// at >=5 sources; Implementation Details at >=8; Related Topics always.
func buildOutline(topicLabel string, sourceCount int, topEntities []string) Outline {
	sections := []string{"Overview", "Key Concepts"}
	if sourceCount >= 5 {
		sections = append(sections, "Architecture & Design Decisions")
	}
	if sourceCount >= 8 {
		sections = append(sections, "Implementation Details")
	}
	sections = append(sections, "Related Topics")

	focus := topEntities
	if len(focus) > 8 {
		focus = focus[:8]
	}

	return Outline{
		Title:         deriveTitle(topicLabel),
		Sections:      sections,
		FocusEntities: focus,
	}
}
