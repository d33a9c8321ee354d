package entityindex

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// pageFrontMatter is the YAML front matter for a rendered entity page.
type pageFrontMatter struct {
	Tier         string `yaml:"tier"`
	Type         string `yaml:"type"`
	DocFrequency int    `yaml:"doc_frequency"`
}

// RenderPage renders entry as a markdown page with YAML front matter and
// "Documents" / "Related Entities" sections.
func RenderPage(entry Entry, snippets []Snippet, related []Related, titleByDoc map[int64]string) (string, error) {
	front := pageFrontMatter{
		Tier:         string(entry.Tier),
		Type:         string(entry.Type),
		DocFrequency: entry.DocFrequency,
	}
	fm, err := yaml.Marshal(front)
	if err != nil {
		return "", fmt.Errorf("marshaling front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n\n", entry.Entity)

	b.WriteString("## Documents\n\n")
	for _, s := range snippets {
		title := titleByDoc[s.DocumentID]
		if title == "" {
			title = fmt.Sprintf("Document %d", s.DocumentID)
		}
		if s.Heading != "" {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", title, s.Heading, s.Text)
		} else {
			fmt.Fprintf(&b, "- **%s**: %s\n", title, s.Text)
		}
	}

	b.WriteString("\n## Related Entities\n\n")
	if len(related) == 0 {
		b.WriteString("None found.\n")
	} else {
		for _, r := range related {
			fmt.Fprintf(&b, "- %s (PMI %.2f)\n", r.Entity, r.PMI)
		}
	}

	return b.String(), nil
}
