package export

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kgraphdb/kgraph/internal/types"
)

// articleFrontMatter is the YAML front matter for a rendered article page.
type articleFrontMatter struct {
	Title       string  `yaml:"title"`
	TopicID     int64   `yaml:"topic_id"`
	Version     int64   `yaml:"version"`
	Model       string  `yaml:"model"`
	Sources     []int64 `yaml:"sources"`
	Rating      *int    `yaml:"rating,omitempty"`
	GeneratedAt string  `yaml:"generated_at"`
}

// RenderArticle renders article as a markdown page with YAML front matter.
// content is the article body as synthesized (it already opens with its own
// H1 title from the WRITE step).
func RenderArticle(article types.WikiArticle, title string, sources []types.WikiArticleSource, content string) (string, error) {
	ids := make([]int64, 0, len(sources))
	for _, s := range sources {
		if s.Excluded {
			continue
		}
		ids = append(ids, s.DocumentID)
	}

	front := articleFrontMatter{
		Title:       title,
		TopicID:     article.TopicID,
		Version:     article.Version,
		Model:       article.ModelID,
		Sources:     ids,
		Rating:      article.Rating,
		GeneratedAt: article.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}

	fm, err := yaml.Marshal(front)
	if err != nil {
		return "", fmt.Errorf("marshaling article front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimLeft(content, "\n"))
	if !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
	return b.String(), nil
}
