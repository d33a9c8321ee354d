package export

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type siteTheme struct {
	Name string `yaml:"name"`
}

// navItem is one entry in the nav tree: either a leaf {name: path} or a
// branch {name: [navItem, ...]}.
type navItem map[string]interface{}

// SiteConfig mirrors mkdocs.yml's shape, named kg-site.yml here.
type SiteConfig struct {
	SiteName string     `yaml:"site_name"`
	Theme    siteTheme  `yaml:"theme"`
	Plugins  []string   `yaml:"plugins"`
	Nav      []navItem  `yaml:"nav"`
}

// articleNavEntry is one article's {title, slug} used to build the nav's
// Articles branch.
type articleNavEntry struct {
	Title string
	Slug  string
}

// BuildSiteConfig assembles the Home / Articles / Glossary nav tree per
// spec.md §4.14.
func BuildSiteConfig(theme string, articles []articleNavEntry) SiteConfig {
	articleItems := make([]navItem, 0, len(articles))
	for _, a := range articles {
		articleItems = append(articleItems, navItem{a.Title: "articles/" + a.Slug + ".md"})
	}

	return SiteConfig{
		SiteName: "Knowledge Graph Wiki",
		Theme:    siteTheme{Name: theme},
		Plugins:  []string{"search"},
		Nav: []navItem{
			{"Home": "index.md"},
			{"Articles": articleItems},
			{"Glossary": "entities/index.md"},
		},
	}
}

// RenderSiteConfig marshals cfg as the kg-site.yml file contents.
func RenderSiteConfig(cfg SiteConfig) (string, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling site config: %w", err)
	}
	return string(out), nil
}
