package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kgraphdb/kgraph/internal/cluster"
	"github.com/kgraphdb/kgraph/internal/entityindex"
	"github.com/kgraphdb/kgraph/internal/storage"
	"github.com/kgraphdb/kgraph/internal/types"
)

// Result summarizes one Export run.
type Result struct {
	ArticlesWritten int
	EntitiesWritten int
	Errors          []error
}

// Export renders every non-skipped wiki article and every Tier-A entity page
// as a markdown static-site source tree under outputDir, per spec.md §4.14.
// When topicID is non-nil, only that topic's article is (re)rendered and the
// index/entity/site-config regeneration is skipped.
func Export(ctx context.Context, store storage.Storage, cfg *Config, outputDir string, topicID *int64) (*Result, error) {
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	articlesDir := filepath.Join(outputDir, "docs", "articles")
	entitiesDir := filepath.Join(outputDir, "docs", "entities")

	if err := os.MkdirAll(articlesDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating articles dir: %w", err)
	}

	result := &Result{}

	articles, err := store.ListArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}

	var navEntries []articleNavEntry
	var indexEntries []indexArticleEntry

	for _, article := range articles {
		if topicID != nil && article.TopicID != *topicID {
			continue
		}

		topic, err := store.GetTopic(ctx, article.TopicID)
		if err != nil {
			if recordErr(cfg, result, fmt.Errorf("loading topic %d: %w", article.TopicID, err)) {
				return result, err
			}
			continue
		}
		if topic.Status == types.TopicSkipped {
			continue
		}

		doc, err := store.GetDocument(ctx, article.DocumentID)
		if err != nil {
			if recordErr(cfg, result, fmt.Errorf("loading article document %d: %w", article.DocumentID, err)) {
				return result, err
			}
			continue
		}

		sources, err := store.GetArticleSources(ctx, article.ID)
		if err != nil {
			if recordErr(cfg, result, fmt.Errorf("loading article sources %d: %w", article.ID, err)) {
				return result, err
			}
			continue
		}

		rendered, err := RenderArticle(article, doc.Title, sources, doc.Content)
		if err != nil {
			if recordErr(cfg, result, err) {
				return result, err
			}
			continue
		}

		path := filepath.Join(articlesDir, topic.Slug+".md")
		if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
			if recordErr(cfg, result, fmt.Errorf("writing %s: %w", path, err)) {
				return result, err
			}
			continue
		}
		result.ArticlesWritten++
		navEntries = append(navEntries, articleNavEntry{Title: doc.Title, Slug: topic.Slug})
		indexEntries = append(indexEntries, indexArticleEntry{Title: doc.Title, Slug: topic.Slug})
	}

	if topicID != nil {
		return result, nil
	}

	if err := os.MkdirAll(entitiesDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating entities dir: %w", err)
	}

	entries, err := entityindex.BuildIndex(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("building entity index: %w", err)
	}
	allEntities, err := store.AllEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading entities: %w", err)
	}
	allDocs, err := store.AllDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}
	titleByDoc := make(map[int64]string, len(allDocs))
	for _, d := range allDocs {
		titleByDoc[d.ID] = d.Title
	}
	totalDocs := len(allDocs)

	docContentCache := make(map[int64]string)
	getContent := func(id int64) string {
		if c, ok := docContentCache[id]; ok {
			return c
		}
		d, err := store.GetDocument(ctx, id)
		if err != nil {
			return ""
		}
		docContentCache[id] = d.Content
		return d.Content
	}

	for _, entry := range entries {
		if entry.Tier != entityindex.TierA {
			continue
		}
		docs := make(map[int64]string, len(entry.DocumentIDs))
		for _, id := range entry.DocumentIDs {
			docs[id] = getContent(id)
		}
		snippets := entityindex.Snippets(entry.Entity, docs)
		related := entityindex.RelatedEntities(entry.Entity, allEntities, totalDocs)

		page, err := entityindex.RenderPage(entry, snippets, related, titleByDoc)
		if err != nil {
			if recordErr(cfg, result, err) {
				return result, err
			}
			continue
		}

		slug := cluster.Slug(entry.Entity)
		path := filepath.Join(entitiesDir, slug+".md")
		if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
			if recordErr(cfg, result, fmt.Errorf("writing %s: %w", path, err)) {
				return result, err
			}
			continue
		}
		result.EntitiesWritten++
	}

	indexMD := RenderIndex(indexEntries)
	if err := os.WriteFile(filepath.Join(outputDir, "docs", "index.md"), []byte(indexMD), 0o644); err != nil {
		return result, fmt.Errorf("writing index.md: %w", err)
	}

	entityIndexMD := RenderEntityIndex(entries, cluster.Slug)
	if err := os.WriteFile(filepath.Join(entitiesDir, "index.md"), []byte(entityIndexMD), 0o644); err != nil {
		return result, fmt.Errorf("writing entities/index.md: %w", err)
	}

	siteCfg := BuildSiteConfig(cfg.Theme, navEntries)
	siteYAML, err := RenderSiteConfig(siteCfg)
	if err != nil {
		return result, err
	}
	if err := os.WriteFile(filepath.Join(outputDir, "kg-site.yml"), []byte(siteYAML), 0o644); err != nil {
		return result, fmt.Errorf("writing kg-site.yml: %w", err)
	}

	return result, nil
}

// recordErr applies cfg's error policy to a per-file failure: strict returns
// true (the caller should abort and surface err), best-effort records it in
// result.Errors and returns false so the loop continues.
func recordErr(cfg *Config, result *Result, err error) bool {
	result.Errors = append(result.Errors, err)
	return cfg.Policy == PolicyStrict
}
