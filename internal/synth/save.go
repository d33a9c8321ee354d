package synth

import (
	"context"
	"fmt"

	"github.com/kgraphdb/kgraph/internal/storage"
	"github.com/kgraphdb/kgraph/internal/types"
)

// save implements SAVE per spec.md §4.13: persist the generated content as a
// "wiki" kind document (creating it on the first run, updating it on
// regeneration), then record the article metadata and source provenance.
//
// SaveArticle's storage-layer contract leaves previous_content capture to the
// caller: by the time SaveArticle runs, the new content may already be
// written to the document, so this function reads the prior content first.
func save(ctx context.Context, store storage.Storage, topic *types.WikiTopic, project string, outline Outline, content string, sources []Source, sourceHash, model string, inputTokens, outputTokens int64, timing types.WikiArticleTiming) (*types.WikiArticle, error) {
	existing, err := store.GetArticleByTopic(ctx, topic.ID)
	if err != nil {
		existing = nil
	}

	var docID int64
	var previousContent string

	if existing != nil {
		prevDoc, err := store.GetDocument(ctx, existing.DocumentID)
		if err == nil {
			previousContent = prevDoc.Content
		}
		if _, err := store.UpdateDocument(ctx, existing.DocumentID, outline.Title, content); err != nil {
			return nil, fmt.Errorf("updating article document: %w", err)
		}
		docID = existing.DocumentID
	} else {
		doc := &types.Document{
			Title:   outline.Title,
			Content: content,
			Project: project,
			Kind:    types.DocKindWiki,
		}
		id, err := store.SaveDocument(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("creating article document: %w", err)
		}
		docID = id
	}

	cost := estimateCost(model, inputTokens, outputTokens)

	article := &types.WikiArticle{
		TopicID:         topic.ID,
		DocumentID:      docID,
		SourceHash:      sourceHash,
		ModelID:         model,
		InputTokens:     inputTokens,
		OutputTokens:    outputTokens,
		CostUSD:         cost,
		PreviousContent: previousContent,
		Timing:          timing,
	}

	articleSources := make([]types.WikiArticleSource, 0, len(sources))
	for _, s := range sources {
		articleSources = append(articleSources, types.WikiArticleSource{
			DocumentID:  s.DocumentID,
			ContentHash: s.ContentHash,
			Weight:      s.Weight,
		})
	}

	id, err := store.SaveArticle(ctx, article, articleSources)
	if err != nil {
		return nil, fmt.Errorf("saving article: %w", err)
	}
	article.ID = id
	return article, nil
}
