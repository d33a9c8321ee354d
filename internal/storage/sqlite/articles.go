package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kgraphdb/kgraph/internal/kgerr"
	"github.com/kgraphdb/kgraph/internal/types"
)

const articleColumns = `id, topic_id, document_id, source_hash, model_id, input_tokens, output_tokens, cost_usd,
	version, is_stale, stale_reason, previous_content, rating, rated_at,
	timing_prepare_ms, timing_route_ms, timing_outline_ms, timing_write_ms, timing_validate_ms, timing_save_ms,
	created_at, updated_at`

func scanArticle(row *sql.Row) (*types.WikiArticle, error) {
	var (
		a        types.WikiArticle
		rating   sql.NullInt64
		ratedAt  sql.NullTime
	)
	err := row.Scan(&a.ID, &a.TopicID, &a.DocumentID, &a.SourceHash, &a.ModelID, &a.InputTokens, &a.OutputTokens, &a.CostUSD,
		&a.Version, &a.IsStale, &a.StaleReason, &a.PreviousContent, &rating, &ratedAt,
		&a.Timing.PrepareMS, &a.Timing.RouteMS, &a.Timing.OutlineMS, &a.Timing.WriteMS, &a.Timing.ValidateMS, &a.Timing.SaveMS,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("article: %w", kgerr.ErrNotFound)
		}
		return nil, err
	}
	if rating.Valid {
		v := int(rating.Int64)
		a.Rating = &v
	}
	if ratedAt.Valid {
		t := ratedAt.Time
		a.RatedAt = &t
	}
	return &a, nil
}

func (s *Store) GetArticleByTopic(ctx context.Context, topicID int64) (*types.WikiArticle, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM wiki_articles WHERE topic_id = ?`, topicID)
	return scanArticle(row)
}

func (s *Store) GetArticle(ctx context.Context, id int64) (*types.WikiArticle, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM wiki_articles WHERE id = ?`, id)
	return scanArticle(row)
}

// SaveArticle inserts a new article or, if one already exists for the
// topic, stashes the previous content and bumps the version - the
// "generate" half of spec.md §4.13's SAVE step. Source provenance rows are
// fully replaced.
func (s *Store) SaveArticle(ctx context.Context, article *types.WikiArticle, sources []types.WikiArticleSource) (int64, error) {
	var id int64
	err := s.RunInTransactionRaw(ctx, func(tx *sql.Tx) error {
		existing, err := getArticleIDAndVersion(ctx, tx, article.TopicID)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("checking existing article: %w", err)
		}

		now := time.Now().UTC()
		if err == sql.ErrNoRows {
			res, insErr := tx.ExecContext(ctx, `
				INSERT INTO wiki_articles (
					topic_id, document_id, source_hash, model_id, input_tokens, output_tokens, cost_usd,
					version, is_stale, stale_reason,
					timing_prepare_ms, timing_route_ms, timing_outline_ms, timing_write_ms, timing_validate_ms, timing_save_ms,
					created_at, updated_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, 1, 0, '', ?, ?, ?, ?, ?, ?, ?, ?)`,
				article.TopicID, article.DocumentID, article.SourceHash, article.ModelID,
				article.InputTokens, article.OutputTokens, article.CostUSD,
				article.Timing.PrepareMS, article.Timing.RouteMS, article.Timing.OutlineMS,
				article.Timing.WriteMS, article.Timing.ValidateMS, article.Timing.SaveMS, now, now)
			if insErr != nil {
				return fmt.Errorf("inserting article: %w", insErr)
			}
			id, insErr = res.LastInsertId()
			if insErr != nil {
				return insErr
			}
			article.Version = 1
		} else {
			id = existing.id
			if _, updErr := tx.ExecContext(ctx, `
				UPDATE wiki_articles SET
					document_id = ?, source_hash = ?, model_id = ?, input_tokens = ?, output_tokens = ?, cost_usd = ?,
					version = version + 1, is_stale = 0, stale_reason = '', previous_content = ?,
					timing_prepare_ms = ?, timing_route_ms = ?, timing_outline_ms = ?, timing_write_ms = ?,
					timing_validate_ms = ?, timing_save_ms = ?, updated_at = ?
				WHERE id = ?`,
				article.DocumentID, article.SourceHash, article.ModelID, article.InputTokens, article.OutputTokens, article.CostUSD,
				article.PreviousContent, article.Timing.PrepareMS, article.Timing.RouteMS, article.Timing.OutlineMS,
				article.Timing.WriteMS, article.Timing.ValidateMS, article.Timing.SaveMS, now, id); updErr != nil {
				return fmt.Errorf("updating article: %w", updErr)
			}
			article.Version = existing.version + 1
		}
		article.ID = id

		if _, err := tx.ExecContext(ctx, `DELETE FROM wiki_article_sources WHERE article_id = ?`, id); err != nil {
			return fmt.Errorf("clearing article sources: %w", err)
		}
		for _, src := range sources {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO wiki_article_sources (article_id, document_id, content_hash, weight, excluded)
				VALUES (?, ?, ?, ?, ?)`, id, src.DocumentID, src.ContentHash, src.Weight, src.Excluded); err != nil {
				return fmt.Errorf("inserting article source: %w", err)
			}
		}
		return nil
	})
	return id, err
}

type articleSnapshot struct {
	id      int64
	version int64
}

// getArticleIDAndVersion looks up the existing article for a topic, if any.
// Callers are responsible for capturing the document's previous content
// themselves (before overwriting it) and passing it in via
// article.PreviousContent - the storage layer does not infer it, since by
// the time SaveArticle runs the new document content may already be in
// place.
func getArticleIDAndVersion(ctx context.Context, tx *sql.Tx, topicID int64) (articleSnapshot, error) {
	var snap articleSnapshot
	row := tx.QueryRowContext(ctx, `SELECT id, version FROM wiki_articles WHERE topic_id = ?`, topicID)
	err := row.Scan(&snap.id, &snap.version)
	return snap, err
}

// MarkStale flags every article sourced (even partially) from docID as
// stale, for the next generate_wiki pass to regenerate. Returns the count
// affected.
func (s *Store) MarkStale(ctx context.Context, docID int64) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE wiki_articles SET is_stale = 1, stale_reason = 'source document changed'
		WHERE id IN (SELECT article_id FROM wiki_article_sources WHERE document_id = ? AND excluded = 0)`, docID)
	if err != nil {
		return 0, fmt.Errorf("marking articles stale: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) RateArticle(ctx context.Context, articleID int64, rating int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE wiki_articles SET rating = ?, rated_at = ? WHERE id = ?`, rating, time.Now().UTC(), articleID)
	if err != nil {
		return fmt.Errorf("rating article: %w", err)
	}
	return mustAffectOne(res)
}

func (s *Store) GetArticleSources(ctx context.Context, articleID int64) ([]types.WikiArticleSource, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT article_id, document_id, content_hash, weight, excluded
		FROM wiki_article_sources WHERE article_id = ?`, articleID)
	if err != nil {
		return nil, fmt.Errorf("getting article sources: %w", err)
	}
	defer rows.Close()

	var out []types.WikiArticleSource
	for rows.Next() {
		var src types.WikiArticleSource
		if err := rows.Scan(&src.ArticleID, &src.DocumentID, &src.ContentHash, &src.Weight, &src.Excluded); err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// SetSourceExcluded flips a contributing document's excluded flag for one
// article, so the next regeneration can drop it from the prompt without
// removing its provenance row entirely.
func (s *Store) SetSourceExcluded(ctx context.Context, articleID, docID int64, excluded bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE wiki_article_sources SET excluded = ? WHERE article_id = ? AND document_id = ?`,
		excluded, articleID, docID)
	if err != nil {
		return fmt.Errorf("setting source excluded: %w", err)
	}
	return mustAffectOne(res)
}

func (s *Store) ListArticles(ctx context.Context) ([]types.WikiArticle, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+articleColumns+` FROM wiki_articles ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	var out []types.WikiArticle
	for rows.Next() {
		var (
			a       types.WikiArticle
			rating  sql.NullInt64
			ratedAt sql.NullTime
		)
		if err := rows.Scan(&a.ID, &a.TopicID, &a.DocumentID, &a.SourceHash, &a.ModelID, &a.InputTokens, &a.OutputTokens, &a.CostUSD,
			&a.Version, &a.IsStale, &a.StaleReason, &a.PreviousContent, &rating, &ratedAt,
			&a.Timing.PrepareMS, &a.Timing.RouteMS, &a.Timing.OutlineMS, &a.Timing.WriteMS, &a.Timing.ValidateMS, &a.Timing.SaveMS,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if rating.Valid {
			v := int(rating.Int64)
			a.Rating = &v
		}
		if ratedAt.Valid {
			t := ratedAt.Time
			a.RatedAt = &t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
