package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kgraphdb/kgraph/internal/kgerr"
	"github.com/kgraphdb/kgraph/internal/types"
)

// SaveTopics persists a freshly computed clustering: topics and, per topic
// index (matching the topics slice position), the members of that topic.
// Existing topics are matched and updated by slug so that re-running
// clustering does not orphan already-generated articles (spec.md §4.10's
// "topic identity is the slug, not the row id").
func (s *Store) SaveTopics(ctx context.Context, topics []types.WikiTopic, members map[int][]types.WikiTopicMember) ([]types.WikiTopic, error) {
	out := make([]types.WikiTopic, len(topics))
	for i, t := range topics {
		var id int64
		err := s.db.QueryRowContext(ctx, `SELECT id FROM wiki_topics WHERE slug = ?`, t.Slug).Scan(&id)
		switch {
		case err == sql.ErrNoRows:
			res, insErr := s.db.ExecContext(ctx, `
				INSERT INTO wiki_topics (slug, label, fingerprint, coherence_score, status)
				VALUES (?, ?, ?, ?, 'active')`, t.Slug, t.Label, t.Fingerprint, t.CoherenceScore)
			if insErr != nil {
				return nil, fmt.Errorf("inserting topic %q: %w", t.Slug, insErr)
			}
			id, insErr = res.LastInsertId()
			if insErr != nil {
				return nil, insErr
			}
		case err != nil:
			return nil, fmt.Errorf("looking up topic %q: %w", t.Slug, err)
		default:
			if _, updErr := s.db.ExecContext(ctx, `
				UPDATE wiki_topics SET label = ?, fingerprint = ?, coherence_score = ?
				WHERE id = ?`, t.Label, t.Fingerprint, t.CoherenceScore, id); updErr != nil {
				return nil, fmt.Errorf("updating topic %q: %w", t.Slug, updErr)
			}
		}

		if _, err := s.db.ExecContext(ctx, `DELETE FROM wiki_topic_members WHERE topic_id = ?`, id); err != nil {
			return nil, fmt.Errorf("clearing members of topic %q: %w", t.Slug, err)
		}
		for _, m := range members[i] {
			if _, err := s.db.ExecContext(ctx, `
				INSERT INTO wiki_topic_members (topic_id, document_id, relevance_score, is_primary)
				VALUES (?, ?, ?, ?)`, id, m.DocumentID, m.RelevanceScore, m.IsPrimary); err != nil {
				return nil, fmt.Errorf("inserting member of topic %q: %w", t.Slug, err)
			}
		}

		t.ID = id
		out[i] = t
	}
	return out, nil
}

func scanTopic(row *sql.Row) (*types.WikiTopic, error) {
	var (
		t      types.WikiTopic
		status string
	)
	err := row.Scan(&t.ID, &t.Slug, &t.Label, &t.Fingerprint, &t.CoherenceScore, &status,
		&t.ModelOverride, &t.EditorialPrompt, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("topic: %w", kgerr.ErrNotFound)
		}
		return nil, err
	}
	t.Status = types.TopicStatus(status)
	return &t, nil
}

const topicColumns = `id, slug, label, fingerprint, coherence_score, status, model_override, editorial_prompt, created_at`

func (s *Store) GetTopics(ctx context.Context) ([]types.WikiTopic, map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+topicColumns+` FROM wiki_topics ORDER BY coherence_score DESC`)
	if err != nil {
		return nil, nil, fmt.Errorf("listing topics: %w", err)
	}
	defer rows.Close()

	var out []types.WikiTopic
	for rows.Next() {
		var (
			t      types.WikiTopic
			status string
		)
		if err := rows.Scan(&t.ID, &t.Slug, &t.Label, &t.Fingerprint, &t.CoherenceScore, &status,
			&t.ModelOverride, &t.EditorialPrompt, &t.CreatedAt); err != nil {
			return nil, nil, err
		}
		t.Status = types.TopicStatus(status)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	counts := make(map[int64]int, len(out))
	countRows, err := s.db.QueryContext(ctx, `SELECT topic_id, COUNT(*) FROM wiki_topic_members GROUP BY topic_id`)
	if err != nil {
		return nil, nil, fmt.Errorf("counting topic members: %w", err)
	}
	defer countRows.Close()
	for countRows.Next() {
		var id int64
		var n int
		if err := countRows.Scan(&id, &n); err != nil {
			return nil, nil, err
		}
		counts[id] = n
	}
	return out, counts, countRows.Err()
}

func (s *Store) GetTopic(ctx context.Context, id int64) (*types.WikiTopic, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+topicColumns+` FROM wiki_topics WHERE id = ?`, id)
	return scanTopic(row)
}

func (s *Store) GetTopicBySlug(ctx context.Context, slug string) (*types.WikiTopic, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+topicColumns+` FROM wiki_topics WHERE slug = ?`, slug)
	return scanTopic(row)
}

func (s *Store) GetTopicDocs(ctx context.Context, topicID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id FROM wiki_topic_members WHERE topic_id = ? ORDER BY relevance_score DESC`, topicID)
	if err != nil {
		return nil, fmt.Errorf("getting topic documents: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *Store) GetTopicMembers(ctx context.Context, topicID int64) ([]types.WikiTopicMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT topic_id, document_id, relevance_score, is_primary
		FROM wiki_topic_members WHERE topic_id = ? ORDER BY relevance_score DESC`, topicID)
	if err != nil {
		return nil, fmt.Errorf("getting topic members: %w", err)
	}
	defer rows.Close()

	var out []types.WikiTopicMember
	for rows.Next() {
		var m types.WikiTopicMember
		if err := rows.Scan(&m.TopicID, &m.DocumentID, &m.RelevanceScore, &m.IsPrimary); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) SetTopicStatus(ctx context.Context, topicID int64, status types.TopicStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE wiki_topics SET status = ? WHERE id = ?`, string(status), topicID)
	if err != nil {
		return fmt.Errorf("setting topic status: %w", err)
	}
	return mustAffectOne(res)
}

func (s *Store) SetTopicModelOverride(ctx context.Context, topicID int64, model string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE wiki_topics SET model_override = ? WHERE id = ?`, model, topicID)
	if err != nil {
		return fmt.Errorf("setting topic model override: %w", err)
	}
	return mustAffectOne(res)
}

func (s *Store) SetTopicEditorialPrompt(ctx context.Context, topicID int64, prompt string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE wiki_topics SET editorial_prompt = ? WHERE id = ?`, prompt, topicID)
	if err != nil {
		return fmt.Errorf("setting topic editorial prompt: %w", err)
	}
	return mustAffectOne(res)
}

func (s *Store) RenameTopic(ctx context.Context, topicID int64, newLabel, newSlug string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE wiki_topics SET label = ?, slug = ? WHERE id = ?`, newLabel, newSlug, topicID)
	if err != nil {
		return fmt.Errorf("renaming topic: %w", err)
	}
	return mustAffectOne(res)
}

func (s *Store) SetMemberWeight(ctx context.Context, topicID, docID int64, weight float64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE wiki_topic_members SET relevance_score = ? WHERE topic_id = ? AND document_id = ?`,
		weight, topicID, docID)
	if err != nil {
		return fmt.Errorf("setting member weight: %w", err)
	}
	return mustAffectOne(res)
}

func (s *Store) SetMemberIncluded(ctx context.Context, topicID, docID int64, included bool) error {
	var res sql.Result
	var err error
	if included {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO wiki_topic_members (topic_id, document_id, relevance_score, is_primary)
			VALUES (?, ?, 1.0, 0)
			ON CONFLICT(topic_id, document_id) DO UPDATE SET relevance_score = relevance_score`,
			topicID, docID)
	} else {
		res, err = s.db.ExecContext(ctx, `
			DELETE FROM wiki_topic_members WHERE topic_id = ? AND document_id = ?`, topicID, docID)
	}
	if err != nil {
		return fmt.Errorf("setting member inclusion: %w", err)
	}
	_, err = res.RowsAffected()
	return err
}

// MergeTopics folds loserID's members into winnerID, relabels the winner,
// and removes the loser topic (and, by cascade, its article if any).
func (s *Store) MergeTopics(ctx context.Context, winnerID, loserID int64, newLabel string) error {
	return s.RunInTransactionRaw(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO wiki_topic_members (topic_id, document_id, relevance_score, is_primary)
			SELECT ?, document_id, relevance_score, is_primary FROM wiki_topic_members WHERE topic_id = ?
			ON CONFLICT(topic_id, document_id) DO UPDATE SET relevance_score = excluded.relevance_score`,
			winnerID, loserID); err != nil {
			return fmt.Errorf("merging members: %w", err)
		}
		if newLabel != "" {
			if _, err := tx.ExecContext(ctx, `UPDATE wiki_topics SET label = ? WHERE id = ?`, newLabel, winnerID); err != nil {
				return fmt.Errorf("relabeling merged topic: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM wiki_topics WHERE id = ?`, loserID); err != nil {
			return fmt.Errorf("deleting merged-away topic: %w", err)
		}
		return nil
	})
}

// SplitTopic creates a new topic containing movingDocIDs, removed from
// topicID, and returns the new topic's id.
func (s *Store) SplitTopic(ctx context.Context, topicID int64, movingDocIDs []int64, newLabel, newSlug string) (int64, error) {
	var newID int64
	err := s.RunInTransactionRaw(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO wiki_topics (slug, label, fingerprint, coherence_score, status)
			VALUES (?, ?, '', 0, 'active')`, newSlug, newLabel)
		if err != nil {
			return fmt.Errorf("creating split topic: %w", err)
		}
		newID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		for _, docID := range movingDocIDs {
			var relevance float64
			var isPrimary bool
			row := tx.QueryRowContext(ctx, `
				SELECT relevance_score, is_primary FROM wiki_topic_members WHERE topic_id = ? AND document_id = ?`,
				topicID, docID)
			if err := row.Scan(&relevance, &isPrimary); err != nil {
				if err == sql.ErrNoRows {
					continue
				}
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO wiki_topic_members (topic_id, document_id, relevance_score, is_primary)
				VALUES (?, ?, ?, ?)`, newID, docID, relevance, isPrimary); err != nil {
				return fmt.Errorf("inserting into split topic: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				DELETE FROM wiki_topic_members WHERE topic_id = ? AND document_id = ?`, topicID, docID); err != nil {
				return fmt.Errorf("removing from source topic: %w", err)
			}
		}
		return nil
	})
	return newID, err
}

func mustAffectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("topic: %w", kgerr.ErrNotFound)
	}
	return nil
}

// RunInTransactionRaw is a package-internal helper for multi-statement
// topic edits (merge/split) that need *sql.Tx directly rather than the
// storage.Transaction subset interface.
func (s *Store) RunInTransactionRaw(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
