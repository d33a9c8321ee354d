package sqlite

import (
	"context"
	"fmt"

	"github.com/kgraphdb/kgraph/internal/types"
)

func (s *Store) SaveTags(ctx context.Context, docID int64, tags []string) error {
	if _, err := s.db.ExecContext(ctx, `
		UPDATE tags SET usage_count = usage_count - 1
		WHERE id IN (SELECT tag_id FROM document_tags WHERE document_id = ?)`, docID); err != nil {
		return fmt.Errorf("decrementing replaced tag usage: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM document_tags WHERE document_id = ?`, docID); err != nil {
		return fmt.Errorf("clearing existing tags: %w", err)
	}

	for _, name := range tags {
		if name == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO tags(name, usage_count) VALUES (?, 1)
			ON CONFLICT(name) DO UPDATE SET usage_count = usage_count + 1`, name); err != nil {
			return fmt.Errorf("upserting tag %q: %w", name, err)
		}
		var tagID int64
		if err := s.db.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID); err != nil {
			return fmt.Errorf("resolving tag %q: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO document_tags(document_id, tag_id) VALUES (?, ?)`, docID, tagID); err != nil {
			return fmt.Errorf("linking tag %q: %w", name, err)
		}
	}
	return nil
}

func (s *Store) GetTags(ctx context.Context, docID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name FROM tags t
		JOIN document_tags dt ON dt.tag_id = t.id
		WHERE dt.document_id = ? ORDER BY t.name`, docID)
	if err != nil {
		return nil, fmt.Errorf("getting tags: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *Store) ListAllTags(ctx context.Context) ([]types.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, usage_count FROM tags WHERE usage_count > 0 ORDER BY usage_count DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var out []types.Tag
	for rows.Next() {
		var t types.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.UsageCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) DocsWithTag(ctx context.Context, tag string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT dt.document_id FROM document_tags dt
		JOIN tags t ON t.id = dt.tag_id
		JOIN documents d ON d.id = dt.document_id
		WHERE t.name = ? AND d.deleted_at IS NULL`, tag)
	if err != nil {
		return nil, fmt.Errorf("finding docs with tag: %w", err)
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
