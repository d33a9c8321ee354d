package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kgraphdb/kgraph/internal/types"
)

func createLink(ctx context.Context, q querier, sourceID, targetID int64, score float64, method types.LinkMethod) (int64, bool, error) {
	if sourceID == targetID {
		return 0, false, nil
	}
	a, b := sourceID, targetID
	var existingID int64
	err := q.QueryRowContext(ctx, `
		SELECT id FROM document_links
		WHERE (source_id = ? AND target_id = ?) OR (source_id = ? AND target_id = ?)`,
		a, b, b, a).Scan(&existingID)
	if err == nil {
		return existingID, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("checking existing link: %w", err)
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO document_links (source_id, target_id, score, method)
		VALUES (?, ?, ?, ?)`, sourceID, targetID, score, string(method))
	if err != nil {
		return 0, false, fmt.Errorf("inserting link: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (s *Store) CreateLink(ctx context.Context, sourceID, targetID int64, score float64, method types.LinkMethod) (int64, bool, error) {
	return createLink(ctx, s.db, sourceID, targetID, score, method)
}

func (t *txWrapper) CreateLink(ctx context.Context, sourceID, targetID int64, score float64, method types.LinkMethod) (int64, bool, error) {
	return createLink(ctx, t.q(), sourceID, targetID, score, method)
}

// CreateLinksBatch inserts edges that do not already exist (in either
// direction), skipping the rest, and returns the count actually inserted.
// Used by the cross-reference builders (C5/C7/C10) that generate edges in
// bulk after a full corpus scan.
func (s *Store) CreateLinksBatch(ctx context.Context, edges []types.DocumentLink) (int, error) {
	inserted := 0
	for _, e := range edges {
		_, created, err := s.CreateLink(ctx, e.SourceID, e.TargetID, e.Score, e.Method)
		if err != nil {
			return inserted, err
		}
		if created {
			inserted++
		}
	}
	return inserted, nil
}

func (s *Store) LinkExists(ctx context.Context, a, b int64) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM document_links
		WHERE (source_id = ? AND target_id = ?) OR (source_id = ? AND target_id = ?)`,
		a, b, b, a).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) DeleteLink(ctx context.Context, a, b int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM document_links
		WHERE (source_id = ? AND target_id = ?) OR (source_id = ? AND target_id = ?)`, a, b, b, a)
	if err != nil {
		return false, fmt.Errorf("deleting link: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) DeleteLinksForDocument(ctx context.Context, id int64) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM document_links WHERE source_id = ? OR target_id = ?`, id, id)
	if err != nil {
		return 0, fmt.Errorf("deleting links for document: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) DeleteLinksByMethod(ctx context.Context, method types.LinkMethod) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM document_links WHERE method = ?`, string(method))
	if err != nil {
		return 0, fmt.Errorf("deleting links by method: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) GetLinksForDocument(ctx context.Context, id int64) ([]types.LinkedDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.source_id, l.target_id, l.score, l.method, l.created_at,
		       src.title, tgt.title
		FROM document_links l
		JOIN documents src ON src.id = l.source_id
		JOIN documents tgt ON tgt.id = l.target_id
		WHERE (l.source_id = ? OR l.target_id = ?)
		  AND src.deleted_at IS NULL AND tgt.deleted_at IS NULL
		ORDER BY l.score DESC`, id, id)
	if err != nil {
		return nil, fmt.Errorf("getting links for document: %w", err)
	}
	defer rows.Close()

	var out []types.LinkedDocument
	for rows.Next() {
		var (
			ld     types.LinkedDocument
			method string
		)
		if err := rows.Scan(&ld.ID, &ld.SourceID, &ld.TargetID, &ld.Score, &method, &ld.CreatedAt,
			&ld.SourceTitle, &ld.TargetTitle); err != nil {
			return nil, err
		}
		ld.Method = types.LinkMethod(method)
		out = append(out, ld)
	}
	return out, rows.Err()
}

func (s *Store) GetLinkedDocIDs(ctx context.Context, id int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT CASE WHEN source_id = ? THEN target_id ELSE source_id END
		FROM document_links WHERE source_id = ? OR target_id = ?`, id, id, id)
	if err != nil {
		return nil, fmt.Errorf("getting linked document ids: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var docID int64
		if err := rows.Scan(&docID); err != nil {
			return nil, err
		}
		out = append(out, docID)
	}
	return out, rows.Err()
}

func (s *Store) GetLinkCount(ctx context.Context, id int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM document_links WHERE source_id = ? OR target_id = ?`, id, id).Scan(&n)
	return n, err
}

func (s *Store) BatchGetLinkCounts(ctx context.Context, ids []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(ids))
	for _, id := range ids {
		n, err := s.GetLinkCount(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, nil
}

func (s *Store) AllLinks(ctx context.Context) ([]types.DocumentLink, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, source_id, target_id, score, method, created_at FROM document_links`)
	if err != nil {
		return nil, fmt.Errorf("listing all links: %w", err)
	}
	defer rows.Close()

	var out []types.DocumentLink
	for rows.Next() {
		var (
			l      types.DocumentLink
			method string
		)
		if err := rows.Scan(&l.ID, &l.SourceID, &l.TargetID, &l.Score, &method, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Method = types.LinkMethod(method)
		out = append(out, l)
	}
	return out, rows.Err()
}
