package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kgraphdb/kgraph/internal/kgerr"
	"github.com/kgraphdb/kgraph/internal/types"
)

func saveDocument(ctx context.Context, q querier, doc *types.Document) (int64, error) {
	if doc.Kind == "" {
		doc.Kind = types.DocKindUser
	}
	now := time.Now().UTC()
	res, err := q.ExecContext(ctx, `
		INSERT INTO documents (title, content, project, kind, created_at, updated_at, accessed_at)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?, ?)`,
		doc.Title, doc.Content, doc.Project, string(doc.Kind), now, now, now)
	if err != nil {
		return 0, fmt.Errorf("inserting document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) SaveDocument(ctx context.Context, doc *types.Document) (int64, error) {
	return saveDocument(ctx, s.db, doc)
}

func (t *txWrapper) SaveDocument(ctx context.Context, doc *types.Document) (int64, error) {
	return saveDocument(ctx, t.q(), doc)
}

func scanDocument(row *sql.Row) (*types.Document, error) {
	var (
		d         types.Document
		project   sql.NullString
		deletedAt sql.NullTime
		kind      string
	)
	err := row.Scan(&d.ID, &d.Title, &d.Content, &project, &kind,
		&d.CreatedAt, &d.UpdatedAt, &d.AccessedAt, &d.AccessCount, &deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("document: %w", kgerr.ErrNotFound)
		}
		return nil, err
	}
	d.Project = project.String
	d.Kind = types.DocKind(kind)
	if deletedAt.Valid {
		d.Deleted = true
		t := deletedAt.Time
		d.DeletedAt = &t
	}
	return &d, nil
}

const documentColumns = `id, title, content, project, kind, created_at, updated_at, accessed_at, access_count, deleted_at`

func (s *Store) GetDocument(ctx context.Context, id int64) (*types.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ? AND deleted_at IS NULL`, id)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE documents SET accessed_at = ?, access_count = access_count + 1 WHERE id = ?`,
		time.Now().UTC(), id); err != nil {
		return nil, fmt.Errorf("updating access stats: %w", err)
	}
	return doc, nil
}

func (s *Store) GetDocumentByTitle(ctx context.Context, title string) (*types.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE title = ? AND deleted_at IS NULL`, title)
	return scanDocument(row)
}

func updateDocument(ctx context.Context, q querier, id int64, title, content string) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE documents SET title = ?, content = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		title, content, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("updating document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) UpdateDocument(ctx context.Context, id int64, title, content string) (bool, error) {
	return updateDocument(ctx, s.db, id, title, content)
}

func (t *txWrapper) UpdateDocument(ctx context.Context, id int64, title, content string) (bool, error) {
	return updateDocument(ctx, t.q(), id, title, content)
}

func (s *Store) DeleteDocument(ctx context.Context, id int64, hard bool) (bool, error) {
	if hard {
		res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
		if err != nil {
			return false, fmt.Errorf("hard-deleting document: %w", err)
		}
		n, err := res.RowsAffected()
		return n > 0, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("soft-deleting document: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) ListDocuments(ctx context.Context, project string, limit int) ([]types.DocumentListItem, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, title, project, kind, created_at, updated_at FROM documents WHERE deleted_at IS NULL`
	args := []any{}
	if project != "" {
		query += ` AND project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY updated_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()
	return scanListItems(rows)
}

func (s *Store) ListDeleted(ctx context.Context, days int, limit int) ([]types.DocumentListItem, error) {
	if limit <= 0 {
		limit = 50
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, project, kind, created_at, updated_at FROM documents
		WHERE deleted_at IS NOT NULL AND deleted_at >= ?
		ORDER BY deleted_at DESC LIMIT ?`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("listing deleted documents: %w", err)
	}
	defer rows.Close()
	return scanListItems(rows)
}

func scanListItems(rows *sql.Rows) ([]types.DocumentListItem, error) {
	var out []types.DocumentListItem
	for rows.Next() {
		var (
			item    types.DocumentListItem
			project sql.NullString
			kind    string
		)
		if err := rows.Scan(&item.ID, &item.Title, &project, &kind, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		item.Project = project.String
		item.Kind = types.DocKind(kind)
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) Restore(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return false, fmt.Errorf("restoring document: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) PurgeDeleted(ctx context.Context, olderThanDays int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE deleted_at IS NOT NULL AND deleted_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging deleted documents: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) AllDocuments(ctx context.Context) ([]types.Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("listing all documents: %w", err)
	}
	defer rows.Close()

	var out []types.Document
	for rows.Next() {
		var (
			d         types.Document
			project   sql.NullString
			deletedAt sql.NullTime
			kind      string
		)
		if err := rows.Scan(&d.ID, &d.Title, &d.Content, &project, &kind,
			&d.CreatedAt, &d.UpdatedAt, &d.AccessedAt, &d.AccessCount, &deletedAt); err != nil {
			return nil, err
		}
		d.Project = project.String
		d.Kind = types.DocKind(kind)
		out = append(out, d)
	}
	return out, rows.Err()
}
