package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kgraphdb/kgraph/internal/ftsquery"
	"github.com/kgraphdb/kgraph/internal/storage"
	"github.com/kgraphdb/kgraph/internal/types"
)

// Search implements full text search over the documents_fts mirror, falling
// back to a plain recency-ordered scan for the "*" wildcard query (spec.md
// §4.2: "* matches every live document, ranked by recency instead of bm25").
func (s *Store) Search(ctx context.Context, rawQuery string, opts storage.SearchOptions) ([]storage.SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = []types.DocKind{types.DocKindUser}
	}

	if rawQuery == "*" {
		return s.searchWildcard(ctx, opts, kinds, limit)
	}
	return s.searchFTS(ctx, rawQuery, opts, kinds, limit)
}

func (s *Store) searchWildcard(ctx context.Context, opts storage.SearchOptions, kinds []types.DocKind, limit int) ([]storage.SearchResult, error) {
	query, args := buildFilterClause(opts, kinds)
	query = `SELECT id, title, project, created_at, updated_at, substr(content, 1, 200)
		FROM documents d WHERE deleted_at IS NULL` + query + ` ORDER BY updated_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("wildcard search: %w", err)
	}
	defer rows.Close()
	return scanWildcardResults(rows)
}

func (s *Store) searchFTS(ctx context.Context, rawQuery string, opts storage.SearchOptions, kinds []types.DocKind, limit int) ([]storage.SearchResult, error) {
	filter, args := buildFilterClause(opts, kinds)

	match := ftsquery.BuildMatch(rawQuery)
	query := `
		SELECT d.id, d.title, d.project, d.created_at, d.updated_at,
		       snippet(documents_fts, 1, '[', ']', '...', 10) AS snip,
		       bm25(documents_fts) AS rank
		FROM documents_fts
		JOIN documents d ON d.id = documents_fts.rowid
		WHERE documents_fts MATCH ? AND d.deleted_at IS NULL` + filter + `
		ORDER BY rank LIMIT ?`

	allArgs := append([]any{match}, args...)
	allArgs = append(allArgs, limit)

	rows, err := s.db.QueryContext(ctx, query, allArgs...)
	if err != nil {
		return nil, fmt.Errorf("full text search: %w", err)
	}
	defer rows.Close()
	return scanFTSResults(rows)
}

// buildFilterClause appends project/kind/date filters shared by both search
// paths, returning the SQL fragment (starting with " AND") and its bound
// arguments.
func buildFilterClause(opts storage.SearchOptions, kinds []types.DocKind) (string, []any) {
	var clause string
	var args []any

	if opts.Project != "" {
		clause += ` AND d.project = ?`
		args = append(args, opts.Project)
	}
	if len(kinds) > 0 {
		placeholders := make([]byte, 0, len(kinds)*2)
		for i, k := range kinds {
			if i > 0 {
				placeholders = append(placeholders, ',')
			}
			placeholders = append(placeholders, '?')
			args = append(args, string(k))
		}
		clause += ` AND d.kind IN (` + string(placeholders) + `)`
	}
	if opts.CreatedAfter != nil {
		clause += ` AND d.created_at >= ?`
		args = append(args, *opts.CreatedAfter)
	}
	if opts.CreatedBefore != nil {
		clause += ` AND d.created_at <= ?`
		args = append(args, *opts.CreatedBefore)
	}
	if opts.UpdatedAfter != nil {
		clause += ` AND d.updated_at >= ?`
		args = append(args, *opts.UpdatedAfter)
	}
	if opts.UpdatedBefore != nil {
		clause += ` AND d.updated_at <= ?`
		args = append(args, *opts.UpdatedBefore)
	}
	return clause, args
}

func scanWildcardResults(rows *sql.Rows) ([]storage.SearchResult, error) {
	var out []storage.SearchResult
	for rows.Next() {
		var (
			r       storage.SearchResult
			project sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Title, &project, &r.CreatedAt, &r.UpdatedAt, &r.Snippet); err != nil {
			return nil, err
		}
		r.Project = project.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanFTSResults(rows *sql.Rows) ([]storage.SearchResult, error) {
	var out []storage.SearchResult
	for rows.Next() {
		var (
			r       storage.SearchResult
			project sql.NullString
			rank    sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &r.Title, &project, &r.CreatedAt, &r.UpdatedAt, &r.Snippet, &rank); err != nil {
			return nil, err
		}
		r.Project = project.String
		if rank.Valid {
			v := rank.Float64
			r.Rank = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
