package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kgraphdb/kgraph/internal/types"
)

func setConfig(ctx context.Context, q querier, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO kv_config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("setting config %q: %w", key, err)
	}
	return nil
}

func getConfig(ctx context.Context, q querier, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM kv_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting config %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	return setConfig(ctx, s.db, key, value)
}

func (s *Store) GetConfig(ctx context.Context, key string) (string, error) {
	return getConfig(ctx, s.db, key)
}

func (t *txWrapper) SetConfig(ctx context.Context, key, value string) error {
	return setConfig(ctx, t.q(), key, value)
}

func (t *txWrapper) GetConfig(ctx context.Context, key string) (string, error) {
	return getConfig(ctx, t.q(), key)
}

// FlushAccessCounts applies the write-behind access-count buffer (C3) in one
// pass: each document's access_count is bumped by its buffered delta rather
// than overwritten, so counts accumulated between flushes are never lost.
func (s *Store) FlushAccessCounts(ctx context.Context, counts map[int64]int64) error {
	if len(counts) == 0 {
		return nil
	}
	return s.RunInTransactionRaw(ctx, func(tx *sql.Tx) error {
		for docID, delta := range counts {
			if _, err := tx.ExecContext(ctx, `
				UPDATE documents SET access_count = access_count + ? WHERE id = ?`, delta, docID); err != nil {
				return fmt.Errorf("flushing access count for document %d: %w", docID, err)
			}
		}
		return nil
	})
}

func (s *Store) AllTasks(ctx context.Context) ([]types.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, type, parent_task_id, epic_key, source_doc_id, project, created_at, updated_at
		FROM tasks`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var out []types.Task
	for rows.Next() {
		var (
			t            types.Task
			parentTaskID sql.NullString
			epicKey      sql.NullString
			sourceDocID  sql.NullInt64
			project      sql.NullString
			taskType     string
		)
		if err := rows.Scan(&t.ID, &t.Status, &taskType, &parentTaskID, &epicKey, &sourceDocID, &project,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Type = types.TaskType(taskType)
		t.ParentTaskID = parentTaskID.String
		t.EpicKey = epicKey.String
		t.Project = project.String
		if sourceDocID.Valid {
			v := sourceDocID.Int64
			t.SourceDocID = &v
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
