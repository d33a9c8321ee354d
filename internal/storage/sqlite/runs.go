package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kgraphdb/kgraph/internal/types"
)

func (s *Store) CreateWikiRun(ctx context.Context, run *types.WikiRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wiki_runs (id, model, dry_run, attempted, generated, skipped, total_tokens, total_cost_usd, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Model, run.DryRun, run.Attempted, run.Generated, run.Skipped,
		run.TotalTokens, run.TotalCostUSD, run.StartedAt)
	if err != nil {
		return fmt.Errorf("creating wiki run: %w", err)
	}
	return nil
}

func (s *Store) CompleteWikiRun(ctx context.Context, run *types.WikiRun) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE wiki_runs SET attempted = ?, generated = ?, skipped = ?, total_tokens = ?, total_cost_usd = ?, completed_at = ?
		WHERE id = ?`,
		run.Attempted, run.Generated, run.Skipped, run.TotalTokens, run.TotalCostUSD, run.CompletedAt, run.ID)
	if err != nil {
		return fmt.Errorf("completing wiki run: %w", err)
	}
	return nil
}

func (s *Store) ListWikiRuns(ctx context.Context, limit int) ([]types.WikiRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model, dry_run, attempted, generated, skipped, total_tokens, total_cost_usd, started_at, completed_at
		FROM wiki_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing wiki runs: %w", err)
	}
	defer rows.Close()

	var out []types.WikiRun
	for rows.Next() {
		var (
			r           types.WikiRun
			completedAt sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.Model, &r.DryRun, &r.Attempted, &r.Generated, &r.Skipped,
			&r.TotalTokens, &r.TotalCostUSD, &r.StartedAt, &completedAt); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			t := completedAt.Time
			r.CompletedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
