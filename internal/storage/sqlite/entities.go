package sqlite

import (
	"context"
	"fmt"

	"github.com/kgraphdb/kgraph/internal/types"
)

func saveEntities(ctx context.Context, q querier, docID int64, entities []types.DocumentEntity) (int, error) {
	saved := 0
	for _, e := range entities {
		_, err := q.ExecContext(ctx, `
			INSERT INTO document_entities (document_id, entity, entity_type, confidence)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(document_id, entity) DO UPDATE SET
				entity_type = excluded.entity_type,
				confidence = excluded.confidence`,
			docID, e.Entity, string(e.Type), e.Confidence)
		if err != nil {
			return saved, fmt.Errorf("saving entity %q: %w", e.Entity, err)
		}
		saved++
	}
	return saved, nil
}

func (s *Store) SaveEntities(ctx context.Context, docID int64, entities []types.DocumentEntity) (int, error) {
	return saveEntities(ctx, s.db, docID, entities)
}

func (t *txWrapper) SaveEntities(ctx context.Context, docID int64, entities []types.DocumentEntity) (int, error) {
	return saveEntities(ctx, t.q(), docID, entities)
}

func (s *Store) SaveRelationships(ctx context.Context, docID int64, rels []types.EntityRelationship) (int, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entity_relationships WHERE document_id = ?`, docID); err != nil {
		return 0, fmt.Errorf("clearing existing relationships: %w", err)
	}
	saved := 0
	for _, r := range rels {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO entity_relationships (document_id, source_entity, target_entity, relationship_type, confidence)
			VALUES (?, ?, ?, ?, ?)`,
			docID, r.Source, r.Target, r.RelationshipType, r.Confidence)
		if err != nil {
			return saved, fmt.Errorf("saving relationship: %w", err)
		}
		saved++
	}
	return saved, nil
}

func (s *Store) GetEntitiesForDocument(ctx context.Context, docID int64) ([]types.DocumentEntity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, entity, entity_type, confidence
		FROM document_entities WHERE document_id = ? ORDER BY confidence DESC`, docID)
	if err != nil {
		return nil, fmt.Errorf("getting entities for document: %w", err)
	}
	defer rows.Close()
	return scanEntities(rows)
}

func (s *Store) FindDocumentsByEntity(ctx context.Context, entity string, project string) ([]int64, error) {
	query := `
		SELECT DISTINCT de.document_id
		FROM document_entities de
		JOIN documents d ON d.id = de.document_id
		WHERE de.entity = ? AND d.deleted_at IS NULL`
	args := []any{entity}
	if project != "" {
		query += ` AND d.project = ?`
		args = append(args, project)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding documents by entity: %w", err)
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

func (s *Store) AllEntities(ctx context.Context) ([]types.DocumentEntity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, document_id, entity, entity_type, confidence FROM document_entities`)
	if err != nil {
		return nil, fmt.Errorf("listing all entities: %w", err)
	}
	defer rows.Close()
	return scanEntities(rows)
}

func scanEntities(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]types.DocumentEntity, error) {
	var out []types.DocumentEntity
	for rows.Next() {
		var (
			e          types.DocumentEntity
			entityType string
		)
		if err := rows.Scan(&e.ID, &e.DocumentID, &e.Entity, &entityType, &e.Confidence); err != nil {
			return nil, err
		}
		e.Type = types.EntityType(entityType)
		out = append(out, e)
	}
	return out, rows.Err()
}
