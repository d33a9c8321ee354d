package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kgraphdb/kgraph/internal/types"
)

// encodeVector/decodeVector pack a []float64 into a BLOB, the same
// fixed-width binary.Write/Read approach the teacher uses nowhere itself
// (its columns are all TEXT/INTEGER/REAL) but which is the natural stdlib
// shape for a dense vector column - see DESIGN.md.
func encodeVector(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float64 {
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return out
}

func (s *Store) SaveEmbedding(ctx context.Context, docID int64, model string, vector []float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO document_embeddings (document_id, model, vector)
		VALUES (?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET model = excluded.model, vector = excluded.vector`,
		docID, model, encodeVector(vector))
	if err != nil {
		return fmt.Errorf("saving embedding for document %d: %w", docID, err)
	}
	return nil
}

func (s *Store) GetEmbedding(ctx context.Context, docID int64) ([]float64, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT vector FROM document_embeddings WHERE document_id = ?`, docID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fetching embedding for document %d: %w", docID, err)
	}
	return decodeVector(blob), true, nil
}

func (s *Store) AllEmbeddings(ctx context.Context) (map[int64][]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT de.document_id, de.vector
		FROM document_embeddings de
		JOIN documents d ON d.id = de.document_id
		WHERE d.deleted_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("listing embeddings: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]float64)
	for rows.Next() {
		var (
			id   int64
			blob []byte
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		out[id] = decodeVector(blob)
	}
	return out, rows.Err()
}

func (s *Store) ClearEmbeddings(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM document_embeddings`)
	if err != nil {
		return 0, fmt.Errorf("clearing embeddings: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM document_chunk_embeddings`); err != nil {
		return 0, fmt.Errorf("clearing chunk embeddings: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) EmbeddingStats(ctx context.Context) (types.EmbeddingStats, error) {
	var stats types.EmbeddingStats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE deleted_at IS NULL`).
		Scan(&stats.TotalDocuments); err != nil {
		return stats, fmt.Errorf("counting documents: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM document_embeddings de
		JOIN documents d ON d.id = de.document_id
		WHERE d.deleted_at IS NULL`).Scan(&stats.IndexedDocuments); err != nil {
		return stats, fmt.Errorf("counting indexed documents: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_chunk_embeddings`).
		Scan(&stats.IndexedChunks); err != nil {
		return stats, fmt.Errorf("counting indexed chunks: %w", err)
	}
	if stats.TotalDocuments > 0 {
		stats.CoveragePercent = 100 * float64(stats.IndexedDocuments) / float64(stats.TotalDocuments)
	}

	var indexBytes, chunkBytes sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT SUM(LENGTH(vector)) FROM document_embeddings`).Scan(&indexBytes); err != nil {
		return stats, fmt.Errorf("summing embedding index size: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT SUM(LENGTH(vector)) FROM document_chunk_embeddings`).Scan(&chunkBytes); err != nil {
		return stats, fmt.Errorf("summing chunk index size: %w", err)
	}
	stats.IndexSizeBytes = indexBytes.Int64
	stats.ChunkIndexSizeBytes = chunkBytes.Int64
	return stats, nil
}

// SaveChunkEmbeddings replaces a document's whole chunk-embedding set in one
// transaction, so a reindex never leaves stale chunks from a shorter
// previous version of the document.
func (s *Store) SaveChunkEmbeddings(ctx context.Context, docID int64, model string, chunks [][]float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning chunk embedding transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunk_embeddings WHERE document_id = ?`, docID); err != nil {
		return fmt.Errorf("clearing existing chunks for document %d: %w", docID, err)
	}
	for i, v := range chunks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO document_chunk_embeddings (document_id, chunk_index, model, vector)
			VALUES (?, ?, ?, ?)`, docID, i, model, encodeVector(v)); err != nil {
			return fmt.Errorf("saving chunk %d for document %d: %w", i, docID, err)
		}
	}
	return tx.Commit()
}
