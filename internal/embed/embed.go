// Package embed implements the vector-similarity capability spec.md §9's
// Design Notes call for: "Model it as a capability interface consumed by the
// semantic-linking path and the maintain index command; its internals
// (chunking, index file on disk) are an implementation concern and are not
// covered here." No embedding model or vector-search library appears
// anywhere in the retrieval pack (see DESIGN.md), so the vectorizer here is
// a deterministic hashed bag-of-words feature vector - the same category of
// stand-in internal/dedup's MinHash signature is for true Jaccard
// similarity: pure stdlib, grounded on that package's hashWithSeed/shingle3
// shape rather than on any teacher file.
package embed

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/kgraphdb/kgraph/internal/storage"
	"github.com/kgraphdb/kgraph/internal/types"
)

// Dimensions is the fixed length of every vector this package produces.
const Dimensions = 128

// ModelName identifies the vectorizer for embedding_stats/provenance,
// standing in for the original's configurable embedding model name.
const ModelName = "hashed-bow-v1"

// ChunkWords is the number of whitespace-separated words per chunk when
// chunk-level indexing is requested (`maintain index --chunks`).
const ChunkWords = 200

// Vectorize turns free text into a fixed-length dense vector: each word
// hashes into one of Dimensions buckets (a feature-hashing vectorizer), then
// the result is L2-normalized so cosine similarity reduces to a dot product.
func Vectorize(text string) []float64 {
	v := make([]float64, Dimensions)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		v[hashBucket(w)]++
	}
	normalize(v)
	return v
}

func hashBucket(s string) int {
	h := uint64(14695981039346656037)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return int(h % uint64(Dimensions))
}

func normalize(v []float64) {
	var sumSq float64
	for _, f := range v {
		sumSq += f * f
	}
	if sumSq == 0 {
		return
	}
	norm := math.Sqrt(sumSq)
	for i := range v {
		v[i] /= norm
	}
}

// CosineSimilarity assumes both vectors are already L2-normalized (every
// vector Vectorize produces is), reducing it to a plain dot product.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Chunk splits text into ChunkWords-word windows for chunk-level indexing,
// the Go shape of the original's index_chunks pass.
func Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var chunks []string
	for i := 0; i < len(words); i += ChunkWords {
		end := i + ChunkWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// IndexDocument computes and stores docID's embedding, skipping the work if
// one already exists and force is false. withChunks also (re)builds the
// document's chunk-level index.
func IndexDocument(ctx context.Context, store storage.Storage, docID int64, content string, force, withChunks bool) error {
	if !force {
		if _, ok, err := store.GetEmbedding(ctx, docID); err != nil {
			return fmt.Errorf("checking existing embedding for document %d: %w", docID, err)
		} else if ok {
			return nil
		}
	}
	if err := store.SaveEmbedding(ctx, docID, ModelName, Vectorize(content)); err != nil {
		return err
	}
	if !withChunks {
		return nil
	}

	chunks := Chunk(content)
	vectors := make([][]float64, len(chunks))
	for i, c := range chunks {
		vectors[i] = Vectorize(c)
	}
	return store.SaveChunkEmbeddings(ctx, docID, ModelName, vectors)
}

// IndexAll computes embeddings for every live document in batches of
// batchSize (mirroring maintain_index.py's index_embeddings --batch-size),
// skipping documents that already have one unless force is set. Returns the
// number of documents (re)indexed.
func IndexAll(ctx context.Context, store storage.Storage, force bool, batchSize int, withChunks bool) (int, error) {
	docs, err := store.AllDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing documents: %w", err)
	}
	if batchSize <= 0 {
		batchSize = len(docs)
	}
	if batchSize == 0 {
		return 0, nil
	}

	indexed := 0
	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		for _, d := range docs[i:end] {
			alreadyIndexed := false
			if !force {
				_, ok, err := store.GetEmbedding(ctx, d.ID)
				if err != nil {
					return indexed, fmt.Errorf("checking embedding for document %d: %w", d.ID, err)
				}
				alreadyIndexed = ok
			}
			if err := IndexDocument(ctx, store, d.ID, d.Content, force, withChunks); err != nil {
				return indexed, fmt.Errorf("indexing document %d: %w", d.ID, err)
			}
			if force || !alreadyIndexed {
				indexed++
			}
		}
	}
	return indexed, nil
}

// Clear removes every stored embedding and chunk embedding.
func Clear(ctx context.Context, store storage.Storage) (int, error) {
	return store.ClearEmbeddings(ctx)
}

// Stats reports corpus embedding coverage for `maintain index --stats`.
func Stats(ctx context.Context, store storage.Storage) (types.EmbeddingStats, error) {
	stats, err := store.EmbeddingStats(ctx)
	if err != nil {
		return stats, err
	}
	stats.ModelName = ModelName
	return stats, nil
}
