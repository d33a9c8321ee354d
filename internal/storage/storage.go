// Package storage defines the interface for the knowledge graph's storage
// backend: documents, tags, links, entities, wiki topics/articles, and
// generic key-value config. Mirrors the teacher's internal/storage contract
// shape (one Storage interface, one Transaction sub-interface scoped to the
// subset of operations that can run atomically).
package storage

import (
	"context"
	"time"

	"github.com/kgraphdb/kgraph/internal/types"
)

// SearchOptions carries the FTS query layer's filters (spec.md §4.2).
type SearchOptions struct {
	Project        string
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	UpdatedAfter   *time.Time
	UpdatedBefore  *time.Time
	Kinds          []types.DocKind // nil means "all kinds"; search defaults to {user} at the caller
	Limit          int
}

// SearchResult is one row of a full-text search.
type SearchResult struct {
	ID        int64
	Title     string
	Project   string
	CreatedAt time.Time
	UpdatedAt time.Time
	Snippet   string
	Rank      *float64 // nil for wildcard ("*") results
}

// Transaction exposes the subset of Storage operations that can run inside a
// single atomic database transaction, for multi-step workflows like
// synthesis SAVE (content update + previous_content stash + version bump +
// provenance rewrite all-or-nothing).
type Transaction interface {
	SaveDocument(ctx context.Context, doc *types.Document) (int64, error)
	UpdateDocument(ctx context.Context, id int64, title, content string) (bool, error)
	CreateLink(ctx context.Context, sourceID, targetID int64, score float64, method types.LinkMethod) (int64, bool, error)
	SaveEntities(ctx context.Context, docID int64, entities []types.DocumentEntity) (int, error)
	SetConfig(ctx context.Context, key, value string) error
	GetConfig(ctx context.Context, key string) (string, error)
}

// Storage is the full contract implemented by internal/storage/sqlite.
type Storage interface {
	Close() error
	RunInTransaction(ctx context.Context, fn func(tx Transaction) error) error

	// Documents (C1)
	SaveDocument(ctx context.Context, doc *types.Document) (int64, error)
	GetDocument(ctx context.Context, id int64) (*types.Document, error)
	GetDocumentByTitle(ctx context.Context, title string) (*types.Document, error)
	UpdateDocument(ctx context.Context, id int64, title, content string) (bool, error)
	DeleteDocument(ctx context.Context, id int64, hard bool) (bool, error)
	ListDocuments(ctx context.Context, project string, limit int) ([]types.DocumentListItem, error)
	ListDeleted(ctx context.Context, days int, limit int) ([]types.DocumentListItem, error)
	Restore(ctx context.Context, id int64) (bool, error)
	PurgeDeleted(ctx context.Context, olderThanDays int) (int, error)
	AllDocuments(ctx context.Context) ([]types.Document, error)

	// Tags
	SaveTags(ctx context.Context, docID int64, tags []string) error
	GetTags(ctx context.Context, docID int64) ([]string, error)
	ListAllTags(ctx context.Context) ([]types.Tag, error)
	DocsWithTag(ctx context.Context, tag string) ([]int64, error)

	// FTS (C2)
	Search(ctx context.Context, rawQuery string, opts SearchOptions) ([]SearchResult, error)

	// Links (C4)
	CreateLink(ctx context.Context, sourceID, targetID int64, score float64, method types.LinkMethod) (int64, bool, error)
	CreateLinksBatch(ctx context.Context, edges []types.DocumentLink) (int, error)
	LinkExists(ctx context.Context, a, b int64) (bool, error)
	DeleteLink(ctx context.Context, a, b int64) (bool, error)
	DeleteLinksForDocument(ctx context.Context, id int64) (int, error)
	DeleteLinksByMethod(ctx context.Context, method types.LinkMethod) (int, error)
	GetLinksForDocument(ctx context.Context, id int64) ([]types.LinkedDocument, error)
	GetLinkedDocIDs(ctx context.Context, id int64) ([]int64, error)
	GetLinkCount(ctx context.Context, id int64) (int, error)
	BatchGetLinkCounts(ctx context.Context, ids []int64) (map[int64]int, error)
	AllLinks(ctx context.Context) ([]types.DocumentLink, error)

	// Entities (C6/C7)
	SaveEntities(ctx context.Context, docID int64, entities []types.DocumentEntity) (int, error)
	SaveRelationships(ctx context.Context, docID int64, rels []types.EntityRelationship) (int, error)
	GetEntitiesForDocument(ctx context.Context, docID int64) ([]types.DocumentEntity, error)
	FindDocumentsByEntity(ctx context.Context, entity string, project string) ([]int64, error)
	AllEntities(ctx context.Context) ([]types.DocumentEntity, error)

	// Embeddings — vector-similarity capability consumed by internal/embed
	// for the semantic-linking pass and `maintain index` (spec.md §9).
	SaveEmbedding(ctx context.Context, docID int64, model string, vector []float64) error
	GetEmbedding(ctx context.Context, docID int64) ([]float64, bool, error)
	AllEmbeddings(ctx context.Context) (map[int64][]float64, error)
	ClearEmbeddings(ctx context.Context) (int, error)
	EmbeddingStats(ctx context.Context) (types.EmbeddingStats, error)
	SaveChunkEmbeddings(ctx context.Context, docID int64, model string, chunks [][]float64) error

	// Topics (C10)
	SaveTopics(ctx context.Context, topics []types.WikiTopic, members map[int]([]types.WikiTopicMember)) ([]types.WikiTopic, error)
	GetTopics(ctx context.Context) ([]types.WikiTopic, map[int64]int, error) // topic, memberCount-by-id
	GetTopic(ctx context.Context, id int64) (*types.WikiTopic, error)
	GetTopicBySlug(ctx context.Context, slug string) (*types.WikiTopic, error)
	GetTopicDocs(ctx context.Context, topicID int64) ([]int64, error)
	GetTopicMembers(ctx context.Context, topicID int64) ([]types.WikiTopicMember, error)
	SetTopicStatus(ctx context.Context, topicID int64, status types.TopicStatus) error
	SetTopicModelOverride(ctx context.Context, topicID int64, model string) error
	SetTopicEditorialPrompt(ctx context.Context, topicID int64, prompt string) error
	RenameTopic(ctx context.Context, topicID int64, newLabel, newSlug string) error
	SetMemberWeight(ctx context.Context, topicID, docID int64, weight float64) error
	SetMemberIncluded(ctx context.Context, topicID, docID int64, included bool) error
	MergeTopics(ctx context.Context, winnerID, loserID int64, newLabel string) error
	SplitTopic(ctx context.Context, topicID int64, movingDocIDs []int64, newLabel, newSlug string) (int64, error)

	// Articles (C13)
	GetArticleByTopic(ctx context.Context, topicID int64) (*types.WikiArticle, error)
	GetArticle(ctx context.Context, id int64) (*types.WikiArticle, error)
	SaveArticle(ctx context.Context, article *types.WikiArticle, sources []types.WikiArticleSource) (int64, error)
	MarkStale(ctx context.Context, docID int64) (int, error)
	RateArticle(ctx context.Context, articleID int64, rating int) error
	GetArticleSources(ctx context.Context, articleID int64) ([]types.WikiArticleSource, error)
	SetSourceExcluded(ctx context.Context, articleID, docID int64, excluded bool) error
	ListArticles(ctx context.Context) ([]types.WikiArticle, error)

	// Runs
	CreateWikiRun(ctx context.Context, run *types.WikiRun) error
	CompleteWikiRun(ctx context.Context, run *types.WikiRun) error
	ListWikiRuns(ctx context.Context, limit int) ([]types.WikiRun, error)

	// Generic key-value (config/metadata)
	SetConfig(ctx context.Context, key, value string) error
	GetConfig(ctx context.Context, key string) (string, error)

	// Access-count flush sink for the C3 write-behind buffer.
	FlushAccessCounts(ctx context.Context, counts map[int64]int64) error

	// Tasks (external collaborator, read-only for analyzers)
	AllTasks(ctx context.Context) ([]types.Task, error)

	// UnderlyingDB exposes the raw *sql.DB for analyzer packages that need
	// direct read-only SQL (C9), mirroring the teacher's UnderlyingDB escape
	// hatch used by its devlog sync code.
	UnderlyingDB() interface{}
}
