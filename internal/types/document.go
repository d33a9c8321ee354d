// Package types defines the core data model shared across the knowledge
// graph: documents, tags, links, entities, wiki topics/articles, and the
// analyzer report shapes. It mirrors the TypedDicts of the source design in
// explicit Go structs rather than untyped maps.
package types

import "time"

// DocKind discriminates how a document entered the store.
type DocKind string

const (
	DocKindUser      DocKind = "user"
	DocKindWiki      DocKind = "wiki"
	DocKindSynthesis DocKind = "synthesis"
)

// Document is the primary unit of storage.
type Document struct {
	ID          int64
	Title       string
	Content     string
	Project     string // empty means no project
	Kind        DocKind
	CreatedAt   time.Time
	UpdatedAt   time.Time
	AccessedAt  time.Time
	AccessCount int64
	Deleted     bool
	DeletedAt   *time.Time
}

// DocumentListItem is the lightweight projection used by list_documents.
type DocumentListItem struct {
	ID        int64
	Title     string
	Project   string
	Kind      DocKind
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tag is an interned name with a usage counter, many-to-many with documents.
type Tag struct {
	ID         int64
	Name       string
	UsageCount int64
}

// LinkMethod discriminates how a document link was discovered.
type LinkMethod string

const (
	LinkMethodTitleMatch  LinkMethod = "title_match"
	LinkMethodEntityMatch LinkMethod = "entity_match"
	LinkMethodAuto        LinkMethod = "auto"
	LinkMethodManual      LinkMethod = "manual"
)

// DocumentLink is a directed edge, queried bidirectionally.
type DocumentLink struct {
	ID          int64
	SourceID    int64
	TargetID    int64
	Score       float64
	Method      LinkMethod
	CreatedAt   time.Time
}

// LinkedDocument is a DocumentLink joined with the endpoint titles, as
// returned by get_links_for_document.
type LinkedDocument struct {
	DocumentLink
	SourceTitle string
	TargetTitle string
}

// EntityType enumerates heuristic and LLM-only entity categories.
type EntityType string

const (
	EntityHeading      EntityType = "heading"
	EntityTechTerm     EntityType = "tech_term"
	EntityConcept      EntityType = "concept"
	EntityProperNoun   EntityType = "proper_noun"
	EntityPerson       EntityType = "person"
	EntityOrganization EntityType = "organization"
	EntityTechnology   EntityType = "technology"
	EntityLocation     EntityType = "location"
	EntityEvent        EntityType = "event"
	EntityProject      EntityType = "project"
	EntityTool         EntityType = "tool"
	EntityAPI          EntityType = "api"
	EntityLibrary      EntityType = "library"
)

// DocumentEntity is a normalized entity string extracted from a document.
type DocumentEntity struct {
	ID         int64
	DocumentID int64
	Entity     string
	Type       EntityType
	Confidence float64
}

// EntityRelationship is a typed edge between two entities within one
// document, produced only by the LLM extraction path.
type EntityRelationship struct {
	ID               int64
	DocumentID       int64
	Source           string
	Target           string
	RelationshipType string
	Confidence       float64
}

// TopicStatus is the editorial state of a discovered cluster.
type TopicStatus string

const (
	TopicActive  TopicStatus = "active"
	TopicSkipped TopicStatus = "skipped"
	TopicPinned  TopicStatus = "pinned"
)

// WikiTopic is a discovered document cluster.
type WikiTopic struct {
	ID              int64
	Slug            string
	Label           string
	Fingerprint     string
	CoherenceScore  float64
	Status          TopicStatus
	ModelOverride   string
	EditorialPrompt string
	CreatedAt       time.Time
}

// WikiTopicMember associates a document with a topic.
type WikiTopicMember struct {
	TopicID        int64
	DocumentID     int64
	RelevanceScore float64
	IsPrimary      bool
}

// WikiArticleTiming holds per-step pipeline timings in milliseconds.
type WikiArticleTiming struct {
	PrepareMS  int64
	RouteMS    int64
	OutlineMS  int64
	WriteMS    int64
	ValidateMS int64
	SaveMS     int64
}

// WikiArticle is the metadata row for a generated article.
type WikiArticle struct {
	ID              int64
	TopicID         int64
	DocumentID      int64
	SourceHash      string
	ModelID         string
	InputTokens     int64
	OutputTokens    int64
	CostUSD         float64
	Version         int64
	IsStale         bool
	StaleReason     string
	PreviousContent string
	Rating          *int
	RatedAt         *time.Time
	Timing          WikiArticleTiming
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// WikiArticleSource is a provenance row per contributing document.
type WikiArticleSource struct {
	ArticleID   int64
	DocumentID  int64
	ContentHash string
	Weight      float64
	Excluded    bool
}

// WikiRun is a batch-generation record.
type WikiRun struct {
	ID           string
	Model        string
	DryRun       bool
	Attempted    int
	Generated    int
	Skipped      int
	TotalTokens  int64
	TotalCostUSD float64
	StartedAt    time.Time
	CompletedAt  *time.Time
}

// TaskType enumerates external task kinds the analyzers read.
type TaskType string

const (
	TaskTypeEpic TaskType = "epic"
	TaskTypeTask TaskType = "task"
)

// Task is an external collaborator table; the core reads it but never
// mutates it.
type Task struct {
	ID            string
	Status        string
	Type          TaskType
	ParentTaskID  string
	EpicKey       string
	SourceDocID   *int64
	Project       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
