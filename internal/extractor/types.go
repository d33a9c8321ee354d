// Package extractor implements entity and relationship extraction over
// document content (spec.md §4.6). It keeps the teacher's two-tier shape
// from internal/extractor: a pure regex/heuristic Extractor that always
// runs, and an optional LLM-backed Extractor wired to internal/llmcli
// (replacing the teacher's ollama-backed tier), merged by a Pipeline that
// keeps the higher-confidence entity on name collisions.
package extractor

import "time"

// Entity is one heuristically or LLM-extracted entity.
type Entity struct {
	Name       string
	Type       string
	Confidence float64
	Source     string // "regex" or "llm"
}

// Extractor is the interface for one extraction strategy.
type Extractor interface {
	Extract(text string) ([]Entity, error)
	Name() string
}

// Relationship is a typed edge between two entity names, produced only by
// the LLM extractor (spec.md §4.6: regex extraction never infers
// relationships, only bare entities).
type Relationship struct {
	FromEntity string
	ToEntity   string
	Type       string
	Confidence float64
}

// Result bundles a full extraction pass's output and timing, returned by
// Pipeline.Run.
type Result struct {
	Entities      []Entity
	Relationships []Relationship
	Duration      time.Duration
	UsedLLM       bool
}
