package extractor

import (
	"context"
	"time"
)

// Pipeline runs the regex tier always and the LLM tier when configured,
// merging entities by keeping the higher-confidence entry per normalized
// name - the same merge rule as the teacher's internal/extractor/pipeline.go
// Pipeline.Run, generalized to an arbitrary extractor list.
type Pipeline struct {
	regex *RegexExtractor
	llm   *LLMExtractor
}

// NewPipeline returns a Pipeline that always runs a regex tier scoped to
// docTitle, and additionally runs llm (if non-nil) for entities and
// relationships.
func NewPipeline(docTitle string, llm *LLMExtractor) *Pipeline {
	return &Pipeline{
		regex: NewRegexExtractor(docTitle),
		llm:   llm,
	}
}

// Run extracts entities (regex always, LLM when configured) and
// relationships (LLM only - spec.md §4.6 says the regex tier never infers
// relationships, only bare entities).
func (p *Pipeline) Run(ctx context.Context, text string) (*Result, error) {
	start := time.Now()

	merged := make(map[string]Entity)
	regexEntities, err := p.regex.Extract(text)
	if err != nil {
		return nil, err
	}
	for _, e := range regexEntities {
		merged[e.Name] = e
	}

	var relationships []Relationship
	usedLLM := false
	if p.llm != nil {
		llmEntities, rels, err := p.llm.ExtractWithRelationships(ctx, text)
		if err != nil {
			// The LLM tier is best-effort: a subprocess failure (missing
			// binary, timeout, malformed response) degrades to regex-only
			// results rather than failing the whole pass.
			return &Result{
				Entities:      mergedValues(merged),
				Relationships: nil,
				Duration:      time.Since(start),
				UsedLLM:       false,
			}, nil
		}
		usedLLM = true
		relationships = rels
		for _, e := range llmEntities {
			if existing, ok := merged[e.Name]; !ok || e.Confidence > existing.Confidence {
				merged[e.Name] = e
			}
		}
	}

	return &Result{
		Entities:      mergedValues(merged),
		Relationships: relationships,
		Duration:      time.Since(start),
		UsedLLM:       usedLLM,
	}, nil
}

func mergedValues(m map[string]Entity) []Entity {
	out := make([]Entity, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	return out
}
