package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/kgraphdb/kgraph/internal/llmcli"
)

// llmRunner is the subset of llmcli.Client the LLM extraction tier needs,
// narrowed so this package doesn't depend on llmcli's subprocess plumbing
// directly in its tests.
type llmRunner interface {
	ExtractEntities(ctx context.Context, model, prompt string) ([]llmcli.ExtractedEntity, []llmcli.ExtractedRelationship, llmcli.Usage, error)
}

// LLMExtractor is the optional second tier (spec.md §4.6): it asks the
// configured LLM CLI for entities AND relationships in one call, replacing
// the teacher's ollama-backed tier (internal/extractor/ollama.go) with the
// internal/llmcli subprocess contract.
type LLMExtractor struct {
	client llmRunner
	model  string
}

// NewLLMExtractor returns an LLMExtractor that calls client with model for
// every Extract.
func NewLLMExtractor(client llmRunner, model string) *LLMExtractor {
	return &LLMExtractor{client: client, model: model}
}

func (e *LLMExtractor) Name() string { return "llm" }

func (e *LLMExtractor) Extract(text string) ([]Entity, error) {
	entities, _, err := e.extract(context.Background(), text)
	return entities, err
}

// ExtractWithRelationships runs the LLM tier and also returns the
// relationships it inferred, since spec.md §4.6 reserves relationship
// extraction for the LLM tier only - the plain Extract method exists to
// satisfy the shared Extractor interface used by the regex tier.
func (e *LLMExtractor) ExtractWithRelationships(ctx context.Context, text string) ([]Entity, []Relationship, error) {
	return e.extract(ctx, text)
}

func (e *LLMExtractor) extract(ctx context.Context, text string) ([]Entity, []Relationship, error) {
	prompt := buildExtractionPrompt(text)
	extracted, relationships, _, err := e.client.ExtractEntities(ctx, e.model, prompt)
	if err != nil {
		return nil, nil, fmt.Errorf("llm extraction: %w", err)
	}

	entities := make([]Entity, 0, len(extracted))
	for _, ex := range extracted {
		name := normalizeEntity(ex.Entity)
		if len(name) < minEntityLength {
			continue
		}
		entities = append(entities, Entity{
			Name:       name,
			Type:       ex.Type,
			Confidence: ex.Confidence,
			Source:     "llm",
		})
	}

	rels := make([]Relationship, 0, len(relationships))
	for _, r := range relationships {
		rels = append(rels, Relationship{
			FromEntity: normalizeEntity(r.Source),
			ToEntity:   normalizeEntity(r.Target),
			Type:       r.RelationshipType,
			Confidence: r.Confidence,
		})
	}

	return entities, rels, nil
}

func buildExtractionPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Extract entities and relationships from the following document. ")
	b.WriteString("Respond with a single JSON object of the form ")
	b.WriteString(`{"entities":[{"entity":"","type":"","confidence":0.0}],`)
	b.WriteString(`"relationships":[{"source":"","target":"","relationship_type":"","confidence":0.0}]}`)
	b.WriteString(" and nothing else.\n\n")
	b.WriteString(text)
	return b.String()
}
