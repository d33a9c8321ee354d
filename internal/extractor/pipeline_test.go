package extractor

import (
	"context"
	"testing"

	"github.com/kgraphdb/kgraph/internal/llmcli"
)

type fakeLLMRunner struct {
	entities      []llmcli.ExtractedEntity
	relationships []llmcli.ExtractedRelationship
	err           error
}

func (f *fakeLLMRunner) ExtractEntities(_ context.Context, _, _ string) ([]llmcli.ExtractedEntity, []llmcli.ExtractedRelationship, llmcli.Usage, error) {
	return f.entities, f.relationships, llmcli.Usage{}, f.err
}

func TestPipelineRunRegexOnly(t *testing.T) {
	p := NewPipeline("", nil)
	result, err := p.Run(context.Background(), "# Heading One\n\nSome prose with a **bold concept**.")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.UsedLLM {
		t.Error("expected UsedLLM false with no LLM tier configured")
	}
	if len(result.Relationships) != 0 {
		t.Errorf("expected no relationships from regex-only run, got %v", result.Relationships)
	}
	if !hasEntity(result.Entities, "heading one", "heading") {
		t.Errorf("expected heading entity, got %+v", result.Entities)
	}
}

func TestPipelineRunMergesLLMAndPrefersHigherConfidence(t *testing.T) {
	fake := &fakeLLMRunner{
		entities: []llmcli.ExtractedEntity{
			{Entity: "heading one", Type: "concept", Confidence: 0.99},
			{Entity: "widget service", Type: "component", Confidence: 0.8},
		},
		relationships: []llmcli.ExtractedRelationship{
			{Source: "heading one", Target: "widget service", RelationshipType: "references", Confidence: 0.8},
		},
	}
	llm := NewLLMExtractor(fake, "sonnet")
	p := NewPipeline("", llm)

	result, err := p.Run(context.Background(), "# Heading One\n\nSome prose.")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.UsedLLM {
		t.Error("expected UsedLLM true")
	}
	if len(result.Relationships) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(result.Relationships))
	}

	for _, e := range result.Entities {
		if e.Name == "heading one" && e.Confidence != 0.99 {
			t.Errorf("expected LLM's higher confidence to win for 'heading one', got %v", e.Confidence)
		}
	}
	if !hasEntity(result.Entities, "widget service", "component") {
		t.Errorf("expected LLM-only entity 'widget service' to be present, got %+v", result.Entities)
	}
}

func TestPipelineRunDegradesOnLLMFailure(t *testing.T) {
	fake := &fakeLLMRunner{err: context.DeadlineExceeded}
	llm := NewLLMExtractor(fake, "sonnet")
	p := NewPipeline("", llm)

	result, err := p.Run(context.Background(), "# Heading One\n\nSome prose.")
	if err != nil {
		t.Fatalf("Run should degrade rather than fail, got error: %v", err)
	}
	if result.UsedLLM {
		t.Error("expected UsedLLM false after LLM failure")
	}
	if !hasEntity(result.Entities, "heading one", "heading") {
		t.Errorf("expected regex entities to still be present, got %+v", result.Entities)
	}
}
