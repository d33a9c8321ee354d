package synth

import (
	"strings"
	"testing"

	"github.com/kgraphdb/kgraph/internal/privacy"
)

func TestRouteStuffBelowThreshold(t *testing.T) {
	sources := []Source{{Content: strings.Repeat("a", 100)}}
	if got := route(sources); got != StrategyStuff {
		t.Errorf("route() = %q, want stuff", got)
	}
}

func TestRouteHierarchicalAboveThreshold(t *testing.T) {
	sources := []Source{{Content: strings.Repeat("a", stuffThresholdChars+1)}}
	if got := route(sources); got != StrategyHierarchical {
		t.Errorf("route() = %q, want hierarchical", got)
	}
}

func TestChunkSourcesSplitsBySize(t *testing.T) {
	sources := make([]Source, 12)
	chunks := chunkSources(sources, 5)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 5 || len(chunks[1]) != 5 || len(chunks[2]) != 2 {
		t.Errorf("unexpected chunk sizes: %d/%d/%d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestDeriveTitleJoinsParts(t *testing.T) {
	got := deriveTitle("knowledge graph / entity matching")
	want := "Knowledge Graph: Entity Matching"
	if got != want {
		t.Errorf("deriveTitle() = %q, want %q", got, want)
	}
}

func TestBuildOutlineScalesSections(t *testing.T) {
	small := buildOutline("topic", 2, nil)
	if len(small.Sections) != 3 {
		t.Errorf("expected 3 sections for small topic, got %d: %v", len(small.Sections), small.Sections)
	}
	big := buildOutline("topic", 10, nil)
	want := []string{"Overview", "Key Concepts", "Architecture & Design Decisions", "Implementation Details", "Related Topics"}
	if len(big.Sections) != len(want) {
		t.Errorf("expected %d sections for large topic, got %d: %v", len(want), len(big.Sections), big.Sections)
	}
}

func TestBuildOutlineCapsFocusEntitiesAtEight(t *testing.T) {
	entities := make([]string, 20)
	for i := range entities {
		entities[i] = "entity"
	}
	o := buildOutline("topic", 1, entities)
	if len(o.FocusEntities) != 8 {
		t.Errorf("expected focus entities capped at 8, got %d", len(o.FocusEntities))
	}
}

func TestPricingForKnownTiers(t *testing.T) {
	if p := pricingFor("claude-opus-4"); p.InputPerMillion != 15 {
		t.Errorf("expected opus pricing, got %+v", p)
	}
	if p := pricingFor("claude-haiku-4"); p.InputPerMillion != 0.25 {
		t.Errorf("expected haiku pricing, got %+v", p)
	}
}

func TestPricingForUnknownDefaultsToSonnet(t *testing.T) {
	p := pricingFor("some-unknown-model")
	if p.InputPerMillion != 3 {
		t.Errorf("expected sonnet default, got %+v", p)
	}
}

func TestEstimateCost(t *testing.T) {
	cost := estimateCost("sonnet", 1_000_000, 1_000_000)
	want := 3.0 + 15.0
	if cost != want {
		t.Errorf("estimateCost() = %f, want %f", cost, want)
	}
}

func TestEstimateDryRunTokensCapsOutput(t *testing.T) {
	input, output := estimateDryRunTokens(100_000)
	if input != 100_000/4+500 {
		t.Errorf("unexpected input estimate: %d", input)
	}
	if output != 4000 {
		t.Errorf("expected output capped at 4000, got %d", output)
	}
}

func TestEstimateDryRunTokensSmallDoc(t *testing.T) {
	input, output := estimateDryRunTokens(1000)
	wantOutput := input / 2
	if output != wantOutput {
		t.Errorf("estimateDryRunTokens output = %d, want %d", output, wantOutput)
	}
}

func TestCombinedSourceHashStableUnderReordering(t *testing.T) {
	a := []Source{{DocumentID: 1, ContentHash: "aaa"}, {DocumentID: 2, ContentHash: "bbb"}}
	b := []Source{{DocumentID: 2, ContentHash: "bbb"}, {DocumentID: 1, ContentHash: "aaa"}}
	if combinedSourceHash(a) != combinedSourceHash(b) {
		t.Error("expected combinedSourceHash to be order-independent")
	}
}

func TestCombinedSourceHashChangesWithContent(t *testing.T) {
	a := []Source{{DocumentID: 1, ContentHash: "aaa"}}
	b := []Source{{DocumentID: 1, ContentHash: "zzz"}}
	if combinedSourceHash(a) == combinedSourceHash(b) {
		t.Error("expected combinedSourceHash to change when content hash changes")
	}
}

func TestBuildSystemPromptIncludesOutlineAndPrivacy(t *testing.T) {
	outline := Outline{Title: "My Topic", Sections: []string{"Overview"}, FocusEntities: []string{"Foo"}}
	got := buildSystemPrompt(outline, privacy.AudienceTeam, "")
	if !strings.Contains(got, "My Topic") {
		t.Error("expected system prompt to include the suggested title")
	}
	if !strings.Contains(got, "Foo") {
		t.Error("expected system prompt to include focus entities")
	}
	if !strings.Contains(got, "no preamble") {
		t.Error("expected system prompt to state the no-preamble rule")
	}
}

func TestBuildSystemPromptAppendsEditorialGuidance(t *testing.T) {
	outline := Outline{Title: "T", Sections: []string{"Overview"}}
	got := buildSystemPrompt(outline, privacy.AudienceMe, "Focus on the migration story.")
	if !strings.Contains(got, "Editorial Guidance") {
		t.Error("expected editorial guidance section when an editorial prompt is set")
	}
	if !strings.Contains(got, "Focus on the migration story.") {
		t.Error("expected editorial prompt text to be included")
	}
}

func TestBuildUserMessageSeparatesSourcesWithDashes(t *testing.T) {
	sources := []Source{{Title: "A", Content: "one"}, {Title: "B", Content: "two"}}
	got := buildUserMessage(sources)
	if !strings.Contains(got, "---") {
		t.Error("expected sources to be separated by ---")
	}
	if !strings.Contains(got, "Source 1: A") || !strings.Contains(got, "Source 2: B") {
		t.Error("expected numbered source headers")
	}
}

func TestH1PatternExtractsTitle(t *testing.T) {
	content := "# Knowledge Graph Core\n\nSome body text.\n"
	m := h1Pattern.FindStringSubmatch(content)
	if m == nil || m[1] != "Knowledge Graph Core" {
		t.Errorf("expected h1Pattern to extract title, got %v", m)
	}
}
