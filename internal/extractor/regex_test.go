package extractor

import "testing"

func TestRegexExtractorHeadings(t *testing.T) {
	text := "# Overview\n\n## Getting Started\n\nSome body text."
	r := NewRegexExtractor("")
	entities, err := r.Extract(text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	var found bool
	for _, e := range entities {
		if e.Name == "getting started" {
			found = true
			if e.Type != "heading" {
				t.Errorf("expected type heading, got %s", e.Type)
			}
			if e.Confidence != 0.95 {
				t.Errorf("expected confidence 0.95, got %v", e.Confidence)
			}
		}
		if e.Name == "overview" {
			t.Error("heading stopword 'overview' should have been dropped")
		}
	}
	if !found {
		t.Error("expected to find 'getting started' heading entity")
	}
}

func TestRegexExtractorBacktickTechTerm(t *testing.T) {
	text := "Use the `DocumentStore` type to persist records."
	r := NewRegexExtractor("")
	entities, err := r.Extract(text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if !hasEntity(entities, "documentstore", "tech_term") {
		t.Errorf("expected tech_term entity 'documentstore', got %+v", entities)
	}
}

func TestRegexExtractorBacktickShellCommandExcluded(t *testing.T) {
	text := "Run `go test ./...` before committing."
	r := NewRegexExtractor("")
	entities, err := r.Extract(text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for _, e := range entities {
		if e.Type == "tech_term" {
			t.Errorf("shell-like backtick span should not be extracted as tech_term: %+v", e)
		}
	}
}

func TestRegexExtractorBoldConcept(t *testing.T) {
	text := "The **knowledge graph** links related documents."
	r := NewRegexExtractor("")
	entities, err := r.Extract(text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !hasEntity(entities, "knowledge graph", "concept") {
		t.Errorf("expected concept entity 'knowledge graph', got %+v", entities)
	}
}

func TestRegexExtractorProperNoun(t *testing.T) {
	text := "We discussed the Knowledge Graph Core with the team."
	r := NewRegexExtractor("")
	entities, err := r.Extract(text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !hasEntity(entities, "knowledge graph core", "proper_noun") {
		t.Errorf("expected proper_noun entity 'knowledge graph core', got %+v", entities)
	}
}

func TestRegexExtractorExcludesDocumentTitle(t *testing.T) {
	text := "# My Document\n\nMy Document covers the basics."
	r := NewRegexExtractor("My Document")
	entities, err := r.Extract(text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for _, e := range entities {
		if e.Name == "my document" {
			t.Errorf("document's own title should be excluded, got %+v", e)
		}
	}
}

func TestRegexExtractorDedupKeepsHigherConfidence(t *testing.T) {
	// "Tech Term" appears both as a heading (0.95) and a proper noun (0.7);
	// the heading confidence should win.
	text := "# Tech Term\n\nTech Term is mentioned again here in prose."
	r := NewRegexExtractor("")
	entities, err := r.Extract(text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for _, e := range entities {
		if e.Name == "tech term" && e.Confidence != 0.95 {
			t.Errorf("expected the heading's higher confidence to win, got %v", e.Confidence)
		}
	}
}

func hasEntity(entities []Entity, name, typ string) bool {
	for _, e := range entities {
		if e.Name == name && e.Type == typ {
			return true
		}
	}
	return false
}
