package validation

import (
	"strings"
	"testing"

	"github.com/kgraphdb/kgraph/internal/types"
)

func TestDefaultAcceptsValidDocument(t *testing.T) {
	err := Default()(&types.Document{Title: "Notes", Content: "hello"})
	if err != nil {
		t.Fatalf("expected valid document to pass, got %v", err)
	}
}

func TestTitleRequiredRejectsBlank(t *testing.T) {
	cases := []string{"", "   ", "\t\n"}
	for _, title := range cases {
		if err := TitleRequired()(&types.Document{Title: title}); err == nil {
			t.Fatalf("expected error for blank title %q", title)
		}
	}
}

func TestTitleLengthRejectsOverlong(t *testing.T) {
	long := strings.Repeat("a", MaxTitleLength+1)
	if err := TitleLength()(&types.Document{Title: long}); err == nil {
		t.Fatalf("expected error for title longer than %d", MaxTitleLength)
	}
	ok := strings.Repeat("a", MaxTitleLength)
	if err := TitleLength()(&types.Document{Title: ok}); err != nil {
		t.Fatalf("expected title of exactly %d to pass, got %v", MaxTitleLength, err)
	}
}

func TestContentLengthRejectsOverlong(t *testing.T) {
	long := strings.Repeat("a", MaxContentLength+1)
	if err := ContentLength()(&types.Document{Content: long}); err == nil {
		t.Fatalf("expected error for content longer than %d", MaxContentLength)
	}
}

func TestChainStopsAtFirstError(t *testing.T) {
	calls := 0
	counting := func(doc *types.Document) error {
		calls++
		return nil
	}

	chain := Chain(TitleRequired(), counting)
	if err := chain(&types.Document{Title: ""}); err == nil {
		t.Fatalf("expected chain to fail on first validator")
	}
	if calls != 0 {
		t.Fatalf("expected second validator to be skipped after first failure, got %d calls", calls)
	}
}
