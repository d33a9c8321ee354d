package export

import (
	"strings"
	"testing"
	"time"

	"github.com/kgraphdb/kgraph/internal/entityindex"
	"github.com/kgraphdb/kgraph/internal/types"
)

func TestErrorPolicyIsValid(t *testing.T) {
	if !PolicyStrict.IsValid() || !PolicyBestEffort.IsValid() {
		t.Error("expected strict and best-effort to be valid policies")
	}
	if ErrorPolicy("bogus").IsValid() {
		t.Error("expected unrecognized policy to be invalid")
	}
}

func TestRecordErrStrictAborts(t *testing.T) {
	cfg := &Config{Policy: PolicyStrict}
	result := &Result{}
	if !recordErr(cfg, result, errTest) {
		t.Error("expected strict policy to signal abort")
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 recorded error, got %d", len(result.Errors))
	}
}

func TestRecordErrBestEffortContinues(t *testing.T) {
	cfg := &Config{Policy: PolicyBestEffort}
	result := &Result{}
	if recordErr(cfg, result, errTest) {
		t.Error("expected best-effort policy not to signal abort")
	}
}

var errTest = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

func TestRenderIndexSortsByTitle(t *testing.T) {
	md := RenderIndex([]indexArticleEntry{
		{Title: "Zeta", Slug: "zeta"},
		{Title: "Alpha", Slug: "alpha"},
	})
	alphaPos := strings.Index(md, "Alpha")
	zetaPos := strings.Index(md, "Zeta")
	if alphaPos == -1 || zetaPos == -1 || alphaPos > zetaPos {
		t.Errorf("expected Alpha before Zeta in index, got:\n%s", md)
	}
}

func TestRenderIndexEmpty(t *testing.T) {
	md := RenderIndex(nil)
	if !strings.Contains(md, "No articles generated yet") {
		t.Error("expected empty-state message")
	}
}

func TestRenderEntityIndexSeparatesTiers(t *testing.T) {
	entries := []entityindex.Entry{
		{Entity: "PostgreSQL", Tier: entityindex.TierA},
		{Entity: "minor-thing", Tier: entityindex.TierB},
		{Entity: "noise", Tier: entityindex.TierNone},
	}
	md := RenderEntityIndex(entries, func(s string) string { return strings.ToLower(s) })
	if !strings.Contains(md, "[PostgreSQL](postgresql.md)") {
		t.Errorf("expected Tier-A entity linked, got:\n%s", md)
	}
	if !strings.Contains(md, "minor-thing") {
		t.Error("expected Tier-B entity listed in other-mentions")
	}
	if strings.Contains(md, "noise") {
		t.Error("expected Tier-None entity to be excluded entirely")
	}
}

func TestBuildSiteConfigNavStructure(t *testing.T) {
	cfg := BuildSiteConfig("material", []articleNavEntry{{Title: "Foo", Slug: "foo"}})
	if cfg.SiteName == "" {
		t.Error("expected a site name")
	}
	if len(cfg.Nav) != 3 {
		t.Fatalf("expected 3 top-level nav entries, got %d", len(cfg.Nav))
	}
}

func TestRenderSiteConfigProducesYAML(t *testing.T) {
	cfg := BuildSiteConfig("material", nil)
	out, err := RenderSiteConfig(cfg)
	if err != nil {
		t.Fatalf("RenderSiteConfig() error = %v", err)
	}
	if !strings.Contains(out, "site_name") || !strings.Contains(out, "theme") {
		t.Errorf("expected site_name and theme in rendered config:\n%s", out)
	}
}

func TestRenderArticleIncludesFrontMatterAndBody(t *testing.T) {
	article := types.WikiArticle{
		TopicID:   5,
		Version:   2,
		ModelID:   "sonnet",
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	sources := []types.WikiArticleSource{
		{DocumentID: 1, Excluded: false},
		{DocumentID: 2, Excluded: true},
	}
	out, err := RenderArticle(article, "My Article", sources, "# My Article\n\nBody text.\n")
	if err != nil {
		t.Fatalf("RenderArticle() error = %v", err)
	}
	if !strings.HasPrefix(out, "---\n") {
		t.Error("expected front matter delimiter at start")
	}
	if !strings.Contains(out, "topic_id: 5") {
		t.Errorf("expected topic_id in front matter:\n%s", out)
	}
	if !strings.Contains(out, "Body text.") {
		t.Error("expected article body preserved")
	}
	if strings.Contains(out, "- 2\n") {
		t.Error("expected excluded source to be omitted from the sources list")
	}
}
