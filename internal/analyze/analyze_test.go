package analyze

import (
	"testing"
	"time"

	"github.com/kgraphdb/kgraph/internal/types"
)

func TestDecayForFreshIsOne(t *testing.T) {
	now := time.Now()
	if s := decayFor(now, now, 30); s < 0.999 {
		t.Errorf("expected fresh document to score ~1, got %v", s)
	}
}

func TestDecayForHalvesAtHalfLife(t *testing.T) {
	now := time.Now()
	s := decayFor(now, now.Add(-30*24*time.Hour), 30)
	if s < 0.49 || s > 0.51 {
		t.Errorf("expected ~0.5 at the 30-day half-life, got %v", s)
	}
}

func TestDecayForMissingTimestampIsOld(t *testing.T) {
	now := time.Now()
	s := decayFor(now, time.Time{}, 30)
	if s > 0.01 {
		t.Errorf("expected a missing timestamp to score as very old, got %v", s)
	}
}

func TestClamp01(t *testing.T) {
	if clamp01(-1) != 0 {
		t.Error("expected negative values clamped to 0")
	}
	if clamp01(2) != 1 {
		t.Error("expected values above 1 clamped to 1")
	}
}

func TestDetectBurstFlagsTightCluster(t *testing.T) {
	base := time.Now()
	children := []types.Task{
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(time.Hour)},
		{ID: "c", CreatedAt: base.Add(2 * time.Hour)},
	}
	_, burst := detectBurst(children)
	if !burst {
		t.Error("expected a tightly-clustered creation burst to be flagged")
	}
}

func TestDetectBurstIgnoresSpreadOutChildren(t *testing.T) {
	base := time.Now()
	children := []types.Task{
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(10 * 24 * time.Hour)},
		{ID: "c", CreatedAt: base.Add(20 * 24 * time.Hour)},
	}
	_, burst := detectBurst(children)
	if burst {
		t.Error("expected spread-out creation to not be flagged as a burst")
	}
}

func TestTagGapsFlagsLowUsage(t *testing.T) {
	tags := []types.Tag{
		{Name: "common", UsageCount: 100},
		{Name: "common2", UsageCount: 95},
		{Name: "rare", UsageCount: 1},
	}
	gaps := tagGaps(tags)
	found := false
	for _, g := range gaps {
		if g.Tag == "rare" && g.Severity == types.SeverityHigh {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 'rare' tag to be flagged high severity, got %+v", gaps)
	}
}

func TestOrphanDocsFindsUnlinked(t *testing.T) {
	docs := []types.Document{{ID: 1}, {ID: 2}, {ID: 3}}
	links := []types.DocumentLink{{SourceID: 1, TargetID: 2}}
	orphans := orphanDocs(docs, links)
	if len(orphans) != 1 || orphans[0] != 3 {
		t.Errorf("expected doc 3 to be the only orphan, got %v", orphans)
	}
}
