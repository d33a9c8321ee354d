package analyze

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kgraphdb/kgraph/internal/storage"
	"github.com/kgraphdb/kgraph/internal/types"
)

// DefaultGapStaleDays is the age past which a topic or tag's newest document
// counts as stale for gap-reporting purposes.
const DefaultGapStaleDays = 60

// Gaps reports undercovered areas of the corpus: tags with unusually few
// documents, link-sink documents with heavy inbound traffic but no outbound
// links, orphan documents with no links at all, stale topics, and
// project/task coverage imbalances.
func Gaps(ctx context.Context, store storage.Storage, staleDays int) (*types.GapReport, error) {
	if staleDays <= 0 {
		staleDays = DefaultGapStaleDays
	}

	docs, err := store.AllDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}
	tags, err := store.ListAllTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}
	links, err := store.AllLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading links: %w", err)
	}
	tasks, err := store.AllTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}

	report := &types.GapReport{StaleDays: staleDays}

	report.TagGaps = tagGaps(tags)
	report.LinkSinks = linkSinks(docs, links)
	report.OrphanDocs = orphanDocs(docs, links)
	staleTopics, err := staleTagTopics(ctx, store, tags, staleDays)
	if err != nil {
		return nil, err
	}
	report.StaleTopics = staleTopics
	report.ProjectImbalances = projectImbalances(docs, tasks)

	return report, nil
}

func tagGaps(tags []types.Tag) []types.TagGap {
	if len(tags) == 0 {
		return nil
	}
	var total int64
	for _, t := range tags {
		total += t.UsageCount
	}
	mean := float64(total) / float64(len(tags))
	if mean <= 1 {
		return nil
	}

	var gaps []types.TagGap
	for _, t := range tags {
		count := int(t.UsageCount)
		if float64(count) >= mean/2 {
			continue
		}
		severity := types.SeverityMedium
		if count <= 1 {
			severity = types.SeverityHigh
		}
		gaps = append(gaps, types.TagGap{Tag: t.Name, Count: count, Severity: severity})
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i].Count < gaps[j].Count })
	return gaps
}

func linkSinks(docs []types.Document, links []types.DocumentLink) []types.LinkSink {
	incoming := make(map[int64]int)
	outgoing := make(map[int64]int)
	for _, l := range links {
		incoming[l.TargetID]++
		outgoing[l.SourceID]++
	}

	titles := make(map[int64]string, len(docs))
	for _, d := range docs {
		titles[d.ID] = d.Title
	}

	var sinks []types.LinkSink
	for id, in := range incoming {
		if outgoing[id] > 0 || in < 2 {
			continue
		}
		severity := types.SeverityMedium
		if in >= 5 {
			severity = types.SeverityHigh
		}
		sinks = append(sinks, types.LinkSink{DocumentID: id, Title: titles[id], Incoming: in, Severity: severity})
	}
	sort.Slice(sinks, func(i, j int) bool { return sinks[i].Incoming > sinks[j].Incoming })
	return sinks
}

func orphanDocs(docs []types.Document, links []types.DocumentLink) []int64 {
	linked := make(map[int64]bool)
	for _, l := range links {
		linked[l.SourceID] = true
		linked[l.TargetID] = true
	}
	var orphans []int64
	for _, d := range docs {
		if !linked[d.ID] {
			orphans = append(orphans, d.ID)
		}
	}
	return orphans
}

func staleTagTopics(ctx context.Context, store storage.Storage, tags []types.Tag, staleDays int) ([]types.StaleTopic, error) {
	now := time.Now()
	var stale []types.StaleTopic
	for _, t := range tags {
		ids, err := store.DocsWithTag(ctx, t.Name)
		if err != nil {
			return nil, fmt.Errorf("loading docs for tag %s: %w", t.Name, err)
		}
		var newest time.Time
		for _, id := range ids {
			doc, err := store.GetDocument(ctx, id)
			if err != nil {
				continue
			}
			if doc.UpdatedAt.After(newest) {
				newest = doc.UpdatedAt
			}
		}
		if newest.IsZero() {
			continue
		}
		ageDays := int(now.Sub(newest).Hours() / 24)
		if ageDays < staleDays {
			continue
		}
		severity := types.SeverityMedium
		if ageDays > 120 {
			severity = types.SeverityHigh
		}
		stale = append(stale, types.StaleTopic{Tag: t.Name, AgeDays: ageDays, Severity: severity})
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].AgeDays > stale[j].AgeDays })
	return stale, nil
}

func projectImbalances(docs []types.Document, tasks []types.Task) []types.ProjectImbalance {
	docCounts := make(map[string]int)
	for _, d := range docs {
		if d.Project != "" {
			docCounts[d.Project]++
		}
	}
	taskCounts := make(map[string]int)
	for _, t := range tasks {
		if t.Project != "" {
			taskCounts[t.Project]++
		}
	}

	var imbalances []types.ProjectImbalance
	for project, taskCount := range taskCounts {
		docCount := docCounts[project]
		ratio := float64(docCount) / float64(taskCount)
		if ratio >= 0.5 {
			continue
		}
		severity := types.SeverityMedium
		if ratio < 0.2 {
			severity = types.SeverityHigh
		}
		imbalances = append(imbalances, types.ProjectImbalance{
			Project:   project,
			DocCount:  docCount,
			TaskCount: taskCount,
			Ratio:     ratio,
			Severity:  severity,
		})
	}
	sort.Slice(imbalances, func(i, j int) bool { return imbalances[i].Ratio < imbalances[j].Ratio })
	return imbalances
}
