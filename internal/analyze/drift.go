package analyze

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kgraphdb/kgraph/internal/storage"
	"github.com/kgraphdb/kgraph/internal/types"
)

// DefaultDriftThresholdDays matches spec.md §4.9's default idle window for
// flagging an epic or task as abandoned.
const DefaultDriftThresholdDays = 14

// Drift surfaces task/epic structures that have gone idle past
// thresholdDays, by reading the external Task table (storage.Storage never
// mutates it).
func Drift(ctx context.Context, store storage.Storage, thresholdDays int) (*types.DriftReport, error) {
	if thresholdDays <= 0 {
		thresholdDays = DefaultDriftThresholdDays
	}

	tasks, err := store.AllTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}

	now := time.Now()
	threshold := time.Duration(thresholdDays) * 24 * time.Hour

	byParent := make(map[string][]types.Task)
	byID := make(map[string]types.Task)
	for _, t := range tasks {
		byID[t.ID] = t
		if t.ParentTaskID != "" {
			byParent[t.ParentTaskID] = append(byParent[t.ParentTaskID], t)
		}
		if t.EpicKey != "" {
			byParent[t.EpicKey] = append(byParent[t.EpicKey], t)
		}
	}

	report := &types.DriftReport{ThresholdDays: thresholdDays}

	for _, t := range tasks {
		if t.Type != types.TaskTypeEpic || t.Status == "closed" || t.Status == "done" {
			continue
		}
		children := byParent[t.ID]
		if len(children) == 0 {
			continue
		}
		idleDays := daysIdle(now, newestUpdate(children), threshold)
		if idleDays < 0 {
			continue
		}
		report.StaleEpics = append(report.StaleEpics, types.StaleEpic{
			EpicID:     t.ID,
			Title:      t.ID,
			IdleDays:   idleDays,
			ChildCount: len(children),
		})

		burstDays, hasBurst := detectBurst(children)
		if hasBurst {
			report.BurstEpics = append(report.BurstEpics, types.BurstEpic{
				EpicID:     t.ID,
				ChildCount: len(children),
				BurstDays:  burstDays,
				IdleDays:   idleDays,
			})
		}
	}

	orphanThresholdDays := thresholdDays / 2
	if orphanThresholdDays < 7 {
		orphanThresholdDays = 7
	}
	orphanThreshold := time.Duration(orphanThresholdDays) * 24 * time.Hour

	for _, t := range tasks {
		if t.Type != types.TaskTypeTask || t.Status != "active" {
			continue
		}
		idle := now.Sub(t.UpdatedAt)
		if idle <= orphanThreshold {
			continue
		}
		idleDays := int(idle.Hours() / 24)
		report.OrphanedActive = append(report.OrphanedActive, types.OrphanedTask{TaskID: t.ID, IdleDays: idleDays})

		if t.SourceDocID != nil {
			report.StaleLinkedDocs = append(report.StaleLinkedDocs, types.StaleLinkedDoc{
				DocumentID: *t.SourceDocID,
				TaskID:     t.ID,
			})
		}
	}

	sort.Slice(report.StaleEpics, func(i, j int) bool { return report.StaleEpics[i].IdleDays > report.StaleEpics[j].IdleDays })
	sort.Slice(report.OrphanedActive, func(i, j int) bool { return report.OrphanedActive[i].IdleDays > report.OrphanedActive[j].IdleDays })

	return report, nil
}

func newestUpdate(tasks []types.Task) time.Time {
	var newest time.Time
	for _, t := range tasks {
		if t.UpdatedAt.After(newest) {
			newest = t.UpdatedAt
		}
	}
	return newest
}

func daysIdle(now, last time.Time, threshold time.Duration) int {
	if last.IsZero() {
		return -1
	}
	idle := now.Sub(last)
	if idle <= threshold {
		return -1
	}
	return int(idle.Hours() / 24)
}

// detectBurst flags an epic whose children were all created within a short
// window (a "burst" of task creation) followed by silence - a common sign
// of planning that was never followed through on.
func detectBurst(children []types.Task) (int, bool) {
	if len(children) < 3 {
		return 0, false
	}
	var earliest, latest time.Time
	for _, c := range children {
		if earliest.IsZero() || c.CreatedAt.Before(earliest) {
			earliest = c.CreatedAt
		}
		if c.CreatedAt.After(latest) {
			latest = c.CreatedAt
		}
	}
	burstDays := int(latest.Sub(earliest).Hours() / 24)
	return burstDays, burstDays <= 7
}
