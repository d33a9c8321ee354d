package synth

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/kgraphdb/kgraph/internal/cluster"
	"github.com/kgraphdb/kgraph/internal/privacy"
	"github.com/kgraphdb/kgraph/internal/storage"
	"github.com/kgraphdb/kgraph/internal/types"
)

// DefaultModel is used when neither the caller nor the topic specifies one.
const DefaultModel = "sonnet"

var h1Pattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// Generate runs the full PREPARE -> ROUTE -> OUTLINE -> WRITE -> VALIDATE ->
// SAVE -> RETITLE pipeline for one topic (spec.md §4.13).
func Generate(ctx context.Context, store storage.Storage, client synthClient, topicID int64, project string, audience privacy.Audience, modelOverride string, dryRun bool) (*types.WikiArticleResult, error) {
	topic, err := store.GetTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}

	if topic.Status == types.TopicSkipped {
		return &types.WikiArticleResult{TopicID: topicID, Skipped: true, SkipReason: "topic is skipped"}, nil
	}

	model := modelOverride
	if model == "" {
		model = topic.ModelOverride
	}
	if model == "" {
		model = DefaultModel
	}

	var timing types.WikiArticleTiming

	start := time.Now()
	pr, err := prepare(ctx, store, topic)
	timing.PrepareMS = time.Since(start).Milliseconds()
	if err != nil {
		return nil, err
	}
	if pr.Skip {
		return &types.WikiArticleResult{TopicID: topicID, Skipped: true, SkipReason: pr.SkipReason, Timing: timing}, nil
	}
	if len(pr.Sources) == 0 {
		return &types.WikiArticleResult{TopicID: topicID, Skipped: true, SkipReason: "no primary sources", Timing: timing}, nil
	}

	start = time.Now()
	strategy := route(pr.Sources)
	timing.RouteMS = time.Since(start).Milliseconds()

	start = time.Now()
	focusEntities := topEntities(ctx, store, pr.Sources)
	outline := buildOutline(topic.Label, len(pr.Sources), focusEntities)
	timing.OutlineMS = time.Since(start).Milliseconds()

	if dryRun {
		totalChars := 0
		for _, s := range pr.Sources {
			totalChars += len(s.Content)
		}
		inputTokens, outputTokens := estimateDryRunTokens(totalChars)
		return &types.WikiArticleResult{
			TopicID:      topicID,
			Skipped:      true,
			SkipReason:   "dry run",
			ModelID:      model,
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
			CostUSD:      estimateCost(model, inputTokens, outputTokens),
			Timing:       timing,
		}, nil
	}

	start = time.Now()
	wr, err := write(ctx, client, model, strategy, outline, pr.Sources, audience, topic.EditorialPrompt)
	timing.WriteMS = time.Since(start).Milliseconds()
	if err != nil {
		return nil, err
	}

	start = time.Now()
	vr := validate(wr.Content)
	timing.ValidateMS = time.Since(start).Milliseconds()

	start = time.Now()
	article, err := save(ctx, store, topic, project, outline, vr.Content, pr.Sources, pr.SourceHash, model, wr.InputTokens, wr.OutputTokens, timing)
	timing.SaveMS = time.Since(start).Milliseconds()
	if err != nil {
		return nil, err
	}

	retitle(ctx, store, topic, vr.Content)

	return &types.WikiArticleResult{
		TopicID:      topicID,
		DocumentID:   article.DocumentID,
		ModelID:      model,
		InputTokens:  wr.InputTokens,
		OutputTokens: wr.OutputTokens,
		CostUSD:      article.CostUSD,
		Warnings:     vr.Warnings,
		Timing:       timing,
	}, nil
}

// topEntities ranks entities shared across the prepared sources by document
// frequency and returns their names, most frequent first.
func topEntities(ctx context.Context, store storage.Storage, sources []Source) []string {
	counts := make(map[string]int)
	for _, s := range sources {
		entities, err := store.GetEntitiesForDocument(ctx, s.DocumentID)
		if err != nil {
			continue
		}
		seen := make(map[string]bool)
		for _, e := range entities {
			if seen[e.Entity] {
				continue
			}
			seen[e.Entity] = true
			counts[e.Entity]++
		}
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// retitle implements the RETITLE step: if the model's actual H1 differs from
// the topic's current label and the topic isn't pinned, rename the topic to
// match so future runs and the topic list stay in sync with what was
// actually written. Best-effort: a rename failure doesn't fail generation.
func retitle(ctx context.Context, store storage.Storage, topic *types.WikiTopic, content string) {
	if topic.Status == types.TopicPinned {
		return
	}
	m := h1Pattern.FindStringSubmatch(content)
	if m == nil {
		return
	}
	newLabel := strings.TrimSpace(m[1])
	if newLabel == "" || newLabel == topic.Label {
		return
	}
	newSlug := cluster.Slug(newLabel)
	_ = store.RenameTopic(ctx, topic.ID, newLabel, newSlug)
}
