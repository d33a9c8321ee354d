package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kgraphdb/kgraph/internal/audit"
	"github.com/kgraphdb/kgraph/internal/cluster"
	"github.com/kgraphdb/kgraph/internal/config"
	"github.com/kgraphdb/kgraph/internal/entityindex"
	"github.com/kgraphdb/kgraph/internal/export"
	"github.com/kgraphdb/kgraph/internal/kgerr"
	"github.com/kgraphdb/kgraph/internal/privacy"
	"github.com/kgraphdb/kgraph/internal/synth"
	"github.com/kgraphdb/kgraph/internal/types"
)

var wikiCmd = &cobra.Command{
	Use:     "wiki",
	GroupID: "wiki",
	Short:   "Topic discovery, wiki synthesis, and the generated article tree",
}

var wikiTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Discover topic clusters from the current entity graph and persist them",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cluster.DefaultOptions()
		discovered, err := cluster.Run(cmd.Context(), store, opts)
		if err != nil {
			return fmt.Errorf("clustering: %w", err)
		}
		saved, err := cluster.Persist(cmd.Context(), store, discovered)
		if err != nil {
			return fmt.Errorf("persisting topics: %w", err)
		}
		emit(cmd, saved, func() {
			for _, t := range saved {
				fmt.Printf("#%-4d %-30s coherence=%.2f\n", t.ID, t.Label, t.CoherenceScore)
			}
			fmt.Printf("\n%d topic(s)\n", len(saved))
		})
		return nil
	},
}

var wikiListCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered topics and their member counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, members, err := store.GetTopics(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing topics: %w", err)
		}
		emit(cmd, map[string]any{"topics": topics, "members": members}, func() {
			for _, t := range topics {
				fmt.Printf("#%-4d %-30s [%s] %d doc(s)\n", t.ID, t.Label, t.Status, members[t.ID])
			}
		})
		return nil
	},
}

var wikiStatusCmd = &cobra.Command{
	Use:   "status <topic-id> <active|skipped|pinned>",
	Short: "Set a topic's editorial status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		status := types.TopicStatus(args[1])
		if status != types.TopicActive && status != types.TopicSkipped && status != types.TopicPinned {
			return fmt.Errorf("%w: status must be active, skipped, or pinned", kgerr.ErrBadInput)
		}
		if err := store.SetTopicStatus(cmd.Context(), id, status); err != nil {
			return fmt.Errorf("setting topic status: %w", err)
		}
		emit(cmd, map[string]any{"id": id, "status": status}, func() { fmt.Printf("Topic #%d status: %s\n", id, status) })
		return nil
	},
}

func statusShortcut(status types.TopicStatus) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := store.SetTopicStatus(cmd.Context(), id, status); err != nil {
			return fmt.Errorf("setting topic status: %w", err)
		}
		emit(cmd, map[string]any{"id": id, "status": status}, func() { fmt.Printf("Topic #%d status: %s\n", id, status) })
		return nil
	}
}

var wikiSkipCmd = &cobra.Command{Use: "skip <topic-id>", Short: "Mark a topic skipped", Args: cobra.ExactArgs(1), RunE: statusShortcut(types.TopicSkipped)}
var wikiUnskipCmd = &cobra.Command{Use: "unskip <topic-id>", Short: "Reactivate a skipped topic", Args: cobra.ExactArgs(1), RunE: statusShortcut(types.TopicActive)}
var wikiPinCmd = &cobra.Command{Use: "pin <topic-id>", Short: "Pin a topic (exempt from auto-retitling)", Args: cobra.ExactArgs(1), RunE: statusShortcut(types.TopicPinned)}
var wikiUnpinCmd = &cobra.Command{Use: "unpin <topic-id>", Short: "Unpin a topic", Args: cobra.ExactArgs(1), RunE: statusShortcut(types.TopicActive)}

var wikiModelCmd = &cobra.Command{
	Use:   "model <topic-id> <model>",
	Short: "Set a topic's model override for synthesis",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := store.SetTopicModelOverride(cmd.Context(), id, args[1]); err != nil {
			return fmt.Errorf("setting model override: %w", err)
		}
		emit(cmd, map[string]any{"id": id, "model": args[1]}, func() { fmt.Printf("Topic #%d model: %s\n", id, args[1]) })
		return nil
	},
}

var wikiPromptCmd = &cobra.Command{
	Use:   "prompt <topic-id> <editorial-prompt>",
	Short: "Set a topic's editorial guidance prompt for synthesis",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := store.SetTopicEditorialPrompt(cmd.Context(), id, args[1]); err != nil {
			return fmt.Errorf("setting editorial prompt: %w", err)
		}
		emit(cmd, map[string]any{"id": id}, func() { fmt.Printf("Topic #%d editorial prompt set\n", id) })
		return nil
	},
}

var wikiRenameCmd = &cobra.Command{
	Use:   "rename <topic-id> <new-label>",
	Short: "Rename a topic",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		slug := cluster.Slug(args[1])
		if err := store.RenameTopic(cmd.Context(), id, args[1], slug); err != nil {
			return fmt.Errorf("renaming topic: %w", err)
		}
		emit(cmd, map[string]any{"id": id, "label": args[1], "slug": slug}, func() {
			fmt.Printf("Topic #%d renamed to %q (%s)\n", id, args[1], slug)
		})
		return nil
	},
}

var h1Pattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

var wikiRetitleCmd = &cobra.Command{
	Use:   "retitle <topic-id>",
	Short: "Re-derive a topic's label from its current article's H1 heading",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		topic, err := store.GetTopic(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("%w: %w", kgerr.ErrNotFound, err)
		}
		if topic.Status == types.TopicPinned {
			return fmt.Errorf("%w: topic #%d is pinned, unpin it first", kgerr.ErrConflict, id)
		}
		article, err := store.GetArticleByTopic(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("%w: topic has no article yet", kgerr.ErrNotFound)
		}
		doc, err := store.GetDocument(cmd.Context(), article.DocumentID)
		if err != nil {
			return fmt.Errorf("fetching article document: %w", err)
		}
		m := h1Pattern.FindStringSubmatch(doc.Content)
		if m == nil {
			return fmt.Errorf("%w: article has no H1 heading to retitle from", kgerr.ErrBadInput)
		}
		newLabel := strings.TrimSpace(m[1])
		newSlug := cluster.Slug(newLabel)
		if err := store.RenameTopic(cmd.Context(), id, newLabel, newSlug); err != nil {
			return fmt.Errorf("renaming topic: %w", err)
		}
		emit(cmd, map[string]any{"id": id, "label": newLabel}, func() {
			fmt.Printf("Topic #%d retitled to %q\n", id, newLabel)
		})
		return nil
	},
}

var wikiMergeCmd = &cobra.Command{
	Use:   "merge <winner-topic-id> <loser-topic-id> <new-label>",
	Short: "Merge two topics, keeping the winner's ID",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		winner, err := parseID(args[0])
		if err != nil {
			return err
		}
		loser, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := store.MergeTopics(cmd.Context(), winner, loser, args[2]); err != nil {
			return fmt.Errorf("merging topics: %w", err)
		}
		emit(cmd, map[string]any{"winner": winner, "loser": loser, "label": args[2]}, func() {
			fmt.Printf("Merged topic #%d into #%d as %q\n", loser, winner, args[2])
		})
		return nil
	},
}

var wikiSplitCmd = &cobra.Command{
	Use:   "split <topic-id> <new-label> <doc-id> [doc-id...]",
	Short: "Split documents out of a topic into a new one",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		var docIDs []int64
		for _, a := range args[2:] {
			docID, err := parseID(a)
			if err != nil {
				return err
			}
			docIDs = append(docIDs, docID)
		}
		newSlug := cluster.Slug(args[1])
		newID, err := store.SplitTopic(cmd.Context(), id, docIDs, args[1], newSlug)
		if err != nil {
			return fmt.Errorf("splitting topic: %w", err)
		}
		emit(cmd, map[string]any{"new_topic_id": newID}, func() {
			fmt.Printf("Split %d document(s) from #%d into new topic #%d (%q)\n", len(docIDs), id, newID, args[1])
		})
		return nil
	},
}

var wikiSourcesCmd = &cobra.Command{
	Use:   "sources <article-id>",
	Short: "List an article's contributing source documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		sources, err := store.GetArticleSources(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetching sources: %w", err)
		}
		emit(cmd, sources, func() {
			for _, s := range sources {
				excluded := ""
				if s.Excluded {
					excluded = " (excluded)"
				}
				fmt.Printf("doc #%-6d weight=%.2f%s\n", s.DocumentID, s.Weight, excluded)
			}
		})
		return nil
	},
}

var wikiWeightCmd = &cobra.Command{
	Use:   "weight <topic-id> <doc-id> <weight>",
	Short: "Set a member document's relevance weight within a topic",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		topicID, err := parseID(args[0])
		if err != nil {
			return err
		}
		docID, err := parseID(args[1])
		if err != nil {
			return err
		}
		weight, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("%w: invalid weight %q", kgerr.ErrBadInput, args[2])
		}
		if err := store.SetMemberWeight(cmd.Context(), topicID, docID, weight); err != nil {
			return fmt.Errorf("setting member weight: %w", err)
		}
		emit(cmd, map[string]any{"topic_id": topicID, "doc_id": docID, "weight": weight}, func() {
			fmt.Printf("Topic #%d doc #%d weight: %.2f\n", topicID, docID, weight)
		})
		return nil
	},
}

func memberIncludedShortcut(included bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		topicID, err := parseID(args[0])
		if err != nil {
			return err
		}
		docID, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := store.SetMemberIncluded(cmd.Context(), topicID, docID, included); err != nil {
			return fmt.Errorf("setting member inclusion: %w", err)
		}
		emit(cmd, map[string]any{"topic_id": topicID, "doc_id": docID, "included": included}, func() {
			fmt.Printf("Topic #%d doc #%d included: %v\n", topicID, docID, included)
		})
		return nil
	}
}

var wikiIncludeCmd = &cobra.Command{Use: "include <topic-id> <doc-id>", Short: "Re-include a member document in a topic", Args: cobra.ExactArgs(2), RunE: memberIncludedShortcut(true)}
var wikiExcludeCmd = &cobra.Command{
	Use:   "exclude <article-id> <doc-id>",
	Short: "Exclude a contributing source from an article's next regeneration",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		articleID, err := parseID(args[0])
		if err != nil {
			return err
		}
		docID, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := store.SetSourceExcluded(cmd.Context(), articleID, docID, true); err != nil {
			return fmt.Errorf("excluding source: %w", err)
		}
		emit(cmd, map[string]any{"article_id": articleID, "doc_id": docID, "excluded": true}, func() {
			fmt.Printf("Article #%d: source doc #%d excluded\n", articleID, docID)
		})
		return nil
	},
}

var wikiRateCmd = &cobra.Command{
	Use:   "rate <article-id> <1-5>",
	Short: "Rate a generated article",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil || rating < 1 || rating > 5 {
			return fmt.Errorf("%w: rating must be an integer 1-5", kgerr.ErrBadInput)
		}
		if err := store.RateArticle(cmd.Context(), id, rating); err != nil {
			return fmt.Errorf("rating article: %w", err)
		}
		emit(cmd, map[string]any{"id": id, "rating": rating}, func() { fmt.Printf("Article #%d rated %d\n", id, rating) })
		return nil
	},
}

var wikiDiffCmd = &cobra.Command{
	Use:   "diff <topic-id>",
	Short: "Show the previous vs. current content of a topic's article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		article, err := store.GetArticleByTopic(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("%w: topic has no article", kgerr.ErrNotFound)
		}
		doc, err := store.GetDocument(cmd.Context(), article.DocumentID)
		if err != nil {
			return fmt.Errorf("fetching article document: %w", err)
		}
		emit(cmd, map[string]any{"previous": article.PreviousContent, "current": doc.Content}, func() {
			fmt.Println("--- previous")
			fmt.Println(article.PreviousContent)
			fmt.Println("+++ current")
			fmt.Println(doc.Content)
		})
		return nil
	},
}

var wikiCoverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Report what fraction of active topics have a generated article",
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, _, err := store.GetTopics(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing topics: %w", err)
		}
		articles, err := store.ListArticles(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing articles: %w", err)
		}
		covered := make(map[int64]bool, len(articles))
		for _, a := range articles {
			covered[a.TopicID] = true
		}
		var active, generated int
		for _, t := range topics {
			if t.Status == types.TopicSkipped {
				continue
			}
			active++
			if covered[t.ID] {
				generated++
			}
		}
		ratio := 0.0
		if active > 0 {
			ratio = float64(generated) / float64(active)
		}
		emit(cmd, map[string]any{"active_topics": active, "generated": generated, "coverage": ratio}, func() {
			fmt.Printf("%d/%d active topics have an article (%.0f%%)\n", generated, active, ratio*100)
		})
		return nil
	},
}

var wikiRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent generate_wiki batch runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.ListWikiRuns(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}
		emit(cmd, runs, func() {
			for _, r := range runs {
				fmt.Printf("%s  model=%-8s attempted=%-4d generated=%-4d skipped=%-4d cost=$%.4f\n",
					r.ID, r.Model, r.Attempted, r.Generated, r.Skipped, r.TotalCostUSD)
			}
		})
		return nil
	},
}

var wikiProgressCmd = &cobra.Command{
	Use:   "progress <run-id>",
	Short: "Show one batch run's progress and outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := store.ListWikiRuns(cmd.Context(), 0)
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}
		for _, r := range runs {
			if r.ID == args[0] {
				emit(cmd, r, func() {
					status := "in progress"
					if r.CompletedAt != nil {
						status = "completed"
					}
					fmt.Printf("%s: %s, %d/%d generated, %d skipped\n", r.ID, status, r.Generated, r.Attempted, r.Skipped)
				})
				return nil
			}
		}
		return fmt.Errorf("%w: run %q not found", kgerr.ErrNotFound, args[0])
	},
}

var wikiTriageCmd = &cobra.Command{
	Use:   "triage",
	Short: "List active topics with no article yet or a stale one, ready for generate",
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, _, err := store.GetTopics(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing topics: %w", err)
		}
		articles, err := store.ListArticles(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing articles: %w", err)
		}
		byTopic := make(map[int64]types.WikiArticle, len(articles))
		for _, a := range articles {
			byTopic[a.TopicID] = a
		}
		var needsWork []types.WikiTopic
		for _, t := range topics {
			if t.Status == types.TopicSkipped {
				continue
			}
			a, has := byTopic[t.ID]
			if !has || a.IsStale {
				needsWork = append(needsWork, t)
			}
		}
		emit(cmd, needsWork, func() {
			for _, t := range needsWork {
				fmt.Printf("#%-4d %s\n", t.ID, t.Label)
			}
			fmt.Printf("\n%d topic(s) need generation\n", len(needsWork))
		})
		return nil
	},
}

var wikiSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "One-shot bootstrap: discover topics and generate all articles (does not wikify or extract entities)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		discovered, err := cluster.Run(ctx, store, cluster.DefaultOptions())
		if err != nil {
			return fmt.Errorf("clustering: %w", err)
		}
		topics, err := cluster.Persist(ctx, store, discovered)
		if err != nil {
			return fmt.Errorf("persisting topics: %w", err)
		}
		results, err := generateAll(cmd, topics, 1, "", false)
		if err != nil {
			return err
		}
		emit(cmd, map[string]any{"topics": len(topics), "articles": results}, func() {
			fmt.Printf("Discovered %d topic(s), generated %d article(s)\n", len(topics), len(results))
		})
		return nil
	},
}

var wikiGenerateCmd = &cobra.Command{
	Use:   "generate [topic-id]",
	Short: "Run the synthesis pipeline for one topic, or every topic with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		model, _ := cmd.Flags().GetString("model")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		audience := privacy.Audience(config.Audience())
		if a, _ := cmd.Flags().GetString("audience"); a != "" {
			audience = privacy.Audience(a)
		}

		if !all {
			if len(args) != 1 {
				return fmt.Errorf("%w: specify a topic id or --all", kgerr.ErrBadInput)
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			result, err := synth.Generate(cmd.Context(), store, llm, id, "", audience, model, dryRun)
			auditGenerate(id, model, result, err)
			if err != nil {
				return fmt.Errorf("generating article: %w", err)
			}
			emit(cmd, result, func() { printArticleResult(*result) })
			return nil
		}

		topics, _, err := store.GetTopics(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing topics: %w", err)
		}
		results, err := generateAll(cmd, topics, concurrency, model, dryRun)
		if err != nil {
			return err
		}
		emit(cmd, results, func() {
			for _, r := range results {
				printArticleResult(r)
			}
		})
		return nil
	},
}

// generateAll runs synth.Generate over every topic with bounded concurrency
// (spec.md §5's generate_wiki batch), recording a wiki_run row for the
// batch. Topics run through errgroup.SetLimit(concurrency), so their
// generation order is not fixed; results are returned in topic order once
// every topic has finished, and nothing is printed per topic while the batch
// runs, for N=1 as for N>1.
func generateAll(cmd *cobra.Command, topics []types.WikiTopic, concurrency int, model string, dryRun bool) ([]types.WikiArticleResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	audience := privacy.Audience(config.Audience())
	if a, _ := cmd.Flags().GetString("audience"); a != "" {
		audience = privacy.Audience(a)
	}

	run := &types.WikiRun{ID: uuid.NewString(), Model: model, DryRun: dryRun, StartedAt: time.Now().UTC()}
	if err := store.CreateWikiRun(cmd.Context(), run); err != nil {
		return nil, fmt.Errorf("creating wiki run: %w", err)
	}

	results := make([]types.WikiArticleResult, len(topics))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(concurrency)
	for i, topic := range topics {
		i, topic := i, topic
		g.Go(func() error {
			result, err := synth.Generate(ctx, store, llm, topic.ID, "", audience, model, dryRun)
			auditGenerate(topic.ID, model, result, err)
			if err != nil {
				results[i] = types.WikiArticleResult{TopicID: topic.ID, Skipped: true, SkipReason: err.Error()}
				return nil // batch continues past per-topic failures (spec.md §5)
			}
			results[i] = *result
			return nil
		})
	}
	_ = g.Wait()

	completed := time.Now().UTC()
	run.CompletedAt = &completed
	run.Attempted = len(results)
	for _, r := range results {
		run.TotalTokens += r.InputTokens + r.OutputTokens
		run.TotalCostUSD += r.CostUSD
		if r.Skipped {
			run.Skipped++
		} else {
			run.Generated++
		}
	}
	if err := store.CompleteWikiRun(cmd.Context(), run); err != nil {
		return nil, fmt.Errorf("completing wiki run: %w", err)
	}
	return results, nil
}

// auditGenerate records one synthesis attempt to the audit trail. result may
// be nil when Generate errored before producing one.
func auditGenerate(topicID int64, model string, result *types.WikiArticleResult, genErr error) {
	e := &audit.Entry{Kind: "llm_call", Actor: config.Actor(), TopicID: topicID, Model: model}
	if genErr != nil {
		e.Error = genErr.Error()
	} else if result != nil {
		e.DocumentID = result.DocumentID
		e.InputTokens = result.InputTokens
		e.OutputTokens = result.OutputTokens
		if result.Skipped {
			e.Extra = map[string]any{"skipped": true, "reason": result.SkipReason}
		}
	}
	_, _ = auditor.Append(e)
}

func printArticleResult(r types.WikiArticleResult) {
	if r.Skipped {
		fmt.Printf("Topic #%d skipped: %s\n", r.TopicID, r.SkipReason)
		return
	}
	fmt.Printf("Topic #%d -> doc #%d (%s, $%.4f)\n", r.TopicID, r.DocumentID, r.ModelID, r.CostUSD)
}

var wikiExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render wiki articles and entity pages as a static-site source tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := export.LoadConfig(cmd.Context(), store)
		if err != nil {
			return fmt.Errorf("loading export config: %w", err)
		}
		outputDir := cfg.OutputDir
		if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
			outputDir = dir
		}
		var topicID *int64
		if t, _ := cmd.Flags().GetString("topic"); t != "" {
			id, err := parseID(t)
			if err != nil {
				return err
			}
			topicID = &id
		}
		result, err := export.Export(cmd.Context(), store, cfg, outputDir, topicID)
		if err != nil {
			return fmt.Errorf("exporting site: %w", err)
		}
		emit(cmd, result, func() {
			fmt.Printf("Exported %d article(s), %d entity page(s) to %s\n", result.ArticlesWritten, result.EntitiesWritten, outputDir)
			if len(result.Errors) > 0 {
				fmt.Printf("%d error(s) (best-effort policy)\n", len(result.Errors))
			}
		})
		return nil
	},
}

var wikiEntitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List the Tier-A/B/C entity index backing the exported glossary",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := loadEntityIndex(cmd)
		if err != nil {
			return err
		}
		emit(cmd, entries, func() {
			for _, e := range entries {
				fmt.Printf("%-30s tier=%s docs=%d score=%.2f\n", e.Entity, e.Tier, e.DocFrequency, e.Score)
			}
		})
		return nil
	},
}

// loadEntityIndex returns the Tier-A/B/C entries backing `wiki entities` and
// the exported glossary, reusing internal/entityindex wholesale rather than
// duplicating its scoring/tiering logic here.
func loadEntityIndex(cmd *cobra.Command) ([]entityindex.Entry, error) {
	entries, err := entityindex.BuildIndex(cmd.Context(), store)
	if err != nil {
		return nil, fmt.Errorf("building entity index: %w", err)
	}
	var out []entityindex.Entry
	for _, e := range entries {
		if e.Tier == entityindex.TierNone {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func init() {
	wikiGenerateCmd.Flags().Bool("all", false, "generate every active topic")
	wikiGenerateCmd.Flags().String("model", "", "override the model for this run")
	wikiGenerateCmd.Flags().Bool("dry-run", false, "estimate cost without calling the LLM")
	wikiGenerateCmd.Flags().Int("concurrency", 1, "number of topics to generate in parallel")
	wikiGenerateCmd.Flags().String("audience", "", "privacy audience (me, team, public)")

	wikiRunsCmd.Flags().IntP("limit", "l", 20, "maximum runs to show")

	wikiExportCmd.Flags().String("dir", "", "override the configured export directory")
	wikiExportCmd.Flags().String("topic", "", "restrict export to one topic (skips index/entity regeneration)")

	wikiCmd.AddCommand(
		wikiTopicsCmd, wikiListCmd, wikiStatusCmd, wikiSkipCmd, wikiUnskipCmd, wikiPinCmd, wikiUnpinCmd,
		wikiModelCmd, wikiPromptCmd, wikiRenameCmd, wikiRetitleCmd, wikiMergeCmd, wikiSplitCmd,
		wikiSourcesCmd, wikiWeightCmd, wikiIncludeCmd, wikiExcludeCmd, wikiRateCmd, wikiDiffCmd,
		wikiCoverageCmd, wikiRunsCmd, wikiProgressCmd, wikiTriageCmd, wikiSetupCmd, wikiGenerateCmd,
		wikiExportCmd, wikiEntitiesCmd,
	)
	rootCmd.AddCommand(wikiCmd)
}
