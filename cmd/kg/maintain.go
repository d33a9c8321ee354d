package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/kgraphdb/kgraph/internal/analyze"
	"github.com/kgraphdb/kgraph/internal/audit"
	"github.com/kgraphdb/kgraph/internal/config"
	"github.com/kgraphdb/kgraph/internal/dedup"
	"github.com/kgraphdb/kgraph/internal/embed"
	"github.com/kgraphdb/kgraph/internal/entitymatch"
	"github.com/kgraphdb/kgraph/internal/extractor"
	"github.com/kgraphdb/kgraph/internal/types"
	"github.com/kgraphdb/kgraph/internal/watch"
	"github.com/kgraphdb/kgraph/internal/wikify"
)

// watchAndWikify re-runs the corpus-wide wikify pass every time dir changes,
// until interrupted. Used by `maintain wikify --watch`.
func watchAndWikify(cmd *cobra.Command, dir, project string, dryRun bool) error {
	run := func() {
		results, err := wikify.WikifyAll(cmd.Context(), store, project, dryRun)
		if err != nil {
			watch.StderrLog("wikify pass failed: %v\n", err)
			return
		}
		total := 0
		for _, r := range results {
			total += r.LinksCreated
		}
		fmt.Printf("Wikified %d document(s), %d link(s) created\n", len(results), total)
	}

	run()
	w, err := watch.New(dir, run, watch.StderrLog)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	w.Start(ctx)
	<-ctx.Done()
	return nil
}

var maintainCmd = &cobra.Command{
	Use:     "maintain",
	GroupID: "maintain",
	Short:   "Corpus maintenance: linking, entity extraction, and analytic reports",
}

var maintainLinkCmd = &cobra.Command{
	Use:   "link <source-id> <target-id>",
	Short: "Manually create a link between two documents",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := parseID(args[0])
		if err != nil {
			return err
		}
		b, err := parseID(args[1])
		if err != nil {
			return err
		}
		id, created, err := store.CreateLink(cmd.Context(), a, b, 1.0, types.LinkMethodManual)
		if err != nil {
			return fmt.Errorf("creating link: %w", err)
		}
		emit(cmd, map[string]any{"id": id, "created": created}, func() {
			if created {
				fmt.Printf("Linked #%d <-> #%d\n", a, b)
			} else {
				fmt.Printf("Link #%d <-> #%d already existed\n", a, b)
			}
		})
		return nil
	},
}

var maintainUnlinkCmd = &cobra.Command{
	Use:   "unlink <source-id> <target-id>",
	Short: "Remove a link between two documents",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := parseID(args[0])
		if err != nil {
			return err
		}
		b, err := parseID(args[1])
		if err != nil {
			return err
		}
		ok, err := store.DeleteLink(cmd.Context(), a, b)
		if err != nil {
			return fmt.Errorf("removing link: %w", err)
		}
		emit(cmd, map[string]any{"removed": ok}, func() { fmt.Printf("Unlinked #%d <-> #%d\n", a, b) })
		return nil
	},
}

var maintainWikifyCmd = &cobra.Command{
	Use:   "wikify [id]",
	Short: "Run the title-match auto-linker over one document or the whole corpus",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		project, _ := cmd.Flags().GetString("project")
		all, _ := cmd.Flags().GetBool("all")
		watchDir, _ := cmd.Flags().GetString("watch")

		if watchDir != "" {
			return watchAndWikify(cmd, watchDir, project, dryRun)
		}

		if len(args) == 1 && !all {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			result, err := wikify.WikifyDocument(cmd.Context(), store, id, dryRun)
			if err != nil {
				return fmt.Errorf("wikifying document: %w", err)
			}
			emit(cmd, result, func() {
				fmt.Printf("Document #%d: %d link(s) found, %d created\n", result.DocumentID, result.LinksFound, result.LinksCreated)
			})
			return nil
		}

		results, err := wikify.WikifyAll(cmd.Context(), store, project, dryRun)
		if err != nil {
			return fmt.Errorf("wikifying corpus: %w", err)
		}
		emit(cmd, results, func() {
			total := 0
			for _, r := range results {
				total += r.LinksCreated
			}
			fmt.Printf("Wikified %d document(s), %d link(s) created\n", len(results), total)
		})
		return nil
	},
}

var maintainEntitiesCmd = &cobra.Command{
	Use:   "entities [id]",
	Short: "Extract entities and create entity-sharing links",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		rebuild, _ := cmd.Flags().GetBool("rebuild")

		if rebuild {
			results, err := entitymatch.Rebuild(cmd.Context(), store)
			if err != nil {
				return fmt.Errorf("rebuilding entity links: %w", err)
			}
			emit(cmd, results, func() { fmt.Printf("Rebuilt entity links for %d document(s)\n", len(results)) })
			return nil
		}

		if len(args) == 1 {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := extractEntitiesFor(cmd, id); err != nil {
				return err
			}
			result, err := entitymatch.MatchDocument(cmd.Context(), store, id, dryRun)
			if err != nil {
				return fmt.Errorf("matching entities: %w", err)
			}
			emit(cmd, result, func() {
				fmt.Printf("Document #%d: %d entity link(s) found, %d created\n", result.DocumentID, result.LinksFound, result.LinksCreated)
			})
			return nil
		}

		results, err := entitymatch.MatchAll(cmd.Context(), store, dryRun)
		if err != nil {
			return fmt.Errorf("matching entities: %w", err)
		}
		emit(cmd, results, func() { fmt.Printf("Matched entities across %d document(s)\n", len(results)) })
		return nil
	},
}

// extractEntitiesFor runs the regex+LLM entity extraction pipeline for one
// document and persists the results, so `maintain entities <id>` can be
// used standalone without a separate extraction step.
func extractEntitiesFor(cmd *cobra.Command, docID int64) error {
	doc, err := store.GetDocument(cmd.Context(), docID)
	if err != nil {
		return fmt.Errorf("fetching document: %w", err)
	}
	pipeline := extractor.NewPipeline(doc.Title, extractor.NewLLMExtractor(llm, config.LLMModel()))
	result, err := pipeline.Run(cmd.Context(), doc.Content)
	if err != nil {
		_, _ = auditor.Append(&audit.Entry{
			Kind: "llm_call", Actor: config.Actor(), DocumentID: docID,
			Model: config.LLMModel(), Error: err.Error(),
		})
		return fmt.Errorf("extracting entities: %w", err)
	}
	if result.UsedLLM {
		_, _ = auditor.Append(&audit.Entry{
			Kind: "llm_call", Actor: config.Actor(), DocumentID: docID,
			Model: config.LLMModel(),
			Extra: map[string]any{"entities": len(result.Entities), "relationships": len(result.Relationships)},
		})
	}

	entities := make([]types.DocumentEntity, 0, len(result.Entities))
	for _, e := range result.Entities {
		entities = append(entities, types.DocumentEntity{
			DocumentID: docID,
			Entity:     e.Name,
			Type:       types.EntityType(e.Type),
			Confidence: e.Confidence,
		})
	}
	if _, err := store.SaveEntities(cmd.Context(), docID, entities); err != nil {
		return fmt.Errorf("saving entities: %w", err)
	}

	rels := make([]types.EntityRelationship, 0, len(result.Relationships))
	for _, r := range result.Relationships {
		rels = append(rels, types.EntityRelationship{
			DocumentID:       docID,
			Source:           r.FromEntity,
			Target:           r.ToEntity,
			RelationshipType: r.Type,
			Confidence:       r.Confidence,
		})
	}
	if len(rels) > 0 {
		if _, err := store.SaveRelationships(cmd.Context(), docID, rels); err != nil {
			return fmt.Errorf("saving relationships: %w", err)
		}
	}
	return nil
}

var maintainIndexCmd = &cobra.Command{
	Use:   "index [id]",
	Short: "Build or inspect the embedding index that backs vector-similarity (semantic) linking",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		statsOnly, _ := cmd.Flags().GetBool("stats")
		clear, _ := cmd.Flags().GetBool("clear")
		force, _ := cmd.Flags().GetBool("force")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		withChunks, _ := cmd.Flags().GetBool("chunks")

		if clear {
			n, err := embed.Clear(cmd.Context(), store)
			if err != nil {
				return fmt.Errorf("clearing embedding index: %w", err)
			}
			emit(cmd, map[string]any{"cleared": n}, func() { fmt.Printf("Cleared %d embedding(s)\n", n) })
			return nil
		}

		if statsOnly {
			stats, err := embed.Stats(cmd.Context(), store)
			if err != nil {
				return fmt.Errorf("computing embedding stats: %w", err)
			}
			emit(cmd, stats, func() {
				fmt.Printf("Indexed %d/%d document(s) (%.1f%% coverage), %d chunk(s), model %s\n",
					stats.IndexedDocuments, stats.TotalDocuments, stats.CoveragePercent,
					stats.IndexedChunks, stats.ModelName)
			})
			return nil
		}

		if len(args) == 1 {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			doc, err := store.GetDocument(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("fetching document: %w", err)
			}
			if err := embed.IndexDocument(cmd.Context(), store, id, doc.Content, force, withChunks); err != nil {
				return fmt.Errorf("indexing document: %w", err)
			}
			emit(cmd, map[string]any{"document_id": id}, func() { fmt.Printf("Indexed document #%d\n", id) })
			return nil
		}

		n, err := embed.IndexAll(cmd.Context(), store, force, batchSize, withChunks)
		if err != nil {
			return fmt.Errorf("indexing corpus: %w", err)
		}
		emit(cmd, map[string]any{"indexed": n}, func() { fmt.Printf("Indexed %d document(s)\n", n) })
		return nil
	},
}

var maintainIndexLinkCmd = &cobra.Command{
	Use:   "index-link [id]",
	Short: "Create vector-similarity (semantic) links from the embedding index",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		project, _ := cmd.Flags().GetString("project")
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		maxLinks, _ := cmd.Flags().GetInt("max")
		all, _ := cmd.Flags().GetBool("all")

		if len(args) == 1 && !all {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			result, err := embed.MatchDocument(cmd.Context(), store, id, threshold, maxLinks, project, dryRun)
			if err != nil {
				return fmt.Errorf("semantic-linking document: %w", err)
			}
			emit(cmd, result, func() {
				fmt.Printf("Document #%d: %d semantic link(s) created\n", result.DocumentID, result.LinksCreated)
			})
			return nil
		}

		results, err := embed.MatchAll(cmd.Context(), store, threshold, maxLinks, project, dryRun)
		if err != nil {
			return fmt.Errorf("semantic-linking corpus: %w", err)
		}
		emit(cmd, results, func() {
			total := 0
			for _, r := range results {
				total += r.LinksCreated
			}
			fmt.Printf("Semantic-linked %d document(s), %d link(s) created\n", len(results), total)
		})
		return nil
	},
}

var maintainDriftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Report abandoned task structures linked from the corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("stale-days")
		report, err := analyze.Drift(cmd.Context(), store, days)
		if err != nil {
			return fmt.Errorf("computing drift report: %w", err)
		}
		emit(cmd, report, func() {
			fmt.Printf("Stale epics: %d, orphaned tasks: %d, burst epics: %d\n",
				len(report.StaleEpics), len(report.OrphanedActive), len(report.BurstEpics))
		})
		return nil
	},
}

var maintainFreshnessCmd = &cobra.Command{
	Use:   "freshness",
	Short: "Score documents by recency, link health, and view activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		staleOnly, _ := cmd.Flags().GetBool("stale-only")
		report, err := analyze.Freshness(cmd.Context(), store, project, threshold, staleOnly)
		if err != nil {
			return fmt.Errorf("computing freshness report: %w", err)
		}
		emit(cmd, report, func() {
			fmt.Printf("Scored %d/%d documents, %d below threshold %.2f\n",
				report.ScoredDocs, report.TotalDocs, report.StaleCount, report.Threshold)
		})
		return nil
	},
}

var maintainGapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Report undercovered tags, link sinks, and orphaned documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("stale-days")
		report, err := analyze.Gaps(cmd.Context(), store, days)
		if err != nil {
			return fmt.Errorf("computing gap report: %w", err)
		}
		emit(cmd, report, func() {
			fmt.Printf("Tag gaps: %d, link sinks: %d, orphan docs: %d\n",
				len(report.TagGaps), len(report.LinkSinks), len(report.OrphanDocs))
		})
		return nil
	},
}

var maintainDedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Find exact and near-duplicate documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		nearOnly, _ := cmd.Flags().GetBool("near")

		exact, err := dedup.FindExactDuplicates(cmd.Context(), store, project)
		if err != nil {
			return fmt.Errorf("finding exact duplicates: %w", err)
		}
		near, err := dedup.FindNearDuplicates(cmd.Context(), store, project, dedup.DefaultOptions())
		if err != nil {
			return fmt.Errorf("finding near-duplicates: %w", err)
		}
		emit(cmd, map[string]any{"exact": exact, "near": near}, func() {
			if !nearOnly {
				for _, g := range exact {
					fmt.Printf("exact: %v\n", g.DocumentIDs)
				}
			}
			for _, n := range near {
				fmt.Printf("near: #%d ~ #%d (%.2f)\n", n.DocumentA, n.DocumentB, n.Similarity)
			}
			fmt.Printf("\n%d exact group(s), %d near-duplicate pair(s)\n", len(exact), len(near))
		})
		return nil
	},
}

func init() {
	maintainDedupCmd.Flags().String("project", "", "restrict to a project")
	maintainDedupCmd.Flags().Bool("near", false, "only report near-duplicates")

	maintainWikifyCmd.Flags().Bool("dry-run", false, "report matches without creating links")
	maintainWikifyCmd.Flags().String("project", "", "restrict to a project")
	maintainWikifyCmd.Flags().Bool("all", false, "run over the whole corpus")
	maintainWikifyCmd.Flags().String("watch", "", "watch a directory and re-run wikify on change, until interrupted")

	maintainEntitiesCmd.Flags().Bool("dry-run", false, "report matches without creating links")
	maintainEntitiesCmd.Flags().Bool("rebuild", false, "rebuild entity links from already-extracted entities")

	maintainIndexCmd.Flags().BoolP("force", "f", false, "reindex documents that already have an embedding")
	maintainIndexCmd.Flags().IntP("batch-size", "b", 50, "documents to index per batch")
	maintainIndexCmd.Flags().Bool("chunks", true, "also build the chunk-level index")
	maintainIndexCmd.Flags().Bool("stats", false, "report embedding index coverage without indexing")
	maintainIndexCmd.Flags().Bool("clear", false, "clear the embedding index")

	maintainIndexLinkCmd.Flags().Bool("dry-run", false, "report matches without creating links")
	maintainIndexLinkCmd.Flags().String("project", "", "restrict to a project")
	maintainIndexLinkCmd.Flags().Float64P("threshold", "t", embed.DefaultThreshold, "minimum cosine similarity to link")
	maintainIndexLinkCmd.Flags().IntP("max", "m", embed.DefaultMaxLinks, "maximum links per document")
	maintainIndexLinkCmd.Flags().Bool("all", false, "run over the whole corpus")

	maintainDriftCmd.Flags().Int("stale-days", analyze.DefaultDriftThresholdDays, "idle threshold in days")
	maintainFreshnessCmd.Flags().String("project", "", "restrict to a project")
	maintainFreshnessCmd.Flags().Float64P("threshold", "t", analyze.DefaultFreshnessThreshold, "freshness score below which a document counts as stale")
	maintainFreshnessCmd.Flags().Bool("stale-only", false, "only include documents below the threshold")
	maintainGapsCmd.Flags().Int("stale-days", analyze.DefaultGapStaleDays, "idle threshold in days")

	maintainCmd.AddCommand(maintainLinkCmd, maintainUnlinkCmd, maintainWikifyCmd, maintainEntitiesCmd,
		maintainIndexCmd, maintainIndexLinkCmd,
		maintainDriftCmd, maintainFreshnessCmd, maintainGapsCmd, maintainDedupCmd)
	rootCmd.AddCommand(maintainCmd)
}
