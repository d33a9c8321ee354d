package main

import (
	"context"
	"fmt"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/kgraphdb/kgraph/internal/storage"
)

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	GroupID: "documents",
	Short:   "Full-text search documents",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		limit, _ := cmd.Flags().GetInt("limit")
		crossProject, _ := cmd.Flags().GetBool("cross-project")
		createdAfter, _ := cmd.Flags().GetString("created-after")

		opts := storage.SearchOptions{Limit: limit}
		if !crossProject {
			opts.Project = project
		}
		if createdAfter != "" {
			t, err := time.Parse("2006-01-02", createdAfter)
			if err != nil {
				return fmt.Errorf("parsing --created-after: %w", err)
			}
			opts.CreatedAfter = &t
		}

		results, err := store.Search(cmd.Context(), args[0], opts)
		if err != nil {
			return fmt.Errorf("searching: %w", err)
		}
		emit(cmd, results, func() {
			for _, r := range results {
				rank := "*"
				if r.Rank != nil {
					rank = fmt.Sprintf("%.3f", *r.Rank)
				}
				fmt.Printf("#%-6d [%s] %s\n  %s\n", r.ID, rank, r.Title, r.Snippet)
			}
			fmt.Printf("\n%d result(s)\n", len(results))
			if len(results) == 0 {
				if suggestions := suggestTitles(cmd.Context(), args[0]); len(suggestions) > 0 {
					fmt.Printf("Did you mean: %s?\n", joinTitles(suggestions))
				}
			}
		})
		return nil
	},
}

// suggestTitles fuzzy-matches query against every document title, for the
// "did you mean" hint shown when a full-text search comes up empty.
// Grounded on the teacher's internal/queries/fuzzy.go hybrid-resolution
// approach, here narrowed to title suggestion rather than entity resolution.
func suggestTitles(ctx context.Context, query string) []string {
	docs, err := store.AllDocuments(ctx)
	if err != nil {
		return nil
	}
	titles := make([]string, 0, len(docs))
	for _, d := range docs {
		titles = append(titles, d.Title)
	}
	ranked, found := fuzzy.RankFindFold(query, titles)
	if !found {
		return nil
	}
	sortRanks(ranked)
	out := make([]string, 0, 3)
	for i := 0; i < len(ranked) && i < 3; i++ {
		out = append(out, ranked[i].Target)
	}
	return out
}

func sortRanks(ranked fuzzy.Ranks) {
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].Distance < ranked[j-1].Distance; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
}

func joinTitles(titles []string) string {
	out := ""
	for i, t := range titles {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%q", t)
	}
	return out
}

func init() {
	searchCmd.Flags().String("project", "", "restrict to a project")
	searchCmd.Flags().IntP("limit", "l", 20, "maximum results")
	searchCmd.Flags().Bool("cross-project", false, "search across all projects")
	searchCmd.Flags().String("created-after", "", "only documents created after this date (YYYY-MM-DD)")
	rootCmd.AddCommand(searchCmd)
}
