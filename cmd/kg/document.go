package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kgraphdb/kgraph/internal/kgerr"
	"github.com/kgraphdb/kgraph/internal/types"
	"github.com/kgraphdb/kgraph/internal/ui"
	"github.com/kgraphdb/kgraph/internal/validation"
)

var saveCmd = &cobra.Command{
	Use:     "save <title> [content]",
	GroupID: "documents",
	Short:   "Save a document, creating or overwriting by title",
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := args[0]
		content := ""
		if len(args) == 2 {
			content = args[1]
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading content from stdin: %w", err)
			}
			content = string(data)
		}
		project, _ := cmd.Flags().GetString("project")

		if err := validation.Default()(&types.Document{Title: title, Content: content}); err != nil {
			return fmt.Errorf("%w: %w", kgerr.ErrBadInput, err)
		}

		ctx := cmd.Context()
		existing, _ := store.GetDocumentByTitle(ctx, title)
		if existing != nil {
			if _, err := store.UpdateDocument(ctx, existing.ID, title, content); err != nil {
				return fmt.Errorf("updating document: %w", err)
			}
			existing.Content = content
			emit(cmd, existing, func() { fmt.Printf("Updated document #%d: %s\n", existing.ID, title) })
			return nil
		}

		doc := &types.Document{Title: title, Content: content, Project: project, Kind: types.DocKindUser}
		id, err := store.SaveDocument(ctx, doc)
		if err != nil {
			return fmt.Errorf("saving document: %w", err)
		}
		doc.ID = id
		emit(cmd, doc, func() { fmt.Printf("Saved document #%d: %s\n", id, title) })
		return nil
	},
}

var viewCmd = &cobra.Command{
	Use:     "view <id>",
	GroupID: "documents",
	Short:   "View a document by ID",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		doc, err := store.GetDocument(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetching document: %w: %w", kgerr.ErrNotFound, err)
		}
		_ = caches.RecordAccess(cmd.Context(), id)
		emit(cmd, doc, func() {
			fmt.Printf("# %s\n\n%s\n", doc.Title, doc.Content)
		})
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:     "edit <id> <content>",
	GroupID: "documents",
	Short:   "Replace a document's content",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		doc, err := store.GetDocument(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetching document: %w: %w", kgerr.ErrNotFound, err)
		}
		ok, err := store.UpdateDocument(cmd.Context(), id, doc.Title, args[1])
		if err != nil {
			return fmt.Errorf("updating document: %w", err)
		}
		emit(cmd, map[string]any{"id": id, "updated": ok}, func() {
			fmt.Printf("Updated document #%d\n", id)
		})
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	GroupID: "documents",
	Short:   "Soft-delete a document (use --hard to bypass the trash)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		hard, _ := cmd.Flags().GetBool("hard")
		force, _ := cmd.Flags().GetBool("force")
		if !force && !jsonOutput() {
			if !confirm(fmt.Sprintf("Delete document #%d?", id)) {
				fmt.Println("Aborted.")
				return nil
			}
		}
		ok, err := store.DeleteDocument(cmd.Context(), id, hard)
		if err != nil {
			return fmt.Errorf("deleting document: %w", err)
		}
		emit(cmd, map[string]any{"id": id, "deleted": ok, "hard": hard}, func() {
			fmt.Printf("Deleted document #%d\n", id)
		})
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:     "restore <id>",
	GroupID: "documents",
	Short:   "Restore a soft-deleted document",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ok, err := store.Restore(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("restoring document: %w", err)
		}
		emit(cmd, map[string]any{"id": id, "restored": ok}, func() {
			fmt.Printf("Restored document #%d\n", id)
		})
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:     "purge",
	GroupID: "documents",
	Short:   "Permanently remove documents soft-deleted past a retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		force, _ := cmd.Flags().GetBool("force")
		if !force && !jsonOutput() {
			if !confirm(fmt.Sprintf("Permanently purge documents deleted more than %d days ago?", days)) {
				fmt.Println("Aborted.")
				return nil
			}
		}
		n, err := store.PurgeDeleted(cmd.Context(), days)
		if err != nil {
			return fmt.Errorf("purging documents: %w", err)
		}
		emit(cmd, map[string]any{"purged": n}, func() { fmt.Printf("Purged %d document(s)\n", n) })
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "documents",
	Short:   "List documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		limit, _ := cmd.Flags().GetInt("limit")
		showDeleted, _ := cmd.Flags().GetBool("deleted")
		days, _ := cmd.Flags().GetInt("days")

		var docs []types.DocumentListItem
		var err error
		if showDeleted {
			docs, err = store.ListDeleted(cmd.Context(), days, limit)
		} else {
			docs, err = store.ListDocuments(cmd.Context(), project, limit)
		}
		if err != nil {
			return fmt.Errorf("listing documents: %w", err)
		}
		emit(cmd, docs, func() {
			if ui.ShouldUseColor() {
				rows := make([][]string, len(docs))
				for i, d := range docs {
					rows[i] = []string{fmt.Sprintf("#%d", d.ID), string(d.Kind), d.Title}
				}
				fmt.Println(ui.Render(ui.GetWidth(), []string{"ID", "Kind", "Title"}, rows))
			} else {
				for _, d := range docs {
					fmt.Printf("#%-6d [%s] %s\n", d.ID, d.Kind, d.Title)
				}
			}
			fmt.Printf("\n%d document(s)\n", len(docs))
		})
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:     "stats",
	GroupID: "documents",
	Short:   "Show corpus-wide document and cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := store.AllDocuments(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading documents: %w", err)
		}
		byKind := make(map[types.DocKind]int)
		byProject := make(map[string]int)
		for _, d := range docs {
			byKind[d.Kind]++
			byProject[d.Project]++
		}
		stats := map[string]any{
			"total_documents": len(docs),
			"by_kind":         byKind,
			"by_project":      byProject,
			"caches":          caches.Stats(),
		}
		emit(cmd, stats, func() {
			fmt.Printf("Total documents: %d\n", len(docs))
			for k, n := range byKind {
				fmt.Printf("  %s: %d\n", k, n)
			}
		})
		return nil
	},
}

func parseID(s string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", kgerr.ErrBadInput, s)
	}
	return id, nil
}

func confirm(prompt string) bool {
	return ui.PromptYesNo(prompt, false)
}

func init() {
	saveCmd.Flags().String("project", "", "project namespace")

	deleteCmd.Flags().Bool("hard", false, "permanently delete instead of soft-delete")
	deleteCmd.Flags().Bool("force", false, "skip the confirmation prompt")

	purgeCmd.Flags().Int("days", 30, "purge documents soft-deleted more than this many days ago")
	purgeCmd.Flags().Bool("force", false, "skip the confirmation prompt")

	listCmd.Flags().String("project", "", "filter by project")
	listCmd.Flags().IntP("limit", "l", 50, "maximum documents to return")
	listCmd.Flags().Bool("deleted", false, "list soft-deleted documents instead")
	listCmd.Flags().Int("days", 30, "when --deleted, only documents deleted within this many days")

	rootCmd.AddCommand(saveCmd, viewCmd, editCmd, deleteCmd, restoreCmd, purgeCmd, listCmd, statsCmd)
}
