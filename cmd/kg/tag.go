package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:     "tag",
	GroupID: "documents",
	Short:   "Manage document tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <id> <tag>[,<tag>...]",
	Short: "Add one or more tags to a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		existing, err := store.GetTags(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetching existing tags: %w", err)
		}
		merged := mergeTags(existing, strings.Split(args[1], ","))
		if err := store.SaveTags(cmd.Context(), id, merged); err != nil {
			return fmt.Errorf("saving tags: %w", err)
		}
		emit(cmd, map[string]any{"id": id, "tags": merged}, func() {
			fmt.Printf("Document #%d tags: %s\n", id, strings.Join(merged, ", "))
		})
		return nil
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:   "remove <id> <tag>[,<tag>...]",
	Short: "Remove one or more tags from a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		existing, err := store.GetTags(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetching existing tags: %w", err)
		}
		remove := make(map[string]bool)
		for _, t := range strings.Split(args[1], ",") {
			remove[strings.TrimSpace(t)] = true
		}
		var kept []string
		for _, t := range existing {
			if !remove[t] {
				kept = append(kept, t)
			}
		}
		if err := store.SaveTags(cmd.Context(), id, kept); err != nil {
			return fmt.Errorf("saving tags: %w", err)
		}
		emit(cmd, map[string]any{"id": id, "tags": kept}, func() {
			fmt.Printf("Document #%d tags: %s\n", id, strings.Join(kept, ", "))
		})
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags and their usage counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, err := store.ListAllTags(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing tags: %w", err)
		}
		emit(cmd, tags, func() {
			for _, t := range tags {
				fmt.Printf("%-30s %d\n", t.Name, t.UsageCount)
			}
		})
		return nil
	},
}

func mergeTags(existing []string, add []string) []string {
	seen := make(map[string]bool, len(existing))
	out := append([]string{}, existing...)
	for _, t := range existing {
		seen[t] = true
	}
	for _, t := range add {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func init() {
	tagCmd.AddCommand(tagAddCmd, tagRemoveCmd, tagListCmd)
	rootCmd.AddCommand(tagCmd)
}
