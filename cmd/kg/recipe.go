package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kgraphdb/kgraph/internal/kgerr"
	"github.com/kgraphdb/kgraph/internal/recipe"
)

var recipeCmd = &cobra.Command{
	Use:     "recipe",
	GroupID: "maintain",
	Short:   "Run named sequences of shell steps (recipes)",
}

var recipeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available recipes",
	RunE: func(cmd *cobra.Command, args []string) error {
		recipes, err := recipe.List()
		if err != nil {
			return fmt.Errorf("listing recipes: %w", err)
		}
		emit(cmd, recipes, func() {
			for _, r := range recipes {
				fmt.Printf("%-20s %s\n", r.Name, r.Description)
			}
		})
		return nil
	},
}

var recipeRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a recipe's steps in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := recipe.LoadByName(args[0])
		if err != nil {
			return fmt.Errorf("%w: %w", kgerr.ErrNotFound, err)
		}
		results, runErr := recipe.Run(context.Background(), r)
		emit(cmd, map[string]any{"steps": results, "error": errString(runErr)}, func() {
			for _, s := range results {
				status := "ok"
				if s.Err != nil {
					status = "failed"
				}
				fmt.Printf("[%s] %s\n%s\n", status, s.Name, s.Output)
			}
		})
		return runErr
	},
}

var recipeCreateCmd = &cobra.Command{
	Use:   "create <name> <description>",
	Short: "Create a new recipe skeleton",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := recipe.Create(args[0], args[1])
		if err != nil {
			return fmt.Errorf("%w: %w", kgerr.ErrConflict, err)
		}
		emit(cmd, map[string]any{"path": path}, func() { fmt.Printf("Created recipe at %s\n", path) })
		return nil
	},
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func init() {
	recipeCmd.AddCommand(recipeListCmd, recipeRunCmd, recipeCreateCmd)
	rootCmd.AddCommand(recipeCmd)
}
