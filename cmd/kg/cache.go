package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kgraphdb/kgraph/internal/kgerr"
)

var cacheCmd = &cobra.Command{
	Use:     "cache",
	GroupID: "maintain",
	Short:   "Inspect and control the in-process caches",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show hit/miss/eviction counts per named cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats := make(map[string]any)
		for _, name := range caches.Names() {
			stats[name] = caches.Named(name).Stats()
		}
		emit(cmd, stats, func() {
			for name, s := range stats {
				fmt.Printf("%-14s %+v\n", name, s)
			}
		})
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <name|--all>",
	Short: "Invalidate a named cache's entries",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if all {
			caches.InvalidateAll()
			emit(cmd, map[string]any{"cleared": "all"}, func() { fmt.Println("Cleared all caches") })
			return nil
		}
		if len(args) != 1 {
			return fmt.Errorf("%w: specify a cache name or --all", kgerr.ErrBadInput)
		}
		c := caches.Named(args[0])
		if c == nil {
			return fmt.Errorf("%w: unknown cache %q", kgerr.ErrNotFound, args[0])
		}
		c.Invalidate()
		emit(cmd, map[string]any{"cleared": args[0]}, func() { fmt.Printf("Cleared cache %q\n", args[0]) })
		return nil
	},
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Evict expired entries from every cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		total := 0
		for _, name := range caches.Names() {
			total += caches.Named(name).Cleanup()
		}
		emit(cmd, map[string]any{"evicted": total}, func() { fmt.Printf("Evicted %d expired entries\n", total) })
		return nil
	},
}

var cacheEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Re-enable a named cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error { return setCacheEnabled(cmd, args[0], true) },
}

var cacheDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a named cache (pass-through, no storage)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error { return setCacheEnabled(cmd, args[0], false) },
}

func setCacheEnabled(cmd *cobra.Command, name string, enabled bool) error {
	c := caches.Named(name)
	if c == nil {
		return fmt.Errorf("%w: unknown cache %q", kgerr.ErrNotFound, name)
	}
	c.SetEnabled(enabled)
	emit(cmd, map[string]any{"name": name, "enabled": enabled}, func() {
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Printf("Cache %q %s\n", name, state)
	})
	return nil
}

var cacheFlushAccessCmd = &cobra.Command{
	Use:   "flush-access",
	Short: "Flush the buffered document access-count writes to storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := caches.FlushAccessCounts(cmd.Context()); err != nil {
			return fmt.Errorf("flushing access counts: %w", err)
		}
		emit(cmd, map[string]any{"flushed": true}, func() { fmt.Println("Flushed access counts") })
		return nil
	},
}

func init() {
	cacheClearCmd.Flags().Bool("all", false, "clear every cache")
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd, cacheCleanupCmd, cacheEnableCmd, cacheDisableCmd, cacheFlushAccessCmd)
	rootCmd.AddCommand(cacheCmd)
}
