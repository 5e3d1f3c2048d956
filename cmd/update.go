package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zimhealth/registry-cli/internal/reconcile"
	"github.com/zimhealth/registry-cli/internal/store"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Reconcile the scraped batch into the canonical directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		existing, err := store.LoadFacilities(cfg.Data.StorePath)
		if err != nil {
			return err
		}
		primary, err := store.LoadFacilities(cfg.Data.ScrapedPath)
		if err != nil {
			return err
		}
		fallback, err := store.LoadFacilities(cfg.Data.HistoricalPath)
		if err != nil {
			return err
		}

		today := time.Now().UTC().Format("2006-01-02")
		merged, stats := reconcile.Merge(existing, primary, fallback, today)

		if err := store.SaveFacilities(cfg.Data.StorePath, merged); err != nil {
			return err
		}
		if err := store.SaveFacilities(cfg.Data.FullPath, merged); err != nil {
			return err
		}

		printStats(stats)
		recordRun(cmd, "update", stats)
		return nil
	},
}

func printStats(stats reconcile.Stats) {
	fmt.Printf("Existing records: %d\n", stats.Existing)
	fmt.Printf("New scraped records: %d\n", stats.Scraped)
	if stats.Historical > 0 {
		fmt.Printf("Historical scrape records: %d\n", stats.Historical)
	}
	fmt.Printf("Updated records: %d\n", stats.Updated)
	fmt.Printf("Newly added: %d\n", stats.Added)
	fmt.Printf("Total after merge: %d\n", stats.Total)

	printCounter("Scraped source coverage (deduped records per source):", stats.ScrapedBySource)
	printCounter("New additions by source:", stats.NewBySource)
	printCounter("Updated records by source:", stats.UpdatedBySource)
}

func printCounter(heading string, counter map[string]int) {
	if len(counter) == 0 {
		return
	}
	names := make([]string, 0, len(counter))
	for name := range counter {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println(heading)
	for _, name := range names {
		fmt.Printf("  - %s: %d\n", name, counter[name])
	}
}

// recordRun appends the run to the history database. History failures
// never fail the command that produced the data.
func recordRun(cmd *cobra.Command, command string, stats reconcile.Stats) {
	h, err := store.OpenHistory(cfg.Store.HistoryPath)
	if err != nil {
		zap.L().Warn("history unavailable, run not recorded", zap.Error(err))
		return
	}
	defer h.Close()

	ctx := cmd.Context()
	if err := h.Migrate(ctx); err != nil {
		zap.L().Warn("history migrate failed", zap.Error(err))
		return
	}
	if _, err := h.RecordRun(ctx, command, stats); err != nil {
		zap.L().Warn("failed to record run", zap.Error(err))
	}
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
