package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zimhealth/registry-cli/internal/store"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded reconciliation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := store.OpenHistory(cfg.Store.HistoryPath)
		if err != nil {
			return err
		}
		defer h.Close()

		if err := h.Migrate(cmd.Context()); err != nil {
			return err
		}
		runs, err := h.ListRuns(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  %-8s added=%d updated=%d total=%d\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"), r.ID, r.Command,
				r.Added, r.Updated, r.Total,
			)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs to list")
	rootCmd.AddCommand(runsCmd)
}
