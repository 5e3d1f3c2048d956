package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zimhealth/registry-cli/internal/fetcher"
)

var fetchForce bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download remote raw source files into the raw directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:    cfg.Fetch.UserAgent,
			Timeout:      time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries:   cfg.Fetch.MaxRetries,
			RateLimiters: fetcher.DefaultRateLimiters(),
		})

		fetched, err := f.FetchAll(cmd.Context(), cfg.Data.RawDir, cfg.Fetch.Sources, fetchForce)
		if err != nil {
			return err
		}
		fmt.Printf("Fetched %d of %d remote sources into %s\n", fetched, len(cfg.Fetch.Sources), cfg.Data.RawDir)
		return nil
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "re-download files that already exist")
	rootCmd.AddCommand(fetchCmd)
}
