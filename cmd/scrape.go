package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/zimhealth/registry-cli/internal/dedupe"
	"github.com/zimhealth/registry-cli/internal/pipeline"
	"github.com/zimhealth/registry-cli/internal/schema"
	"github.com/zimhealth/registry-cli/internal/source"
	"github.com/zimhealth/registry-cli/internal/store"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Build a fresh scraped batch from all raw and seed sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		loaders, err := source.ScanDir(cfg.Data.RawDir)
		if err != nil {
			return err
		}
		loaders = append(loaders, source.Seeds()...)

		mapperOpts := schema.Options{Trusted: cfg.Dedupe.TrustedSources}
		if cfg.Schema.RulesPath != "" {
			rules, err := schema.LoadRules(cfg.Schema.RulesPath)
			if err != nil {
				return err
			}
			mapperOpts.Rules = rules
		}

		p := pipeline.New(loaders, schema.NewMapper(mapperOpts), dedupe.Options{
			Threshold:      cfg.Dedupe.Threshold,
			HighConfidence: cfg.Dedupe.HighConfidence,
			Trusted:        cfg.TrustedSet(),
		})

		result, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}

		if err := store.SaveFacilities(cfg.Data.ScrapedPath, result.Facilities); err != nil {
			return err
		}
		// The historical copy feeds the next update as a fallback batch.
		if err := store.SaveFacilities(cfg.Data.HistoricalPath, result.Facilities); err != nil {
			return eris.Wrap(err, "scrape: write historical copy")
		}

		fmt.Printf("Wrote %d facilities to %s\n", len(result.Facilities), cfg.Data.ScrapedPath)
		if result.Dropped > 0 {
			fmt.Printf("Dropped %d records missing name or province\n", result.Dropped)
		}
		for _, label := range result.Failed {
			fmt.Printf("Source failed: %s\n", label)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
