package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/zimhealth/registry-cli/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show aggregate counts for the canonical directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		facilities, err := store.LoadFacilities(cfg.Data.StorePath)
		if err != nil {
			return err
		}

		byProvince := map[string]int{}
		byTier := map[string]int{}
		verified := 0
		for _, f := range facilities {
			byProvince[f.Province]++
			if f.Tier != "" {
				byTier[f.Tier]++
			}
			if f.Verified {
				verified++
			}
		}

		fmt.Printf("Facilities: %d\n", len(facilities))
		fmt.Printf("Verified: %d\n", verified)
		printBreakdown("By province:", byProvince)
		printBreakdown("By tier:", byTier)
		return nil
	},
}

func printBreakdown(heading string, counter map[string]int) {
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
		fmt.Printf("  %s: %d\n", name, counter[name])
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
