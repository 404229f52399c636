package commands

import (
	"context"
	"fmt"

	"souqscrape/lib/serviceutil"
	"souqscrape/services/medical"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(medicalCmd)
}

// runMedical discovers the section's brands fresh every run before
// scraping; the site's brand list shifts day to day.
func runMedical(ctx context.Context, cfg Config) error {
	client, err := newListingClient(cfg)
	if err != nil {
		return fmt.Errorf("initialize listing client: %w", err)
	}

	categories, err := medical.DiscoverCategories(ctx, client, cfg.Medical.LandingUrl, medical.PageRule{
		DefaultPages:   cfg.Medical.DefaultPages,
		SpecificPages:  cfg.Medical.SpecificPages,
		SpecificBrands: cfg.Medical.SpecificBrands,
	})
	if err != nil {
		return err
	}

	return runSection(ctx, cfg, cfg.Medical.SectionConfig, client, categories)
}

var medicalCmd = &cobra.Command{
	Use:   "medical",
	Short: "Discovers medical-services brands, scrapes yesterday's listings and uploads them to Drive.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		err := runMedical(cmd.Context(), cfg)
		if err != nil {
			serviceutil.Fatal("medical run failed", err)
		}
	},
}
