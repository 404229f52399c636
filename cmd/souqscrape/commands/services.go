package commands

import (
	"context"
	"fmt"

	"souqscrape/lib/serviceutil"
	"souqscrape/services/pipeline"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(servicesCmd)
}

func servicesCategories(baseUrl string) []pipeline.CategorySpec {
	category := func(name, slug string, pages int) pipeline.CategorySpec {
		return pipeline.CategorySpec{
			Name: name,
			Sources: []pipeline.Source{{
				URLTemplate: fmt.Sprintf("%s/ar/services/%s/%%d", baseUrl, slug),
				Pages:       pages,
			}},
		}
	}
	return []pipeline.CategorySpec{
		category("ستلايت", "satellite", 3),
		category("نقل عفش", "pack-and-move", 7),
		category("التنظيف", "cleaning-services", 5),
		category("تعقيب معاملات", "clearing-agent", 1),
		category("مستلزمات الأفراح", "parties", 6),
		category("خياطة", "tailor-2828", 1),
		category("سياحة و سفر", "travel-and-tourism", 1),
		category("صالونات تجميل", "hairdresser", 1),
		category("المصابغ", "laundry", 1),
		category("مأكولات", "food-and-catering", 1),
		category("رخص تجارية", "commercial-licenses", 1),
		category("خدمات إعلانية", "advertisment-services", 1),
		category("خدمات توصيل", "transportation-and-logistics", 2),
		category("خدمات مختلفة", "other-services", 1),
	}
}

func runServices(ctx context.Context, cfg Config) error {
	client, err := newListingClient(cfg)
	if err != nil {
		return fmt.Errorf("initialize listing client: %w", err)
	}
	return runSection(ctx, cfg, cfg.Services, client, servicesCategories(cfg.BaseUrl))
}

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "Scrapes yesterday's general-services listings and uploads them to Drive.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		err := runServices(cmd.Context(), cfg)
		if err != nil {
			serviceutil.Fatal("services run failed", err)
		}
	},
}
