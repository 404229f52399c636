package commands

import (
	"context"
	"fmt"

	"souqscrape/lib/serviceutil"
	"souqscrape/services/pipeline"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(contractingCmd)
}

// contractingCategories is the fixed category list of the contracting
// section. Page depths track how much each category posts per day.
func contractingCategories(baseUrl string) []pipeline.CategorySpec {
	category := func(name, slug string, pages int) pipeline.CategorySpec {
		return pipeline.CategorySpec{
			Name: name,
			Sources: []pipeline.Source{{
				URLTemplate: fmt.Sprintf("%s/ar/contracting/%s/%%d", baseUrl, slug),
				Pages:       pages,
			}},
		}
	}
	return []pipeline.CategorySpec{
		category("مكافحة الحشرات", "bugs-exterminator", 1),
		category("مقاول صحى", "plumber", 4),
		category("الأقفال", "locksmith", 2),
		category("تسليك مجارى", "duct-cleaning", 2),
		category("التكييف", "ac-services", 1),
		category("أصباغ", "painter", 3),
		category("أعمال الديكور", "decoration", 4),
		category("مشاتل و حدائق", "gardener", 2),
		category("صيانة أجهزة منزلية", "home-appliances-maintenance", 3),
		category("مقاول كهرباء", "electrician", 3),
		category("نجار", "carpenter", 3),
		category("حدادة", "metalwork", 4),
		category("كاشي و سيراميك", "ceramic", 3),
		category("عازل", "insulated-roof", 1),
		category("ألمنيوم", "aluminum-2667", 4),
		category("مقاولات بناء", "builders", 3),
		category("فنى زجاج", "glass", 1),
		category("الأبواب", "doors", 1),
		category("مصاعد", "elevators", 1),
		category("أعمال التهوية", "ventilation-works", 1),
		category("خزانات مياه", "water-tanks", 1),
		category("منتجات زراعية", "agricultural-products", 1),
		category("مواد بناء", "building-materials", 1),
	}
}

func runContracting(ctx context.Context, cfg Config) error {
	client, err := newListingClient(cfg)
	if err != nil {
		return fmt.Errorf("initialize listing client: %w", err)
	}
	return runSection(ctx, cfg, cfg.Contracting, client, contractingCategories(cfg.BaseUrl))
}

var contractingCmd = &cobra.Command{
	Use:   "contracting",
	Short: "Scrapes yesterday's contracting listings and uploads them to Drive.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		err := runContracting(cmd.Context(), cfg)
		if err != nil {
			serviceutil.Fatal("contracting run failed", err)
		}
	},
}
