package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"souqscrape/lib/configutil"
	"souqscrape/lib/drive"
	"souqscrape/lib/excel"
	"souqscrape/lib/scrapers/listing"
	"souqscrape/services/pipeline"
)

// runSection executes one full scrape-and-upload run for a section and
// prints the per-category summary.
func runSection(
	ctx context.Context,
	cfg Config,
	section SectionConfig,
	fetcher pipeline.PageFetcher,
	categories []pipeline.CategorySpec,
) error {
	creds, err := configutil.ReadEnvJSON[drive.Credentials](section.CredentialsEnv)
	if err != nil {
		return fmt.Errorf("read credentials: %w", err)
	}

	writer, err := excel.NewWriter(cfg.StagingDir)
	if err != nil {
		return fmt.Errorf("initialize staging dir: %w", err)
	}

	store := drive.NewClient(drive.ClientOptions{
		Credentials:  creds,
		ParentFolder: section.ParentFolder,
	})

	orch := pipeline.NewOrchestrator(categories, fetcher, writer, store, cfg.Pacing.options())

	t1 := time.Now()
	summary, err := orch.Run(ctx)
	if err != nil {
		return err
	}
	t2 := time.Now()

	fmt.Println(summary.Render())
	slog.Info("run time", "seconds", t2.Sub(t1).Seconds())
	return nil
}

func newListingClient(cfg Config) (*listing.Client, error) {
	return listing.NewClient(listing.ClientOptions{BaseUrl: cfg.BaseUrl})
}
