package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Scraper walks a single category's paginated sources and accumulates
// the records published on the target date.
type Scraper struct {
	fetcher   PageFetcher
	pageDelay time.Duration
}

func NewScraper(fetcher PageFetcher, pageDelay time.Duration) Scraper {
	return Scraper{
		fetcher:   fetcher,
		pageDelay: pageDelay,
	}
}

// Scrape fetches every page of every source in order. A failed page is
// logged and skipped; one broken page must not lose the rest of the
// category. The inter-page delay applies after every page, failed ones
// included, to respect the site's implicit rate limits.
func (s Scraper) Scrape(ctx context.Context, spec CategorySpec, target time.Time) []Record {
	ctx, span := tracer.Start(ctx, "scraper:Scrape")
	defer span.End()
	span.SetAttributes(attribute.String("category", spec.Name))

	slog.InfoContext(ctx, "starting category scrape", "category", spec.Name)

	var matched []Record
	for _, source := range spec.Sources {
		for page := 1; page <= source.Pages; page++ {
			pageUrl := fmt.Sprintf(source.URLTemplate, page)

			cards, err := s.fetcher.FetchCards(ctx, pageUrl)
			if err != nil {
				slog.WarnContext(ctx, "failed to scrape page", "url", pageUrl, "err", err)
				pageFetchFailures.Add(ctx, 1)
			} else {
				pagesFetched.Add(ctx, 1)
				matches := FilterByDate(cards, target)
				recordsMatched.Add(ctx, int64(len(matches)))
				matched = append(matched, matches...)
			}

			sleep(ctx, s.pageDelay)
			if ctx.Err() != nil {
				span.SetAttributes(attribute.Int("matched", len(matched)))
				return matched
			}
		}
	}

	slog.InfoContext(ctx, "finished category scrape", "category", spec.Name, "matched", len(matched))
	span.SetAttributes(attribute.Int("matched", len(matched)))
	return matched
}
