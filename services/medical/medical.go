// Package medical turns a section landing page into pipeline categories.
// Unlike the contracting and general-services sections, whose category
// lists are fixed configuration, the medical section's sub-categories
// are whatever brands the site lists that day, so a run discovers them
// first and then hands them to the same orchestrator every other
// section uses.
package medical

import (
	"context"
	"fmt"
	"log/slog"

	"souqscrape/lib/scrapers/listing"
	"souqscrape/services/pipeline"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/medical")

// BrandLister discovers brand links off a landing page.
type BrandLister interface {
	Brands(ctx context.Context, pageUrl string) ([]listing.Brand, error)
}

// PageRule decides how many pages each discovered brand gets. Brands
// named in SpecificBrands get SpecificPages, everything else gets
// DefaultPages. High-volume specialties like nursing need the deeper
// crawl.
type PageRule struct {
	DefaultPages   int      `json:"default_pages"`
	SpecificPages  int      `json:"specific_pages"`
	SpecificBrands []string `json:"specific_brands"`
}

func (r PageRule) PagesFor(title string) int {
	pages := r.DefaultPages
	if pages <= 0 {
		pages = 1
	}
	for _, brand := range r.SpecificBrands {
		if brand != title {
			continue
		}
		if r.SpecificPages > 0 {
			return r.SpecificPages
		}
		return pages
	}
	return pages
}

// DiscoverCategories scrapes the landing page and maps each brand to a
// single-source category. An empty landing page is an error: a run with
// zero categories would silently upload nothing.
func DiscoverCategories(
	ctx context.Context,
	lister BrandLister,
	landingUrl string,
	rule PageRule,
) ([]pipeline.CategorySpec, error) {
	ctx, span := tracer.Start(ctx, "medical:DiscoverCategories")
	defer span.End()
	span.SetAttributes(attribute.String("url", landingUrl))

	brands, err := lister.Brands(ctx, landingUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to discover brands")
		return nil, fmt.Errorf("discover brands: %w", err)
	}
	if len(brands) == 0 {
		err := fmt.Errorf("no brands found on %s", landingUrl)
		span.RecordError(err)
		span.SetStatus(codes.Error, "landing page had no brands")
		return nil, err
	}

	categories := make([]pipeline.CategorySpec, 0, len(brands))
	for _, brand := range brands {
		pages := rule.PagesFor(brand.Title)
		slog.DebugContext(
			ctx, "discovered brand",
			"title", brand.Title,
			"pages", pages,
		)
		categories = append(categories, pipeline.CategorySpec{
			Name: brand.Title,
			Sources: []pipeline.Source{
				{URLTemplate: brand.PageTemplate, Pages: pages},
			},
		})
	}

	span.SetAttributes(attribute.Int("categories", len(categories)))
	return categories, nil
}
