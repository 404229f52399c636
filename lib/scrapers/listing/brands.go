package listing

import (
	"bytes"
	"context"
	"strings"

	"souqscrape/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Brand is one sub-category discovered on a section landing page, e.g. a
// medical specialty. PageTemplate carries a %d placeholder for the page
// number.
type Brand struct {
	Title        string
	PageTemplate string
}

// Brands scrapes the brand anchors off a section landing page. Sections
// like medical services don't have a static category list; their
// sub-categories are whatever the site shows that day.
func (c *Client) Brands(ctx context.Context, pageUrl string) ([]Brand, error) {
	ctx, span := tracer.Start(ctx, "client:Brands")
	defer span.End()
	span.SetAttributes(attribute.String("url", pageUrl))

	res, err := c.Http.R().
		SetContext(ctx).
		Get(pageUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, &FetchError{URL: pageUrl, Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, &FetchError{URL: pageUrl, Err: err}
	}

	anchors := htmlutil.GetAnchors(doc.Find("div[class^=styles_itemWrapper] a"), c.BaseUrl)

	brands := make([]Brand, 0, len(anchors))
	for _, a := range anchors {
		if a.Name == "" || a.Href == "" {
			continue
		}
		// resolved hrefs carry percent-encoded slugs on Arabic pages;
		// literal percents must be escaped or page-number formatting
		// would consume them as verbs
		template := strings.ReplaceAll(a.Href, "%", "%%") + "/%d"
		brands = append(brands, Brand{
			Title:        a.Name,
			PageTemplate: template,
		})
	}

	span.SetAttributes(attribute.Int("brands", len(brands)))
	return brands, nil
}
