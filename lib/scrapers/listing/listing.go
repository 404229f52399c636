package listing

import (
	"bytes"
	"context"
	"fmt"

	"souqscrape/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/listing")

// FetchError wraps a network or parse failure for one page. The pipeline
// treats a failed page as recoverable, so callers branch on this rather
// than unwinding.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetchCards scrapes one listing page into field maps, one per listing
// card. The date_published field carries the marketplace's
// "YYYY-MM-DD HH:MM" timestamp when the card has one.
func (c *Client) FetchCards(ctx context.Context, pageUrl string) ([]map[string]string, error) {
	ctx, span := tracer.Start(ctx, "client:FetchCards")
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
	if res.StatusCode() >= 400 {
		err := fmt.Errorf("status %d", res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad status")
		return nil, &FetchError{URL: pageUrl, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, &FetchError{URL: pageUrl, Err: err}
	}

	var cards []map[string]string
	doc.Find("div[class^=StackedCard_card]").Each(func(_ int, sel *goquery.Selection) {
		card := map[string]string{
			"title":       htmlutil.CleanText(sel.Find("[class^=StackedCard_title]").Text()),
			"price":       htmlutil.CleanText(sel.Find("[class^=StackedCard_price]").Text()),
			"description": htmlutil.CleanText(sel.Find("[class^=StackedCard_description]").Text()),
		}

		if href, ok := sel.Find("a").First().Attr("href"); ok {
			link, err := c.BaseUrl.Parse(href)
			if err == nil {
				card["link"] = link.String()
			}
		}
		if published, ok := sel.Find("time").First().Attr("datetime"); ok {
			card["date_published"] = published
		}

		cards = append(cards, card)
	})

	span.SetAttributes(attribute.Int("cards", len(cards)))
	return cards, nil
}
