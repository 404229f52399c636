package htmlutil

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		in     string
		expect string
	}{
		{in: "  hello   world ", expect: "hello world"},
		{in: "multi\n\nline\ttext", expect: "multilinetext"},
		{in: "تمريض", expect: "تمريض"},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, CleanText(test.in))
	}
}

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<div class="items">
			<a title="Nursing" href="/ar/services/nursing">nur...</a>
			<a href="https://example.com/absolute">  Absolute   Link </a>
			<a>no href</a>
		</div>
	`))
	require.NoError(t, err)

	base, err := url.Parse("https://www.q84sale.com")
	require.NoError(t, err)

	anchors := GetAnchors(doc.Find("div.items a"), base)
	require.Equal(t, []Anchor{
		{Name: "Nursing", Href: "https://www.q84sale.com/ar/services/nursing"},
		{Name: "Absolute Link", Href: "https://example.com/absolute"},
	}, anchors)
}
