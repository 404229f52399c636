package htmlutil

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CleanText collapses the markup noise listing pages carry: non-printable
// characters, leading/trailing space, and runs of inner whitespace.
func CleanText(s string) string {
	cleaned := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			cleaned.WriteRune(c)
		}
	}
	out := strings.Trim(cleaned.String(), " \t\n")
	return innerWhitespace.ReplaceAllString(out, " ")
}

type Anchor struct {
	Name string
	Href string
}

// GetAnchors extracts (name, href) pairs from a selection of <a> nodes.
// Relative hrefs are resolved against base when one is given; the name
// prefers the title attribute over the anchor text since listing pages
// abbreviate the visible text.
func GetAnchors(sel *goquery.Selection, base *url.URL) []Anchor {
	anchors := []Anchor{}
	sel.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		link, err := url.Parse(href)
		if err != nil {
			return
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		name := a.AttrOr("title", "")
		if name == "" {
			name = a.Text()
		}
		name = CleanText(name)

		anchors = append(anchors, Anchor{
			Name: name,
			Href: link.String(),
		})
	})
	return anchors
}
