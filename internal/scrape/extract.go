package scrape

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NoTitle is recorded when a document carries no usable title element.
const NoTitle = "No title"

const (
	maxTitleLen = 255
	maxNameLen  = 255
	maxURLLen   = 2000
)

// Link is one hyperlink discovered on a page: the resolved absolute URL
// and the anchor's visible text.
type Link struct {
	URL  string
	Name string
}

// ExtractTitle returns the document's trimmed title text, or NoTitle when
// the element is absent or empty.
func ExtractTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return NoTitle
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return NoTitle
	}
	return truncate(title, maxTitleLen)
}

// ExtractLinks enumerates every anchor carrying an href, resolves it
// against baseURL, and keeps it iff the resolved URL is valid, is not a
// script-execution scheme, and fits the stored column width. Anchors with
// empty trimmed text are dropped. Document order is preserved and no
// dedup is applied; a page linking to the same target twice yields two
// entries.
func ExtractLinks(baseURL, html string) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	var links []Link
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}

		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if strings.EqualFold(resolved.Scheme, "javascript") {
			return
		}

		full := resolved.String()
		if !IsValidURL(full) || len(full) > maxURLLen {
			return
		}

		name := strings.TrimSpace(s.Text())
		if name == "" {
			return
		}

		links = append(links, Link{URL: full, Name: truncate(name, maxNameLen)})
	})

	return links, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
