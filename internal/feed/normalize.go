// Package feed provides feed fetching and normalization into canonical
// article records.
package feed

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/milefeed/milefeed/internal/model"
)

// MaxExcerptLen caps the working excerpt passed to enrichment.
const MaxExcerptLen = 500

// Categorizer assigns a category to an article title.
type Categorizer interface {
	Categorize(title string) string
}

// NormalizedArticle pairs a canonical record with its working excerpt.
// The excerpt feeds enrichment and is not persisted verbatim.
type NormalizedArticle struct {
	Article model.Article
	Excerpt string
}

// Date layouts tried against the raw publish-date string, grouped by
// observed source conventions: ISO-8601 first, then RFC-2822.
var (
	isoLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z0700",
		"2006-01-02T15:04:05",
	}
	rfc2822Layouts = []string{
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		time.RFC822Z,
		time.RFC822,
	}
	looseLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02",
		"January 2, 2006",
		"Jan 2, 2006",
	}
)

// ParseDate parses a raw publish-date string. The second return is
// false when no layout matched.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, group := range [][]string{isoLayouts, rfc2822Layouts, looseLayouts} {
		for _, layout := range group {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// publishedAt resolves an item's publish time. It never fails: the raw
// string is tried first, then gofeed's own permissive parse of the
// published/updated fields, then the processing time.
func publishedAt(item *gofeed.Item, now time.Time) time.Time {
	if t, ok := ParseDate(item.Published); ok {
		return t
	}
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return now
}

// reImgSrc pulls the src attribute off the first img tag in a content
// body. Leading-match extraction only, not full markup parsing.
var reImgSrc = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)

// imageURL extracts a representative image for an item, or nil.
// Preference: media:content URL, then an image enclosure, then the
// first inline img tag.
func imageURL(item *gofeed.Item) *string {
	if media, ok := item.Extensions["media"]; ok {
		for _, content := range media["content"] {
			if u := strings.TrimSpace(content.Attrs["url"]); u != "" {
				return &u
			}
		}
	}

	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(enc.Type, "image/") {
			u := enc.URL
			return &u
		}
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}
	if m := reImgSrc.FindStringSubmatch(body); m != nil {
		return &m[1]
	}

	return nil
}

var reStripTags = regexp.MustCompile(`<[^>]*>`)

// stripMarkup reduces an HTML fragment to plain text with single
// spaces between words.
func stripMarkup(html string) string {
	if !strings.Contains(html, "<") {
		return strings.Join(strings.Fields(html), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(reStripTags.ReplaceAllString(html, " ")), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// excerpt builds the bounded plain-text excerpt for an item. The
// description is preferred over encoded content. Empty output is valid.
func excerpt(item *gofeed.Item) string {
	body := item.Description
	if strings.TrimSpace(body) == "" {
		body = item.Content
	}
	text := strings.TrimSpace(stripMarkup(body))
	if utf8.RuneCountInString(text) <= MaxExcerptLen {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:MaxExcerptLen-1])) + "…"
}

// guid returns the stable dedup identifier for an item: the feed's own
// GUID when present, else a source::link composite.
func guid(item *gofeed.Item, source string) string {
	if item.GUID != "" {
		return item.GUID
	}
	return source + "::" + item.Link
}

// author picks the first non-empty of dc:creator and the item author.
func author(item *gofeed.Item) *string {
	if dc := item.DublinCoreExt; dc != nil {
		for _, c := range dc.Creator {
			if c = strings.TrimSpace(c); c != "" {
				return &c
			}
		}
	}
	if item.Author != nil {
		if name := strings.TrimSpace(item.Author.Name); name != "" {
			return &name
		}
	}
	return nil
}

// Normalize turns one raw feed item into a canonical record plus its
// working excerpt. Pure transformation: no network, no persistence.
func Normalize(item *gofeed.Item, source string, cat Categorizer, now time.Time) NormalizedArticle {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "Untitled"
	}

	return NormalizedArticle{
		Article: model.Article{
			GUID:        guid(item, source),
			Title:       title,
			URL:         item.Link,
			Source:      source,
			Author:      author(item),
			ImageURL:    imageURL(item),
			Category:    cat.Categorize(title),
			PublishedAt: publishedAt(item, now),
		},
		Excerpt: excerpt(item),
	}
}
