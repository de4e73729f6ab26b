package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// GofeedParser applies the same item rules as Parser on top of a full XML
// parser. It rejects documents that are not well-formed.
type GofeedParser struct {
	gofeedParser *gofeed.Parser
	now          func() time.Time
}

func NewGofeedParser() *GofeedParser {
	return &GofeedParser{
		gofeedParser: gofeed.NewParser(),
		now:          time.Now,
	}
}

func (p *GofeedParser) Run(data []byte) ([]RawItem, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	now := p.now()
	items := make([]RawItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}

		title := StripHTML(item.Title)
		link := cmp.Or(strings.TrimSpace(item.Link), strings.TrimSpace(item.GUID))
		if title == "" || link == "" {
			continue
		}

		published := now
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		normalized := RawItem{
			Title:       title,
			URL:         link,
			Summary:     normalizeSummary(cmp.Or(item.Description, item.Content)),
			PublishedAt: published,
		}

		if parsed.FeedType != "atom" {
			normalized.ImageURL = p.imageURL(item)
		}

		items = append(items, normalized)
	}

	return items, nil
}

func (p *GofeedParser) imageURL(item *gofeed.Item) string {
	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil && item.Enclosures[0].URL != "" {
		return item.Enclosures[0].URL
	}

	if media, ok := item.Extensions["media"]; ok {
		for _, name := range []string{"content", "thumbnail"} {
			for _, extension := range media[name] {
				if url := extension.Attrs["url"]; url != "" {
					return url
				}
			}
		}
	}

	if item.Image != nil {
		return item.Image.URL
	}

	return ""
}
