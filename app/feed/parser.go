package feed

import (
	"cmp"
	"time"

	"github.com/araddon/dateparse"
)

const MaxSummaryLength = 500

// imageSources lists where an RSS item may carry its image, in priority order
var imageSources = []struct{ tag, attr string }{
	{"enclosure", "url"},
	{"media:content", "url"},
	{"media:thumbnail", "url"},
}

// Parser extracts items from RSS 2.0, RSS 1.0 and Atom documents. RSS <item>
// blocks are tried first; Atom <entry> blocks only when no RSS item was accepted.
type Parser struct {
	extractor FieldExtractor
	now       func() time.Time
}

func NewParser() *Parser {
	return NewParserWithExtractor(NewRegexExtractor())
}

func NewParserWithExtractor(extractor FieldExtractor) *Parser {
	return &Parser{
		extractor: extractor,
		now:       time.Now,
	}
}

func (p *Parser) Run(data []byte) ([]RawItem, error) {
	doc := string(data)
	now := p.now()

	items := p.parseRSS(doc, now)
	if len(items) == 0 {
		items = p.parseAtom(doc, now)
	}

	return items, nil
}

func (p *Parser) parseRSS(doc string, now time.Time) []RawItem {
	var items []RawItem

	for _, block := range p.extractor.Blocks(doc, "item") {
		title := StripHTML(p.text(block, "title"))
		link := cmp.Or(p.link(block, "link"), p.link(block, "guid"))
		if title == "" || link == "" {
			continue
		}

		description := cmp.Or(p.text(block, "description"), p.text(block, "content:encoded"))
		published := cmp.Or(p.text(block, "pubDate"), p.text(block, "dc:date"))

		var imageURL string
		for _, src := range imageSources {
			if value, ok := p.extractor.Attr(block, src.tag, src.attr); ok && value != "" {
				imageURL = value
				break
			}
		}

		items = append(items, RawItem{
			Title:       title,
			URL:         link,
			Summary:     normalizeSummary(description),
			PublishedAt: parseDate(published, now),
			ImageURL:    imageURL,
		})
	}

	return items
}

func (p *Parser) parseAtom(doc string, now time.Time) []RawItem {
	var items []RawItem

	for _, block := range p.extractor.Blocks(doc, "entry") {
		title := StripHTML(p.text(block, "title"))

		link, _ := p.extractor.Attr(block, "link", "href")
		if link == "" {
			link = p.link(block, "link")
		}

		if title == "" || link == "" {
			continue
		}

		summary := cmp.Or(p.text(block, "summary"), p.text(block, "content"))
		published := cmp.Or(p.text(block, "published"), p.text(block, "updated"))

		items = append(items, RawItem{
			Title:       title,
			URL:         link,
			Summary:     normalizeSummary(summary),
			PublishedAt: parseDate(published, now),
		})
	}

	return items
}

func (p *Parser) text(block, tag string) string {
	value, _ := p.extractor.Text(block, tag)
	return value
}

// link returns element text as a URL with XML entities decoded, matching Attr
func (p *Parser) link(block, tag string) string {
	return entityReplacer.Replace(p.text(block, tag))
}

func normalizeSummary(s string) string {
	return Truncate(StripHTML(s), MaxSummaryLength)
}

// parseDate accepts the RFC 822, RFC 3339 and loose variants found in feeds;
// missing or unparseable values fall back to now.
func parseDate(value string, now time.Time) time.Time {
	if value == "" {
		return now
	}

	t, err := dateparse.ParseAny(value)
	if err != nil {
		return now
	}

	return t
}
