package feed

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

// FieldExtractor pulls known fields out of loosely well-formed feed markup.
// Tag and attribute names are matched case-insensitively.
type FieldExtractor interface {
	// Blocks returns the inner markup of every <tag>...</tag> element in doc.
	Blocks(doc, tag string) []string
	// Text returns the CDATA payload of the first tag element, or its trimmed inner text.
	Text(block, tag string) (string, bool)
	// Attr returns the value of attr on the first tag element that carries it.
	Attr(block, tag, attr string) (string, bool)
}

var _ FieldExtractor = (*RegexExtractor)(nil)

var (
	cdataPattern   = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	markupPattern  = regexp.MustCompile(`<[^>]*>`)
	entityReplacer = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
)

// RegexExtractor implements FieldExtractor with regular expressions instead of
// an XML parser so that slightly malformed feeds still yield their items.
type RegexExtractor struct {
	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
}

func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{
		patterns: make(map[string]*regexp.Regexp),
	}
}

func (e *RegexExtractor) Blocks(doc, tag string) []string {
	name := regexp.QuoteMeta(tag)
	re := e.pattern("block:"+tag, `(?is)<`+name+`(?:\s[^>]*)?>(.*?)</`+name+`\s*>`)

	matches := re.FindAllStringSubmatch(doc, -1)
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, m[1])
	}
	return blocks
}

func (e *RegexExtractor) Text(block, tag string) (string, bool) {
	name := regexp.QuoteMeta(tag)
	open := e.pattern("open:"+tag, `(?i)<`+name+`(\s[^>]*)?>`)
	closing := e.pattern("close:"+tag, `(?i)</`+name+`\s*>`)

	for _, loc := range open.FindAllStringSubmatchIndex(block, -1) {
		// Self-closing elements carry no text
		if loc[2] >= 0 && strings.HasSuffix(block[loc[2]:loc[3]], "/") {
			continue
		}

		rest := block[loc[1]:]
		end := closing.FindStringIndex(rest)
		if end == nil {
			return "", false
		}

		inner := rest[:end[0]]
		if m := cdataPattern.FindStringSubmatch(inner); m != nil {
			return strings.TrimSpace(m[1]), true
		}
		return strings.TrimSpace(inner), true
	}

	return "", false
}

func (e *RegexExtractor) Attr(block, tag, attr string) (string, bool) {
	open := e.pattern("tag:"+tag, `(?i)<`+regexp.QuoteMeta(tag)+`\s[^>]*>`)
	value := e.pattern("attr:"+attr, `(?i)\s`+regexp.QuoteMeta(attr)+`\s*=\s*(?:"([^"]*)"|'([^']*)')`)

	for _, element := range open.FindAllString(block, -1) {
		m := value.FindStringSubmatch(element)
		if m == nil {
			continue
		}
		if m[1] != "" {
			return strings.TrimSpace(entityReplacer.Replace(m[1])), true
		}
		return strings.TrimSpace(entityReplacer.Replace(m[2])), true
	}

	return "", false
}

func (e *RegexExtractor) pattern(key, expr string) *regexp.Regexp {
	e.mu.RLock()
	re, ok := e.patterns[key]
	e.mu.RUnlock()
	if ok {
		return re
	}

	re = regexp.MustCompile(expr)

	e.mu.Lock()
	e.patterns[key] = re
	e.mu.Unlock()

	return re
}

// StripHTML removes markup, decodes the common named entities and trims whitespace
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(entityReplacer.Replace(markupPattern.ReplaceAllString(s, "")))
}

// Truncate returns at most n characters of s
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
