package normalize

import (
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"NewsCatcher/internal/domain"
	"NewsCatcher/pkg/textutil"
)

const (
	defaultMinTitleRunes   = 4
	defaultSnippetMaxRunes = 200
)

var tagExpr = regexp.MustCompile(`<[^>]*>`)

// Normalizer turns raw provider fragments into canonical items.
type Normalizer struct {
	minTitleRunes   int
	snippetMaxRunes int
	now             func() time.Time
}

// Option customizes a Normalizer.
type Option func(*Normalizer)

// WithMinTitleRunes sets the shortest title accepted.
func WithMinTitleRunes(n int) Option {
	return func(nr *Normalizer) {
		if n > 0 {
			nr.minTitleRunes = n
		}
	}
}

// WithSnippetMaxRunes caps the snippet length.
func WithSnippetMaxRunes(n int) Option {
	return func(nr *Normalizer) {
		if n > 0 {
			nr.snippetMaxRunes = n
		}
	}
}

// WithClock overrides the fetch timestamp source.
func WithClock(now func() time.Time) Option {
	return func(nr *Normalizer) {
		nr.now = now
	}
}

// New builds a normalizer with defaults of 4 title runes and 200 snippet runes.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		minTitleRunes:   defaultMinTitleRunes,
		snippetMaxRunes: defaultSnippetMaxRunes,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize returns the canonical item for a fragment, or false when the
// fragment is noise or cannot be given an absolute URL.
func (n *Normalizer) Normalize(frag domain.RawFragment) (domain.Item, bool) {
	title := StripMarkup(frag.Title)
	if utf8.RuneCountInString(title) < n.minTitleRunes {
		return domain.Item{}, false
	}

	link, ok := ResolveURL(frag.BaseURL, frag.URL)
	if !ok {
		return domain.Item{}, false
	}

	snippet := textutil.TruncateRunes(StripMarkup(frag.Snippet), n.snippetMaxRunes)
	source := textutil.NormalizeWhitespace(frag.Source)
	publishTime := textutil.NormalizeWhitespace(frag.PublishTime)

	return domain.NewItem(title, link, source, snippet, publishTime, n.now()), true
}

// StripMarkup removes tags and entities and collapses whitespace.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return textutil.NormalizeWhitespace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return textutil.NormalizeWhitespace(tagExpr.ReplaceAllString(s, " "))
	}
	return textutil.NormalizeWhitespace(doc.Text())
}

// ResolveURL makes raw absolute against base. Only http(s) results are accepted.
func ResolveURL(base, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "javascript:") || strings.HasPrefix(raw, "#") {
		return "", false
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	if !ref.IsAbs() {
		if base == "" {
			return "", false
		}
		baseURL, err := url.Parse(strings.TrimSpace(base))
		if err != nil || !baseURL.IsAbs() {
			return "", false
		}
		ref = baseURL.ResolveReference(ref)
	}

	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", false
	}
	if ref.Host == "" {
		return "", false
	}
	return ref.String(), true
}
