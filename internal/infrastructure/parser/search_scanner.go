package parser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsCatcher/internal/domain"
	"NewsCatcher/internal/recency"
	"NewsCatcher/internal/scanner"
	"NewsCatcher/pkg/timeutil"
)

const queryPlaceholder = "{query}"

// Layout describes a search result page: where to query and which selectors hold each field.
// Byline is the whole author line, searched for a date when Time matches nothing.
type Layout struct {
	Name         string
	SearchURL    string
	Container    string
	Title        string
	Snippet      string
	Source       string
	Time         string
	Byline       string
	MaxKeywords  int
	KeywordDelay time.Duration
}

// BaiduLayout is the news.baidu.com result page.
var BaiduLayout = Layout{
	Name:         "baidu",
	SearchURL:    "https://news.baidu.com/ns?word={query}&tn=news&from=news&cl=2&rn=10&ct=1",
	Container:    "div.result",
	Title:        "h3 a",
	Snippet:      "div.c-summary, div.c-abstract, p",
	Source:       "span.c-color-gray, p.c-author",
	Time:         "span.c-color-gray2",
	Byline:       "p.c-author, span.c-color-gray",
	MaxKeywords:  3,
	KeywordDelay: time.Second,
}

// SogouLayout is the news.sogou.com result page.
var SogouLayout = Layout{
	Name:         "sogou",
	SearchURL:    "https://news.sogou.com/news?query={query}&mode=1&sort=0",
	Container:    "div.news-list li, div.results div.vrwrap",
	Title:        "h3 a",
	Snippet:      "p.txt-info",
	Source:       "p.news-from span",
	Time:         "p.news-from span:last-child",
	Byline:       "p.news-from",
	MaxKeywords:  2,
	KeywordDelay: time.Second,
}

// HTMLSearchScanner queries a search engine page per keyword and scrapes its results with goquery.
type HTMLSearchScanner struct {
	layout Layout
	client *http.Client
	sleep  func(context.Context, time.Duration) error
}

// NewHTMLSearchScanner wires an HTTP client to a result page layout.
func NewHTMLSearchScanner(layout Layout, client *http.Client) *HTMLSearchScanner {
	return &HTMLSearchScanner{layout: layout, client: defaultClient(client), sleep: timeutil.Sleep}
}

// NewBaiduScanner builds the Baidu news provider.
func NewBaiduScanner(client *http.Client) *HTMLSearchScanner {
	return NewHTMLSearchScanner(BaiduLayout, client)
}

// NewSogouScanner builds the Sogou news provider.
func NewSogouScanner(client *http.Client) *HTMLSearchScanner {
	return NewHTMLSearchScanner(SogouLayout, client)
}

// Name identifies the strategy inside the registry.
func (s *HTMLSearchScanner) Name() string {
	return s.layout.Name
}

// Fetch queries the leading keywords of the label. Keyword failures are
// tolerated as long as one query succeeds.
func (s *HTMLSearchScanner) Fetch(ctx context.Context, req scanner.Request) ([]domain.RawFragment, error) {
	keywords := limitKeywords(req.Keywords, req.Option("maxKeywords", ""), s.layout.MaxKeywords)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%s: no keywords for label %s", s.layout.Name, req.Label)
	}

	template := s.layout.SearchURL
	if len(req.Categories) > 0 && req.Categories[0].URL != "" {
		template = req.Categories[0].URL
	}

	var (
		results []domain.RawFragment
		errs    []error
	)
	for i, kw := range keywords {
		if i > 0 {
			if err := s.sleep(ctx, s.layout.KeywordDelay); err != nil {
				errs = append(errs, err)
				break
			}
		}

		pageURL := buildSearchURL(template, kw)
		doc, err := fetchDocument(ctx, s.client, pageURL)
		if err != nil {
			errs = append(errs, fmt.Errorf("keyword %s: %w", kw, err))
			continue
		}
		results = append(results, s.extract(doc, pageURL)...)
	}

	if len(results) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", s.layout.Name, errors.Join(errs...))
	}
	return results, nil
}

func (s *HTMLSearchScanner) extract(doc *goquery.Document, pageURL string) []domain.RawFragment {
	var out []domain.RawFragment
	doc.Find(s.layout.Container).Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find(s.layout.Title).First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return
		}

		source, published := s.byline(sel)
		out = append(out, domain.RawFragment{
			Title:       title,
			URL:         href,
			BaseURL:     pageURL,
			Snippet:     firstText(sel, s.layout.Snippet),
			Source:      source,
			PublishTime: published,
		})
	})
	return out
}

// byline reads source and publish time. Layouts that print the date inside the
// author line get it cut out of the source text.
func (s *HTMLSearchScanner) byline(sel *goquery.Selection) (source, published string) {
	source = firstText(sel, s.layout.Source)
	published = firstText(sel, s.layout.Time)
	if published != "" && published != source {
		return source, published
	}

	published = recency.Extract(source)
	if published == "" {
		published = recency.Extract(firstText(sel, s.layout.Byline))
	}
	return trimDate(source, published), published
}

// trimDate cuts a date printed after the outlet name off a source line.
func trimDate(source, date string) string {
	if i := strings.Index(source, date); date != "" && i > 0 {
		return strings.TrimSpace(source[:i])
	}
	return source
}

func firstText(sel *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	var text string
	sel.Find(selector).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		text = strings.TrimSpace(node.Text())
		return text == ""
	})
	return text
}

func buildSearchURL(template, keyword string) string {
	return strings.ReplaceAll(template, queryPlaceholder, url.QueryEscape(keyword))
}

func limitKeywords(keywords []string, override string, fallback int) []string {
	limit := fallback
	if n, err := strconv.Atoi(override); err == nil && n > 0 {
		limit = n
	}
	if limit <= 0 || limit >= len(keywords) {
		return keywords
	}
	return keywords[:limit]
}
