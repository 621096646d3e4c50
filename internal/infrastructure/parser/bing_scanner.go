package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"NewsCatcher/internal/domain"
	"NewsCatcher/internal/recency"
	"NewsCatcher/internal/scanner"
)

const bingSearchURL = "https://cn.bing.com/news/search?q={query}&FORM=HDRSC6&cc=cn"

// bingContainers are tried in order; the first one present on the page wins.
var bingContainers = []string{"div.news-card", "div.newsitem", "div[data-idx]"}

// BingScanner crawls Bing News result pages with a colly collector per keyword.
type BingScanner struct {
	searchURL   string
	timeout     time.Duration
	maxKeywords int
}

// NewBingScanner uses the public cn.bing.com news endpoint.
func NewBingScanner(timeout time.Duration) *BingScanner {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &BingScanner{searchURL: bingSearchURL, timeout: timeout, maxKeywords: 2}
}

// Name identifies the strategy inside the registry.
func (b *BingScanner) Name() string {
	return "bing"
}

// Fetch visits one result page per keyword.
func (b *BingScanner) Fetch(ctx context.Context, req scanner.Request) ([]domain.RawFragment, error) {
	keywords := limitKeywords(req.Keywords, req.Option("maxKeywords", ""), b.maxKeywords)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("bing: no keywords for label %s", req.Label)
	}

	template := b.searchURL
	if len(req.Categories) > 0 && req.Categories[0].URL != "" {
		template = req.Categories[0].URL
	}

	var (
		results []domain.RawFragment
		errs    []error
	)
	for _, kw := range keywords {
		found, err := b.visit(ctx, buildSearchURL(template, kw))
		if err != nil {
			errs = append(errs, fmt.Errorf("keyword %s: %w", kw, err))
			continue
		}
		results = append(results, found...)
	}

	if len(results) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("bing: %w", errors.Join(errs...))
	}
	return results, nil
}

func (b *BingScanner) visit(ctx context.Context, pageURL string) ([]domain.RawFragment, error) {
	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.Async(false),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(b.timeout)

	var (
		mu       sync.Mutex
		out      []domain.RawFragment
		visitErr error
	)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", browserUserAgent)
		r.Headers.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	})

	c.OnHTML("body", func(e *colly.HTMLElement) {
		found := bingResults(e.DOM, e.Request.AbsoluteURL, pageURL)
		mu.Lock()
		out = append(out, found...)
		mu.Unlock()
	})

	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		visitErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
		mu.Unlock()
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, err
	}
	c.Wait()

	if visitErr != nil {
		return nil, visitErr
	}
	return out, nil
}

func bingResults(page *goquery.Selection, absolute func(string) string, pageURL string) []domain.RawFragment {
	var items *goquery.Selection
	for _, container := range bingContainers {
		if items = page.Find(container); items.Length() > 0 {
			break
		}
	}

	var out []domain.RawFragment
	items.Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a.title").First()
		if link.Length() == 0 {
			link = item.Find("a[href]").First()
		}
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return
		}

		snippet := firstText(item, "div.snippet")
		if snippet == "" {
			snippet = firstText(item, "p")
		}

		var source, published string
		meta := item.Find("div.source span")
		if meta.Length() > 0 {
			source = strings.TrimSpace(meta.First().Text())
			if meta.Length() > 1 {
				published = strings.TrimSpace(meta.Last().Text())
			}
		} else {
			source = firstText(item, "span.source")
		}
		if published == "" {
			published, _ = item.Find("div.source span[aria-label]").Attr("aria-label")
		}
		if published == "" {
			published = recency.Extract(source)
			source = trimDate(source, published)
		}

		out = append(out, domain.RawFragment{
			Title:       title,
			URL:         absolute(href),
			BaseURL:     pageURL,
			Snippet:     snippet,
			Source:      source,
			PublishTime: published,
		})
	})
	return out
}
