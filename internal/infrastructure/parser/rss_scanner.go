package parser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsCatcher/internal/domain"
	"NewsCatcher/internal/scanner"
)

// DefaultFeeds are the technology feeds polled when a site declares no categories.
var DefaultFeeds = []scanner.Category{
	{Name: "36氪", URL: "https://36kr.com/feed"},
	{Name: "IT之家", URL: "https://www.ithome.com/rss/"},
	{Name: "cnBeta", URL: "https://www.cnbeta.com.tw/backend.php"},
	{Name: "少数派", URL: "https://sspai.com/feed"},
}

type cachedFeed struct {
	items   []*gofeed.Item
	fetched time.Time
}

// RSSScanner polls feeds and keeps the entries that mention a label keyword.
// Parsed feeds are cached so one run does not download a feed per label.
type RSSScanner struct {
	parser     *gofeed.Parser
	ttl        time.Duration
	maxEntries int
	location   *time.Location
	now        func() time.Time

	mu    sync.Mutex
	cache map[string]cachedFeed
}

// NewRSSScanner wires a gofeed parser; ttl bounds how long a parsed feed is reused.
// Entry timestamps are rendered in loc.
func NewRSSScanner(client *http.Client, ttl time.Duration, loc *time.Location) *RSSScanner {
	fp := gofeed.NewParser()
	fp.Client = defaultClient(client)
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if loc == nil {
		loc = time.Local
	}
	return &RSSScanner{
		parser:     fp,
		ttl:        ttl,
		maxEntries: 20,
		location:   loc,
		now:        time.Now,
		cache:      map[string]cachedFeed{},
	}
}

// Name identifies the strategy inside the registry.
func (r *RSSScanner) Name() string {
	return "rss"
}

// Fetch scans every configured feed. A broken feed is skipped unless all of them fail.
func (r *RSSScanner) Fetch(ctx context.Context, req scanner.Request) ([]domain.RawFragment, error) {
	feeds := req.Categories
	if len(feeds) == 0 {
		feeds = DefaultFeeds
	}

	var (
		results []domain.RawFragment
		errs    []error
		healthy int
	)
	for _, feed := range feeds {
		items, err := r.feed(ctx, feed.URL)
		if err != nil {
			errs = append(errs, fmt.Errorf("feed %s: %w", feed.Name, err))
			continue
		}
		healthy++

		for i, entry := range items {
			if i >= r.maxEntries {
				break
			}
			text := entry.Title + " " + entry.Description
			if !containsAny(text, req.Keywords) {
				continue
			}
			results = append(results, domain.RawFragment{
				Title:       entry.Title,
				URL:         entry.Link,
				BaseURL:     feed.URL,
				Snippet:     entry.Description,
				Source:      feed.Name,
				PublishTime: entryTime(entry, r.location),
			})
		}
	}

	if healthy == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("rss: %w", errors.Join(errs...))
	}
	return results, nil
}

func (r *RSSScanner) feed(ctx context.Context, feedURL string) ([]*gofeed.Item, error) {
	now := r.now()

	r.mu.Lock()
	cached, ok := r.cache[feedURL]
	r.mu.Unlock()
	if ok && now.Sub(cached.fetched) < r.ttl {
		return cached.items, nil
	}

	parsed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[feedURL] = cachedFeed{items: parsed.Items, fetched: now}
	r.mu.Unlock()
	return parsed.Items, nil
}

func entryTime(entry *gofeed.Item, loc *time.Location) string {
	switch {
	case entry.PublishedParsed != nil:
		return entry.PublishedParsed.In(loc).Format("2006-01-02 15:04")
	case entry.UpdatedParsed != nil:
		return entry.UpdatedParsed.In(loc).Format("2006-01-02 15:04")
	case entry.Published != "":
		return entry.Published
	default:
		return entry.Updated
	}
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
