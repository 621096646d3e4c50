package parser

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"NewsCatcher/internal/domain"
	"NewsCatcher/internal/scanner"
)

const (
	pedailyFundingURL = "https://www.pedaily.cn/first/t76/"
	pedailyIPOURL     = "https://www.pedaily.cn/exit/"
	pedailyNewsHost   = "news.pedaily.cn"
)

var (
	listingDateExpr  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	listingMonthExpr = regexp.MustCompile(`/(\d{4})(\d{2})/`)

	fundingTerms = []string{"融资", "轮", "投资"}
	ipoTerms     = []string{"IPO", "上市", "敲钟", "市值"}
)

// PedailyScanner reads the pedaily.cn funding or exit listing page.
type PedailyScanner struct {
	name    string
	kind    domain.EventKind
	pageURL string
	client  *http.Client
}

var _ scanner.ListingProvider = (*PedailyScanner)(nil)

// NewPedailyFundingScanner lists financing rounds.
func NewPedailyFundingScanner(client *http.Client) *PedailyScanner {
	return &PedailyScanner{name: "pedaily-funding", kind: domain.KindFunding, pageURL: pedailyFundingURL, client: defaultClient(client)}
}

// NewPedailyIPOScanner lists IPO and listing news.
func NewPedailyIPOScanner(client *http.Client) *PedailyScanner {
	return &PedailyScanner{name: "pedaily-ipo", kind: domain.KindIPO, pageURL: pedailyIPOURL, client: defaultClient(client)}
}

// Name identifies the strategy inside the registry.
func (p *PedailyScanner) Name() string {
	return p.name
}

// FetchListing downloads the listing page and keeps entries that look like events of the scanner's kind.
func (p *PedailyScanner) FetchListing(ctx context.Context, req scanner.Request) ([]domain.RawFragment, error) {
	pageURL := p.pageURL
	if len(req.Categories) > 0 && req.Categories[0].URL != "" {
		pageURL = req.Categories[0].URL
	}
	host := req.Option("linkHost", pedailyNewsHost)

	doc, err := fetchDocument(ctx, p.client, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}

	if p.kind == domain.KindIPO {
		return p.extractIPO(doc, pageURL, host), nil
	}
	return p.extractFunding(doc, pageURL, host), nil
}

func (p *PedailyScanner) extractFunding(doc *goquery.Document, pageURL, host string) []domain.RawFragment {
	var out []domain.RawFragment
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		link := li.Find("a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if !strings.Contains(href, host) || utf8.RuneCountInString(title) < 10 || !containsAny(title, fundingTerms) {
			return
		}

		var published string
		li.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
			published = listingDateExpr.FindString(span.Text())
			return published == ""
		})

		out = append(out, domain.RawFragment{
			Title:       title,
			URL:         href,
			BaseURL:     pageURL,
			Source:      "投资界",
			PublishTime: published,
			Kind:        p.kind,
		})
	})
	return out
}

func (p *PedailyScanner) extractIPO(doc *goquery.Document, pageURL, host string) []domain.RawFragment {
	var out []domain.RawFragment
	doc.Find("a").Each(func(_ int, link *goquery.Selection) {
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if !strings.Contains(href, host) || utf8.RuneCountInString(title) < 15 || !containsAny(title, ipoTerms) {
			return
		}

		var published string
		if m := listingMonthExpr.FindStringSubmatch(href); m != nil {
			published = m[1] + "-" + m[2]
		}

		out = append(out, domain.RawFragment{
			Title:       title,
			URL:         href,
			BaseURL:     pageURL,
			Source:      "投资界",
			PublishTime: published,
			Kind:        p.kind,
		})
	})
	return out
}
