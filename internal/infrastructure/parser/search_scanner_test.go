package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"NewsCatcher/internal/normalize"
	"NewsCatcher/internal/recency"
	"NewsCatcher/internal/scanner"
)

const baiduPage = `
<html><body>
  <div class="result">
    <h3><a href="/link?url=abc">某AI公司发布新一代大模型</a></h3>
    <div class="c-summary">大模型推理能力显著提升</div>
    <span class="c-color-gray">新华网</span>
    <span class="c-color-gray2">3小时前</span>
  </div>
  <div class="result">
    <h3><a href="">缺少链接的结果</a></h3>
  </div>
  <div class="result">
    <h3><a href="https://example.com/2">芯片企业扩产</a></h3>
    <p>晶圆厂新产线投产</p>
  </div>
</body></html>`

func TestHTMLSearchScannerFetch(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		queries []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Query().Get("word"))
		mu.Unlock()
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing browser user agent")
		}
		_, _ = w.Write([]byte(baiduPage))
	}))
	defer server.Close()

	sc := NewBaiduScanner(server.Client())
	var slept []time.Duration
	sc.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	req := scanner.Request{
		Label:      "人工智能",
		Keywords:   []string{"AI", "大模型", "机器学习", "算力"},
		Categories: []scanner.Category{{Name: "search", URL: server.URL + "/ns?word={query}"}},
	}
	fragments, err := sc.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(queries) != 3 || queries[1] != "大模型" {
		t.Fatalf("expected the first three keywords to be queried, got %v", queries)
	}
	if len(slept) != 2 || slept[0] != time.Second {
		t.Fatalf("expected a pause between keywords, got %v", slept)
	}
	if len(fragments) != 6 {
		t.Fatalf("expected 2 results per page, got %d", len(fragments))
	}

	first := fragments[0]
	if first.Title != "某AI公司发布新一代大模型" || first.URL != "/link?url=abc" {
		t.Fatalf("unexpected first fragment: %+v", first)
	}
	if first.Source != "新华网" || first.PublishTime != "3小时前" || first.Snippet != "大模型推理能力显著提升" {
		t.Fatalf("unexpected metadata: %+v", first)
	}
	if !strings.HasPrefix(first.BaseURL, server.URL) {
		t.Fatalf("base url must be the result page, got %s", first.BaseURL)
	}
	if fragments[1].Snippet != "晶圆厂新产线投产" {
		t.Fatalf("snippet fallback selector not used: %+v", fragments[1])
	}
}

func TestHTMLSearchScannerAllKeywordsFail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	sc := NewSogouScanner(server.Client())
	sc.sleep = func(context.Context, time.Duration) error { return nil }

	_, err := sc.Fetch(context.Background(), scanner.Request{
		Keywords:   []string{"芯片", "半导体"},
		Categories: []scanner.Category{{URL: server.URL + "/news?query={query}"}},
	})
	if err == nil || !strings.Contains(err.Error(), "sogou") {
		t.Fatalf("expected sogou error, got %v", err)
	}
}

func TestLimitKeywords(t *testing.T) {
	t.Parallel()

	kw := []string{"a", "b", "c"}
	if got := limitKeywords(kw, "", 2); len(got) != 2 {
		t.Fatalf("fallback limit ignored: %v", got)
	}
	if got := limitKeywords(kw, "1", 2); len(got) != 1 {
		t.Fatalf("option override ignored: %v", got)
	}
	if got := limitKeywords(kw, "bogus", 0); len(got) != 3 {
		t.Fatalf("zero limit must keep all: %v", got)
	}
}

func TestBuildSearchURLEscapesKeyword(t *testing.T) {
	t.Parallel()

	got := buildSearchURL("https://s.example/?q={query}", "新能源 汽车")
	if got != "https://s.example/?q=%E6%96%B0%E8%83%BD%E6%BA%90+%E6%B1%BD%E8%BD%A6" {
		t.Fatalf("unexpected url %s", got)
	}
}

const baiduAuthorPage = `
<html><body>
  <div class="result">
    <h3><a href="https://example.com/old">某AI公司完成组织架构调整</a></h3>
    <div class="c-abstract">公司宣布新的业务线负责人</div>
    <p class="c-author">新京报 2024年12月01日 10:00</p>
  </div>
</body></html>`

const sogouBylinePage = `
<html><body>
  <div class="news-list"><ul>
    <li>
      <h3><a href="https://example.com/s1">芯片企业发布年度财报</a></h3>
      <p class="txt-info">营收同比增长</p>
      <p class="news-from">第一财经 2025-01-15</p>
    </li>
  </ul></div>
</body></html>`

func TestHTMLSearchScannerDateFromAuthorLine(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(baiduAuthorPage))
	}))
	defer server.Close()

	sc := NewBaiduScanner(server.Client())
	fragments, err := sc.Fetch(context.Background(), scanner.Request{
		Keywords:   []string{"AI"},
		Categories: []scanner.Category{{URL: server.URL + "/ns?word={query}"}},
	})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(fragments) != 1 {
		t.Fatalf("expected one fragment, got %d", len(fragments))
	}
	frag := fragments[0]
	if frag.PublishTime != "2024年12月01日" || frag.Source != "新京报" {
		t.Fatalf("date not split out of author line: source=%q publish_time=%q", frag.Source, frag.PublishTime)
	}

	item, ok := normalize.New().Normalize(frag)
	if !ok {
		t.Fatalf("fragment rejected by normalizer: %+v", frag)
	}
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	filter := recency.New(recency.WithClock(func() time.Time { return now }))
	if !filter.IsStale(item, 3) {
		t.Fatalf("three month old item must be stale: %+v", item)
	}
}

func TestHTMLSearchScannerSogouBylineDate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sogouBylinePage))
	}))
	defer server.Close()

	sc := NewSogouScanner(server.Client())
	fragments, err := sc.Fetch(context.Background(), scanner.Request{
		Keywords:   []string{"芯片"},
		Categories: []scanner.Category{{URL: server.URL + "/news?query={query}"}},
	})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(fragments) != 1 || fragments[0].PublishTime != "2025-01-15" {
		t.Fatalf("expected date from news-from line, got %+v", fragments)
	}
}
