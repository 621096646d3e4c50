package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NewsCatcher/internal/scanner"
)

const bingPage = `
<html><body>
  <div class="news-card">
    <a class="title" href="/news/1">新能源车企发布固态电池</a>
    <div class="snippet">续航突破一千公里</div>
    <div class="source"><span>汽车之家</span><span>2小时</span></div>
  </div>
  <div class="news-card">
    <a class="title" href="https://example.com/2">储能电站并网</a>
  </div>
</body></html>`

func TestBingScannerFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(bingPage))
	}))
	defer server.Close()

	sc := NewBingScanner(5 * time.Second)
	fragments, err := sc.Fetch(context.Background(), scanner.Request{
		Label:      "新能源",
		Keywords:   []string{"新能源"},
		Categories: []scanner.Category{{URL: server.URL + "/news/search?q={query}"}},
	})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(fragments))
	}

	first := fragments[0]
	if first.URL != server.URL+"/news/1" {
		t.Fatalf("expected absolute url, got %s", first.URL)
	}
	if first.Source != "汽车之家" || first.PublishTime != "2小时" || first.Snippet != "续航突破一千公里" {
		t.Fatalf("unexpected metadata: %+v", first)
	}
}

const bingIndexedPage = `
<html><body>
  <div data-idx="0">
    <a href="/news/apage?id=7">光伏组件价格回升</a>
    <p>多家厂商上调报价</p>
    <span class="source">财联社 2025-03-09</span>
  </div>
  <div data-idx="1">
    <span>没有链接的条目</span>
  </div>
</body></html>`

func TestBingScannerIndexedLayoutFallbacks(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(bingIndexedPage))
	}))
	defer server.Close()

	sc := NewBingScanner(5 * time.Second)
	fragments, err := sc.Fetch(context.Background(), scanner.Request{
		Keywords:   []string{"光伏"},
		Categories: []scanner.Category{{URL: server.URL + "/news/search?q={query}"}},
	})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment from data-idx containers, got %d", len(fragments))
	}

	got := fragments[0]
	if got.Title != "光伏组件价格回升" || got.URL != server.URL+"/news/apage?id=7" {
		t.Fatalf("link fallback not used: %+v", got)
	}
	if got.Snippet != "多家厂商上调报价" {
		t.Fatalf("paragraph snippet fallback not used: %q", got.Snippet)
	}
	if got.Source != "财联社" || got.PublishTime != "2025-03-09" {
		t.Fatalf("unexpected source/time: %q %q", got.Source, got.PublishTime)
	}
}

func TestBingSearchURLMatchesNewsEndpoint(t *testing.T) {
	t.Parallel()

	got := buildSearchURL(NewBingScanner(0).searchURL, "储能")
	want := "https://cn.bing.com/news/search?q=%E5%82%A8%E8%83%BD&FORM=HDRSC6&cc=cn"
	if got != want {
		t.Fatalf("search url = %s, want %s", got, want)
	}
}

func TestBingScannerHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sc := NewBingScanner(time.Second)
	if _, err := sc.Fetch(context.Background(), scanner.Request{
		Keywords:   []string{"x"},
		Categories: []scanner.Category{{URL: server.URL + "/?q={query}"}},
	}); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}
