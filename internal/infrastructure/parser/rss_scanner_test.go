package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"NewsCatcher/internal/scanner"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <title>科技</title>
  <item>
    <title>国产GPU芯片流片成功</title>
    <link>https://example.com/gpu</link>
    <description>半导体行业迎来突破</description>
    <pubDate>Mon, 10 Mar 2025 08:00:00 +0000</pubDate>
  </item>
  <item>
    <title>周末好物推荐</title>
    <link>https://example.com/shop</link>
    <description>生活方式</description>
  </item>
</channel></rss>`

func TestRSSScannerFiltersAndCaches(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer server.Close()

	sc := NewRSSScanner(server.Client(), time.Minute, time.FixedZone("CST", 8*3600))
	req := scanner.Request{
		Label:      "芯片",
		Keywords:   []string{"芯片", "半导体"},
		Categories: []scanner.Category{{Name: "测试源", URL: server.URL + "/feed"}},
	}

	fragments, err := sc.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(fragments) != 1 {
		t.Fatalf("expected 1 matching entry, got %d", len(fragments))
	}
	if fragments[0].Source != "测试源" || fragments[0].URL != "https://example.com/gpu" {
		t.Fatalf("unexpected fragment: %+v", fragments[0])
	}
	if fragments[0].PublishTime != "2025-03-10 16:00" {
		t.Fatalf("publish time must be rendered in the scanner location, got %q", fragments[0].PublishTime)
	}

	req.Keywords = []string{"好物"}
	fragments, err = sc.Fetch(context.Background(), req)
	if err != nil || len(fragments) != 1 {
		t.Fatalf("second fetch: %v, %d", err, len(fragments))
	}
	if hits.Load() != 1 {
		t.Fatalf("feed must be served from cache, got %d requests", hits.Load())
	}
}

func TestRSSScannerSkipsBrokenFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(feedXML))
	}))
	defer server.Close()

	sc := NewRSSScanner(server.Client(), time.Minute, time.UTC)
	fragments, err := sc.Fetch(context.Background(), scanner.Request{
		Keywords: []string{"GPU"},
		Categories: []scanner.Category{
			{Name: "broken", URL: server.URL + "/broken"},
			{Name: "ok", URL: server.URL + "/feed"},
		},
	})
	if err != nil || len(fragments) != 1 {
		t.Fatalf("expected healthy feed to contribute, got %v, %d", err, len(fragments))
	}

	if _, err := sc.Fetch(context.Background(), scanner.Request{
		Keywords:   []string{"GPU"},
		Categories: []scanner.Category{{Name: "broken", URL: server.URL + "/broken"}},
	}); err == nil {
		t.Fatalf("expected error when every feed fails")
	}
}
