package normalize

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"NewsCatcher/internal/domain"
)

func TestNormalizeFragment(t *testing.T) {
	t.Parallel()

	fetched := time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)
	n := New(WithClock(func() time.Time { return fetched }))

	item, ok := n.Normalize(domain.RawFragment{
		Title:       "<em>AI</em>芯片 &amp; 大模型突破",
		URL:         "/news/123.html",
		BaseURL:     "https://cn.bing.com/news/search?q=AI",
		Snippet:     "<p>摘要  内容</p>",
		Source:      " 新华网 ",
		PublishTime: " 3天前 ",
	})
	if !ok {
		t.Fatalf("fragment rejected")
	}

	if item.Title != "AI芯片 & 大模型突破" {
		t.Fatalf("unexpected title: %q", item.Title)
	}
	if item.URL != "https://cn.bing.com/news/123.html" {
		t.Fatalf("unexpected url: %s", item.URL)
	}
	if item.Snippet != "摘要 内容" {
		t.Fatalf("unexpected snippet: %q", item.Snippet)
	}
	if item.Source != "新华网" || item.PublishTime != "3天前" {
		t.Fatalf("unexpected source/time: %q %q", item.Source, item.PublishTime)
	}
	if !item.FetchedAt.Equal(fetched) {
		t.Fatalf("unexpected fetched_at: %v", item.FetchedAt)
	}
	if item.Fingerprint != domain.Fingerprint(item.Title) {
		t.Fatalf("fingerprint not derived from title")
	}
	if item.Label != "" {
		t.Fatalf("normalizer must not assign labels")
	}
}

func TestNormalizeRejectsNoise(t *testing.T) {
	t.Parallel()

	n := New()
	cases := []struct {
		name string
		frag domain.RawFragment
	}{
		{name: "short title", frag: domain.RawFragment{Title: "更多", URL: "https://a.example/x"}},
		{name: "markup only", frag: domain.RawFragment{Title: "<img src=x>", URL: "https://a.example/x"}},
		{name: "missing url", frag: domain.RawFragment{Title: "足够长的标题"}},
		{name: "relative without base", frag: domain.RawFragment{Title: "足够长的标题", URL: "/x"}},
		{name: "javascript link", frag: domain.RawFragment{Title: "足够长的标题", URL: "javascript:void(0)"}},
		{name: "mailto", frag: domain.RawFragment{Title: "足够长的标题", URL: "mailto:a@b.c"}},
	}

	for _, tc := range cases {
		if _, ok := n.Normalize(tc.frag); ok {
			t.Fatalf("%s: fragment should be rejected", tc.name)
		}
	}
}

func TestSnippetIsCapped(t *testing.T) {
	t.Parallel()

	n := New(WithSnippetMaxRunes(10))
	item, ok := n.Normalize(domain.RawFragment{
		Title:   "足够长的标题",
		URL:     "https://a.example/x",
		Snippet: strings.Repeat("新", 50),
	})
	if !ok {
		t.Fatalf("fragment rejected")
	}
	if got := utf8.RuneCountInString(item.Snippet); got != 10 {
		t.Fatalf("expected 10 runes, got %d", got)
	}
}

func TestMinTitleRunesOverride(t *testing.T) {
	t.Parallel()

	frag := domain.RawFragment{Title: "新品发布会", URL: "https://a.example/x"}
	if _, ok := New().Normalize(frag); !ok {
		t.Fatalf("five rune title must pass the default minimum")
	}
	if _, ok := New(WithMinTitleRunes(8)).Normalize(frag); ok {
		t.Fatalf("five rune title must fail an 8 rune minimum")
	}
	if _, ok := New(WithMinTitleRunes(0)).Normalize(domain.RawFragment{Title: "更多", URL: "https://a.example/x"}); ok {
		t.Fatalf("non-positive override must keep the default minimum")
	}
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		base, raw, want string
		ok              bool
	}{
		{base: "https://news.baidu.com/ns?word=x", raw: "https://example.com/a", want: "https://example.com/a", ok: true},
		{base: "https://news.sogou.com/news", raw: "//m.sogou.com/a", want: "https://m.sogou.com/a", ok: true},
		{base: "https://www.pedaily.cn/first/t76/", raw: "../exit/1.shtml", want: "https://www.pedaily.cn/first/exit/1.shtml", ok: true},
		{base: "", raw: "#top", ok: false},
	}

	for _, tc := range cases {
		got, ok := ResolveURL(tc.base, tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ResolveURL(%q, %q) = %q,%v; want %q,%v", tc.base, tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}
