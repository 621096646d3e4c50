package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsCatcher/internal/domain"
	"NewsCatcher/internal/scanner"
)

const fundingPage = `
<ul>
  <li><a href="https://news.pedaily.cn/202503/1.shtml">智元机器人完成数亿元A轮融资</a><span>投资界</span><span>2025-03-10</span></li>
  <li><a href="https://news.pedaily.cn/202503/2.shtml">短标题融资</a><span>2025-03-10</span></li>
  <li><a href="https://www.example.com/3.shtml">某医疗器械公司完成B轮融资一亿元</a></li>
  <li><a href="https://news.pedaily.cn/202503/4.shtml">某公司举办年度开发者大会活动</a></li>
</ul>`

const ipoPage = `
<div>
  <a href="https://news.pedaily.cn/202502/9.shtml">某半导体公司今日在科创板敲钟上市</a>
  <a href="https://news.pedaily.cn/202502/10.shtml">上市</a>
  <a href="https://news.pedaily.cn/202502/11.shtml">某企业发布年度社会责任报告全文</a>
</div>`

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPedailyFundingListing(t *testing.T) {
	t.Parallel()

	server := serve(t, fundingPage)
	sc := NewPedailyFundingScanner(server.Client())
	fragments, err := sc.FetchListing(context.Background(), scanner.Request{
		Categories: []scanner.Category{{URL: server.URL + "/first/t76/"}},
	})
	if err != nil {
		t.Fatalf("FetchListing error: %v", err)
	}
	if len(fragments) != 1 {
		t.Fatalf("expected 1 funding entry, got %d: %+v", len(fragments), fragments)
	}
	got := fragments[0]
	if got.Kind != domain.KindFunding || got.PublishTime != "2025-03-10" || got.Title != "智元机器人完成数亿元A轮融资" {
		t.Fatalf("unexpected fragment: %+v", got)
	}
}

func TestPedailyIPOListing(t *testing.T) {
	t.Parallel()

	server := serve(t, ipoPage)
	sc := NewPedailyIPOScanner(server.Client())
	fragments, err := sc.FetchListing(context.Background(), scanner.Request{
		Categories: []scanner.Category{{URL: server.URL + "/exit/"}},
	})
	if err != nil {
		t.Fatalf("FetchListing error: %v", err)
	}
	if len(fragments) != 1 {
		t.Fatalf("expected 1 IPO entry, got %d", len(fragments))
	}
	if fragments[0].Kind != domain.KindIPO || fragments[0].PublishTime != "2025-02" {
		t.Fatalf("unexpected fragment: %+v", fragments[0])
	}
}
