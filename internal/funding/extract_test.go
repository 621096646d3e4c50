package funding

import (
	"testing"
	"time"

	"NewsCatcher/internal/domain"
)

func TestFundingHeadlines(t *testing.T) {
	t.Parallel()

	cases := []struct {
		title   string
		company string
		round   string
		amount  string
	}{
		{title: "算苗科技完成Pre-A轮、Pre-A1轮融资", company: "算苗科技", round: "Pre-A轮"},
		{title: "无界动力完成超2亿元天使+轮融资", company: "无界动力", round: "天使+轮", amount: "超2亿元"},
		{title: "聚焦商业航天，箭元科技完成B轮融资", company: "箭元科技", round: "B轮"},
		{title: "「深度求索」获得数千万美元战略融资", company: "深度求索", round: "战略融资", amount: "数千万美元"},
		{title: "某某机器人宣布完成近10亿元C+轮融资", company: "某某机器人", round: "C+轮", amount: "近10亿元"},
		{title: "种子轮融资消息汇总", round: "种子轮"},
	}

	for _, tc := range cases {
		if got := Company(tc.title); got != tc.company {
			t.Fatalf("Company(%q) = %q, want %q", tc.title, got, tc.company)
		}
		if got := Round(tc.title); got != tc.round {
			t.Fatalf("Round(%q) = %q, want %q", tc.title, got, tc.round)
		}
		if got := Amount(tc.title); got != tc.amount {
			t.Fatalf("Amount(%q) = %q, want %q", tc.title, got, tc.amount)
		}
	}
}

func TestIPOCompany(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"昆仑芯赴港上市，估值超千亿元":     "昆仑芯",
		"今天智谱IPO敲锣，大模型第一股诞生":  "智谱",
		"科创板：北芯生命暴涨200%":      "北芯生命",
		"又一家公司登陆港股，护家科技要IPO了": "护家科技",
		"一文看懂Moonshot的上市计划":    "Moonshot",
	}

	for title, want := range cases {
		if got := IPOCompany(title); got != want {
			t.Fatalf("IPOCompany(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestNewEvent(t *testing.T) {
	t.Parallel()

	item := domain.NewItem("电科蓝天上市首日，电科蓝天市值1000亿", "https://news.pedaily.cn/202503/1.shtml", "投资界", "", "2025-03", time.Now())
	ipo := NewEvent(item, domain.KindIPO)
	if ipo.Kind != domain.KindIPO || ipo.Round != "IPO" {
		t.Fatalf("unexpected ipo event: %+v", ipo)
	}
	if ipo.Company != "电科蓝天" {
		t.Fatalf("unexpected company: %q", ipo.Company)
	}
	if ipo.Amount != "1000亿" {
		t.Fatalf("unexpected amount: %q", ipo.Amount)
	}
	if ipo.Fingerprint != item.Fingerprint {
		t.Fatalf("event must keep item fingerprint")
	}

	deal := NewEvent(domain.NewItem("无界动力完成超2亿元天使+轮融资", "u", "s", "", "", time.Now()), domain.KindNone)
	if deal.Kind != domain.KindFunding {
		t.Fatalf("unset kind should default to funding, got %q", deal.Kind)
	}
}
