package funding

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"NewsCatcher/internal/domain"
)

var (
	quotedName   = regexp.MustCompile(`[「"“](.*?)[」"”]`)
	afterComma   = regexp.MustCompile(`[，,]\s*(.{2,15}?)(?:完成|获得|获|宣布|拟)`)
	titleStart   = regexp.MustCompile(`^(.{2,15}?)(?:完成|获得|获|宣布|拟)`)
	leadingNoise = regexp.MustCompile(`^(?:总额.*?[，,]|半年.*?[，,])`)

	ipoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(.{2,8}?)(?:赴港|赴美|赴纽)`),
		regexp.MustCompile(`今[天日]\s*(.{2,6}?)(?:IPO|上市|敲)`),
		regexp.MustCompile(`[，,]\s*(.{2,10}?)(?:要IPO|IPO了|赴港上市|要上市)`),
		regexp.MustCompile(`[，,]\s*(.{2,10}?)(?:敲[钟锣])`),
		regexp.MustCompile(`[，,]\s*(.{2,8}?)市值`),
		regexp.MustCompile(`[：:]\s*(.{2,8}?)(?:暴涨|上涨|大涨|市值)`),
	}
	ipoPrefixNoise = regexp.MustCompile(`^(?:今[天年]|首个|航天|医疗|科创板)`)
	cjkCompany     = regexp.MustCompile(`(\p{Han}{2,6}(?:科技|智能|生命|医疗|芯片|半导体|新材料|能源|航天|资本|集团))`)
	latinCompany   = regexp.MustCompile(`([A-Z][A-Za-z]{2,15})`)

	roundPatterns = []*regexp.Regexp{
		regexp.MustCompile(`((?:Pre-?)?[A-Z]\+*轮)`),
		regexp.MustCompile(`(天使\+*轮)`),
		regexp.MustCompile(`(种子轮)`),
		regexp.MustCompile(`(战略融资)`),
		regexp.MustCompile(`(股权融资)`),
		regexp.MustCompile(`([A-Z]\d*\+*轮)`),
	}

	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(超[\d.]+\s*亿[美元人民币]*)`),
		regexp.MustCompile(`(近[\d.]+\s*亿[美元人民币]*)`),
		regexp.MustCompile(`(近[十百千]\s*亿[美元人民币]*)`),
		regexp.MustCompile(`([\d.]+\s*亿[美元人民币]*)`),
		regexp.MustCompile(`(数[千百十]万[美元人民币]*)`),
		regexp.MustCompile(`(数千万)`),
		regexp.MustCompile(`([\d.]+\s*万[美元人民币]*)`),
		regexp.MustCompile(`(市值[\d.]+\s*亿)`),
	}
)

// NewEvent derives deal details from the item title.
func NewEvent(item domain.Item, kind domain.EventKind) domain.FundingEvent {
	event := domain.FundingEvent{Item: item, Kind: kind}
	switch kind {
	case domain.KindIPO:
		event.Company = IPOCompany(item.Title)
		event.Round = "IPO"
	default:
		event.Kind = domain.KindFunding
		event.Company = Company(item.Title)
		event.Round = Round(item.Title)
	}
	event.Amount = Amount(item.Title)
	return event
}

// Company extracts the financed company from a funding headline.
func Company(title string) string {
	if m := quotedName.FindStringSubmatch(title); m != nil && m[1] != "" {
		return strings.TrimSpace(m[1])
	}

	var company string
	if m := afterComma.FindStringSubmatch(title); m != nil {
		company = m[1]
	} else if m := titleStart.FindStringSubmatch(title); m != nil {
		company = m[1]
	}
	return strings.TrimSpace(leadingNoise.ReplaceAllString(strings.TrimSpace(company), ""))
}

// IPOCompany extracts the listing company from an IPO headline.
func IPOCompany(title string) string {
	if m := quotedName.FindStringSubmatch(title); m != nil && utf8.RuneCountInString(m[1]) >= 2 {
		return m[1]
	}

	for _, p := range ipoPatterns {
		m := p.FindStringSubmatch(title)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(ipoPrefixNoise.ReplaceAllString(strings.TrimSpace(m[1]), ""))
		if utf8.RuneCountInString(name) >= 2 {
			return name
		}
	}

	if m := cjkCompany.FindStringSubmatch(title); m != nil {
		return m[1]
	}
	if m := latinCompany.FindStringSubmatch(title); m != nil {
		return m[1]
	}
	return ""
}

// Round extracts the financing round token.
func Round(title string) string {
	return firstSubmatch(roundPatterns, title)
}

// Amount extracts the deal size or market value with its unit.
func Amount(title string) string {
	return firstSubmatch(amountPatterns, title)
}

func firstSubmatch(patterns []*regexp.Regexp, s string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}
