package domain

import "strings"

// EventKind distinguishes financing rounds from listings.
type EventKind string

const (
	KindNone    EventKind = ""
	KindFunding EventKind = "融资"
	KindIPO     EventKind = "IPO"
)

// FundingEvent is an Item enriched with deal details parsed from its title.
type FundingEvent struct {
	Item
	Kind    EventKind `json:"event_type"`
	Company string    `json:"company"`
	Round   string    `json:"round,omitempty"`
	Amount  string    `json:"amount,omitempty"`
}

// Highlight renders the one-line summary used in digests and cards.
func (e FundingEvent) Highlight() string {
	var b strings.Builder
	b.WriteString("💰 ")
	company := e.Company
	if company == "" {
		company = e.Title
	}
	b.WriteString(company)

	if e.Kind == KindIPO {
		b.WriteString("IPO")
	} else if e.Round != "" {
		b.WriteString("完成")
		b.WriteString(e.Round)
	}
	if e.Amount != "" {
		b.WriteString("（")
		b.WriteString(e.Amount)
		b.WriteString("）")
	}
	return b.String()
}
