package domain

import "time"

// LabelGroup holds the accepted items of one label in acceptance order.
type LabelGroup struct {
	Label   string         `json:"label"`
	Glyph   string         `json:"glyph"`
	Items   []Item         `json:"news"`
	Funding []FundingEvent `json:"funding_events"`
	Summary string         `json:"summary,omitempty"`
}

// ProviderFailure records a provider call that contributed nothing.
type ProviderFailure struct {
	Provider string `json:"provider"`
	Label    string `json:"label,omitempty"`
	Error    string `json:"error"`
}

// Report is the outcome of one pipeline run, groups in taxonomy order.
type Report struct {
	RunID     string            `json:"run_id"`
	StartedAt time.Time         `json:"started_at"`
	Groups    []LabelGroup      `json:"industries"`
	Failures  []ProviderFailure `json:"failures,omitempty"`
}

// Empty reports whether the run produced neither news nor funding events.
func (r Report) Empty() bool {
	for _, g := range r.Groups {
		if len(g.Items) > 0 || len(g.Funding) > 0 {
			return false
		}
	}
	return true
}

// TotalItems counts news items across all groups.
func (r Report) TotalItems() int {
	total := 0
	for _, g := range r.Groups {
		total += len(g.Items)
	}
	return total
}

// ByLabel flattens the report into a label to items mapping.
func (r Report) ByLabel() map[string][]Item {
	out := make(map[string][]Item, len(r.Groups))
	for _, g := range r.Groups {
		if len(g.Items) == 0 {
			continue
		}
		out[g.Label] = g.Items
	}
	return out
}
