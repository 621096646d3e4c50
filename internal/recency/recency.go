package recency

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"NewsCatcher/internal/domain"
)

// Verdict is the outcome of interpreting a date expression.
type Verdict int

const (
	Unknown Verdict = iota
	Fresh
	Stale
)

func (v Verdict) String() string {
	switch v {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Window is the evaluation context handed to rule interpreters.
type Window struct {
	Now        time.Time
	MaxAgeDays int
}

// cutoff is the first calendar day still inside the window.
func (w Window) cutoff() time.Time {
	y, m, d := w.Now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, w.Now.Location()).AddDate(0, 0, -w.MaxAgeDays)
}

func (w Window) days(n int) Verdict {
	if n > w.MaxAgeDays {
		return Stale
	}
	return Fresh
}

func (w Window) date(year, month, day int) Verdict {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Unknown
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, w.Now.Location())
	if t.Day() != day {
		return Unknown
	}
	if t.Before(w.cutoff()) {
		return Stale
	}
	return Fresh
}

// month treats the current and previous calendar month as fresh, and
// any later month as fresh too.
func (w Window) month(year, month int) Verdict {
	if month < 1 || month > 12 {
		return Unknown
	}
	y, m, _ := w.Now.Date()
	current := time.Date(y, m, 1, 0, 0, 0, 0, w.Now.Location())
	previous := current.AddDate(0, -1, 0)
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, w.Now.Location())
	if t.Before(previous) {
		return Stale
	}
	return Fresh
}

// Rule pairs a pattern with the interpreter of its submatches.
type Rule struct {
	Name      string
	Pattern   *regexp.Regexp
	Interpret func(match []string, w Window) Verdict
}

// DefaultRules are evaluated in order: absolute dates before relative ones.
var DefaultRules = []Rule{
	{
		Name:    "ymd-dash",
		Pattern: regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`),
		Interpret: func(m []string, w Window) Verdict {
			return w.date(atoi(m[1]), atoi(m[2]), atoi(m[3]))
		},
	},
	{
		Name:    "ymd-slash",
		Pattern: regexp.MustCompile(`(\d{4})/(\d{1,2})/(\d{1,2})`),
		Interpret: func(m []string, w Window) Verdict {
			return w.date(atoi(m[1]), atoi(m[2]), atoi(m[3]))
		},
	},
	{
		Name:    "ymd-cjk",
		Pattern: regexp.MustCompile(`(\d{4})\s*年\s*(\d{1,2})\s*月\s*(\d{1,2})\s*日`),
		Interpret: func(m []string, w Window) Verdict {
			return w.date(atoi(m[1]), atoi(m[2]), atoi(m[3]))
		},
	},
	{
		Name:    "ym-dash",
		Pattern: regexp.MustCompile(`(\d{4})-(\d{1,2})(?:$|[^\d-])`),
		Interpret: func(m []string, w Window) Verdict {
			return w.month(atoi(m[1]), atoi(m[2]))
		},
	},
	{
		Name:    "ym-cjk",
		Pattern: regexp.MustCompile(`(\d{4})\s*年\s*(\d{1,2})\s*月(?:$|[^\d日])`),
		Interpret: func(m []string, w Window) Verdict {
			return w.month(atoi(m[1]), atoi(m[2]))
		},
	},
	{
		Name:    "days-ago",
		Pattern: regexp.MustCompile(`(\d+)\s*(?:天前|(?i:days?\s+ago))`),
		Interpret: func(m []string, w Window) Verdict {
			return w.days(atoi(m[1]))
		},
	},
	{
		Name:      "hours-ago",
		Pattern:   regexp.MustCompile(`(\d+)\s*(?:小时前|(?i:hours?\s+ago))`),
		Interpret: always(Fresh),
	},
	{
		Name:      "minutes-ago",
		Pattern:   regexp.MustCompile(`(\d+)\s*(?:分钟前|(?i:(?:minutes?|mins?)\s+ago))`),
		Interpret: always(Fresh),
	},
	{
		Name:    "months-ago",
		Pattern: regexp.MustCompile(`(\d+)\s*(?:个月前|(?i:months?\s+ago))`),
		Interpret: func(m []string, w Window) Verdict {
			if atoi(m[1]) >= 1 {
				return Stale
			}
			return Fresh
		},
	},
	{
		Name:      "today",
		Pattern:   regexp.MustCompile(`今天|刚刚|(?i:just now)`),
		Interpret: always(Fresh),
	},
	{
		Name:    "yesterday",
		Pattern: regexp.MustCompile(`昨天`),
		Interpret: func(_ []string, w Window) Verdict {
			return w.days(1)
		},
	},
	{
		Name:    "day-before-yesterday",
		Pattern: regexp.MustCompile(`前天`),
		Interpret: func(_ []string, w Window) Verdict {
			return w.days(2)
		},
	},
}

// Filter decides staleness of items from their free-text dates.
type Filter struct {
	rules []Rule
	now   func() time.Time
}

// Option customizes a Filter.
type Option func(*Filter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(f *Filter) {
		f.now = now
	}
}

// WithRules replaces the rule table.
func WithRules(rules []Rule) Option {
	return func(f *Filter) {
		f.rules = rules
	}
}

// New builds a filter with the default rule table and wall clock.
func New(opts ...Option) *Filter {
	f := &Filter{rules: DefaultRules, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsStale checks publish time first, then the snippet. Items whose age cannot
// be inferred are kept.
func (f *Filter) IsStale(item domain.Item, maxAgeDays int) bool {
	return f.IsStaleAt(item, maxAgeDays, f.now())
}

// IsStaleAt is IsStale against an explicit reference time. Day boundaries are
// taken in now's location.
func (f *Filter) IsStaleAt(item domain.Item, maxAgeDays int, now time.Time) bool {
	w := Window{Now: now, MaxAgeDays: maxAgeDays}
	if w.MaxAgeDays < 0 {
		w.MaxAgeDays = 0
	}
	if v := f.evaluate(item.PublishTime, w); v != Unknown {
		return v == Stale
	}
	return f.evaluate(item.Snippet, w) == Stale
}

// Evaluate interprets a single text against the rule table.
func (f *Filter) Evaluate(text string, maxAgeDays int) Verdict {
	return f.evaluate(text, Window{Now: f.now(), MaxAgeDays: maxAgeDays})
}

func (f *Filter) evaluate(text string, w Window) Verdict {
	if text == "" {
		return Unknown
	}
	for _, rule := range f.rules {
		match := rule.Pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if v := rule.Interpret(match, w); v != Unknown {
			return v
		}
	}
	return Unknown
}

// Extract returns the first date expression found in text, trying the default
// rules in order, or "" when text carries no recognizable date.
func Extract(text string) string {
	for _, rule := range DefaultRules {
		match := rule.Pattern.FindString(text)
		if match == "" {
			continue
		}
		// Month-only patterns consume the delimiter after the month.
		if strings.HasPrefix(rule.Name, "ym-") {
			match = strings.TrimRightFunc(match, func(r rune) bool {
				return !unicode.IsDigit(r) && r != '月'
			})
		}
		return strings.TrimSpace(match)
	}
	return ""
}

func always(v Verdict) func([]string, Window) Verdict {
	return func([]string, Window) Verdict { return v }
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
