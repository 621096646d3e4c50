package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTaxonomy reports a malformed taxonomy definition.
var ErrInvalidTaxonomy = errors.New("invalid taxonomy")

// TaxonomyEntry is one label with its ordered keyword list.
type TaxonomyEntry struct {
	Label    string
	Glyph    string
	Keywords []string
}

// Taxonomy is an ordered set of labels plus a secondary keyword table
// consulted only when the primary table has no match.
type Taxonomy struct {
	entries  []TaxonomyEntry
	extended []TaxonomyEntry
	index    map[string]int
}

// NewTaxonomy validates and freezes the tables. Extended entries must refer to primary labels.
func NewTaxonomy(entries, extended []TaxonomyEntry) (Taxonomy, error) {
	if len(entries) == 0 {
		return Taxonomy{}, fmt.Errorf("%w: no labels", ErrInvalidTaxonomy)
	}

	index := make(map[string]int, len(entries))
	primary := make([]TaxonomyEntry, 0, len(entries))
	for i, entry := range entries {
		label := strings.TrimSpace(entry.Label)
		if label == "" {
			return Taxonomy{}, fmt.Errorf("%w: entry %d has empty label", ErrInvalidTaxonomy, i)
		}
		if _, dup := index[label]; dup {
			return Taxonomy{}, fmt.Errorf("%w: duplicate label %q", ErrInvalidTaxonomy, label)
		}
		keywords := cleanKeywords(entry.Keywords)
		if len(keywords) == 0 {
			return Taxonomy{}, fmt.Errorf("%w: label %q has no keywords", ErrInvalidTaxonomy, label)
		}
		index[label] = i
		primary = append(primary, TaxonomyEntry{Label: label, Glyph: entry.Glyph, Keywords: keywords})
	}

	secondary := make([]TaxonomyEntry, 0, len(extended))
	for _, entry := range extended {
		label := strings.TrimSpace(entry.Label)
		if _, ok := index[label]; !ok {
			return Taxonomy{}, fmt.Errorf("%w: extended label %q is not declared", ErrInvalidTaxonomy, label)
		}
		keywords := cleanKeywords(entry.Keywords)
		if len(keywords) == 0 {
			continue
		}
		secondary = append(secondary, TaxonomyEntry{Label: label, Keywords: keywords})
	}

	return Taxonomy{entries: primary, extended: secondary, index: index}, nil
}

// MustTaxonomy is NewTaxonomy for static tables.
func MustTaxonomy(entries, extended []TaxonomyEntry) Taxonomy {
	t, err := NewTaxonomy(entries, extended)
	if err != nil {
		panic(err)
	}
	return t
}

// Entries returns the primary table in declaration order.
func (t Taxonomy) Entries() []TaxonomyEntry {
	out := make([]TaxonomyEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Extended returns the secondary table in declaration order.
func (t Taxonomy) Extended() []TaxonomyEntry {
	out := make([]TaxonomyEntry, len(t.extended))
	copy(out, t.extended)
	return out
}

// Lookup returns the primary entry for a label.
func (t Taxonomy) Lookup(label string) (TaxonomyEntry, bool) {
	i, ok := t.index[label]
	if !ok {
		return TaxonomyEntry{}, false
	}
	return t.entries[i], true
}

// Rank is the declaration position of a label, or -1.
func (t Taxonomy) Rank(label string) int {
	if i, ok := t.index[label]; ok {
		return i
	}
	return -1
}

// Glyph returns the display glyph of a label, falling back to a newspaper.
func (t Taxonomy) Glyph(label string) string {
	if entry, ok := t.Lookup(label); ok && entry.Glyph != "" {
		return entry.Glyph
	}
	return "📰"
}

// Len is the number of primary labels.
func (t Taxonomy) Len() int {
	return len(t.entries)
}

func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, kw := range in {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
