package classify

import (
	"strings"

	"NewsCatcher/internal/domain"
)

// Classifier maps free text to a taxonomy label by substring matching.
// Labels are tried in declaration order and keywords in list order; the first hit wins.
type Classifier struct {
	taxonomy domain.Taxonomy
}

// New binds a classifier to a taxonomy.
func New(taxonomy domain.Taxonomy) *Classifier {
	return &Classifier{taxonomy: taxonomy}
}

// Classify returns the label of the first matching keyword, consulting the
// extended table only when the primary table has no match.
func (c *Classifier) Classify(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	if label, ok := firstMatch(c.taxonomy.Entries(), text); ok {
		return label, true
	}
	return firstMatch(c.taxonomy.Extended(), text)
}

// Matches reports whether text contains any primary or extended keyword of label.
func (c *Classifier) Matches(label, text string) bool {
	if entry, ok := c.taxonomy.Lookup(label); ok && containsAny(text, entry.Keywords) {
		return true
	}
	for _, entry := range c.taxonomy.Extended() {
		if entry.Label == label && containsAny(text, entry.Keywords) {
			return true
		}
	}
	return false
}

// Assign classifies text for an item fetched under the queried label.
// The item keeps the queried label unless the text belongs to no label, or
// belongs to another label without mentioning any keyword of the queried one.
//
// This is deliberately looser than dropping every item whose first-match label
// differs from the queried one: a hit that names a queried keyword stays with
// the label it was searched for, even when an earlier label also matches.
func (c *Classifier) Assign(queried, text string) (string, bool) {
	label, ok := c.Classify(text)
	if !ok {
		return "", false
	}
	if label == queried || queried == "" {
		return label, true
	}
	if c.Matches(queried, text) {
		return queried, true
	}
	return "", false
}

func firstMatch(entries []domain.TaxonomyEntry, text string) (string, bool) {
	for _, entry := range entries {
		for _, kw := range entry.Keywords {
			if strings.Contains(text, kw) {
				return entry.Label, true
			}
		}
	}
	return "", false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
