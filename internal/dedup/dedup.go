package dedup

import "NewsCatcher/internal/domain"

// Deduplicator tracks fingerprints seen during one run. It is owned by a
// single coordinator and is not safe for concurrent use.
type Deduplicator struct {
	seen map[string]struct{}
}

// New returns an empty deduplicator.
func New() *Deduplicator {
	return &Deduplicator{seen: map[string]struct{}{}}
}

// Seed marks fingerprints from a previous batch as already seen.
func (d *Deduplicator) Seed(fingerprints ...string) {
	for _, fp := range fingerprints {
		if fp != "" {
			d.seen[fp] = struct{}{}
		}
	}
}

// Accept records the item's fingerprint and reports whether it was new.
func (d *Deduplicator) Accept(item domain.Item) bool {
	fp := item.Fingerprint
	if fp == "" {
		fp = domain.Fingerprint(item.Title)
	}
	if _, ok := d.seen[fp]; ok {
		return false
	}
	d.seen[fp] = struct{}{}
	return true
}

// Seen reports whether a fingerprint has been recorded.
func (d *Deduplicator) Seen(fingerprint string) bool {
	_, ok := d.seen[fingerprint]
	return ok
}

// Len is the number of recorded fingerprints.
func (d *Deduplicator) Len() int {
	return len(d.seen)
}
