package domain

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// RawFragment is a single untyped scrape result as returned by a provider.
type RawFragment struct {
	Title       string
	URL         string
	Snippet     string
	Source      string
	PublishTime string
	// BaseURL is the provider origin used to resolve relative links.
	BaseURL string
	// Kind is set by listing providers only.
	Kind EventKind
}

// Item is the canonical record flowing through the aggregation pipeline.
type Item struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Label       string    `json:"label"`
	Snippet     string    `json:"snippet,omitempty"`
	PublishTime string    `json:"publish_time,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
	Fingerprint string    `json:"fingerprint"`
}

// NewItem stamps the fetch time and derives the fingerprint from the title.
func NewItem(title, url, source, snippet, publishTime string, fetchedAt time.Time) Item {
	return Item{
		Title:       title,
		URL:         url,
		Source:      source,
		Snippet:     snippet,
		PublishTime: publishTime,
		FetchedAt:   fetchedAt,
		Fingerprint: Fingerprint(title),
	}
}

// AssignLabel sets the taxonomy label once; later calls with another label are rejected.
func (i *Item) AssignLabel(label string) bool {
	if label == "" {
		return false
	}
	if i.Label != "" {
		return i.Label == label
	}
	i.Label = label
	return true
}

// Fingerprint is the dedup key of a title: hex md5, stable across runs.
func Fingerprint(title string) string {
	sum := md5.Sum([]byte(title))
	return hex.EncodeToString(sum[:])
}
