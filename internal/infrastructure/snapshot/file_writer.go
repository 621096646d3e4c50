package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"NewsCatcher/internal/domain"
	"NewsCatcher/internal/ports"
)

// FileWriter stores each run as an indented JSON document.
type FileWriter struct {
	dir      string
	location *time.Location
}

var _ ports.SnapshotWriter = (*FileWriter)(nil)

// NewFileWriter writes into dir; file names use wall-clock time in loc.
func NewFileWriter(dir string, loc *time.Location) *FileWriter {
	if loc == nil {
		loc = time.Local
	}
	return &FileWriter{dir: dir, location: loc}
}

type document struct {
	RunID      string                   `json:"run_id"`
	Timestamp  string                   `json:"timestamp"`
	TotalNews  int                      `json:"total_news"`
	Industries map[string]industryEntry `json:"industries"`
	Order      []string                 `json:"order"`
	Failures   []domain.ProviderFailure `json:"failures,omitempty"`
}

type industryEntry struct {
	Glyph   string                `json:"glyph"`
	Summary string                `json:"summary,omitempty"`
	News    []domain.Item         `json:"news"`
	Funding []domain.FundingEvent `json:"funding_events,omitempty"`
}

// WriteSnapshot serializes the report and returns the file path.
func (w *FileWriter) WriteSnapshot(ctx context.Context, report domain.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	started := report.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	started = started.In(w.location)

	doc := document{
		RunID:      report.RunID,
		Timestamp:  started.Format(time.RFC3339),
		TotalNews:  report.TotalItems(),
		Industries: make(map[string]industryEntry, len(report.Groups)),
		Failures:   report.Failures,
	}
	for _, g := range report.Groups {
		doc.Order = append(doc.Order, g.Label)
		doc.Industries[g.Label] = industryEntry{
			Glyph:   g.Glyph,
			Summary: g.Summary,
			News:    g.Items,
			Funding: g.Funding,
		}
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	path := filepath.Join(w.dir, "news_"+started.Format("20060102_150405")+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}
