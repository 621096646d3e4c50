package ports

import (
	"context"
	"fmt"
	"time"

	"NewsCatcher/internal/domain"
)

// SeenStore persists fingerprints across runs for optional cross-run deduplication.
type SeenStore interface {
	AlreadySeen(ctx context.Context, fingerprints []string) (map[string]bool, error)
	Remember(ctx context.Context, items []domain.Item) error
}

// Summarizer produces a short bulleted digest for one label.
type Summarizer interface {
	Summarize(ctx context.Context, group domain.LabelGroup) (string, error)
}

// Notifier delivers a finished report to a chat channel.
type Notifier interface {
	PublishDigest(ctx context.Context, report domain.Report) error
}

// PartialDeliveryError is returned by a Notifier that delivered part of a
// report before failing. Delivered names the labels that reached the channel.
type PartialDeliveryError struct {
	Delivered []string
	Err       error
}

func (e *PartialDeliveryError) Error() string {
	return fmt.Sprintf("delivered %d labels before failure: %v", len(e.Delivered), e.Err)
}

func (e *PartialDeliveryError) Unwrap() error {
	return e.Err
}

// SnapshotWriter stores a write-only audit copy of a run.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, report domain.Report) (string, error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
