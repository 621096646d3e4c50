package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"NewsCatcher/internal/classify"
	"NewsCatcher/internal/dedup"
	"NewsCatcher/internal/domain"
	"NewsCatcher/internal/funding"
	"NewsCatcher/internal/normalize"
	"NewsCatcher/internal/ports"
	"NewsCatcher/internal/recency"
)

// ErrNoData signals a run that produced nothing to deliver.
var ErrNoData = errors.New("no data collected")

// Limits bounds output volume and freshness.
type Limits struct {
	MaxPerLabel       int
	MaxTotal          int
	MaxAgeDays        int
	FundingMaxAgeDays int
}

// DefaultLimits mirrors the production defaults.
func DefaultLimits() Limits {
	return Limits{MaxPerLabel: 5, MaxTotal: 50, MaxAgeDays: 3, FundingMaxAgeDays: 7}
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Taxonomy   domain.Taxonomy
	Fetcher    *Fetcher
	Normalizer *normalize.Normalizer
	Recency    *recency.Filter
	Limits     Limits
	SeenStore  ports.SeenStore
	Summarizer ports.Summarizer
	Notifier   ports.Notifier
	Snapshots  ports.SnapshotWriter
	Logger     *slog.Logger
	NewRunID   func() string
}

// Pipeline implements collect, normalize, classify, filter, dedup and cap,
// followed by digest, snapshot and delivery.
type Pipeline struct {
	taxonomy   domain.Taxonomy
	fetcher    *Fetcher
	normalizer *normalize.Normalizer
	classifier *classify.Classifier
	recency    *recency.Filter
	limits     Limits
	seen       ports.SeenStore
	summarizer ports.Summarizer
	notifier   ports.Notifier
	snapshots  ports.SnapshotWriter
	logger     *slog.Logger
	newRunID   func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		taxonomy:   deps.Taxonomy,
		fetcher:    deps.Fetcher,
		normalizer: deps.Normalizer,
		classifier: classify.New(deps.Taxonomy),
		recency:    deps.Recency,
		limits:     deps.Limits,
		seen:       deps.SeenStore,
		summarizer: deps.Summarizer,
		notifier:   deps.Notifier,
		snapshots:  deps.Snapshots,
		logger:     deps.Logger,
		newRunID:   deps.NewRunID,
	}
	if p.normalizer == nil {
		p.normalizer = normalize.New()
	}
	if p.recency == nil {
		p.recency = recency.New()
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.newRunID == nil {
		p.newRunID = func() string { return uuid.NewString() }
	}
	defaults := DefaultLimits()
	if p.limits.MaxPerLabel <= 0 {
		p.limits.MaxPerLabel = defaults.MaxPerLabel
	}
	if p.limits.MaxTotal <= 0 {
		p.limits.MaxTotal = defaults.MaxTotal
	}
	if p.limits.FundingMaxAgeDays <= 0 {
		p.limits.FundingMaxAgeDays = defaults.FundingMaxAgeDays
	}
	return p
}

// ProcessDay runs one full cycle: collect, summarize, snapshot and notify.
// ErrNoData is returned when nothing was collected; callers should treat it as a soft failure.
func (p *Pipeline) ProcessDay(ctx context.Context, now time.Time) error {
	report, err := p.Collect(ctx, now)
	if err != nil {
		return err
	}
	logger := p.logger.With("run_id", report.RunID)

	if report.Empty() {
		logger.Warn("run collected nothing", "failures", len(report.Failures))
		return ErrNoData
	}

	p.summarize(ctx, &report)

	if p.snapshots != nil {
		path, err := p.snapshots.WriteSnapshot(ctx, report)
		if err != nil {
			logger.Error("write snapshot", "error", err)
		} else {
			logger.Info("snapshot written", "path", path)
		}
	}

	if p.notifier != nil {
		if err := p.notifier.PublishDigest(ctx, report); err != nil {
			var partial *ports.PartialDeliveryError
			if errors.As(err, &partial) {
				logger.Warn("digest partially delivered", "labels", partial.Delivered, "error", partial.Err)
				p.remember(ctx, report, partial.Delivered...)
			}
			return fmt.Errorf("publish digest: %w", err)
		}
		logger.Info("digest delivered", "labels", len(report.Groups), "items", report.TotalItems())
	}

	p.remember(ctx, report)
	return nil
}

// Collect executes the aggregation flow and returns groups in taxonomy order.
// Provider failures are recorded on the report and never returned.
func (p *Pipeline) Collect(ctx context.Context, now time.Time) (domain.Report, error) {
	if p.fetcher == nil {
		return domain.Report{}, fmt.Errorf("fetcher is not configured")
	}
	if p.taxonomy.Len() == 0 {
		return domain.Report{}, fmt.Errorf("%w: empty taxonomy", domain.ErrInvalidTaxonomy)
	}

	if now.IsZero() {
		now = time.Now()
	}
	report := domain.Report{RunID: p.newRunID(), StartedAt: now}
	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", report.RunID))

	logger := p.logger.With("run_id", report.RunID)
	entries := p.taxonomy.Entries()
	groups := make([]domain.LabelGroup, len(entries))
	seen := dedup.New()
	total := 0

	for i, entry := range entries {
		groups[i] = domain.LabelGroup{Label: entry.Label, Glyph: p.taxonomy.Glyph(entry.Label)}
		if total >= p.limits.MaxTotal {
			logger.Info("global cap reached, skipping label", "label", entry.Label, "total", total)
			continue
		}
		if ctx.Err() != nil {
			logger.Warn("run cancelled, skipping label", "label", entry.Label, "error", ctx.Err())
			continue
		}

		items := p.collectLabel(ctx, entry, seen, &report)
		groups[i].Items = items
		total += len(items)
		logger.Info("label collected", "label", entry.Label, "count", len(items), "total", total)
	}

	trimToTotal(groups, p.limits.MaxTotal)
	p.collectFunding(ctx, groups, &report)

	for _, g := range groups {
		if len(g.Items) > 0 || len(g.Funding) > 0 {
			report.Groups = append(report.Groups, g)
		}
	}

	span.SetAttributes(
		attribute.Int("items", report.TotalItems()),
		attribute.Int("failures", len(report.Failures)),
	)
	return report, nil
}

func (p *Pipeline) collectLabel(ctx context.Context, entry domain.TaxonomyEntry, seen *dedup.Deduplicator, report *domain.Report) []domain.Item {
	accepted := make([]domain.Item, 0, p.limits.MaxPerLabel)

	for res := range p.fetcher.Results(ctx, entry.Label, entry.Keywords) {
		if res.Err != nil {
			report.Failures = append(report.Failures, res.Failure())
			continue
		}

		candidates := p.candidates(res.Fragments, entry.Label, report.StartedAt)
		p.seed(ctx, seen, candidates)

		for _, item := range candidates {
			if !seen.Accept(item) {
				continue
			}
			accepted = append(accepted, item)
			if len(accepted) >= p.limits.MaxPerLabel {
				break
			}
		}
		if len(accepted) >= p.limits.MaxPerLabel {
			break
		}
	}

	return accepted
}

// candidates normalizes, labels and freshness-filters fragments fetched for a label.
// Staleness is checked before dedup so a stale copy never claims a fingerprint.
// The window is measured from the run's start time.
func (p *Pipeline) candidates(fragments []domain.RawFragment, queried string, now time.Time) []domain.Item {
	out := make([]domain.Item, 0, len(fragments))
	for _, frag := range fragments {
		item, ok := p.normalizer.Normalize(frag)
		if !ok {
			continue
		}
		label, ok := p.classifier.Assign(queried, item.Title+" "+item.Snippet)
		if !ok || !item.AssignLabel(label) {
			continue
		}
		if p.recency.IsStaleAt(item, p.limits.MaxAgeDays, now) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (p *Pipeline) collectFunding(ctx context.Context, groups []domain.LabelGroup, report *domain.Report) {
	if !p.fetcher.HasListings() {
		return
	}

	seen := dedup.New()
	for res := range p.fetcher.Listings(ctx) {
		if res.Err != nil {
			report.Failures = append(report.Failures, res.Failure())
			continue
		}

		kept := 0
		for _, frag := range res.Fragments {
			item, ok := p.normalizer.Normalize(frag)
			if !ok {
				continue
			}
			label, ok := p.classifier.Classify(item.Title + " " + item.Snippet)
			if !ok || !item.AssignLabel(label) {
				continue
			}
			if p.recency.IsStaleAt(item, p.limits.FundingMaxAgeDays, report.StartedAt) {
				continue
			}
			rank := p.taxonomy.Rank(label)
			if rank < 0 || len(groups[rank].Funding) >= p.limits.MaxPerLabel {
				continue
			}
			if !seen.Accept(item) {
				continue
			}
			groups[rank].Funding = append(groups[rank].Funding, funding.NewEvent(item, frag.Kind))
			kept++
		}
		p.logger.Info("listing collected", "provider", res.Provider, "fragments", len(res.Fragments), "events", kept)
	}
}

func (p *Pipeline) seed(ctx context.Context, seen *dedup.Deduplicator, items []domain.Item) {
	if p.seen == nil || len(items) == 0 {
		return
	}
	fps := make([]string, 0, len(items))
	for _, item := range items {
		if !seen.Seen(item.Fingerprint) {
			fps = append(fps, item.Fingerprint)
		}
	}
	if len(fps) == 0 {
		return
	}
	known, err := p.seen.AlreadySeen(ctx, fps)
	if err != nil {
		p.logger.Warn("seen store lookup failed", "error", err)
		return
	}
	for fp, ok := range known {
		if ok {
			seen.Seed(fp)
		}
	}
}

// remember stores the delivered items. With labels given, only those groups
// count as delivered.
func (p *Pipeline) remember(ctx context.Context, report domain.Report, labels ...string) {
	if p.seen == nil {
		return
	}
	var items []domain.Item
	for _, g := range report.Groups {
		if len(labels) > 0 && !slices.Contains(labels, g.Label) {
			continue
		}
		items = append(items, g.Items...)
	}
	if len(items) == 0 {
		return
	}
	if err := p.seen.Remember(ctx, items); err != nil {
		p.logger.Warn("seen store update failed", "error", err)
	}
}

func (p *Pipeline) summarize(ctx context.Context, report *domain.Report) {
	for i := range report.Groups {
		group := &report.Groups[i]
		if p.summarizer == nil {
			group.Summary = FallbackDigest(*group)
			continue
		}
		summary, err := p.summarizer.Summarize(ctx, *group)
		if err != nil || summary == "" {
			p.logger.Warn("summarizer failed, using fallback", "label", group.Label, "error", err)
			group.Summary = FallbackDigest(*group)
			continue
		}
		group.Summary = summary
	}
}

// trimToTotal drops items from the lowest-priority labels until the total fits.
func trimToTotal(groups []domain.LabelGroup, max int) {
	total := 0
	for _, g := range groups {
		total += len(g.Items)
	}
	for i := len(groups) - 1; i >= 0 && total > max; i-- {
		excess := total - max
		n := len(groups[i].Items)
		if excess >= n {
			groups[i].Items = nil
			total -= n
			continue
		}
		groups[i].Items = groups[i].Items[:n-excess]
		total = max
	}
}
