package usecase

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"NewsCatcher/internal/domain"
	"NewsCatcher/internal/scanner"
	"NewsCatcher/pkg/timeutil"
)

const defaultProviderTimeout = 15 * time.Second

var tracer = otel.Tracer("NewsCatcher/usecase")

// ProviderResult is the outcome of one provider call. A failed call carries
// Err and no fragments.
type ProviderResult struct {
	Provider  string
	Label     string
	Fragments []domain.RawFragment
	Err       error
	Elapsed   time.Duration
}

// Failure converts a failed result into its report record.
func (r ProviderResult) Failure() domain.ProviderFailure {
	msg := ""
	if r.Err != nil {
		msg = r.Err.Error()
	}
	return domain.ProviderFailure{Provider: r.Provider, Label: r.Label, Error: msg}
}

// FetcherDeps wires providers and scheduling policy into the fetcher.
type FetcherDeps struct {
	Providers []scanner.Provider
	Listings  []scanner.ListingProvider
	// Delay is the minimum gap between consecutive calls to the same provider.
	Delay time.Duration
	// Delays overrides Delay per provider name.
	Delays  map[string]time.Duration
	Timeout time.Duration
	Logger  *slog.Logger
}

// Fetcher queries providers one at a time. Failures are isolated per call.
type Fetcher struct {
	providers []scanner.Provider
	listings  []scanner.ListingProvider
	pacer     *pacer
	timeout   time.Duration
	logger    *slog.Logger
}

// NewFetcher builds a sequential fetcher with default pacing and timeout.
func NewFetcher(deps FetcherDeps) *Fetcher {
	delay := deps.Delay
	if delay < 0 {
		delay = 0
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{
		providers: deps.Providers,
		listings:  deps.Listings,
		pacer:     newPacer(delay, deps.Delays),
		timeout:   timeout,
		logger:    logger,
	}
}

// Results yields one result per query provider for the label, in provider
// order. Providers after the consumer stops are never called.
func (f *Fetcher) Results(ctx context.Context, label string, keywords []string) iter.Seq[ProviderResult] {
	return func(yield func(ProviderResult) bool) {
		for _, provider := range f.providers {
			req := scanner.Request{Label: label, Keywords: keywords}
			res := f.call(ctx, provider.Name(), label, func(ctx context.Context) ([]domain.RawFragment, error) {
				return provider.Fetch(ctx, req)
			})
			if !yield(res) {
				return
			}
		}
	}
}

// Fetch collects fragments from every query provider for the label.
func (f *Fetcher) Fetch(ctx context.Context, label string, keywords []string) ([]domain.RawFragment, []ProviderResult) {
	var (
		fragments []domain.RawFragment
		results   []ProviderResult
	)
	for res := range f.Results(ctx, label, keywords) {
		fragments = append(fragments, res.Fragments...)
		results = append(results, res)
	}
	return fragments, results
}

// Listings yields one result per listing provider.
func (f *Fetcher) Listings(ctx context.Context) iter.Seq[ProviderResult] {
	return func(yield func(ProviderResult) bool) {
		for _, provider := range f.listings {
			res := f.call(ctx, provider.Name(), "", func(ctx context.Context) ([]domain.RawFragment, error) {
				return provider.FetchListing(ctx, scanner.Request{})
			})
			if !yield(res) {
				return
			}
		}
	}
}

// HasListings reports whether any listing provider is configured.
func (f *Fetcher) HasListings() bool {
	return len(f.listings) > 0
}

func (f *Fetcher) call(ctx context.Context, name, label string, fn func(context.Context) ([]domain.RawFragment, error)) ProviderResult {
	res := ProviderResult{Provider: name, Label: label}

	ctx, span := tracer.Start(ctx, "fetch.provider")
	defer span.End()
	span.SetAttributes(attribute.String("provider", name), attribute.String("label", label))

	if err := f.pacer.wait(ctx, name); err != nil {
		res.Err = fmt.Errorf("wait for %s: %w", name, err)
		f.finish(span, &res)
		return res
	}

	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	res.Fragments, res.Err = safeCall(callCtx, fn)
	res.Elapsed = time.Since(start)
	f.pacer.mark(name)

	if res.Err == nil && callCtx.Err() != nil {
		res.Err = fmt.Errorf("provider %s: %w", name, callCtx.Err())
	}
	if res.Err != nil {
		res.Fragments = nil
	}

	f.finish(span, &res)
	return res
}

func (f *Fetcher) finish(span trace.Span, res *ProviderResult) {
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		f.logger.Warn("provider failed", "provider", res.Provider, "label", res.Label, "error", res.Err)
		return
	}
	span.SetAttributes(attribute.Int("fragments", len(res.Fragments)))
	f.logger.Debug("provider produced fragments", "provider", res.Provider, "label", res.Label,
		"count", len(res.Fragments), "elapsed", res.Elapsed)
}

func safeCall(ctx context.Context, fn func(context.Context) ([]domain.RawFragment, error)) (fragments []domain.RawFragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			fragments = nil
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	return fn(ctx)
}

// pacer enforces a minimum gap between calls to the same provider.
// It is owned by the fetch loop and not safe for concurrent use.
type pacer struct {
	delay  time.Duration
	delays map[string]time.Duration
	last   map[string]time.Time
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

func newPacer(delay time.Duration, delays map[string]time.Duration) *pacer {
	return &pacer{
		delay:  delay,
		delays: delays,
		last:   map[string]time.Time{},
		now:    time.Now,
		sleep:  timeutil.Sleep,
	}
}

func (p *pacer) wait(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	last, ok := p.last[name]
	if !ok {
		return nil
	}
	gap := p.delay
	if d, ok := p.delays[name]; ok {
		gap = d
	}
	remaining := gap - p.now().Sub(last)
	if remaining <= 0 {
		return nil
	}
	return p.sleep(ctx, remaining)
}

func (p *pacer) mark(name string) {
	p.last[name] = p.now()
}
