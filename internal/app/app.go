package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"NewsCatcher/internal/config"
	"NewsCatcher/internal/infrastructure/feishu"
	"NewsCatcher/internal/infrastructure/llm"
	"NewsCatcher/internal/infrastructure/parser"
	"NewsCatcher/internal/infrastructure/scheduler"
	"NewsCatcher/internal/infrastructure/snapshot"
	"NewsCatcher/internal/infrastructure/storage"
	"NewsCatcher/internal/logging"
	"NewsCatcher/internal/normalize"
	"NewsCatcher/internal/ports"
	"NewsCatcher/internal/recency"
	"NewsCatcher/internal/scanner"
	"NewsCatcher/internal/usecase"
)

// Options selects the run mode.
type Options struct {
	DryRun bool
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	notifier *feishu.Notifier
	closers  []func() error
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	taxonomy, err := cfg.BuildTaxonomy()
	if err != nil {
		return nil, err
	}

	bindings, err := parser.NewStrategySource(DefaultRegistry(cfg), cfg.Sites, baseLogger.With("component", "source")).Bind()
	if err != nil {
		return nil, err
	}

	fetcher := usecase.NewFetcher(usecase.FetcherDeps{
		Providers: bindings.Providers,
		Listings:  bindings.Listings,
		Delay:     cfg.Pipeline.ProviderDelay,
		Delays:    bindings.Delays,
		Timeout:   cfg.Pipeline.ProviderTimeout,
		Logger:    baseLogger.With("component", "fetcher"),
	})

	clock := LocalClock(cfg.Scheduler.Location())
	deps := usecase.PipelineDeps{
		Taxonomy:   taxonomy,
		Fetcher:    fetcher,
		Normalizer: normalize.New(normalize.WithClock(clock)),
		Recency:    recency.New(recency.WithClock(clock)),
		Limits: usecase.Limits{
			MaxPerLabel:       cfg.Pipeline.MaxPerLabel,
			MaxTotal:          cfg.Pipeline.MaxTotal,
			MaxAgeDays:        cfg.Pipeline.MaxAgeDays,
			FundingMaxAgeDays: cfg.Pipeline.FundingMaxAgeDays,
		},
		Logger: baseLogger.With("component", "pipeline"),
	}

	if cfg.LLM.Enabled() {
		deps.Summarizer = llm.NewSummarizer(cfg.LLM)
	}
	if cfg.Snapshot.Dir != "" {
		deps.Snapshots = snapshot.NewFileWriter(cfg.Snapshot.Dir, cfg.Scheduler.Location())
	}
	if cfg.Notifications.Feishu.WebhookURL != "" {
		a.notifier = feishu.NewNotifier(cfg.Notifications.Feishu.WebhookURL, cfg.Notifications.Feishu.Secret, baseLogger.With("component", "feishu"))
	}

	if !opts.DryRun {
		if a.notifier != nil {
			deps.Notifier = a.notifier
		} else {
			baseLogger.Warn("no webhook configured, digest will not be delivered")
		}

		store, err := a.openSeenStore(ctx)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		if store != nil {
			deps.SeenStore = store
		}
	}

	a.pipeline = usecase.NewPipeline(deps)
	return a, nil
}

// DefaultRegistry registers every built-in scanner strategy.
func DefaultRegistry(cfg config.Config) *scanner.Registry {
	client := &http.Client{Timeout: cfg.Pipeline.ProviderTimeout}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewBaiduScanner(client))
	registry.Register(parser.NewSogouScanner(client))
	registry.Register(parser.NewBingScanner(cfg.Pipeline.ProviderTimeout))
	registry.Register(parser.NewRSSScanner(client, cfg.Pipeline.FeedCacheTTL, cfg.Scheduler.Location()))
	registry.RegisterListing(parser.NewPedailyFundingScanner(client))
	registry.RegisterListing(parser.NewPedailyIPOScanner(client))
	return registry
}

// LocalClock reads the wall clock in loc, so relative dates such as "昨天"
// resolve against the configured timezone rather than the host's.
func LocalClock(loc *time.Location) func() time.Time {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}

func (a *Application) openSeenStore(ctx context.Context) (ports.SeenStore, error) {
	switch {
	case a.cfg.Database.DSN != "":
		db, err := sql.Open("postgres", a.cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		store, err := storage.NewPostgresStore(db, a.cfg.Database.Table)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		a.logger.Info("seen store enabled", "backend", "postgres")
		return store, nil

	case a.cfg.Redis.URL != "":
		store := storage.NewRedisStore(storage.NewRedisClient(a.cfg.Redis.URL), a.cfg.Redis.TTL)
		a.closers = append(a.closers, store.Close)
		a.logger.Info("seen store enabled", "backend", "redis")
		return store, nil
	}
	return nil, nil
}

// Run performs a single pipeline execution. An empty run is logged and not treated as a failure.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	now := time.Now().In(a.cfg.Scheduler.Location())
	err := a.pipeline.ProcessDay(ctx, now)
	if errors.Is(err, usecase.ErrNoData) {
		a.logger.Warn("nothing to deliver today")
		return nil
	}
	return err
}

// RunScheduled blocks until ctx is cancelled, running the pipeline daily.
func (a *Application) RunScheduled(ctx context.Context, runNow bool) error {
	driver, err := scheduler.NewDailyScheduler(a.cfg.Scheduler.DailyAt, a.cfg.Scheduler.Location(), runNow)
	if err != nil {
		return err
	}

	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "daily_at", a.cfg.Scheduler.DailyAt, "next", driver.Next(time.Now()).Format(time.RFC3339))

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sched.Stop(stopCtx)
}

// TestWebhook sends a plain text message to the configured webhook.
func (a *Application) TestWebhook(ctx context.Context) error {
	if a.notifier == nil {
		return fmt.Errorf("no feishu webhook configured")
	}
	text := fmt.Sprintf("NewsCatcher webhook test %s", time.Now().In(a.cfg.Scheduler.Location()).Format("2006-01-02 15:04:05"))
	return a.notifier.SendText(ctx, text)
}

// Close releases storage connections.
func (a *Application) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	a.closers = nil
	return errors.Join(errs...)
}
