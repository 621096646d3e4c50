package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"NewsCatcher/internal/app"
	"NewsCatcher/internal/config"
	"NewsCatcher/internal/logging"
)

var version = "dev"

func main() {
	var (
		once        = flag.Bool("once", false, "run the pipeline once and exit (default mode)")
		schedule    = flag.Bool("schedule", false, "run daily at scheduler.dailyAt until interrupted")
		runNow      = flag.Bool("run-now", false, "with -schedule, also run immediately")
		dryRun      = flag.Bool("dry-run", false, "collect and snapshot without delivery")
		testWebhook = flag.Bool("test-webhook", false, "send a test message to the webhook and exit")
	)
	flag.Parse()

	_ = godotenv.Load()

	bootLogger := logging.New("info", "text")
	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("load config", "error", err)
		os.Exit(2)
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := logging.InitTracing(ctx, "newscatcher", version, cfg.Logging.Tracing)
	if err != nil {
		logger.Error("init tracing", "error", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	application, err := app.New(ctx, cfg, logger, app.Options{DryRun: *dryRun})
	if err != nil {
		logger.Error("build application", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	switch {
	case *testWebhook:
		err = application.TestWebhook(ctx)
	case *schedule && !*once:
		err = application.RunScheduled(ctx, *runNow)
	default:
		err = application.Run(ctx)
	}

	if err != nil {
		logger.Error("application stopped", "error", err)
		application.Close()
		os.Exit(1)
	}
}
