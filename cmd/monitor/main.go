package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/qepting91/reddit-stream-monitor/internal/alert"
	"github.com/qepting91/reddit-stream-monitor/internal/collector"
	"github.com/qepting91/reddit-stream-monitor/internal/config"
	"github.com/qepting91/reddit-stream-monitor/internal/dashboard"
	"github.com/qepting91/reddit-stream-monitor/internal/domain"
	"github.com/qepting91/reddit-stream-monitor/internal/metrics"
	"github.com/qepting91/reddit-stream-monitor/internal/monitor"
	"github.com/qepting91/reddit-stream-monitor/internal/oauth"
	"github.com/qepting91/reddit-stream-monitor/internal/presenter"
	"github.com/qepting91/reddit-stream-monitor/internal/storage"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 1. Setup
	configPath := flag.String("config", "config.json", "path to the settings file (JSON, YAML or TOML)")
	flag.Parse()

	godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration", "path", *configPath, "err", err)
		return 1
	}
	level, _ := config.ParseLevel(cfg.LoggingLevel)
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Optional side outputs
	metrics.StartServer(cfg.MetricsAddr, func(err error) {
		logger.Error("Metrics server failed", "err", err)
	})

	var hits chan domain.Hit
	var writerWg sync.WaitGroup
	if cfg.HitLog != "" {
		hits = make(chan domain.Hit, 100)
		writer := &storage.WriterService{FilePath: cfg.HitLog, Logger: logger}
		writerWg.Add(1)
		go writer.Start(&writerWg, hits)

		if cfg.DashboardAddr != "" {
			go func() {
				logger.Info("Starting Dashboard", "addr", cfg.DashboardAddr)
				if err := dashboard.StartServer(cfg.HitLog, cfg.DashboardAddr, logger); err != nil {
					logger.Error("Dashboard failed", "err", err)
				}
			}()
		}
	}

	// 3. Authorize and initialize the client (Using Factory)
	authCtx := oauth.WithUserAgent(ctx, cfg.Credentials.UserAgent)
	handshake := oauth.New(oauth.NewConfig(cfg.Credentials), cfg.CallbackAddr, logger)
	client, err := collector.NewCollector(authCtx, handshake)
	if err != nil {
		logger.Error("Failed to get initial token", "err", err, "kind", domain.KindOf(err).String())
		return 1
	}
	logger.Info("Collector initialized", "mode", os.Getenv("COLLECTOR_MODE"))

	// 4. Stream until the source fails or a signal arrives
	stream := collector.NewStream(client, cfg.Subreddit, cfg.SkipExisting, cfg.PollInterval, logger)
	mon, err := monitor.New(cfg, stream, presenter.New(os.Stdout), alert.NewBeeper(), hits, logger)
	if err != nil {
		logger.Error("Failed to build monitor", "err", err, "kind", domain.KindOf(err).String())
		return 1
	}
	runErr := mon.Run(authCtx)

	if hits != nil {
		close(hits)
		writerWg.Wait()
	}
	if runErr != nil {
		logger.Error("An error occurred in main", "err", runErr, "kind", domain.KindOf(runErr).String())
		return 1
	}
	logger.Info("Monitor stopped")
	return 0
}
