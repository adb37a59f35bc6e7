package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SectorPulse/internal/analyzer"
	"SectorPulse/internal/api"
	"SectorPulse/internal/collector"
	"SectorPulse/internal/config"
	"SectorPulse/internal/export"
	"SectorPulse/internal/logging"
	"SectorPulse/internal/notifier"
	"SectorPulse/internal/recorder"
	"SectorPulse/internal/scheduler"
	"SectorPulse/internal/store"
	"SectorPulse/internal/telemetry"

	"github.com/rs/zerolog/log"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("init logging")
	}
	log.Info().Str("config", cfgPath).Msg("SectorPulse starting")

	// Init fetcher
	ds := cfg.DataSource
	var fetcher collector.Fetcher
	switch ds.Provider {
	case "rest":
		fetcher = collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, ds.HistoryDays, cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{Days: ds.HistoryDays}
	default:
		fetcher = collector.NewYahooFetcher(ds.BaseURL, ds.SymbolSuffix, ds.HistoryDays, cfg.Proxy)
	}
	log.Info().Str("source", fetcher.Name()).Strs("symbols", ds.Symbols).Msg("data source ready")

	col := collector.NewCollector(fetcher, ds.Symbols, ds.Workers, ds.RequestsPerSecond)

	// Init store
	st, err := store.New(cfg.State.File)
	if err != nil {
		log.Fatal().Err(err).Msg("init state store")
	}

	// Init notifier
	var n notifier.Notifier = notifier.NoopNotifier{}
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Warn().Msg("telegram not configured, notifications disabled")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	metrics := telemetry.New()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, analyzer.NewEngine(), export.NewWriter(cfg.Export.Dir), st, rec, n, metrics)
	if err := sched.Register(cfg.Schedule.FetchCron); err != nil {
		log.Fatal().Err(err).Msg("register cron task")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP API
	srv := api.NewServer(cfg.Server.Addr, api.NewHandler(st, rec), metrics.Handler())
	srv.Start()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing fetch cycle now")
		go sched.RunNow()
	}

	log.Info().Msg("SectorPulse is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("stop http server")
	}
	log.Info().Msg("SectorPulse stopped")
}
