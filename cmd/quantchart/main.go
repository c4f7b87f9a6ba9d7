package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"QuantChart/internal/collector"
	"QuantChart/internal/config"
	"QuantChart/internal/figure"
	"QuantChart/internal/notifier"
	"QuantChart/internal/recorder"
	"QuantChart/internal/render"
	"QuantChart/internal/scheduler"
	"QuantChart/internal/source"
	"QuantChart/internal/theme"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg)
	slog.Info("QuantChart starting", "config", cfgPath)

	if err := cfg.Validate(); err != nil {
		slog.Error("config validation", "error", err)
		os.Exit(1)
	}
	if err := source.SetDefault(cfg.Source); err != nil {
		slog.Error("default source", "error", err)
		os.Exit(1)
	}

	fetcher := newFetcher(cfg)
	slog.Info("data source", "provider", fetcher.Name(), "symbol", cfg.DataSource.Symbol)
	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, cfg.DataSource.Days)
	col.Interval = collector.Interval(cfg.DataSource.Interval)

	// Init recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
			slog.Warn("create database directory", "error", err)
		}
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			slog.Warn("init sqlite recorder failed, using noop", "error", err)
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	var offline render.Renderer
	if cfg.OfflineFormat == "png" {
		offline = render.NewPNGRenderer(cfg.OutputDir)
	} else {
		offline = render.NewHTMLRenderer(cfg.OutputDir, cfg.OfflineShowLink, cfg.OfflineLinkText, cfg.OpenBrowser)
	}
	var online render.Renderer
	if cfg.Online.BaseURL != "" {
		online = render.NewOnlineRenderer(cfg.Online.BaseURL, cfg.Online.APIKey, cfg.Proxy)
	}

	job := &scheduler.RenderJob{
		Collector:    col,
		Assembler:    figure.NewAssembler(theme.New(cfg.Theme)),
		Presenter:    render.NewPresenter(offline, online, cfg.Offline, rec),
		Adjust:       cfg.Chart.Adjust,
		AdjustVolume: cfg.Chart.AdjustVolume,
		Options:      cfg.Chart.Options,
	}
	for _, ind := range cfg.Chart.Indicators {
		job.Studies = append(job.Studies, scheduler.Study{Name: ind.Name, Params: ind.Params})
	}
	var tn *notifier.TelegramNotifier
	if cfg.Notify() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		job.Notifier = tn
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.NewScheduler(ctx, job, rec)

	if cfg.Schedule.RenderCron == "" {
		if err := sched.RunNow(ctx); err != nil {
			slog.Error("render failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := sched.Register(cfg.Schedule.RenderCron); err != nil {
		slog.Error("register cron task", "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		slog.Info("telegram polling started")
	}
	if os.Getenv("RUN_ON_START") == "true" {
		slog.Info("RUN_ON_START enabled, rendering now")
		go func() {
			if err := sched.RunNow(ctx); err != nil {
				slog.Error("initial render failed", "error", err)
			}
		}()
	}

	slog.Info("QuantChart is running, press Ctrl+C to stop", "cron", cfg.Schedule.RenderCron)
	<-ctx.Done()
	slog.Info("shutdown signal received, stopping")
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "vstrader":
		return collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		return &collector.MockFetcher{Price: 100}
	default:
		return collector.NewYahooFetcher(cfg.Proxy)
	}
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Log.Level))); err != nil {
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stdout
	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
			slog.Debug("log directory creation failed", "error", err)
		}
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    25,
			MaxBackups: 10,
			MaxAge:     14,
			Compress:   true,
		})
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
