package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"yt_harvester/internal/config"
	"yt_harvester/internal/domain"
	"yt_harvester/internal/publisher"
	"yt_harvester/internal/report"
	"yt_harvester/internal/scheduler"
	"yt_harvester/internal/service"
	"yt_harvester/internal/source/youtube"
	"yt_harvester/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	channelList := flag.String("channel", "", "comma separated channel ids, overrides sync.channels")
	once := flag.Bool("once", false, "harvest and sync every channel once, then exit")
	reportQuestion := flag.String("report", "", "run a report by question or 1-based number and print it")
	listReports := flag.Bool("list-reports", false, "print the available reports and exit")
	flag.Parse()

	logger := setupLogger("info")

	if *listReports {
		printQuestions(os.Stdout, report.NewCatalog(nil).Questions())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	if *channelList != "" {
		cfg.Sync.Channels = splitChannels(*channelList)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if *reportQuestion != "" {
		catalog := report.NewCatalog(postgres.NewQueryExecutor(db))
		table, err := catalog.Run(ctx, *reportQuestion)
		if err != nil {
			logger.Error("report failed", "error", err)
			os.Exit(1)
		}
		printTable(os.Stdout, table)
		return
	}

	if err := cfg.ValidateHarvest(); err != nil {
		logger.Error("invalid harvest config", "error", err)
		os.Exit(1)
	}

	api, err := youtube.New(ctx, youtube.Config{
		APIKey:            cfg.YouTube.APIKey,
		Endpoint:          cfg.YouTube.Endpoint,
		Timeout:           cfg.YouTube.Timeout,
		RequestsPerSecond: cfg.YouTube.RequestsPerSecond,
		MaxAttempts:       cfg.YouTube.Retry.MaxAttempts,
		InitialBackoff:    cfg.YouTube.Retry.InitialBackoff,
		MaxBackoff:        cfg.YouTube.Retry.MaxBackoff,
	}, logger)
	if err != nil {
		logger.Error("failed to create youtube client", "error", err)
		os.Exit(1)
	}

	var notifier service.Notifier
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		notifier = rabbitMQ
	}

	harvester := service.NewHarvester(api, cfg.YouTube.MaxPages, logger)
	syncService := service.NewSyncService(
		postgres.NewChannelStore(db),
		postgres.NewVideoStore(db),
		postgres.NewCommentStore(db),
		postgres.NewPlaylistStore(db),
		postgres.NewSyncStateStore(db),
		postgres.NewTransactionManager(db),
		notifier,
		logger,
		cfg.Sync,
	)
	pipeline := service.NewPipeline(harvester, syncService, service.NewSession(), logger)

	logger.Info("starting youtube harvester",
		"source", youtube.SourceID,
		"channels", cfg.Sync.Channels,
		"once", *once,
		"interval", cfg.Sync.Interval,
		"max_pages", cfg.YouTube.MaxPages,
	)

	if *once {
		runCtx, runCancel := context.WithTimeout(ctx, cfg.Sync.Timeout)
		defer runCancel()
		if err := pipeline.Run(runCtx, cfg.Sync.Channels); err != nil {
			logger.Error("harvest run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	sched := scheduler.NewScheduler(pipeline, cfg.Sync.Channels, cfg.Sync.Interval, cfg.Sync.Timeout, logger)
	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func splitChannels(list string) []string {
	var channels []string
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			channels = append(channels, id)
		}
	}
	return channels
}

func printQuestions(w io.Writer, questions []string) {
	for i, q := range questions {
		fmt.Fprintf(w, "%2d. %s\n", i+1, q)
	}
}

func printTable(w io.Writer, table *domain.Table) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v != nil {
				cells[i] = fmt.Sprint(v)
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
