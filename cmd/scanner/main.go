package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/kalshi-highs/internal/api"
	"github.com/rickgao/kalshi-highs/internal/auth"
	"github.com/rickgao/kalshi-highs/internal/config"
	"github.com/rickgao/kalshi-highs/internal/database"
	"github.com/rickgao/kalshi-highs/internal/decision"
	"github.com/rickgao/kalshi-highs/internal/mesowest"
	"github.com/rickgao/kalshi-highs/internal/metrics"
	"github.com/rickgao/kalshi-highs/internal/model"
	"github.com/rickgao/kalshi-highs/internal/notify"
	"github.com/rickgao/kalshi-highs/internal/poller"
	"github.com/rickgao/kalshi-highs/internal/scanner"
	"github.com/rickgao/kalshi-highs/internal/version"
	"github.com/rickgao/kalshi-highs/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/scanner.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single scan and exit")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting scanner",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"station", cfg.Station.ID,
		"series", cfg.Station.SeriesTicker,
		"strategy", cfg.Strategy.Name,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	engine, err := decision.NewEngine(decision.Config{
		Strategy:         decision.StrategyName(cfg.Strategy.Name),
		MinExpectedValue: *cfg.Strategy.MinExpectedValue,
		MaxAsk:           cfg.Strategy.MaxAsk,
	})
	if err != nil {
		logger.Error("failed to build decision engine", "error", err)
		os.Exit(1)
	}

	unit, _ := model.ParseUnit(cfg.Feed.Unit)
	temps := mesowest.NewClient(cfg.Feed.Token,
		mesowest.WithBaseURL(cfg.Feed.BaseURL),
		mesowest.WithUnit(unit),
		mesowest.WithHTTPClient(&http.Client{Timeout: cfg.Feed.Timeout}),
		mesowest.WithRateLimit(cfg.Feed.RateLimit, 2),
		mesowest.WithRetries(cfg.Feed.MaxRetries, time.Second),
		mesowest.WithLogger(logger),
	)

	apiOpts := []api.ClientOption{
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
		api.WithRateLimit(cfg.API.RateLimit, int(cfg.API.RateLimit)+1),
		api.WithMaxPages(cfg.API.MaxPages),
	}
	if cfg.API.KeyID != "" {
		signer, err := auth.LoadSigner(cfg.API.KeyID, cfg.API.PrivateKeyPath)
		if err != nil {
			logger.Error("failed to load API credentials", "error", err)
			os.Exit(1)
		}
		apiOpts = append(apiOpts, api.WithSigner(signer))
	}
	apiClient := api.NewClient(cfg.API.RestURL, cfg.API.APIKey, apiOpts...)
	feed := api.NewMarketFeed(apiClient, cfg.Station.SeriesTicker,
		api.WithSnapshot(cfg.Snapshot.Path, api.SnapshotMode(cfg.Snapshot.Mode)),
		api.WithFeedLogger(logger),
	)

	m := metrics.New()

	opts := []scanner.Option{
		scanner.WithLogger(logger),
		scanner.WithMetrics(m),
		scanner.WithNotifier(newNotifier(cfg.Notify, logger)),
	}

	var pool *pgxpool.Pool
	if cfg.Database.Enabled {
		db := cfg.Database.Postgres
		logger.Info("connecting to database", "host", db.Host, "port", db.Port, "database", db.Name)

		pool, err = database.Connect(ctx, db)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := database.EnsureSchema(ctx, pool); err != nil {
			logger.Error("failed to create schema", "error", err)
			os.Exit(1)
		}
		opts = append(opts, scanner.WithSink(writer.NewDecisionWriter(pool, logger)))
		logger.Info("database connected")
	}

	s := scanner.New(scanner.Config{
		StationID:         cfg.Station.ID,
		SeriesTicker:      cfg.Station.SeriesTicker,
		Location:          cfg.Station.Location(),
		ReportingInterval: cfg.Station.ReportingInterval,
		Lookback:          cfg.Feed.Lookback,
		UsualTime:         cfg.Station.UsualTime,
		Concurrency:       cfg.Strategy.Concurrency,
		LogLines:          cfg.Notify.LogLines,
	}, temps, feed, engine, opts...)

	var lastOK atomic.Int64
	job := func(ctx context.Context) error {
		if _, err := s.Run(ctx); err != nil {
			return err
		}
		lastOK.Store(time.Now().Unix())
		return nil
	}

	if *once || cfg.Poller.Interval == 0 {
		runCtx, runCancel := context.WithTimeout(ctx, cfg.Poller.RunTimeout)
		err := job(runCtx)
		runCancel()
		if err != nil {
			os.Exit(1)
		}
		return
	}

	var healthServer *http.Server
	if cfg.Metrics.Enabled {
		healthServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           createHealthHandler(cfg, m, pool, &lastOK),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("starting health server", "port", cfg.Metrics.Port)
			if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health server error", "error", err)
			}
		}()
	}

	p := poller.New(poller.Config{
		Interval:   cfg.Poller.Interval,
		RunTimeout: cfg.Poller.RunTimeout,
	}, job, logger)
	if err := p.Start(ctx); err != nil {
		logger.Error("failed to start poller", "error", err)
		os.Exit(1)
	}

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := p.Stop(shutdownCtx); err != nil {
		logger.Warn("poller did not stop cleanly", "error", err)
	}
	if healthServer != nil {
		healthServer.Shutdown(shutdownCtx)
	}

	logger.Info("scanner stopped")
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// newNotifier picks the alert transport: mail when a password is set, then
// Slack, otherwise the log.
func newNotifier(cfg config.NotifyConfig, logger *slog.Logger) notify.Notifier {
	switch {
	case cfg.SMTP.Password != "":
		return notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			To:       cfg.SMTP.To,
		})
	case cfg.Slack.WebhookURL != "":
		return notify.NewSlackNotifier(cfg.Slack.WebhookURL, cfg.Slack.Channel)
	default:
		logger.Info("no alert transport configured, alerts will be logged")
		return notify.NewLogNotifier(logger)
	}
}

// createHealthHandler serves /health and the metrics endpoint.
func createHealthHandler(cfg *config.ScannerConfig, m *metrics.ScannerMetrics, pool *pgxpool.Pool, lastOK *atomic.Int64) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["postgres"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["postgres"] = "connected"
			}
		}

		// A scan should succeed at least once every few intervals.
		last := lastOK.Load()
		scan := map[string]any{"station": cfg.Station.ID}
		if last > 0 {
			scan["last_success"] = time.Unix(last, 0).UTC()
		}
		if last == 0 || time.Since(time.Unix(last, 0)) > 3*cfg.Poller.Interval {
			if health.Status == "healthy" {
				health.Status = "degraded"
			}
		}
		health.Components["scan"] = scan

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.Handle(cfg.Metrics.Path, m.Handler())

	return mux
}
