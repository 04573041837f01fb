package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/metadata"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/searcher/handler"
	apperrors "github.com/Adithya-Monish-Kumar-K/query-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/metrics"
)

func serveCommand() cli.Command {
	return cli.Command{
		Name:  "serve",
		Usage: "serve queries over HTTP",
		Flags: []cli.Flag{
			cli.IntFlag{
				Name:   "port",
				EnvVar: "QE_SERVER_PORT",
				Usage:  "HTTP port (overrides server.port)",
			},
			cli.IntFlag{
				Name:   "metrics-port",
				EnvVar: "QE_METRICS_PORT",
				Usage:  "Prometheus port; setting it enables the metrics server",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}
	if c.IsSet("metrics-port") {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Port = c.Int("metrics-port")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	idx, err := loadIndex(cfg.Index)
	if err != nil {
		return err
	}
	normalizer, err := loadNormalizer(cfg.Index)
	if err != nil {
		return err
	}
	store, err := metadata.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMetadataUnavailable, err)
	}
	defer store.Close()

	m := metrics.New(prometheus.DefaultRegisterer)
	m.IndexTerms.Set(float64(idx.Len()))

	var publisher analytics.Publisher
	if cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
		defer producer.Close()
		publisher = producer
		slog.Info("query events enabled", "topic", cfg.Kafka.Topics.QueryEvents, "brokers", cfg.Kafka.Brokers)
	}
	aggregator := analytics.NewAggregator()
	collector := analytics.NewCollector(publisher, aggregator, cfg.Analytics.BufferSize)
	collector.Start(ctx)
	defer collector.Close()

	checker := health.NewChecker()
	checker.Register("index", health.CountCheck("words", idx.Len))
	if p, ok := store.(metadata.Pinger); ok {
		checker.Register("metadata", health.PingCheck(p))
	}

	exec := executor.New(idx, store,
		executor.WithNormalizer(normalizer),
		executor.WithMetrics(m),
		executor.WithTracker(collector),
	)
	router := handler.NewRouter(
		handler.New(exec, cfg.Server.DefaultLimit, cfg.Server.MaxResults),
		handler.RouterConfig{
			Checker:        checker,
			Stats:          analytics.NewHandler(aggregator),
			Metrics:        m,
			RequestTimeout: cfg.Server.WriteTimeout,
		},
	)

	servers := []*http.Server{{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}}
	if cfg.Metrics.Enabled {
		servers = append(servers, metrics.NewServer(cfg.Metrics.Port, nil))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			slog.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutting down %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("query service stopped")
	return nil
}
