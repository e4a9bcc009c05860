package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/xpump/platform/internal/guard"
	"github.com/xpump/platform/internal/infra"
	"github.com/xpump/platform/internal/repository"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox consumer failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("outbox-consumer connected to postgres")

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	store := repository.NewBoundOutbox(repository.NewOutboxRepository(), pool)
	breaker := guard.NewCircuitBreaker(cfg.OutboxBreakerFailures, cfg.OutboxBreakerReset)
	poller := infra.NewOutboxPoller(store, guard.NewBreakingPublisher(producer, breaker), logger).
		WithPolling(cfg.OutboxPollInterval, cfg.OutboxBatchSize)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return poller.Run(gctx) })
	return g.Wait()
}
