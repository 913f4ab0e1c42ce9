package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"delivery-dispatch/internal/config"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/metrics"
	"delivery-dispatch/internal/store"
	dsync "delivery-dispatch/internal/sync"
	"delivery-dispatch/internal/transport/kafka"
)

// MustBuildWorkerContainer builds the DI container for the sync worker.
// The worker consumes the feed, maintains a local view and drives the
// incoming-order alert gate; it has no HTTP surface.
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	container, err := buildWorkerContainer(ctx)
	if err != nil {
		log.Fatalf("failed to build worker container: %v", err)
	}
	return container
}

func buildWorkerContainer(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerStore(container, ConnectDBWithRetry); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if err := registerWorkerDomain(container); err != nil {
		return nil, fmt.Errorf("domain: %w", err)
	}
	return container, nil
}

func registerWorkerDomain(container *dig.Container) error {
	return provideAll(container,
		dsync.NewView,
		newAlertGate,
		func(view *dsync.View, gate *dsync.AlertGate, m *feedMetrics, logger logx.Logger) kafka.HandleFunc {
			return NewFeedHandler(view, m, logger, gate.Observe)
		},
		func(cfg *config.Config, h kafka.HandleFunc, logger logx.Logger) (*kafka.Feed, error) {
			return kafka.NewFeed(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, h, logger)
		},
	)
}

// newAlertGate builds the alert gate for the courier this worker
// process serves. WORKER_ID selects the courier; without it the gate
// never matches an incoming order.
func newAlertGate(logger logx.Logger, reg prometheus.Registerer) *dsync.AlertGate {
	workerID := os.Getenv("WORKER_ID")
	alerts := metrics.NewIncomingAlertsTotal()
	reg.MustRegister(alerts)
	return dsync.NewAlertGate(workerID,
		func(o domain.Order) {
			alerts.Inc()
			logger.Info("incoming order alert",
				logx.String("order_id", o.ID),
				logx.String("worker_id", o.WorkerID),
			)
		},
		func() {
			logger.Info("alert silenced")
		},
	)
}

// WorkerRunner runs the feed consumer loop
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun starts the feed consumer using the provided DI container
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	pool *pgxpool.Pool,
	reader *store.RetryingReader,
	view *dsync.View,
	feed *kafka.Feed,
	logger logx.Logger,
) error {
	if feed == nil {
		return fmt.Errorf("feed brokers not configured")
	}
	defer closeWorker(pool, feed, logger)

	if err := hydrateView(ctx, reader, view); err != nil {
		return err
	}

	logger.Info("dispatch-syncworker started")
	return feed.Run(ctx)
}

func closeWorker(pool *pgxpool.Pool, feed *kafka.Feed, logger logx.Logger) {
	if err := feed.Close(); err != nil {
		logger.Error("feed close error", logx.Any("err", err))
	}
	if pool != nil {
		pool.Close()
	}
}
