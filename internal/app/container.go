package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"delivery-dispatch/internal/config"
	"delivery-dispatch/internal/http/handlers"
	"delivery-dispatch/internal/http/middleware"
	"delivery-dispatch/internal/http/router"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/metrics"
	"delivery-dispatch/internal/seq"
	"delivery-dispatch/internal/service/changereq"
	"delivery-dispatch/internal/service/orders"
	"delivery-dispatch/internal/service/workers"
	"delivery-dispatch/internal/store"
	dsync "delivery-dispatch/internal/sync"
	"delivery-dispatch/internal/transport/kafka"
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: ConnectDBWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerStore(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if err := registerDomain(container); err != nil {
		return nil, fmt.Errorf("domain: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		config.Load,
		NewLogger,
		func() *prometheus.Registry {
			reg := prometheus.NewRegistry()
			middleware.Register(reg)
			return reg
		},
		newFeedMetrics,
		func(reg *prometheus.Registry) prometheus.Registerer { return reg },
	)
}

func registerStore(
	container *dig.Container,
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) error {
	return provideAll(container,
		func(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
			return dbConnect(ctx, cfg.DB.DSN(), 10, time.Second)
		},
		func(ctx context.Context, pool *pgxpool.Pool) (*store.Postgres, error) {
			pg := store.NewPostgres(pool)
			if err := pg.EnsureSchema(ctx); err != nil {
				return nil, err
			}
			return pg, nil
		},
		func(pg *store.Postgres, cfg *config.Config, logger logx.Logger, reg *prometheus.Registry) *store.RetryingReader {
			retries := metrics.NewStoreRetriesTotal()
			reg.MustRegister(retries)
			return store.NewRetryingReader(pg, logger, retries, store.RetryConfig{
				MaxAttempts: cfg.StoreRetry.MaxAttempts,
				BaseDelay:   cfg.StoreRetry.BaseDelay,
				MaxDelay:    cfg.StoreRetry.MaxDelay,
			})
		},
	)
}

func registerDomain(container *dig.Container) error {
	return provideAll(container,
		dsync.NewView,
		func(pg *store.Postgres) *seq.Allocator { return seq.New(pg) },
		func(pg *store.Postgres, alloc *seq.Allocator, view *dsync.View, cfg *config.Config, logger logx.Logger) *orders.Service {
			return orders.NewService(pg, alloc, view, cfg.OperationTimeout, logger, orders.Options{
				OptimisticDelete: cfg.OptimisticDelete,
			})
		},
		func(pg *store.Postgres, view *dsync.View, cfg *config.Config, logger logx.Logger) *changereq.Service {
			return changereq.NewService(pg, view, cfg.OperationTimeout, logger)
		},
		func(pg *store.Postgres, view *dsync.View, cfg *config.Config, logger logx.Logger) *workers.Service {
			return workers.NewService(pg, view, cfg.OperationTimeout, logger)
		},
		func(view *dsync.View, m *feedMetrics, logger logx.Logger) kafka.HandleFunc {
			return NewFeedHandler(view, m, logger)
		},
		func(cfg *config.Config, h kafka.HandleFunc, logger logx.Logger) (*kafka.Feed, error) {
			return kafka.NewFeed(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, h, logger)
		},
	)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		func(svc *orders.Service, view *dsync.View) *handlers.OrderHandler {
			return handlers.NewOrderHandler(svc, view)
		},
		func(svc *workers.Service) *handlers.WorkerHandler {
			return handlers.NewWorkerHandler(svc)
		},
		func(svc *changereq.Service, view *dsync.View) *handlers.ChangeRequestHandler {
			return handlers.NewChangeRequestHandler(svc, view)
		},
		func(pg *store.Postgres, view *dsync.View) *handlers.AdminHandler {
			return handlers.NewAdminHandler(pg, view)
		},
		router.New,
		serverProvider,
	)
}

// ConnectDBWithRetry dials Postgres with a bounded retry loop.
func ConnectDBWithRetry(ctx context.Context, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error) {
	var lastErr error
	const attemptTimeout = 3 * time.Second
	for i := 1; i <= retries; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		pool, err := store.NewPool(attemptCtx, dsn)
		cancel()
		if err == nil {
			log.Printf("db connected on attempt %d", i)
			return pool, nil
		}
		lastErr = err
		log.Printf("db connect failed (attempt %d/%d): %v", i, retries, err)
		if i < retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil, fmt.Errorf("db connect failed after %d attempts: %w", retries, lastErr)
}
