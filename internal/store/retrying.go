package store

import (
	"context"
	"time"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
)

// Reader is the read surface consumed by the sync view and the
// snapshot endpoint.
type Reader interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListWorkers(ctx context.Context) ([]domain.Worker, error)
	ListExpenses(ctx context.Context) ([]domain.Expense, error)
	ListChangeRequests(ctx context.Context) ([]domain.ChangeRequest, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	GetWorker(ctx context.Context, id string) (*domain.Worker, error)
}

type counter interface {
	Inc()
}

// RetryConfig bounds the read-retry loop.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingReader retries transient read failures with capped backoff.
// Writes are never retried here: the core surfaces write failures to
// the caller, and retrying reads is the collaborator's business alone.
type RetryingReader struct {
	next    Reader
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
	sleep   func(time.Duration)
}

// NewRetryingReader wraps next; returns nil if next is nil.
func NewRetryingReader(next Reader, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingReader {
	if next == nil {
		return nil
	}
	return &RetryingReader{next: next, logger: logger, retries: retries, cfg: cfg, sleep: time.Sleep}
}

func retryRead[T any](ctx context.Context, r *RetryingReader, method string, call func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		v, err := call()
		if err == nil {
			return v, nil
		}
		lastErr = err
		if ctx.Err() != nil || attempt == r.cfg.MaxAttempts || !IsRetryable(err) {
			break
		}
		delay := backoff(r.cfg.BaseDelay, r.cfg.MaxDelay, attempt)
		if r.retries != nil {
			r.retries.Inc()
		}
		r.logger.Warn("store read retry",
			logx.String("method", method),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Any("err", err),
		)
		if !sleepWithContext(ctx, r.sleep, delay) {
			break
		}
	}
	return zero, lastErr
}

func (r *RetryingReader) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return retryRead(ctx, r, "ListOrders", func() ([]domain.Order, error) { return r.next.ListOrders(ctx) })
}

func (r *RetryingReader) ListWorkers(ctx context.Context) ([]domain.Worker, error) {
	return retryRead(ctx, r, "ListWorkers", func() ([]domain.Worker, error) { return r.next.ListWorkers(ctx) })
}

func (r *RetryingReader) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	return retryRead(ctx, r, "ListExpenses", func() ([]domain.Expense, error) { return r.next.ListExpenses(ctx) })
}

func (r *RetryingReader) ListChangeRequests(ctx context.Context) ([]domain.ChangeRequest, error) {
	return retryRead(ctx, r, "ListChangeRequests", func() ([]domain.ChangeRequest, error) { return r.next.ListChangeRequests(ctx) })
}

func (r *RetryingReader) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return retryRead(ctx, r, "GetOrder", func() (*domain.Order, error) { return r.next.GetOrder(ctx, id) })
}

func (r *RetryingReader) GetWorker(ctx context.Context, id string) (*domain.Worker, error) {
	return retryRead(ctx, r, "GetWorker", func() (*domain.Worker, error) { return r.next.GetWorker(ctx, id) })
}

// backoff doubles the base delay per attempt, capped at max.
func backoff(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if max > 0 && d > max {
		return max
	}
	return d
}

// sleepWithContext waits out the delay unless the context ends first.
func sleepWithContext(ctx context.Context, sleep func(time.Duration), d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	done := make(chan struct{})
	go func() {
		sleep(d)
		close(done)
	}()
	select {
	case <-ctx.Done():
		return false
	case <-done:
		return true
	}
}

var _ Reader = (*RetryingReader)(nil)
