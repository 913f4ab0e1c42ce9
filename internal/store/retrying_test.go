package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
)

// flakyReader fails ListOrders a fixed number of times, then succeeds.
type flakyReader struct {
	Reader
	failures int
	calls    int
	err      error
}

func (f *flakyReader) ListOrders(context.Context) ([]domain.Order, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return []domain.Order{{ID: "26022026-1"}}, nil
}

type countingCounter struct{ n int }

func (c *countingCounter) Inc() { c.n++ }

func connError() error {
	return &pgconn.PgError{Code: "08006", Message: "connection failure"}
}

func newTestReader(next Reader, retries counter) *RetryingReader {
	r := NewRetryingReader(next, logx.Nop(), retries, RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    80 * time.Millisecond,
	})
	r.sleep = func(time.Duration) {}
	return r
}

func TestRetryingReader_RecoversAfterTransientFailures(t *testing.T) {
	t.Parallel()

	flaky := &flakyReader{failures: 2, err: connError()}
	retries := &countingCounter{}
	r := newTestReader(flaky, retries)

	orders, err := r.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 3, flaky.calls)
	assert.Equal(t, 2, retries.n)
}

func TestRetryingReader_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	flaky := &flakyReader{failures: 10, err: connError()}
	r := newTestReader(flaky, nil)

	_, err := r.ListOrders(context.Background())
	require.Error(t, err)
	assert.Equal(t, 4, flaky.calls)
}

func TestRetryingReader_NonRetryableFailsFast(t *testing.T) {
	t.Parallel()

	flaky := &flakyReader{failures: 10, err: pgx.ErrNoRows}
	r := newTestReader(flaky, nil)

	_, err := r.ListOrders(context.Background())
	require.ErrorIs(t, err, pgx.ErrNoRows)
	assert.Equal(t, 1, flaky.calls)
}

func TestRetryingReader_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	flaky := &flakyReader{failures: 10, err: connError()}
	r := newTestReader(flaky, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ListOrders(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, flaky.calls)
}

func TestNewRetryingReader_NilNext(t *testing.T) {
	t.Parallel()
	assert.Nil(t, NewRetryingReader(nil, logx.Nop(), nil, RetryConfig{}))
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	base := 10 * time.Millisecond
	max := 80 * time.Millisecond

	assert.Equal(t, 10*time.Millisecond, backoff(base, max, 1))
	assert.Equal(t, 20*time.Millisecond, backoff(base, max, 2))
	assert.Equal(t, 40*time.Millisecond, backoff(base, max, 3))
	assert.Equal(t, 80*time.Millisecond, backoff(base, max, 4))
	assert.Equal(t, 80*time.Millisecond, backoff(base, max, 10))
	assert.Equal(t, time.Duration(0), backoff(0, max, 3))
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRetryable(connError()))
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "57P01"}))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "42601"}))
	assert.False(t, IsRetryable(pgx.ErrNoRows))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}
