package app

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/store"
	dsync "delivery-dispatch/internal/sync"
)

func TestFeedHandler_AppliesAndCounts(t *testing.T) {
	t.Parallel()

	view := dsync.NewView()
	m := newFeedMetrics(prometheus.NewRegistry())
	h := NewFeedHandler(view, m, logx.Nop())

	require.NoError(t, h(context.Background(), dsync.Collections{Orders: []domain.Order{
		{ID: "26022026-1", WorkerID: "w1", Status: domain.OrderPending},
	}}))
	require.NoError(t, h(context.Background(), dsync.Collections{Orders: []domain.Order{
		{ID: "26022026-1", WorkerID: "w1", Status: domain.OrderAccepted},
	}}))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.deliveries))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.transitions.WithLabelValues("accepted")))
	assert.Equal(t, uint64(2), view.Version())
}

func TestFeedHandler_NotifiesObservers(t *testing.T) {
	t.Parallel()

	view := dsync.NewView()
	m := newFeedMetrics(prometheus.NewRegistry())

	var seen []dsync.Changes
	h := NewFeedHandler(view, m, logx.Nop(), func(ch dsync.Changes) {
		seen = append(seen, ch)
	})

	require.NoError(t, h(context.Background(), dsync.Collections{Orders: []domain.Order{
		{ID: "26022026-1", WorkerID: "w1", Status: domain.OrderPending},
	}}))

	require.Len(t, seen, 1)
	require.Len(t, seen[0].Incoming, 1)
	assert.Equal(t, "26022026-1", seen[0].Incoming[0].ID)
}

func TestHydrateView(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.SaveWorker(ctx, &domain.Worker{
		ID: "w1", Name: "Ann", Phone: "+79160000001",
	}))
	require.NoError(t, m.SaveOrder(ctx, &domain.Order{
		ID: "26022026-1", WorkerID: "w1", Status: domain.OrderAccepted, CreatedAt: time.Now(),
	}))
	require.NoError(t, m.SaveExpense(ctx, &domain.Expense{
		ID: "e1", WorkerID: "w1", Title: "fuel", Amount: 300, At: time.Now(),
	}))

	view := dsync.NewView()
	require.NoError(t, hydrateView(ctx, m, view))

	s := view.Snapshot()
	assert.Equal(t, uint64(1), s.Version)
	assert.Len(t, s.Orders, 1)
	assert.Len(t, s.Workers, 1)
	assert.Len(t, s.Expenses, 1)
	assert.Empty(t, s.ChangeRequests)
}
