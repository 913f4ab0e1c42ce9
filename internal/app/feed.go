package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/metrics"
	"delivery-dispatch/internal/store"
	dsync "delivery-dispatch/internal/sync"
	"delivery-dispatch/internal/transport/kafka"
)

// feedMetrics groups the counters touched per feed delivery.
type feedMetrics struct {
	deliveries  prometheus.Counter
	transitions *prometheus.CounterVec
}

func newFeedMetrics(reg prometheus.Registerer) *feedMetrics {
	m := &feedMetrics{
		deliveries:  metrics.NewFeedDeliveriesTotal(),
		transitions: metrics.NewOrderTransitionsTotal(),
	}
	reg.MustRegister(m.deliveries, m.transitions)
	return m
}

// NewFeedHandler applies feed deliveries to the view and records the
// detected transitions. Observers receive the changes of each delivery
// after the view has been updated.
func NewFeedHandler(view *dsync.View, m *feedMetrics, logger logx.Logger, observers ...func(dsync.Changes)) kafka.HandleFunc {
	return func(_ context.Context, c dsync.Collections) error {
		ch := view.Apply(c)
		m.deliveries.Inc()
		for _, t := range ch.Transitions {
			m.transitions.WithLabelValues(string(t.To)).Inc()
			logger.Info("order transition observed",
				logx.String("order_id", t.OrderID),
				logx.String("from", string(t.From)),
				logx.String("to", string(t.To)),
			)
		}
		if n := len(ch.Incoming); n > 0 {
			logger.Info("incoming orders detected", logx.Int("count", n))
		}
		for _, fn := range observers {
			fn(ch)
		}
		return nil
	}
}

// hydrateView loads the current collections from the store into the
// view so the first snapshot is served before any feed delivery.
func hydrateView(ctx context.Context, r store.Reader, view *dsync.View) error {
	orders, err := r.ListOrders(ctx)
	if err != nil {
		return err
	}
	workers, err := r.ListWorkers(ctx)
	if err != nil {
		return err
	}
	expenses, err := r.ListExpenses(ctx)
	if err != nil {
		return err
	}
	requests, err := r.ListChangeRequests(ctx)
	if err != nil {
		return err
	}
	view.Apply(dsync.Collections{
		Orders:         orders,
		Workers:        workers,
		Expenses:       expenses,
		ChangeRequests: requests,
	})
	return nil
}
