package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewStoreRetriesTotal returns a Prometheus counter for the number of read retries performed against the store
func NewStoreRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "store_read_retries_total",
		Help: "Total number of read retries performed against the persistence store",
	})
}

// NewFeedDeliveriesTotal returns a Prometheus counter for the number of applied feed deliveries
func NewFeedDeliveriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_deliveries_total",
		Help: "Total number of full-collection feed deliveries applied to the view",
	})
}

// NewOrderTransitionsTotal returns a Prometheus counter vector for detected order status transitions
func NewOrderTransitionsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Total number of order status transitions detected by the sync view",
	}, []string{"to"})
}

// NewIncomingAlertsTotal returns a Prometheus counter for raised incoming-order alerts
func NewIncomingAlertsTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "incoming_alerts_total",
		Help: "Total number of incoming-order alerts raised",
	})
}
