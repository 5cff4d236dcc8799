package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records outcomes of checkout attempts.
type CheckoutMetrics struct {
	duration *prometheus.HistogramVec
	success  prometheus.Counter
	failure  prometheus.Counter
	orders   prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	success := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_success_total",
		Help: "Successful checkout attempts.",
	})
	failure := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_failure_total",
		Help: "Failed checkout attempts.",
	})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_created_total",
		Help: "Orders created by successful checkouts.",
	})
	reg.MustRegister(duration, success, failure, orders)
	return &CheckoutMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		orders:   orders,
	}
}

// ObserveDuration records how long an attempt took for the given outcome.
func (c *CheckoutMetrics) ObserveDuration(outcome string, d time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

// IncSuccess increments the success counter.
func (c *CheckoutMetrics) IncSuccess() {
	if c == nil || c.success == nil {
		return
	}
	c.success.Inc()
}

// IncFailure increments the failure counter.
func (c *CheckoutMetrics) IncFailure() {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.Inc()
}

// AddOrders adds the number of orders a successful attempt produced.
func (c *CheckoutMetrics) AddOrders(n int) {
	if c == nil || c.orders == nil {
		return
	}
	c.orders.Add(float64(n))
}
