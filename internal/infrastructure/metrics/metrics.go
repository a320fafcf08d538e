// Package metrics exposes prometheus instrumentation for the HTTP layer and
// wishlist activity.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
)

const namespace = "giftlist"

// Metrics owns a private registry and the collectors registered on it
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	activity       *prometheus.CounterVec
	notifyFailures *prometheus.CounterVec
}

// New creates the collectors and registers them with runtime collectors on a
// fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		activity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wishlist",
			Name:      "activity_total",
			Help:      "Committed wishlist mutations by verb.",
		}, []string{"verb"}),
		notifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wishlist",
			Name:      "notify_failures_total",
			Help:      "Activity notifications that could not be delivered, by verb.",
		}, []string{"verb"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.activity,
		m.notifyFailures,
	)
	return m
}

// Registry returns the registry backing the metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency. Routes are labelled by
// their pattern so ids and share codes do not explode cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		m.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Notifier wraps next so every event is counted by verb
func (m *Metrics) Notifier(next wishlist.Notifier) wishlist.Notifier {
	return &countingNotifier{next: next, metrics: m}
}

type countingNotifier struct {
	next    wishlist.Notifier
	metrics *Metrics
}

func (n *countingNotifier) Notify(ctx context.Context, event wishlist.Event) error {
	n.metrics.activity.WithLabelValues(event.Entry.Verb).Inc()
	if err := n.next.Notify(ctx, event); err != nil {
		n.metrics.notifyFailures.WithLabelValues(event.Entry.Verb).Inc()
		return err
	}
	return nil
}
