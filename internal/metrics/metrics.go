// Package metrics exposes the Prometheus collectors used by the server.
// A nil *Metrics is valid and records nothing, so components built without
// a registry (tests, the CLI) need no special casing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	reservationsCreated prometheus.Counter
	statusTransitions   *prometheus.CounterVec
	dispatches          *prometheus.CounterVec
	eventsPublished     *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// New registers every collector on reg.  Go runtime and process collectors
// are added as well.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		reservationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "siri",
			Name:      "reservations_created_total",
			Help:      "Reservations accepted by the public intake.",
		}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "siri",
			Name:      "reservation_status_updates_total",
			Help:      "Reservation status writes by target status.",
		}, []string{"status"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "siri",
			Name:      "notification_dispatch_total",
			Help:      "Notification dispatch attempts by kind and result.",
		}, []string{"kind", "result"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "siri",
			Name:      "reservation_events_published_total",
			Help:      "Reservation events handed to the broker by type and result.",
		}, []string{"type", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "siri",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "siri",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.reservationsCreated,
		m.statusTransitions,
		m.dispatches,
		m.eventsPublished,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ReservationCreated() {
	if m == nil {
		return
	}
	m.reservationsCreated.Inc()
}

func (m *Metrics) StatusUpdated(status string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(status).Inc()
}

// Dispatch records one notification attempt; kind is "new_reservation" or
// "status_update".
func (m *Metrics) Dispatch(kind string, delivered bool) {
	if m == nil {
		return
	}
	result := "delivered"
	if !delivered {
		result = "failed"
	}
	m.dispatches.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) EventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(eventType, result).Inc()
}

// ObserveHTTP records a finished request.  route is the registered path
// pattern, never the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
