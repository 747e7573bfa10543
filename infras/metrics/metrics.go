package metrics

import (
	"net/http"
	"roadbook/config"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// Metrics records booking engine counters. Implementations must be safe for concurrent use.
type Metrics interface {
	BookingCreated(lines, quantity int)
	BookingRejected(reason string)
	BookingCancelled(status string, lines int)
	TransactionObserved(operation, result string, elapsed time.Duration)
	Handler() http.Handler
}

type prometheusMetrics struct {
	registry     *prometheus.Registry
	bookings     *prometheus.CounterVec
	bookedUnits  prometheus.Counter
	bookingLines prometheus.Counter
	cancels      *prometheus.CounterVec
	released     prometheus.Counter
	txDuration   *prometheus.HistogramVec
}

func New(cfg *config.Config) Metrics {
	namespace := cfg.Metrics.Namespace

	m := &prometheusMetrics{
		registry: prometheus.NewRegistry(),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "requests_total",
			Help:      "Booking requests by outcome and rejection reason.",
		}, []string{"result", "reason"}),
		bookedUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "reserved_units_total",
			Help:      "Capacity units reserved by committed bookings.",
		}),
		bookingLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "lines_total",
			Help:      "Booking lines committed.",
		}),
		cancels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "cancellations_total",
			Help:      "Cancellations by resulting status.",
		}, []string{"status"}),
		released: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "released_lines_total",
			Help:      "Booking lines whose capacity was released.",
		}),
		txDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "transaction_duration_seconds",
			Help:      "Duration of ledger transactions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.bookings,
		m.bookedUnits,
		m.bookingLines,
		m.cancels,
		m.released,
		m.txDuration,
	)

	return m
}

func (m *prometheusMetrics) BookingCreated(lines, quantity int) {
	m.bookings.WithLabelValues(ResultSuccess, "").Inc()
	m.bookingLines.Add(float64(lines))
	m.bookedUnits.Add(float64(quantity))
}

func (m *prometheusMetrics) BookingRejected(reason string) {
	m.bookings.WithLabelValues(ResultRejected, reason).Inc()
}

func (m *prometheusMetrics) BookingCancelled(status string, lines int) {
	m.cancels.WithLabelValues(status).Inc()
	m.released.Add(float64(lines))
}

func (m *prometheusMetrics) TransactionObserved(operation, result string, elapsed time.Duration) {
	m.txDuration.WithLabelValues(operation, result).Observe(elapsed.Seconds())
}

func (m *prometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
