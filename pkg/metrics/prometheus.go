package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cyclesTotal        *prometheus.CounterVec
	alertsTotal        *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	fetchErrorsTotal   *prometheus.CounterVec
	lastPrice          *prometheus.GaugeVec
	latency            *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cyclesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptohunter_monitor_cycles_total",
				Help: "Total monitor cycles by outcome",
			},
			[]string{"outcome"},
		),
		alertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptohunter_alerts_total",
				Help: "Total alerts emitted by type and severity",
			},
			[]string{"type", "severity"},
		),
		notificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptohunter_notifications_total",
				Help: "Total notification deliveries by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),
		fetchErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptohunter_fetch_errors_total",
				Help: "Total market data fetch failures by source",
			},
			[]string{"source"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cryptohunter_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cryptohunter_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCycle records one monitor cycle outcome.
func (r *Recorder) RecordCycle(outcome string) {
	r.cyclesTotal.WithLabelValues(outcome).Inc()
}

// RecordAlert records one emitted alert.
func (r *Recorder) RecordAlert(alertType, severity string) {
	r.alertsTotal.WithLabelValues(alertType, severity).Inc()
}

// RecordNotification records one delivery attempt outcome.
func (r *Recorder) RecordNotification(channel, outcome string) {
	r.notificationsTotal.WithLabelValues(channel, outcome).Inc()
}

// RecordFetchError records a market data fetch failure.
func (r *Recorder) RecordFetchError(source string) {
	r.fetchErrorsTotal.WithLabelValues(source).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
