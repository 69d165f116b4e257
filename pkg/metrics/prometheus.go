package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ticksStored *prometheus.CounterVec
	signals     *prometheus.CounterVec
	signalSkips *prometheus.CounterVec
	decisions   *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ticksStored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_price_ticks_stored_total",
				Help: "Total number of price observations written to the store",
			},
			[]string{"asset"},
		),
		signals: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_signals_computed_total",
				Help: "Total number of signal rows written",
			},
			[]string{"asset"},
		),
		signalSkips: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_signal_skips_total",
				Help: "Signal ticks skipped for insufficient price history",
			},
			[]string{"asset"},
		),
		decisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_decisions_total",
				Help: "Decision outcomes per asset and action",
			},
			[]string{"asset", "action"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradesim_last_price",
				Help: "Last recorded price for an asset",
			},
			[]string{"asset"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradesim_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordTickStored records a stored price observation.
func (r *Recorder) RecordTickStored(asset string) {
	r.ticksStored.WithLabelValues(asset).Inc()
}

// RecordSignal records a written signal row.
func (r *Recorder) RecordSignal(asset string) {
	r.signals.WithLabelValues(asset).Inc()
}

// RecordSignalSkip records a skipped signal tick.
func (r *Recorder) RecordSignalSkip(asset string) {
	r.signalSkips.WithLabelValues(asset).Inc()
}

// RecordDecision records a decision outcome (including HOLD).
func (r *Recorder) RecordDecision(asset, action string) {
	r.decisions.WithLabelValues(asset, action).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for an asset.
func (r *Recorder) RecordLastPrice(asset string, price float64) {
	r.lastPrice.WithLabelValues(asset).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
