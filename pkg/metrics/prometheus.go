package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	samplesDecoded *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastHeartRate  prometheus.Gauge
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		samplesDecoded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulselab_samples_decoded_total",
				Help: "Total number of samples decoded from raw frames",
			},
			[]string{"signal"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulselab_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastHeartRate: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pulselab_last_heart_rate_bpm",
				Help: "Last decoded heart rate in beats per minute",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pulselab_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSampleDecoded counts one decoded sample for a signal stream.
func (r *Recorder) RecordSampleDecoded(signal string) {
	r.samplesDecoded.WithLabelValues(signal).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastHeartRate records the most recent heart rate reading.
func (r *Recorder) RecordLastHeartRate(bpm float64) {
	r.lastHeartRate.Set(bpm)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
