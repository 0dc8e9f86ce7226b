package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ReportLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pulselab",
			Subsystem: "reports",
			Name:      "latency_seconds",
			Help:      "Latency of HRV report endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ReportErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulselab",
			Subsystem: "reports",
			Name:      "errors_total",
			Help:      "Errors by HRV report endpoint",
		},
		[]string{"endpoint"},
	)

	ReportCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulselab",
			Subsystem: "reports",
			Name:      "cache_total",
			Help:      "Report cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ReportLatency, ReportErrors, ReportCache)
	})
}
