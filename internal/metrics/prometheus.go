package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics exported by the relay.
type Metrics struct {
	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Transcription metrics
	TranscriptionRequests  *prometheus.CounterVec
	TranscriptionFailures  *prometheus.CounterVec
	TranscriptionDuration  *prometheus.HistogramVec
	TranscriptionAudioSize prometheus.Histogram

	// Result store metrics
	StoreInserts  prometheus.Counter
	StoreFailures prometheus.Counter
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stt_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stt_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		TranscriptionRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stt_transcription_requests_total",
			Help: "Total number of transcription requests sent upstream",
		}, []string{"provider"}),
		TranscriptionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stt_transcription_failures_total",
			Help: "Total number of failed transcription requests",
		}, []string{"provider"}),
		TranscriptionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stt_transcription_duration_seconds",
			Help:    "Upstream transcription latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"provider"}),
		TranscriptionAudioSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stt_transcription_audio_bytes",
			Help:    "Size of uploaded audio in bytes",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8),
		}),

		StoreInserts: factory.NewCounter(prometheus.CounterOpts{
			Name: "stt_store_inserts_total",
			Help: "Total number of transcript rows inserted",
		}),
		StoreFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "stt_store_failures_total",
			Help: "Total number of failed transcript inserts",
		}),
	}
}
