// Package minipbmetrics exposes Prometheus collectors for a running
// scan: bytes pulled from the byte source, fields surfaced, scopes
// entered and closed, and decode errors by kind.
package minipbmetrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// BytesConsumed counts input bytes the streamreader has pulled from
	// its byte source.
	BytesConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "minipb",
		Name:      "bytes_consumed_total",
		Help:      "Total input bytes pulled from the byte source.",
	})

	// FieldsEmitted counts Matched events the scanner has surfaced.
	FieldsEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "minipb",
		Name:      "fields_emitted_total",
		Help:      "Total Matched events surfaced by the scanner.",
	})

	// FramesEntered counts ScopeOpened events.
	FramesEntered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "minipb",
		Name:      "frames_entered_total",
		Help:      "Total nested scopes entered by the scanner.",
	})

	// FramesClosed counts EndOfScope events.
	FramesClosed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "minipb",
		Name:      "frames_closed_total",
		Help:      "Total scopes closed by the scanner.",
	})

	// DecodeErrors counts terminal scanner errors, labeled by kind
	// ("framing", "wire", "nesting", "record_too_large").
	DecodeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minipb",
		Name:      "decode_errors_total",
		Help:      "Total terminal decode errors, by kind.",
	}, []string{"kind"})

	// GatherLatency observes the wall time spent assembling one record,
	// from ScopeOpened to the matching EndOfScope.
	GatherLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "minipb",
		Name:      "gather_latency_seconds",
		Help:      "Time spent assembling a single gathered record.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(BytesConsumed, FieldsEmitted, FramesEntered, FramesClosed, DecodeErrors, GatherLatency)
}
