// Package observe provides application-wide observability primitives for
// Ohbot: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Ohbot metrics.
const meterName = "github.com/MrWong99/ohbot"

// Speech request outcomes used as the "status" attribute of
// [Metrics.SpeechRequests].
const (
	SpeechPlayed      = "played"
	SpeechFetchFailed = "fetch_error"
	SpeechDecodeError = "decode_error"
	SpeechCancelled   = "cancelled"
)

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Speech pipeline ---

	// SpeechRequests counts speak invocations by outcome. Use with attribute:
	//   attribute.String("status", ...)
	SpeechRequests metric.Int64Counter

	// FetchDuration tracks the synthesis service round trip.
	FetchDuration metric.Float64Histogram

	// DecodeDuration tracks audio decoding plus peak normalisation.
	DecodeDuration metric.Float64Histogram

	// PlaybackDuration tracks time from play to stop.
	PlaybackDuration metric.Float64Histogram

	// ActiveSpeech tracks the number of sessions currently playing.
	ActiveSpeech metric.Int64UpDownCounter

	// LipUpdates counts analyzer writes to the lip signal.
	LipUpdates metric.Int64Counter

	// --- Device channel ---

	// DeviceCommands counts commands sent to the robot. Use with attributes:
	//   attribute.String("op", ...), attribute.String("status", ...)
	DeviceCommands metric.Int64Counter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) covering
// network fetches through to multi-second speech playback.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.FetchDuration, err = m.Float64Histogram("ohbot.speech.fetch.duration",
		metric.WithDescription("Latency of the speech synthesis request."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.DecodeDuration, err = m.Float64Histogram("ohbot.speech.decode.duration",
		metric.WithDescription("Latency of audio decoding and peak normalisation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.PlaybackDuration, err = m.Float64Histogram("ohbot.speech.playback.duration",
		metric.WithDescription("Time from playback start to stop."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.SpeechRequests, err = m.Int64Counter("ohbot.speech.requests",
		metric.WithDescription("Total speak invocations by outcome."),
	); err != nil {
		return nil, err
	}
	if met.LipUpdates, err = m.Int64Counter("ohbot.lip.updates",
		metric.WithDescription("Total lip signal updates written by the analyzer."),
	); err != nil {
		return nil, err
	}
	if met.DeviceCommands, err = m.Int64Counter("ohbot.device.commands",
		metric.WithDescription("Total device commands by op and status."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSpeech, err = m.Int64UpDownCounter("ohbot.speech.active_sessions",
		metric.WithDescription("Number of speech sessions currently playing."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("ohbot.http.request.duration",
		metric.WithDescription("HTTP request latency by method and route."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordSpeechRequest records the outcome of one speak invocation.
func (m *Metrics) RecordSpeechRequest(ctx context.Context, status string) {
	m.SpeechRequests.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordDeviceCommand records one command sent to the device channel.
func (m *Metrics) RecordDeviceCommand(ctx context.Context, op, status string) {
	m.DeviceCommands.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("status", status),
		),
	)
}
