package typeahead

import "github.com/andyrewlee/typeahead/internal/perf"

// Telemetry receives periodic latency reports.
type Telemetry interface {
	PublishLatency(latency LatencyStats, accuracy float64)
}

// PerfTelemetry records reports as perf stats and counters.
type PerfTelemetry struct{}

func (PerfTelemetry) PublishLatency(latency LatencyStats, accuracy float64) {
	perf.Record("typeahead_latency_min", latency.Min)
	perf.Record("typeahead_latency_median", latency.Median)
	perf.Record("typeahead_latency_max", latency.Max)
	perf.Count("typeahead_latency_samples", int64(latency.Count))
	// accuracy in basis points; perf only keeps integers and durations
	perf.Count("typeahead_accuracy_bp", int64(accuracy*10000))
}

// TelemetryFunc adapts a function to Telemetry.
type TelemetryFunc func(latency LatencyStats, accuracy float64)

func (f TelemetryFunc) PublishLatency(latency LatencyStats, accuracy float64) {
	f(latency, accuracy)
}

