package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters of one ns2pp run on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	LinesRead      prometheus.Counter
	BlankLines     prometheus.Counter
	OtherEvents    prometheus.Counter
	Malformed      prometheus.Counter
	Selected       prometheus.Counter
	Rejected       *prometheus.CounterVec
	SamplesEmitted prometheus.Counter
	Series         prometheus.Gauge
	SinkLatency    *prometheus.HistogramVec
	SinkErrors     *prometheus.CounterVec
}

// New creates and registers the run metrics.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		LinesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ns2pp_trace_lines_total",
			Help: "Trace lines read from the input.",
		}),
		BlankLines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ns2pp_blank_lines_total",
			Help: "Empty trace lines skipped.",
		}),
		OtherEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ns2pp_other_event_lines_total",
			Help: "Trace lines of a different event type than the selected one.",
		}),
		Malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ns2pp_malformed_records_total",
			Help: "Records of the selected event type that failed to parse.",
		}),
		Selected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ns2pp_selected_records_total",
			Help: "Records passed to the bandwidth aggregator.",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ns2pp_rejected_records_total",
			Help: "Parsed records dropped by the flow, node or rule filter.",
		}, []string{"reason"}),
		SamplesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ns2pp_samples_emitted_total",
			Help: "Closed bandwidth windows.",
		}),
		Series: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ns2pp_series",
			Help: "Number of (flow, node) series produced.",
		}),
		SinkLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ns2pp_sink_write_seconds",
			Help:    "Time spent writing the series store to each output sink.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"sink"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ns2pp_sink_errors_total",
			Help: "Failed writes per output sink.",
		}, []string{"sink"}),
	}

	m.reg.MustRegister(
		m.LinesRead, m.BlankLines, m.OtherEvents, m.Malformed, m.Selected,
		m.Rejected, m.SamplesEmitted, m.Series, m.SinkLatency, m.SinkErrors,
	)
	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// ObserveSink records the outcome of one sink write.
func (m *Metrics) ObserveSink(sink string, started time.Time, err error) {
	m.SinkLatency.WithLabelValues(sink).Observe(time.Since(started).Seconds())
	if err != nil {
		m.SinkErrors.WithLabelValues(sink).Inc()
	}
}

// WriteTextfile writes the metrics in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}

// Handler serves the metrics over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
