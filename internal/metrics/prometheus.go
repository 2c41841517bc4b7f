package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// conversionDuration is the time spent converting a single source file.
	conversionDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "conversion_durations_seconds",
			Help:       "File conversion duration distributions.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"engine", "mode"},
	)

	conversionDurationsHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "conversion_durations_histogram_seconds",
			Help:    "File conversion duration distributions.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"engine", "mode"},
	)

	conversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversions_total",
			Help: "Number of converted source files.",
		},
		[]string{"engine", "mode"},
	)

	// payloadBytesTotal counts payload bytes only, headers excluded.
	payloadBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "converted_payload_bytes_total",
			Help: "Number of payload bytes copied after the header.",
		},
		[]string{"engine", "mode"},
	)

	conversionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversion_errors_total",
			Help: "Number of failed conversions.",
		},
		[]string{"engine", "failure"},
	)

	dataFrameDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "dataframe_durations_seconds",
			Help:       "Data frame processing duration distributions.",
			Objectives: map[float64]float64{},
		},
		[]string{"engine", "processing_kind"},
	)

	dataFramesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataframes_total",
			Help: "Number of processed data frames.",
		},
		[]string{"engine", "processing_kind"},
	)

	pipelineFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_errors_total",
			Help: "Number of pipeline errors.",
		},
		[]string{"engine", "failure"},
	)
)

// NewRegistry creates a registry with every collector
// of the service and the build info collector.
func NewRegistry() (*prometheus.Registry, error) {
	registry := prometheus.NewRegistry()

	for _, c := range []prometheus.Collector{
		conversionDuration,
		conversionDurationsHistogram,
		conversionsTotal,
		payloadBytesTotal,
		conversionFailures,
		dataFrameDuration,
		dataFramesTotal,
		pipelineFailures,
		collectors.NewBuildInfoCollector(),
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// WriteTextfile writes the gathered metrics in the text exposition format,
// suitable for the node exporter textfile collector.
func WriteTextfile(path string, registry *prometheus.Registry) error {
	return prometheus.WriteToTextfile(path, registry)
}

// prometheusServer exposes the registry over HTTP.
type prometheusServer struct {
	server   *http.Server
	registry *prometheus.Registry
	conf     Config
}

// NewPrometheusServer
func NewPrometheusServer(conf Config, registry *prometheus.Registry) (*prometheusServer, error) {
	p := &prometheusServer{
		registry: registry,
		conf:     conf,
	}

	p.server = &http.Server{
		Addr: p.conf.Addr,
		Handler: promhttp.HandlerFor(
			p.registry,
			promhttp.HandlerOpts{EnableOpenMetrics: true},
		),
	}

	return p, nil
}

// Serve blocks until the server is stopped.
func (p *prometheusServer) Serve() error {
	if err := p.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop
func (p *prometheusServer) Stop(ctx context.Context) error {
	return p.server.Shutdown(ctx)
}

// reporter
type reporter struct {
	info ServiceInfo
}

// NewReporter
func NewReporter(info ServiceInfo) (*reporter, error) {
	return &reporter{info: info}, nil
}

// ConversionFinished
func (r *reporter) ConversionFinished(mode string, seconds float64, payloadBytes int64) {
	conversionDuration.WithLabelValues(r.info.Engine, mode).Observe(seconds)
	conversionDurationsHistogram.WithLabelValues(r.info.Engine, mode).Observe(seconds)
	conversionsTotal.WithLabelValues(r.info.Engine, mode).Inc()
	payloadBytesTotal.WithLabelValues(r.info.Engine, mode).Add(float64(payloadBytes))
}

// ConversionFailed
func (r *reporter) ConversionFailed(failure string) {
	conversionFailures.WithLabelValues(r.info.Engine, failure).Inc()
}

// DataFrameProcessed
func (r *reporter) DataFrameProcessed(processingKind string, seconds float64) {
	dataFrameDuration.WithLabelValues(r.info.Engine, processingKind).Observe(seconds)
	dataFramesTotal.WithLabelValues(r.info.Engine, processingKind).Inc()
}

// PipelineFailed
func (r *reporter) PipelineFailed(failure string) {
	pipelineFailures.WithLabelValues(r.info.Engine, failure).Inc()
}
