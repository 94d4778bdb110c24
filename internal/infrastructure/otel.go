package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"jpxcli/internal/config"
	"jpxcli/pkg/contracts"
)

const (
	ServiceName = config.AppName
	MeterName   = "jpxcli/ingest"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
	PushgatewayURL string
	JobName        string
}

// OTelConfigFrom maps the telemetry section of the run config.
func OTelConfigFrom(cfg config.TelemetryConfig) *OTelConfig {
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: contracts.Version,
		Environment:    cfg.Environment,
		TraceExporter:  cfg.TraceExporter,
		EnableMetrics:  cfg.EnableMetrics,
		EnableTracing:  cfg.EnableTracing,
		SampleRatio:    cfg.SampleRatio,
		PushgatewayURL: cfg.PushgatewayURL,
		JobName:        cfg.JobName,
	}
}

// OTelProviders holds the OpenTelemetry providers. Tracer and Meter are
// always usable; they are no-ops when the matching signal is disabled.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	// Registry receives the metrics exported by the meter provider.
	Registry *prometheus.Registry
	Logger   *slog.Logger

	cfg *OTelConfig
}

// InitializeOTel sets up tracing and metrics for one batch run
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = OTelConfigFrom(config.Default().Telemetry)
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", GenerateTraceID()),
	)

	providers := &OTelProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		Logger: logger,
		cfg:    cfg,
	}

	if cfg.EnableTracing && cfg.TraceExporter != "none" {
		if err := initializeTracing(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	logger.InfoContext(ctx, "OpenTelemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.Bool("tracing_enabled", providers.TracerProvider != nil),
		slog.Bool("metrics_enabled", providers.MeterProvider != nil),
		slog.Bool("pushgateway", cfg.PushgatewayURL != ""))

	return providers, nil
}

func initializeTracing(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)
	return nil
}

func initializeMetrics(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.Registry = registry
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetMeterProvider(mp)
	return nil
}

// Shutdown pushes collected metrics to the Pushgateway, when configured, and
// flushes the providers. A batch job is gone before any scrape could happen,
// so the push must precede the meter provider shutdown.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.Registry != nil && p.cfg != nil && p.cfg.PushgatewayURL != "" {
		pusher := push.New(p.cfg.PushgatewayURL, p.cfg.JobName).Gatherer(p.Registry)
		if err := pusher.PushContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("push metrics: %w", err))
		} else {
			p.Logger.InfoContext(ctx, "Metrics pushed",
				slog.String("pushgateway", p.cfg.PushgatewayURL),
				slog.String("job", p.cfg.JobName))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}

// IngestMetrics holds the instruments recorded by the pipeline.
// A nil *IngestMetrics records nothing.
type IngestMetrics struct {
	instrumentsExtracted metric.Int64Counter
	fetchAttempts        metric.Int64Counter
	fetchDuration        metric.Float64Histogram
	barsFetched          metric.Int64Counter
	rowsPublished        metric.Int64Counter
	publishDuration      metric.Float64Histogram
	runErrors            metric.Int64Counter
}

// NewIngestMetrics creates the pipeline instruments on meter
func NewIngestMetrics(meter metric.Meter) (*IngestMetrics, error) {
	m := &IngestMetrics{}
	var err error

	if m.instrumentsExtracted, err = meter.Int64Counter(
		"universe_instruments_extracted",
		metric.WithDescription("Instruments extracted from the exchange listing"),
	); err != nil {
		return nil, err
	}

	if m.fetchAttempts, err = meter.Int64Counter(
		"ingest_fetch_attempts",
		metric.WithDescription("Price fetch attempts by outcome"),
	); err != nil {
		return nil, err
	}

	if m.fetchDuration, err = meter.Float64Histogram(
		"ingest_fetch_duration",
		metric.WithDescription("Price fetch duration per instrument"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.barsFetched, err = meter.Int64Counter(
		"ingest_bars_fetched",
		metric.WithDescription("Daily bars converted from the time-series source"),
	); err != nil {
		return nil, err
	}

	if m.rowsPublished, err = meter.Int64Counter(
		"publish_rows_written",
		metric.WithDescription("Data rows written to the destination"),
	); err != nil {
		return nil, err
	}

	if m.publishDuration, err = meter.Float64Histogram(
		"publish_duration",
		metric.WithDescription("Destination publish duration"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.runErrors, err = meter.Int64Counter(
		"run_errors",
		metric.WithDescription("Fatal run errors by type"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordExtracted counts the instruments of a freshly extracted universe
func (m *IngestMetrics) RecordExtracted(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.instrumentsExtracted.Add(ctx, int64(n))
}

// RecordFetch records one per-instrument fetch
func (m *IngestMetrics) RecordFetch(ctx context.Context, ok bool, bars int, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.fetchAttempts.Add(ctx, 1, attrs)
	m.fetchDuration.Record(ctx, elapsed.Seconds(), attrs)
	if bars > 0 {
		m.barsFetched.Add(ctx, int64(bars))
	}
}

// RecordPublish records one publish attempt
func (m *IngestMetrics) RecordPublish(ctx context.Context, destination string, rows int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("destination", destination),
		attribute.String("status", status),
	)
	m.publishDuration.Record(ctx, elapsed.Seconds(), attrs)
	if err == nil {
		m.rowsPublished.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("destination", destination)))
	}
}

// RecordRunError counts a fatal error by its type label
func (m *IngestMetrics) RecordRunError(ctx context.Context, errType string) {
	if m == nil {
		return
	}
	m.runErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("type", errType)))
}

// StartSpan starts a span on the providers' tracer, tagged with the run trace ID
func (p *OTelProviders) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := p.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(MeterName)
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		attrs = append(attrs, attribute.String("run.trace_id", traceID))
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
