package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func familyNames(t *testing.T, providers *OTelProviders) []string {
	t.Helper()
	families, err := providers.Registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	return names
}

func hasFamily(names []string, prefix string) bool {
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}

func TestInitializeOTel_MetricsOnly(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:   ServiceName,
		EnableMetrics: true,
		TraceExporter: "none",
		SampleRatio:   1,
	}, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Registry)
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer, "tracer falls back to a no-op")
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{TraceExporter: "none"}, quietLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.Registry)

	metrics, err := NewIngestMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordFetch(context.Background(), true, 3, time.Millisecond)

	ctx, span := providers.StartSpan(context.Background(), "noop")
	span.End()
	assert.NotNil(t, ctx)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnsupportedTraceExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{EnableTracing: true, TraceExporter: "jaeger"}, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestIngestMetrics_Recorded(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: ServiceName, EnableMetrics: true, TraceExporter: "none"}, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewIngestMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordExtracted(ctx, 4000)
	metrics.RecordFetch(ctx, true, 5, 120*time.Millisecond)
	metrics.RecordFetch(ctx, false, 0, 30*time.Millisecond)
	metrics.RecordPublish(ctx, "memory", 5, 10*time.Millisecond, nil)
	metrics.RecordRunError(ctx, "SCHEMA")

	names := familyNames(t, providers)
	for _, prefix := range []string{
		"universe_instruments_extracted",
		"ingest_fetch_attempts",
		"ingest_fetch_duration",
		"ingest_bars_fetched",
		"publish_rows_written",
		"publish_duration",
		"run_errors",
	} {
		assert.True(t, hasFamily(names, prefix), "missing metric family %s in %v", prefix, names)
	}
}

func TestIngestMetrics_NilSafe(t *testing.T) {
	var metrics *IngestMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		metrics.RecordExtracted(ctx, 1)
		metrics.RecordFetch(ctx, true, 1, time.Second)
		metrics.RecordPublish(ctx, "sheets", 1, time.Second, nil)
		metrics.RecordRunError(ctx, "FETCH")
	})
}

func TestShutdown_PushesToGateway(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path = r.Method, r.URL.Path
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    ServiceName,
		EnableMetrics:  true,
		TraceExporter:  "none",
		PushgatewayURL: server.URL,
		JobName:        "jpxcli",
	}, quietLogger())
	require.NoError(t, err)

	metrics, err := NewIngestMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordExtracted(context.Background(), 10)

	require.NoError(t, providers.Shutdown(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.True(t, strings.HasPrefix(path, "/metrics/job/jpxcli"), path)
}
