package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"

	"jpxcli/internal/infrastructure"
	"jpxcli/internal/prices"
	"jpxcli/pkg/contracts/domain"
)

// InstrumentFetcher fetches one instrument. *prices.Fetcher implements it.
type InstrumentFetcher interface {
	Fetch(ctx context.Context, code string, w prices.Window) prices.Outcome
}

// Runner fetches every instrument in list order.
type Runner struct {
	fetcher InstrumentFetcher
	limiter *rate.Limiter
	metrics *infrastructure.IngestMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithMetrics records fetch metrics.
func WithMetrics(m *infrastructure.IngestMetrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithTracer wraps the run and each fetch in spans.
func WithTracer(t trace.Tracer) RunnerOption {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// NewRunner creates a Runner waiting delay between consecutive fetches.
// A zero delay disables waiting.
func NewRunner(fetcher InstrumentFetcher, delay time.Duration, logger *slog.Logger, opts ...RunnerOption) *Runner {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	r := &Runner{
		fetcher: fetcher,
		limiter: rate.NewLimiter(limit, 1),
		tracer:  tracenoop.NewTracerProvider().Tracer("ingest"),
		logger:  infrastructure.WithComponent(logger, "ingest"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run fetches every instrument code over w and aggregates the outcomes. Per-instrument
// failures are part of the result; the returned error is an
// EmptyUniverseError when nothing succeeded, or the context error when the
// run was interrupted.
func (r *Runner) Run(ctx context.Context, instruments []string, w prices.Window) (*domain.IngestResult, error) {
	ctx, span := r.tracer.Start(ctx, "ingest.run", trace.WithAttributes(
		attribute.Int("instruments", len(instruments)),
		attribute.String("window.start", w.Start.Format(domain.DateLayout)),
		attribute.String("window.end", w.End.Format(domain.DateLayout)),
	))
	defer span.End()

	r.logger.InfoContext(ctx, "Ingest started",
		slog.Int("instruments", len(instruments)),
		slog.String("start", w.Start.Format(domain.DateLayout)),
		slog.String("end", w.End.Format(domain.DateLayout)))

	agg := NewAggregator()
	total := len(instruments)
	for i, code := range instruments {
		if err := r.limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "interrupted")
			return nil, fmt.Errorf("ingest interrupted after %d of %d instruments: %w", i, total, err)
		}

		out := r.fetchOne(ctx, code, w)
		agg.Add(out)
		r.metrics.RecordFetch(ctx, out.OK(), len(out.Bars), out.Duration)

		progress := fmt.Sprintf("[%d/%d]", i+1, total)
		if out.OK() {
			r.logger.InfoContext(ctx, "Fetched",
				slog.String("progress", progress),
				slog.String("code", code),
				slog.Int("bars", len(out.Bars)),
				slog.Duration("duration", out.Duration))
		} else {
			r.logger.WarnContext(ctx, "Fetch failed",
				slog.String("progress", progress),
				slog.String("code", code),
				slog.String("reason", out.Err.Detail()))
		}
	}
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "interrupted")
		return nil, fmt.Errorf("ingest interrupted after %d of %d instruments: %w", total, total, err)
	}

	res, err := agg.Result()
	span.SetAttributes(
		attribute.Int("succeeded", res.Succeeded),
		attribute.Int("failed", res.Failed),
		attribute.Int("bars", len(res.Bars)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	r.logger.InfoContext(ctx, "Ingest finished",
		slog.Int("succeeded", res.Succeeded),
		slog.Int("failed", res.Failed),
		slog.Int("bars", len(res.Bars)))
	if res.Failed > 0 {
		r.logger.WarnContext(ctx, "Instruments without data",
			slog.Any("codes", res.FailedCodes()))
	}
	return res, err
}

func (r *Runner) fetchOne(ctx context.Context, code string, w prices.Window) prices.Outcome {
	ctx, span := r.tracer.Start(ctx, "ingest.fetch", trace.WithAttributes(attribute.String("code", code)))
	defer span.End()

	out := r.fetcher.Fetch(ctx, code, w)
	if !out.OK() {
		span.SetStatus(codes.Error, out.Err.Reason)
	}
	span.SetAttributes(attribute.Int("bars", len(out.Bars)))
	return out
}
