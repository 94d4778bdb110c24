package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jpxcli/internal/config"
	apperrors "jpxcli/internal/errors"
	"jpxcli/internal/exporter"
	"jpxcli/internal/infrastructure"
	"jpxcli/internal/ingest"
	"jpxcli/internal/prices"
	"jpxcli/internal/publisher"
	"jpxcli/internal/schema"
	"jpxcli/internal/sources"
	"jpxcli/internal/universe"
	"jpxcli/pkg/contracts"
	"jpxcli/pkg/contracts/domain"
)

// Exit codes
const (
	ExitOK    = 0
	ExitFatal = 1
	ExitUsage = 2
)

// Application is the container for one batch run
type Application struct {
	Config  *config.Config
	Paths   *config.Paths
	Logger  *slog.Logger
	OTel    *infrastructure.OTelProviders
	Metrics *infrastructure.IngestMetrics
	RunID   string

	now func() time.Time
}

// NewApplication initializes logging, directories and telemetry for cfg.
func NewApplication(cfg *config.Config) (*Application, error) {
	paths := cfg.ResolvedPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, apperrors.NewStorageError("failed to ensure directories", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize logger", err)
	}

	runID := infrastructure.GenerateTraceID()
	logger = logger.With(slog.String("run_id", runID))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize telemetry", err)
	}
	metrics, err := infrastructure.NewIngestMetrics(otelProviders.Meter)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to create metrics", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("base_dir", paths.BaseDir))

	return &Application{
		Config:  cfg,
		Paths:   paths,
		Logger:  logger,
		OTel:    otelProviders,
		Metrics: metrics,
		RunID:   runID,
		now:     time.Now,
	}, nil
}

// Context returns ctx carrying the run id as trace id.
func (a *Application) Context(ctx context.Context) context.Context {
	return infrastructure.WithTraceID(ctx, a.RunID)
}

// RunTickers builds the instrument universe and writes the ticker list.
// A nil source downloads the configured listing URL.
func (a *Application) RunTickers(ctx context.Context, source universe.ListingSource) ([]domain.InstrumentRecord, error) {
	ctx = a.Context(ctx)
	if source == nil {
		source = sources.NewFetcher(a.Config.Listing, a.Logger, sources.WithUserAgent(a.Config.Ingest.UserAgent))
	}

	builder, err := universe.NewBuilder(source, a.Config.Listing, schema.DefaultAliases(), a.Metrics, a.Logger)
	if err != nil {
		return nil, a.fail(ctx, err)
	}

	ctx, span := a.OTel.StartSpan(ctx, "extract")
	records, err := builder.Build(ctx)
	span.End()
	if err != nil {
		return nil, a.fail(ctx, err)
	}

	list := exporter.NewTickerListExporter(a.Paths)
	if err := list.Export(a.Config.Listing.OutputCSV, builder.Fields(), records); err != nil {
		return nil, a.fail(ctx, apperrors.NewStorageError("failed to write ticker list", err))
	}

	a.Logger.InfoContext(ctx, "Ticker list written",
		slog.String("path", a.Config.Listing.OutputCSV),
		slog.Int("instruments", len(records)))
	return records, nil
}

// IngestOptions overrides the collaborators of an ingest run. Zero values
// use the configured ones.
type IngestOptions struct {
	// DryRun publishes to an in-memory destination.
	DryRun      bool
	Source      prices.Source
	Destination publisher.Destination
}

// RunIngest fetches every code of the ticker list and publishes the result.
func (a *Application) RunIngest(ctx context.Context, opts IngestOptions) (*domain.IngestResult, error) {
	ctx = a.Context(ctx)
	cfg := a.Config

	codes, err := universe.LoadCodes(exporter.NewTickerListExporter(a.Paths), cfg.Ingest.TickerListCSV)
	if err != nil {
		return nil, a.fail(ctx, apperrors.NewAppError(apperrors.ErrTypeUniverse, "failed to load ticker list", err))
	}

	source := opts.Source
	if source == nil {
		source = prices.NewYahooSource(cfg.Ingest.SourceURL, cfg.Ingest.RequestTimeout, cfg.Ingest.UserAgent)
	}
	fetcher := prices.NewFetcher(source, cfg.Ingest, a.Logger)
	window := prices.WindowEndingAt(a.now(), cfg.Ingest.Location(), cfg.Ingest.DaysBack)

	runner := ingest.NewRunner(fetcher, cfg.Ingest.FetchDelay, a.Logger,
		ingest.WithMetrics(a.Metrics), ingest.WithTracer(a.OTel.Tracer))
	result, err := runner.Run(ctx, codes, window)
	if result != nil && result.Failed > 0 && cfg.Ingest.FailuresReport {
		a.writeFailures(ctx, result.Failures)
	}
	if err != nil {
		return result, a.fail(ctx, err)
	}

	dest := opts.Destination
	closeDest := func() {}
	if dest == nil {
		if opts.DryRun {
			dest = publisher.NewMemoryDestination()
		} else {
			dest, closeDest, err = a.NewDestination(ctx)
			if err != nil {
				return result, a.fail(ctx, err)
			}
		}
	}
	defer closeDest()

	pctx, span := a.OTel.StartSpan(ctx, "publish")
	err = publisher.NewPublisher(dest, cfg.Publish, a.Metrics, a.Logger).Publish(pctx, result.Bars)
	span.End()
	if err != nil {
		return result, a.fail(ctx, err)
	}

	a.Logger.InfoContext(ctx, "Ingest complete",
		slog.String("destination", dest.Name()),
		slog.String("surface", cfg.Publish.SurfaceName),
		slog.Int("rows", len(result.Bars)),
		slog.Int("succeeded", result.Succeeded),
		slog.Int("failed", result.Failed),
		slog.Bool("dry_run", opts.DryRun))
	return result, nil
}

// NewDestination builds the configured destination. The returned func
// releases its resources.
func (a *Application) NewDestination(ctx context.Context) (publisher.Destination, func(), error) {
	noop := func() {}
	switch a.Config.Publish.Destination {
	case config.DestinationSheets:
		dest, err := publisher.NewSheetsDestination(ctx, a.Config.Sheets)
		if err != nil {
			return nil, noop, apperrors.NewConfigError("failed to create sheets destination", err)
		}
		return dest, noop, nil
	case config.DestinationWorkbook:
		return publisher.NewWorkbookDestination(a.Config.Workbook), noop, nil
	case config.DestinationPostgres:
		dest, err := publisher.ConnectPostgres(ctx, a.Config.Postgres)
		if err != nil {
			return nil, noop, &apperrors.PublishError{Destination: "postgres", Op: "connect", Cause: err}
		}
		return dest, dest.Close, nil
	case config.DestinationMemory:
		return publisher.NewMemoryDestination(), noop, nil
	}
	return nil, noop, apperrors.NewConfigError(
		fmt.Sprintf("unknown destination %q", a.Config.Publish.Destination), nil)
}

// Shutdown flushes telemetry and closes the log file.
func (a *Application) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var err error
	if a.OTel != nil {
		if err = a.OTel.Shutdown(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}
	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if cerr := infrastructure.CloseLogFile(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (a *Application) writeFailures(ctx context.Context, failures []domain.FetchFailure) {
	report := exporter.NewFailuresExporter(a.Paths)
	name := report.FileName(a.now())
	if err := report.Export(name, failures); err != nil {
		a.Logger.WarnContext(ctx, "Failed to write failures report", slog.String("error", err.Error()))
		return
	}
	a.Logger.InfoContext(ctx, "Failures report written",
		slog.String("path", a.Paths.GetReportPath(name)),
		slog.Int("failures", len(failures)))
}

// fail logs a run-aborting error and records it.
func (a *Application) fail(ctx context.Context, err error) error {
	errType := apperrors.TypeOf(err)
	a.Metrics.RecordRunError(ctx, string(errType))
	infrastructure.WithError(a.Logger, err).ErrorContext(ctx, "Run aborted",
		slog.String("error_type", string(errType)),
		slog.Bool("fatal", apperrors.IsFatal(err)))
	return err
}

// ExitCode maps a run error to a process exit code.
func ExitCode(err error) int {
	if err == nil || !apperrors.IsFatal(err) {
		return ExitOK
	}
	if apperrors.TypeOf(err) == apperrors.ErrTypeConfig {
		return ExitUsage
	}
	return ExitFatal
}
