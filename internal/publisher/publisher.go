package publisher

import (
	"context"
	"log/slog"
	"time"

	"jpxcli/internal/config"
	apperrors "jpxcli/internal/errors"
	"jpxcli/internal/exporter"
	"jpxcli/internal/infrastructure"
	"jpxcli/pkg/contracts/domain"
)

// Destination is a tabular store addressed by surface name (a sheet tab, a
// worksheet or a table). Rows are 1-based.
type Destination interface {
	Name() string
	Exists(ctx context.Context, surface string) (bool, error)
	Create(ctx context.Context, surface string, rows, cols int) error
	Clear(ctx context.Context, surface string) error
	WriteRows(ctx context.Context, surface string, startRow int, rows [][]string) error
}

// Publish operations, as reported in PublishError.Op.
const (
	OpExists = "exists"
	OpCreate = "create"
	OpClear  = "clear"
	OpHeader = "write header"
	OpRows   = "write rows"
)

var (
	englishHeader  = []string{"Date", "Instrument", "Open", "High", "Low", "Close", "Volume"}
	japaneseHeader = []string{"日付", "銘柄", "始値", "高値", "安値", "終値", "出来高"}
)

// Header returns the column labels for a header style. Unknown styles get
// the English labels.
func Header(style string) []string {
	if style == config.HeaderStyleJapanese {
		return append([]string(nil), japaneseHeader...)
	}
	return append([]string(nil), englishHeader...)
}

// Rows renders bars in header column order.
func Rows(bars []domain.PriceBar) [][]string {
	rows := make([][]string, len(bars))
	for i, b := range bars {
		rows[i] = []string{
			b.Date,
			b.Instrument,
			exporter.FormatFloat(b.Open),
			exporter.FormatFloat(b.High),
			exporter.FormatFloat(b.Low),
			exporter.FormatFloat(b.Close),
			exporter.FormatFloat(b.Volume),
		}
	}
	return rows
}

// Publisher runs the publish sequence against one destination.
type Publisher struct {
	dest    Destination
	cfg     config.PublishConfig
	metrics *infrastructure.IngestMetrics
	logger  *slog.Logger
}

// NewPublisher creates a Publisher for dest laid out by cfg.
func NewPublisher(dest Destination, cfg config.PublishConfig, metrics *infrastructure.IngestMetrics, logger *slog.Logger) *Publisher {
	return &Publisher{
		dest:    dest,
		cfg:     cfg,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "publisher"),
	}
}

// CreateSize returns the grid size used when the surface has to be created:
// max(MinRows, n + RowMargin) rows by Columns columns.
func (p *Publisher) CreateSize(n int) (rows, cols int) {
	rows = n + p.cfg.RowMargin
	if rows < p.cfg.MinRows {
		rows = p.cfg.MinRows
	}
	cols = p.cfg.Columns
	if cols < len(englishHeader) {
		cols = len(englishHeader)
	}
	return rows, cols
}

// Publish replaces the content of the configured surface with bars.
func (p *Publisher) Publish(ctx context.Context, bars []domain.PriceBar) (err error) {
	start := time.Now()
	surface := p.cfg.SurfaceName
	dest := p.dest.Name()
	defer func() {
		p.metrics.RecordPublish(ctx, dest, len(bars), time.Since(start), err)
	}()

	fail := func(op string, cause error) error {
		return &apperrors.PublishError{Destination: dest + ":" + surface, Op: op, Cause: cause}
	}

	exists, err := p.dest.Exists(ctx, surface)
	if err != nil {
		return fail(OpExists, err)
	}
	if !exists {
		rows, cols := p.CreateSize(len(bars))
		if err := p.dest.Create(ctx, surface, rows, cols); err != nil {
			return fail(OpCreate, err)
		}
		p.logger.InfoContext(ctx, "Surface created",
			slog.String("destination", dest),
			slog.String("surface", surface),
			slog.Int("rows", rows),
			slog.Int("cols", cols))
	}

	if err := p.dest.Clear(ctx, surface); err != nil {
		return fail(OpClear, err)
	}
	if err := p.dest.WriteRows(ctx, surface, 1, [][]string{Header(p.cfg.HeaderStyle)}); err != nil {
		return fail(OpHeader, err)
	}
	if len(bars) > 0 {
		if err := p.dest.WriteRows(ctx, surface, 2, Rows(bars)); err != nil {
			return fail(OpRows, err)
		}
	}

	p.logger.InfoContext(ctx, "Published",
		slog.String("destination", dest),
		slog.String("surface", surface),
		slog.Int("rows", len(bars)),
		slog.Duration("duration", time.Since(start)))
	return nil
}
