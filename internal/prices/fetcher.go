package prices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"jpxcli/internal/config"
	apperrors "jpxcli/internal/errors"
	"jpxcli/pkg/contracts/domain"
)

// Failure reasons reported in InstrumentFetchError.Reason.
const (
	ReasonTransport     = "transport error"
	ReasonParse         = "parse error"
	ReasonNoData        = "no data"
	ReasonMissingColumn = "missing column"
	ReasonSource        = "source error"
)

// Outcome is the result of one instrument fetch: bars on success, Err
// otherwise.
type Outcome struct {
	Code     string
	Bars     []domain.PriceBar
	Err      *apperrors.InstrumentFetchError
	Duration time.Duration
}

// OK reports whether the fetch produced bars.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Fetcher converts one instrument's Source series into PriceBars.
type Fetcher struct {
	source   Source
	suffix   string
	loc      *time.Location
	validate *validator.Validate
	logger   *slog.Logger
}

// NewFetcher creates a Fetcher using the symbol suffix and timezone of cfg.
func NewFetcher(source Source, cfg config.IngestConfig, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		source:   source,
		suffix:   cfg.SymbolSuffix,
		loc:      cfg.Location(),
		validate: validator.New(),
		logger:   logger.With("component", "prices"),
	}
}

// Symbol returns the upstream symbol of a canonical code, e.g. 7203.T.
func (f *Fetcher) Symbol(code string) string {
	return code + f.suffix
}

// Fetch makes one attempt for code over w.
func (f *Fetcher) Fetch(ctx context.Context, code string, w Window) (out Outcome) {
	start := time.Now()
	out.Code = code
	defer func() {
		if r := recover(); r != nil {
			out.Bars = nil
			out.Err = &apperrors.InstrumentFetchError{Code: code, Reason: ReasonSource, Cause: fmt.Errorf("panic: %v", r)}
		}
		out.Duration = time.Since(start)
	}()

	series, err := f.source.Daily(ctx, f.Symbol(code), w.Start, w.End)
	if err != nil {
		out.Err = &apperrors.InstrumentFetchError{Code: code, Reason: reasonFor(err), Cause: err}
		return out
	}

	bars, ferr := f.convert(code, series)
	if ferr != nil {
		out.Err = ferr
		return out
	}
	out.Bars = bars
	return out
}

func reasonFor(err error) string {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrTypeNetwork:
		return ReasonTransport
	case apperrors.ErrTypeParsing:
		return ReasonParse
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ReasonTransport
	}
	return ReasonSource
}

// convert turns a series into bars. Rows lacking any price are skipped, a
// missing volume counts as 0 and a repeated date keeps its first row.
func (f *Fetcher) convert(code string, s *Series) ([]domain.PriceBar, *apperrors.InstrumentFetchError) {
	fail := func(reason string, cause error) *apperrors.InstrumentFetchError {
		return &apperrors.InstrumentFetchError{Code: code, Reason: reason, Cause: cause}
	}

	if s.Len() == 0 {
		return nil, fail(ReasonNoData, nil)
	}
	for _, col := range RequiredColumns {
		values, ok := s.Columns[col]
		if !ok {
			return nil, fail(ReasonMissingColumn, fmt.Errorf("%s not in series", col))
		}
		if len(values) != len(s.Dates) {
			return nil, fail(ReasonParse,
				fmt.Errorf("%s has %d values for %d dates", col, len(values), len(s.Dates)))
		}
	}

	open, high, low, closes, volume := s.Columns[ColumnOpen], s.Columns[ColumnHigh],
		s.Columns[ColumnLow], s.Columns[ColumnClose], s.Columns[ColumnVolume]

	seen := make(map[string]bool, len(s.Dates))
	bars := make([]domain.PriceBar, 0, len(s.Dates))
	for i, ts := range s.Dates {
		if open[i] == nil || high[i] == nil || low[i] == nil || closes[i] == nil {
			continue
		}
		date := ts.In(f.loc).Format(domain.DateLayout)
		if seen[date] {
			continue
		}

		bar := domain.PriceBar{
			Date:       date,
			Instrument: code,
			Open:       *open[i],
			High:       *high[i],
			Low:        *low[i],
			Close:      *closes[i],
		}
		if volume[i] != nil {
			bar.Volume = *volume[i]
		}
		if err := f.validate.Struct(bar); err != nil {
			f.logger.Debug("Skipping invalid bar",
				slog.String("code", code),
				slog.String("date", date),
				slog.String("error", err.Error()))
			continue
		}

		seen[date] = true
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, fail(ReasonNoData, fmt.Errorf("%d rows without complete prices", len(s.Dates)))
	}
	return bars, nil
}
