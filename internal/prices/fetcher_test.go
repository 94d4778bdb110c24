package prices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jpxcli/internal/config"
	apperrors "jpxcli/internal/errors"
	"jpxcli/pkg/contracts/domain"
)

type stubSource struct {
	series  *Series
	err     error
	panics  bool
	symbols []string
}

func (s *stubSource) Daily(_ context.Context, symbol string, _, _ time.Time) (*Series, error) {
	s.symbols = append(s.symbols, symbol)
	if s.panics {
		panic("decoder blew up")
	}
	return s.series, s.err
}

func f64(v float64) *float64 { return &v }

func ingestConfig() config.IngestConfig {
	return config.IngestConfig{SymbolSuffix: ".T", Timezone: "Asia/Tokyo"}
}

func day(d int) time.Time {
	return time.Date(2024, 7, d, 9, 0, 0, 0, tokyo)
}

func fullSeries() *Series {
	return &Series{
		Dates: []time.Time{day(1), day(2), day(3)},
		Columns: map[string][]*float64{
			ColumnOpen:   {f64(100), f64(101), nil},
			ColumnHigh:   {f64(110), f64(111), f64(112)},
			ColumnLow:    {f64(90), f64(91), f64(92)},
			ColumnClose:  {f64(105), f64(106), f64(107)},
			ColumnVolume: {f64(5000), nil, f64(7000)},
		},
	}
}

func TestFetcher_Success(t *testing.T) {
	src := &stubSource{series: fullSeries()}
	f := NewFetcher(src, ingestConfig(), nil)

	out := f.Fetch(context.Background(), "7203", Window{Start: day(1), End: day(3)})
	require.True(t, out.OK(), "unexpected failure: %v", out.Err)

	assert.Equal(t, []string{"7203.T"}, src.symbols)
	assert.Equal(t, "7203", out.Code)
	assert.Equal(t, []domain.PriceBar{
		{Date: "2024-07-01", Instrument: "7203", Open: 100, High: 110, Low: 90, Close: 105, Volume: 5000},
		{Date: "2024-07-02", Instrument: "7203", Open: 101, High: 111, Low: 91, Close: 106, Volume: 0},
	}, out.Bars)
}

func TestFetcher_DateInConfiguredTimezone(t *testing.T) {
	// 2024-07-01 00:30 JST is still June 30 in UTC
	ts := time.Date(2024, 6, 30, 15, 30, 0, 0, time.UTC)
	src := &stubSource{series: &Series{
		Dates: []time.Time{ts, ts},
		Columns: map[string][]*float64{
			ColumnOpen: {f64(1), f64(2)}, ColumnHigh: {f64(1), f64(2)}, ColumnLow: {f64(1), f64(2)},
			ColumnClose: {f64(1), f64(2)}, ColumnVolume: {f64(1), f64(2)},
		},
	}}

	out := NewFetcher(src, ingestConfig(), nil).Fetch(context.Background(), "0001", Window{})
	require.True(t, out.OK())
	require.Len(t, out.Bars, 1, "one bar per date")
	assert.Equal(t, "2024-07-01", out.Bars[0].Date)
	assert.Equal(t, float64(1), out.Bars[0].Open)
}

func TestFetcher_Failures(t *testing.T) {
	missingVolume := fullSeries()
	delete(missingVolume.Columns, ColumnVolume)

	short := fullSeries()
	short.Columns[ColumnLow] = short.Columns[ColumnLow][:1]

	noPrices := &Series{
		Dates: []time.Time{day(1)},
		Columns: map[string][]*float64{
			ColumnOpen: {nil}, ColumnHigh: {nil}, ColumnLow: {nil}, ColumnClose: {nil}, ColumnVolume: {nil},
		},
	}

	negativeVolume := fullSeries()
	for i := range negativeVolume.Columns[ColumnVolume] {
		negativeVolume.Columns[ColumnVolume][i] = f64(-1)
	}

	tests := []struct {
		name   string
		src    *stubSource
		reason string
		detail string
	}{
		{"transport", &stubSource{err: apperrors.NewNetworkError("chart request failed", errors.New("dial tcp: timeout"))}, ReasonTransport, "dial tcp"},
		{"parse", &stubSource{err: apperrors.NewParsingError("invalid chart payload", nil)}, ReasonParse, "invalid chart payload"},
		{"deadline", &stubSource{err: context.DeadlineExceeded}, ReasonTransport, "deadline"},
		{"untyped", &stubSource{err: errors.New("weird")}, ReasonSource, "weird"},
		{"empty series", &stubSource{series: &Series{}}, ReasonNoData, ""},
		{"nil series", &stubSource{}, ReasonNoData, ""},
		{"missing volume", &stubSource{series: missingVolume}, ReasonMissingColumn, "Volume"},
		{"length mismatch", &stubSource{series: short}, ReasonParse, "Low has 1 values"},
		{"no complete rows", &stubSource{series: noPrices}, ReasonNoData, "without complete prices"},
		{"invalid bars", &stubSource{series: negativeVolume}, ReasonNoData, ""},
		{"panic", &stubSource{panics: true}, ReasonSource, "decoder blew up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out Outcome
			require.NotPanics(t, func() {
				out = NewFetcher(tt.src, ingestConfig(), nil).Fetch(context.Background(), "9999", Window{})
			})

			require.False(t, out.OK())
			assert.Nil(t, out.Bars)
			assert.Equal(t, "9999", out.Err.Code)
			assert.Equal(t, tt.reason, out.Err.Reason)
			assert.Contains(t, out.Err.Detail(), tt.detail)
			assert.False(t, apperrors.IsFatal(out.Err))
		})
	}
}

func TestFetcher_Symbol(t *testing.T) {
	f := NewFetcher(&stubSource{}, config.IngestConfig{SymbolSuffix: ".T", Timezone: "UTC"}, nil)
	assert.Equal(t, "0007.T", f.Symbol("0007"))
}

func TestWindowEndingAt(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2024-07-01 20:00 UTC is already July 2 in Tokyo
	now := time.Date(2024, 7, 1, 20, 0, 0, 0, time.UTC)
	w := WindowEndingAt(now, loc, 365)

	assert.Equal(t, "2024-07-02", w.End.Format(domain.DateLayout))
	assert.Equal(t, "2023-07-03", w.Start.Format(domain.DateLayout))
	assert.Equal(t, loc, w.End.Location())
}
