package ingest

import (
	"sort"

	apperrors "jpxcli/internal/errors"
	"jpxcli/internal/prices"
	"jpxcli/pkg/contracts/domain"
)

// Aggregator accumulates fetch outcomes for one run. It is not safe for
// concurrent use.
type Aggregator struct {
	bars     []domain.PriceBar
	failures []domain.FetchFailure
	ok       int
}

// NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add records one outcome.
func (a *Aggregator) Add(o prices.Outcome) {
	if !o.OK() {
		a.failures = append(a.failures, domain.FetchFailure{Code: o.Code, Reason: o.Err.Detail()})
		return
	}
	a.ok++
	a.bars = append(a.bars, o.Bars...)
}

// Attempted returns the number of outcomes added so far.
func (a *Aggregator) Attempted() int {
	return a.ok + len(a.failures)
}

// Result returns the merged run summary with bars sorted by instrument then
// date. When no instrument succeeded the summary is still returned, together
// with an EmptyUniverseError.
func (a *Aggregator) Result() (*domain.IngestResult, error) {
	bars := make([]domain.PriceBar, len(a.bars))
	copy(bars, a.bars)
	sort.SliceStable(bars, func(i, j int) bool {
		if bars[i].Instrument != bars[j].Instrument {
			return bars[i].Instrument < bars[j].Instrument
		}
		return bars[i].Date < bars[j].Date
	})

	res := &domain.IngestResult{
		Bars:      bars,
		Succeeded: a.ok,
		Failed:    len(a.failures),
		Failures:  append([]domain.FetchFailure(nil), a.failures...),
	}
	if a.ok == 0 {
		return res, &apperrors.EmptyUniverseError{Attempted: a.Attempted()}
	}
	return res, nil
}

// Aggregate merges a complete list of outcomes.
func Aggregate(outcomes []prices.Outcome) (*domain.IngestResult, error) {
	a := NewAggregator()
	for _, o := range outcomes {
		a.Add(o)
	}
	return a.Result()
}
