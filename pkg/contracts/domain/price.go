package domain

// DateLayout is the ISO calendar date layout used for PriceBar.Date.
const DateLayout = "2006-01-02"

// PriceBar is one daily OHLCV observation for an instrument.
type PriceBar struct {
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
	Instrument string  `json:"instrument" validate:"required"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	Volume     float64 `json:"volume" validate:"min=0"`
}

// FetchFailure records why one instrument produced no bars.
type FetchFailure struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// IngestResult summarizes a single ingestion run.
type IngestResult struct {
	Bars      []PriceBar     `json:"bars"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Failures  []FetchFailure `json:"failures,omitempty"`
}

// FailedCodes returns the codes of failed instruments in run order.
func (r *IngestResult) FailedCodes() []string {
	codes := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		codes = append(codes, f.Code)
	}
	return codes
}
