package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "jpxcli/internal/errors"
)

// yahooChartResponse is the v8 chart payload.
type yahooChartResponse struct {
	Chart struct {
		Result []yahooResult `json:"result"`
		Error  *yahooError   `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooResult struct {
	Meta struct {
		Symbol           string `json:"symbol"`
		ExchangeTimezone string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []map[string][]*float64 `json:"quote"`
	} `json:"indicators"`
}

// quote keys as sent by the chart API
var yahooColumns = map[string]string{
	"open":   ColumnOpen,
	"high":   ColumnHigh,
	"low":    ColumnLow,
	"close":  ColumnClose,
	"volume": ColumnVolume,
}

// YahooSource reads daily bars from the Yahoo Finance chart API.
type YahooSource struct {
	baseURL   string
	client    *http.Client
	userAgent string
}

// NewYahooSource creates a chart API client rooted at baseURL.
func NewYahooSource(baseURL string, timeout time.Duration, userAgent string) *YahooSource {
	return &YahooSource{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Daily implements Source. period2 is exclusive upstream, so the request
// ends one day after end.
func (y *YahooSource) Daily(ctx context.Context, symbol string, start, end time.Time) (*Series, error) {
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "history")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.baseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to build chart request", err)
	}
	if y.userAgent != "" {
		req.Header.Set("User-Agent", y.userAgent)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("chart request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to read chart response", err)
	}

	var payload yahooChartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, apperrors.NewNetworkError(fmt.Sprintf("chart API returned status: %d", resp.StatusCode), nil)
		}
		return nil, apperrors.NewParsingError("invalid chart payload", err)
	}
	if e := payload.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return &Series{}, nil
		}
		return nil, apperrors.NewNetworkError(fmt.Sprintf("chart API error %s: %s", e.Code, e.Description), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewNetworkError(fmt.Sprintf("chart API returned status: %d", resp.StatusCode), nil)
	}
	if len(payload.Chart.Result) == 0 {
		return &Series{}, nil
	}

	return toSeries(payload.Chart.Result[0])
}

func toSeries(r yahooResult) (*Series, error) {
	s := &Series{
		Dates:   make([]time.Time, len(r.Timestamp)),
		Columns: make(map[string][]*float64),
	}
	for i, ts := range r.Timestamp {
		s.Dates[i] = time.Unix(ts, 0)
	}
	if len(r.Indicators.Quote) == 0 {
		return s, nil
	}
	for key, values := range r.Indicators.Quote[0] {
		col, ok := yahooColumns[key]
		if !ok {
			continue
		}
		if len(values) != len(r.Timestamp) {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("%s has %d values for %d timestamps", key, len(values), len(r.Timestamp)), nil)
		}
		s.Columns[col] = values
	}
	return s, nil
}
