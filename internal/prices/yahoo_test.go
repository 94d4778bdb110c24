package prices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "jpxcli/internal/errors"
)

const chartPayload = `{"chart":{"result":[{"meta":{"symbol":"7203.T","exchangeTimezoneName":"Asia/Tokyo"},
"timestamp":[1719878400,1719964800,1720051200],
"indicators":{"quote":[{"open":[2800,2810.5,null],"high":[2850,2830,null],"low":[2790,2800,null],
"close":[2845,2820,null],"volume":[1000000,null,null]}]}}],"error":null}}`

var tokyo = time.FixedZone("JST", 9*60*60)

func TestYahooSource_Daily(t *testing.T) {
	var gotPath, gotUA string
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chartPayload))
	}))
	defer server.Close()

	src := NewYahooSource(server.URL+"/", 5*time.Second, "jpxcli-test")
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, tokyo)
	end := time.Date(2024, 7, 4, 0, 0, 0, 0, tokyo)

	series, err := src.Daily(context.Background(), "7203.T", start, end)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/7203.T", gotPath)
	assert.Equal(t, "jpxcli-test", gotUA)
	assert.Equal(t, "1d", gotQuery["interval"][0])
	assert.Equal(t, "1719759600", gotQuery["period1"][0])
	assert.Equal(t, "1720105200", gotQuery["period2"][0], "period2 is the day after end")

	require.Equal(t, 3, series.Len())
	assert.Equal(t, int64(1719878400), series.Dates[0].Unix())
	require.Contains(t, series.Columns, ColumnVolume)
	assert.Equal(t, 2810.5, *series.Columns[ColumnOpen][1])
	assert.Nil(t, series.Columns[ColumnVolume][1])
	assert.Nil(t, series.Columns[ColumnClose][2])
}

func TestYahooSource_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType apperrors.ErrorType
		empty    bool
	}{
		{"not found symbol", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`, "", true},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`, "", true},
		{"api error", http.StatusBadRequest, `{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid input"}}}`, apperrors.ErrTypeNetwork, false},
		{"server error", http.StatusBadGateway, `<html>bad gateway</html>`, apperrors.ErrTypeNetwork, false},
		{"garbage", http.StatusOK, `{"chart":`, apperrors.ErrTypeParsing, false},
		{"length mismatch", http.StatusOK, `{"chart":{"result":[{"timestamp":[1,2],"indicators":{"quote":[{"open":[1]}]}}]}}`, apperrors.ErrTypeParsing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			series, err := NewYahooSource(server.URL, 5*time.Second, "").
				Daily(context.Background(), "0001.T", time.Now().AddDate(0, 0, -7), time.Now())
			if tt.empty {
				require.NoError(t, err)
				assert.Equal(t, 0, series.Len())
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
		})
	}
}

func TestYahooSource_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewYahooSource(url, time.Second, "").Daily(context.Background(), "7203.T", time.Now(), time.Now())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeNetwork, apperrors.TypeOf(err))
}
