package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    NewAppError(ErrTypeConfig, "invalid lookback", nil),
			wantMessage: "[CONFIG] invalid lookback",
		},
		{
			name:        "error with cause",
			appError:    NewNetworkError("listing download failed", errors.New("connection reset")),
			wantMessage: "[NETWORK] listing download failed: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_UnwrapAndContext(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("write ticker list", cause).WithContext("path", "data/ticker_list.csv")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "data/ticker_list.csv", err.Context["path"])
	assert.Equal(t, ErrTypeStorage, TypeOf(err))
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{name: "nil", err: nil, fatal: false},
		{name: "plain error", err: errors.New("boom"), fatal: true},
		{name: "header not found", err: &HeaderNotFoundError{}, fatal: true},
		{name: "missing columns", err: &MissingColumnsError{Missing: []string{"Code"}}, fatal: true},
		{name: "ambiguous column", err: &AmbiguousColumnError{Keys: []string{"Sector33"}}, fatal: true},
		{name: "empty universe", err: &EmptyUniverseError{Attempted: 3}, fatal: true},
		{name: "publish", err: &PublishError{Destination: "sheets", Op: "clear", Cause: errors.New("503")}, fatal: true},
		{name: "instrument fetch", err: &InstrumentFetchError{Code: "7203", Reason: "no data"}, fatal: false},
		{name: "wrapped instrument fetch", err: fmt.Errorf("run: %w", &InstrumentFetchError{Code: "7203"}), fatal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
		})
	}
}

func TestPipelineErrorMessages(t *testing.T) {
	t.Run("header not found lists aliases", func(t *testing.T) {
		err := &HeaderNotFoundError{
			Searched:    map[string][]string{"Code": {"コード", "Code"}},
			RowsScanned: 5,
		}
		msg := err.Error()
		assert.Contains(t, msg, "5 scanned rows")
		assert.Contains(t, msg, "コード")
		assert.Equal(t, ErrTypeSchema, TypeOf(err))
		assert.NotContains(t, msg, "first rows")

		err.Found = [][]string{{"東証上場銘柄一覧"}, {"Code", "Name"}}
		assert.Contains(t, err.Error(), "first rows [東証上場銘柄一覧] [Code, Name]")
	})

	t.Run("missing columns lists present labels", func(t *testing.T) {
		err := &MissingColumnsError{Missing: []string{"Scale"}, Present: []string{"コード", "銘柄名"}}
		assert.Contains(t, err.Error(), "Scale")
		assert.Contains(t, err.Error(), "銘柄名")
	})

	t.Run("ambiguous column names columns", func(t *testing.T) {
		err := &AmbiguousColumnError{Keys: []string{"Sector33"}, Columns: []int{4, 5}, Labels: []string{"33業種コード", "33業種区分"}}
		assert.Contains(t, err.Error(), `4:"33業種コード"`)
	})

	t.Run("instrument fetch detail", func(t *testing.T) {
		cause := errors.New("status 404")
		err := &InstrumentFetchError{Code: "1301", Reason: "request failed", Cause: cause}
		require.ErrorIs(t, err, cause)
		assert.Equal(t, "request failed: status 404", err.Detail())
		assert.Equal(t, ErrTypeFetch, TypeOf(err))
	})
}
