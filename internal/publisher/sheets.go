package publisher

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"jpxcli/internal/config"
)

// SheetsDestination publishes to a tab of a Google spreadsheet.
type SheetsDestination struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheetsDestination builds the Sheets client from the configured
// service-account credentials. Extra options are appended last.
func NewSheetsDestination(ctx context.Context, cfg config.SheetsConfig, opts ...option.ClientOption) (*SheetsDestination, error) {
	var clientOpts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	clientOpts = append(clientOpts, option.WithScopes(sheets.SpreadsheetsScope))
	clientOpts = append(clientOpts, opts...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsDestination{svc: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

// Name implements Destination.
func (s *SheetsDestination) Name() string { return "sheets" }

// Exists implements Destination.
func (s *SheetsDestination) Exists(ctx context.Context, surface string) (bool, error) {
	props, err := s.lookup(ctx, surface)
	if err != nil {
		return false, err
	}
	return props != nil, nil
}

// Create implements Destination by adding a tab of rows x cols.
func (s *SheetsDestination) Create(ctx context.Context, surface string, rows, cols int) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: surface,
					GridProperties: &sheets.GridProperties{
						RowCount:    int64(rows),
						ColumnCount: int64(cols),
					},
				},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to add sheet %q: %w", surface, err)
	}
	return nil
}

// Clear implements Destination.
func (s *SheetsDestination) Clear(ctx context.Context, surface string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, quoteSheet(surface), &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear sheet %q: %w", surface, err)
	}
	return nil
}

// WriteRows implements Destination. The tab is grown first when the rows
// would exceed its grid; values are sent RAW.
func (s *SheetsDestination) WriteRows(ctx context.Context, surface string, startRow int, rows [][]string) error {
	if err := s.ensureRows(ctx, surface, startRow-1+len(rows)); err != nil {
		return err
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		values[i] = cells
	}

	writeRange := fmt.Sprintf("%s!A%d", quoteSheet(surface), startRow)
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, writeRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write %d rows at %s: %w", len(rows), writeRange, err)
	}
	return nil
}

func (s *SheetsDestination) ensureRows(ctx context.Context, surface string, need int) error {
	props, err := s.lookup(ctx, surface)
	if err != nil {
		return err
	}
	if props == nil {
		return fmt.Errorf("sheet %q not found", surface)
	}
	have := int64(0)
	if props.GridProperties != nil {
		have = props.GridProperties.RowCount
	}
	if int64(need) <= have {
		return nil
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AppendDimension: &sheets.AppendDimensionRequest{
				SheetId:   props.SheetId,
				Dimension: "ROWS",
				Length:    int64(need) - have,
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to grow sheet %q to %d rows: %w", surface, need, err)
	}
	return nil
}

// lookup returns the properties of the tab titled surface, or nil.
func (s *SheetsDestination) lookup(ctx context.Context, surface string) (*sheets.SheetProperties, error) {
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet %s: %w", s.spreadsheetID, err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == surface {
			return sh.Properties, nil
		}
	}
	return nil, nil
}

// quoteSheet renders a tab name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
