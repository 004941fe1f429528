// Google Sheets row source
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/taskdoc/internal/models"
	"github.com/desertthunder/taskdoc/internal/shared"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsService reads worksheet tabs as ordered records.
type SheetsService struct {
	opts []option.ClientOption
}

// NewSheetsService creates a row source. Extra options are applied after the credential client (e.g. [option.WithEndpoint]).
func NewSheetsService(opts ...option.ClientOption) *SheetsService {
	return &SheetsService{opts: opts}
}

// Rows returns one record per data row of tab, keyed by the header row and in sheet order.
//
// Failures wrap [shared.ErrSourceUnavailable] and are not retried.
func (s *SheetsService) Rows(ctx context.Context, creds *Credentials, spreadsheetID, tab string) ([]models.Record, error) {
	opts := append([]option.ClientOption{option.WithHTTPClient(creds.HTTPClient())}, s.opts...)
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create sheets client: %v", shared.ErrSourceUnavailable, err)
	}

	resp, err := srv.Spreadsheets.Values.Get(spreadsheetID, quoteSheetName(tab)).
		MajorDimension("ROWS").
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: tab %q of spreadsheet %s: %s", shared.ErrSourceUnavailable, tab, spreadsheetID, describe(err))
	}

	return RecordsFromValues(resp.Values)
}

// RecordsFromValues converts a values grid into records using the first row as the header.
//
// Columns with a blank header are dropped, short rows are padded with empty values
// and fully blank rows are skipped.
func RecordsFromValues(values [][]any) ([]models.Record, error) {
	if len(values) == 0 {
		return []models.Record{}, nil
	}

	header := make([]string, len(values[0]))
	seen := make(map[string]bool, len(values[0]))
	for i, cell := range values[0] {
		name := models.ParseValue(cell).String()
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate header %q", shared.ErrSourceUnavailable, name)
		}
		seen[name] = true
		header[i] = name
	}

	records := make([]models.Record, 0, len(values)-1)
	for _, row := range values[1:] {
		if blank(row) {
			continue
		}
		rec := models.NewRecord()
		for i, name := range header {
			if name == "" {
				continue
			}
			v := models.EmptyValue()
			if i < len(row) {
				v = models.ParseValue(row[i])
			}
			rec.Set(name, v)
		}
		records = append(records, rec)
	}
	return records, nil
}

func blank(row []any) bool {
	for _, cell := range row {
		if !models.ParseValue(cell).IsEmpty() {
			return false
		}
	}
	return true
}

// quoteSheetName turns a tab name into an A1 range covering the whole tab.
func quoteSheetName(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}
