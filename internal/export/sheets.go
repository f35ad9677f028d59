// Package export pushes monthly summaries to a reporting spreadsheet.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"boxoffice/internal/core"
)

// SheetsExporter appends one row per (month, movie) to a Google Sheet so the
// rollup is browsable without touching the store.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsFromEnv creates an exporter from environment variables.
// Required: REPORT_SPREADSHEET_ID. Optional: REPORT_SHEET_NAME (default
// "Monthly"). Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func NewSheetsFromEnv(ctx context.Context) (*SheetsExporter, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("REPORT_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing REPORT_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(os.Getenv("REPORT_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Monthly"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExportMonth writes the month's movie summaries below the sheet's existing
// rows. Columns: month, title, language, shows, sold, total seats, gross,
// occupancy.
func (e *SheetsExporter) ExportMonth(ctx context.Context, doc *core.MonthDoc) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rows := monthRows(doc)
	if len(rows) == 0 {
		return nil
	}

	// Find the next empty row from the sheet's current height
	rng := fmt.Sprintf("%s!A:A", e.sheetName)
	resp, err := e.svc.Spreadsheets.Values.Get(e.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get sheet dimensions for %s: %w", e.sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:H%d", e.sheetName, nextRow, nextRow+len(rows)-1)
	vr := &gsheet.ValueRange{Values: rows}
	_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update rows in sheet %s: %w", e.sheetName, err)
	}

	slog.InfoContext(ctx, "Exported month to spreadsheet",
		"month", doc.Month,
		"rows", len(rows),
		"range", dataRange)
	return nil
}

// monthRows flattens a month document into report rows, sorted by movie key
// for stable output across exports.
func monthRows(doc *core.MonthDoc) [][]any {
	names := make([]string, 0, len(doc.Movies))
	for name := range doc.Movies {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]any, 0, len(names))
	for _, name := range names {
		m := doc.Movies[name]
		key := core.ParseMovieKey(name)
		rows = append(rows, []any{
			doc.Month,
			key.Title,
			key.Language,
			m.Summary.Shows,
			m.Summary.Sold,
			m.Summary.TotalSeats,
			m.Summary.Gross,
			m.Summary.Occupancy,
		})
	}
	return rows
}
