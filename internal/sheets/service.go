package sheets

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"estadocuenta/internal/factura"
	"estadocuenta/internal/logger"
)

// Service handles Google Sheets operations
type Service struct {
	sheetsService *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// NewSheetsService creates a new Google Sheets service
func NewSheetsService(ctx context.Context, sheetURL string) (*Service, error) {
	const op = "NewSheetsService"

	log := logger.WithComponent("sheets")

	// Extract spreadsheet ID from URL
	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to extract spreadsheet ID: %w", op, err)
	}

	log.Debug().Str("spreadsheet_id", spreadsheetID).Msg("Extracted spreadsheet ID")

	// Get Google credentials
	var creds []byte
	if credsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credsFile != "" {
		creds, err = os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read credentials file: %w", op, err)
		}
	} else if credsJSON := os.Getenv("GOOGLE_CREDENTIALS"); credsJSON != "" {
		creds = []byte(credsJSON)
	} else {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingCredentials)
	}

	config, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}

	client := config.Client(ctx)
	sheetsService, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create sheets service: %w", op, err)
	}

	return &Service{
		sheetsService: sheetsService,
		spreadsheetID: spreadsheetID,
		log:           log,
	}, nil
}

// extractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL.
// A bare ID is accepted as is.
func extractSpreadsheetID(url string) (string, error) {
	matches := spreadsheetIDPattern.FindStringSubmatch(url)
	if len(matches) >= 2 {
		return matches[1], nil
	}

	id := strings.TrimSpace(url)
	if id != "" && !strings.ContainsAny(id, "/:?#") {
		return id, nil
	}

	return "", ErrInvalidSheetURL
}

// ReadRange reads values from a specified range in the spreadsheet
func (s *Service) ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error) {
	const op = "ReadRange"

	s.log.Debug().
		Str("range", rangeSpec).
		Msg("Reading range from spreadsheet")

	resp, err := s.sheetsService.Spreadsheets.Values.Get(s.spreadsheetID, rangeSpec).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read range %s: %w", op, rangeSpec, err)
	}

	s.log.Debug().
		Int("rows", len(resp.Values)).
		Str("range", rangeSpec).
		Msg("Successfully read range from spreadsheet")

	return resp.Values, nil
}

// ReadRows reads a whole worksheet and maps the header row onto every data
// row. Dates come back as serial numbers and amounts as numbers.
func (s *Service) ReadRows(ctx context.Context, sheetName string) ([]factura.RawRow, error) {
	const op = "ReadRows"

	values, err := s.ReadRange(ctx, quoteSheet(sheetName))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows := rowsFromValues(values)

	s.log.Info().
		Str("sheet", sheetName).
		Int("rows", len(rows)).
		Msg("Read facturas from Google Sheet")

	return rows, nil
}

// MarkPaid clears DEBE in every row whose FACTURA equals invoiceNumber.
// Returns the number of rows updated.
func (s *Service) MarkPaid(ctx context.Context, sheetName, invoiceNumber string) (int, error) {
	const op = "MarkPaid"

	values, err := s.ReadRange(ctx, quoteSheet(sheetName))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	updates, err := paidUpdates(values, sheetName, invoiceNumber)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             updates,
	}
	_, err = s.sheetsService.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to update rows: %w", op, err)
	}

	s.log.Info().
		Str("sheet", sheetName).
		Str("invoice_number", invoiceNumber).
		Int("rows_updated", len(updates)).
		Msg("Marked factura as paid in Google Sheet")

	return len(updates), nil
}

// AppendRow writes one row at the end of the sheet, in the sheet's header
// order. An empty sheet gets the standard header row first.
func (s *Service) AppendRow(ctx context.Context, sheetName string, row factura.RawRow) error {
	const op = "AppendRow"

	if err := s.ensureSheetWithHeaders(ctx, sheetName); err != nil {
		return fmt.Errorf("%s: failed to ensure sheet exists: %w", op, err)
	}

	headerValues, err := s.ReadRange(ctx, quoteSheet(sheetName)+"!1:1")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	var header []interface{}
	if len(headerValues) > 0 {
		header = headerValues[0]
	}

	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{orderRow(header, row)},
	}

	_, err = s.sheetsService.Spreadsheets.Values.Append(
		s.spreadsheetID,
		quoteSheet(sheetName)+"!A:A",
		valueRange,
	).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to append values to sheet: %w", op, err)
	}

	s.log.Info().
		Str("sheet", sheetName).
		Interface("factura", row[factura.ColFactura]).
		Msg("Appended factura to Google Sheet")

	return nil
}

// ensureSheetWithHeaders ensures the sheet exists and has proper headers
func (s *Service) ensureSheetWithHeaders(ctx context.Context, sheetName string) error {
	const op = "ensureSheetWithHeaders"

	spreadsheet, err := s.sheetsService.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get spreadsheet: %w", op, err)
	}

	var sheetExists bool
	var sheetID int64
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == sheetName {
			sheetExists = true
			sheetID = sheet.Properties.SheetId
			break
		}
	}

	if !sheetExists {
		s.log.Info().Str("sheet", sheetName).Msg("Creating new sheet")

		batchUpdateReq := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{
				{AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: sheetName},
				}},
			},
		}

		resp, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, batchUpdateReq).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("%s: failed to create sheet: %w", op, err)
		}

		sheetID = resp.Replies[0].AddSheet.Properties.SheetId
	}

	rng := quoteSheet(sheetName) + "!" + headerRange()
	resp, err := s.sheetsService.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get headers: %w", op, err)
	}

	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	s.log.Info().Str("sheet", sheetName).Msg("Adding headers to sheet")

	headers := make([]interface{}, len(factura.Columns))
	for i, col := range factura.Columns {
		headers[i] = col
	}

	_, err = s.sheetsService.Spreadsheets.Values.Update(
		s.spreadsheetID,
		rng,
		&sheets.ValueRange{Values: [][]interface{}{headers}},
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to add headers: %w", op, err)
	}

	if err := s.formatHeaders(ctx, sheetID); err != nil {
		s.log.Warn().Err(err).Msg("Failed to format headers, continuing anyway")
	}

	return nil
}

// formatHeaders makes the header row bold and resizes the columns
func (s *Service) formatHeaders(ctx context.Context, sheetID int64) error {
	const op = "formatHeaders"

	columns := int64(len(factura.Columns))
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   columns,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat:      &sheets.TextFormat{Bold: true},
						BackgroundColor: &sheets.Color{Red: 0.9, Green: 0.9, Blue: 0.9},
					},
				},
				Fields: "userEnteredFormat(textFormat,backgroundColor)",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   columns,
				},
			},
		},
	}

	batchUpdateReq := &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}
	_, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, batchUpdateReq).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to format headers: %w", op, err)
	}

	return nil
}

// quoteSheet quotes a sheet name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// headerRange covers the standard header row, e.g. "A1:J1".
func headerRange() string {
	last, _ := excelize.ColumnNumberToName(len(factura.Columns))
	return "A1:" + last + "1"
}

// rowsFromValues maps the first row (upper-cased, trimmed) onto every other
// row. Columns with an empty header and cells past the header are ignored.
func rowsFromValues(values [][]interface{}) []factura.RawRow {
	if len(values) == 0 {
		return []factura.RawRow{}
	}

	header := headerKeys(values[0])
	rows := make([]factura.RawRow, 0, len(values)-1)
	for _, cells := range values[1:] {
		row := make(factura.RawRow, len(header))
		for i, cell := range cells {
			if i >= len(header) || header[i] == "" {
				continue
			}
			row[header[i]] = cell
		}
		rows = append(rows, row)
	}
	return rows
}

func headerKeys(cells []interface{}) []string {
	keys := make([]string, len(cells))
	for i, cell := range cells {
		keys[i] = strings.ToUpper(strings.TrimSpace(fmt.Sprint(cell)))
	}
	return keys
}

// paidUpdates builds one update per row whose FACTURA cell equals
// invoiceNumber, clearing that row's DEBE cell.
func paidUpdates(values [][]interface{}, sheetName, invoiceNumber string) ([]*sheets.ValueRange, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, factura.ColFactura)
	}

	header := headerKeys(values[0])
	facturaCol := indexOf(header, factura.ColFactura)
	if facturaCol < 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, factura.ColFactura)
	}
	debeCol := indexOf(header, factura.ColDebe)
	if debeCol < 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, factura.ColDebe)
	}

	target := strings.TrimSpace(invoiceNumber)
	var updates []*sheets.ValueRange
	for i, cells := range values[1:] {
		if facturaCol >= len(cells) {
			continue
		}
		if cellText(cells[facturaCol]) != target {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(debeCol+1, i+2)
		if err != nil {
			return nil, err
		}
		updates = append(updates, &sheets.ValueRange{
			Range:  quoteSheet(sheetName) + "!" + cell,
			Values: [][]interface{}{{""}},
		})
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvoiceNotFound, target)
	}
	return updates, nil
}

// orderRow lays out a row following the sheet header. Keys not present in
// the header are dropped.
func orderRow(header []interface{}, row factura.RawRow) []interface{} {
	keys := headerKeys(header)
	if len(keys) == 0 {
		keys = factura.Columns
	}

	out := make([]interface{}, len(keys))
	for i, key := range keys {
		if v, ok := row[key]; ok && v != nil {
			out[i] = v
		} else {
			out[i] = ""
		}
	}
	return out
}

func indexOf(keys []string, key string) int {
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	return -1
}

// cellText renders an unformatted cell value the way the invoice number is
// written in the sheet. Whole numbers lose their ".0".
func cellText(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case float64:
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}
		return fmt.Sprint(value)
	default:
		return strings.TrimSpace(fmt.Sprint(value))
	}
}
