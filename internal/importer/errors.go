package importer

import "errors"

var (
	// ErrUnsupportedFormat is returned for file extensions other than
	// .xlsx, .xlsm, .xls and .csv.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoSheets is returned when a workbook has no worksheet.
	ErrNoSheets = errors.New("workbook has no sheets")

	// ErrNoHeader is returned when the file has no non-blank row.
	ErrNoHeader = errors.New("file has no header row")

	// ErrMissingInvoiceNumber is reported for rows without FACTURA; such rows
	// are never sent.
	ErrMissingInvoiceNumber = errors.New("row has no FACTURA")
)
