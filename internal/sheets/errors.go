package sheets

import "errors"

var (
	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS is set.
	ErrMissingCredentials = errors.New("neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set")

	// ErrInvalidSheetURL is returned when no spreadsheet ID can be found in the URL.
	ErrInvalidSheetURL = errors.New("invalid Google Sheets URL format")

	// ErrColumnNotFound is returned when a required column is missing from the header row.
	ErrColumnNotFound = errors.New("column not found in header row")

	// ErrInvoiceNotFound is returned when no row carries the invoice number.
	ErrInvoiceNotFound = errors.New("invoice not found in sheet")
)
