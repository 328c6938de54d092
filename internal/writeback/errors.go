package writeback

import "errors"

var (
	// ErrMissingInvoiceNumber is returned before any network call when the
	// invoice number to mark is empty.
	ErrMissingInvoiceNumber = errors.New("missing invoice number")

	// ErrEmptyRow is returned by Create when the row has no columns.
	ErrEmptyRow = errors.New("empty row")
)
