// Package writeback sends "mark as paid" and "create" requests to the
// spreadsheet write endpoint.
//
// The endpoint is a Google Apps Script deployment that accepts a JSON body
// and answers with free text. Any response that arrives counts as success,
// whatever its status or content; only transport failures are errors. A
// non-2xx status is logged. Local state is never touched here; callers
// reconcile it after a successful call.
package writeback

import (
	"context"

	"estadocuenta/internal/factura"
)

// Writer defines the write operations available on the facturas sheet.
type Writer interface {
	// MarkPaid asks the remote sheet to flag every row with the given
	// invoice number as paid. Returns the endpoint's response text.
	MarkPaid(ctx context.Context, invoiceNumber string) (string, error)

	// Create appends a new row to the remote sheet.
	Create(ctx context.Context, row factura.RawRow) (string, error)
}
