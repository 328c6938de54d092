package sheets

import (
	"context"
	"fmt"
	"strings"

	"estadocuenta/internal/factura"
	"estadocuenta/internal/writeback"
)

var _ writeback.Writer = (*Worksheet)(nil)

// Worksheet binds the service to one tab of the spreadsheet so it can serve
// as both the read source and the write-back target.
type Worksheet struct {
	svc  *Service
	name string
}

// Worksheet returns the named tab.
func (s *Service) Worksheet(name string) *Worksheet {
	return &Worksheet{svc: s, name: name}
}

// Name returns the tab name.
func (w *Worksheet) Name() string {
	return w.name
}

// FetchRows reads every data row of the tab.
func (w *Worksheet) FetchRows(ctx context.Context) ([]factura.RawRow, error) {
	return w.svc.ReadRows(ctx, w.name)
}

// MarkPaid clears DEBE for the invoice and reports how many rows changed.
func (w *Worksheet) MarkPaid(ctx context.Context, invoiceNumber string) (string, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return "", writeback.ErrMissingInvoiceNumber
	}
	n, err := w.svc.MarkPaid(ctx, w.name, invoiceNumber)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Factura %s marcada como pagada (%d filas)", invoiceNumber, n), nil
}

// Create appends the row to the tab.
func (w *Worksheet) Create(ctx context.Context, row factura.RawRow) (string, error) {
	if len(row) == 0 {
		return "", writeback.ErrEmptyRow
	}
	if err := w.svc.AppendRow(ctx, w.name, row); err != nil {
		return "", err
	}
	return fmt.Sprintf("Factura %v agregada", row[factura.ColFactura]), nil
}
