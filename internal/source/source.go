// Package source fetches raw factura rows from the spreadsheet backends.
package source

import (
	"context"
	"fmt"
	"time"

	"estadocuenta/internal/factura"
)

// RowSource returns every row currently in the facturas sheet.
type RowSource interface {
	FetchRows(ctx context.Context) ([]factura.RawRow, error)
}

// Load fetches the rows and turns them into classified records for today.
func Load(ctx context.Context, src RowSource, today time.Time) ([]factura.Record, error) {
	const op = "Load"

	rows, err := src.FetchRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return factura.Build(rows, today), nil
}
