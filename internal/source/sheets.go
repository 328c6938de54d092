package source

import (
	"context"
	"fmt"

	"estadocuenta/internal/factura"
)

// SheetReader reads a worksheet as header-keyed rows.
type SheetReader interface {
	ReadRows(ctx context.Context, sheetName string) ([]factura.RawRow, error)
}

// SheetsSource reads rows straight from a Google Sheets tab.
type SheetsSource struct {
	reader SheetReader
	sheet  string
}

var _ RowSource = (*SheetsSource)(nil)

// NewSheetsSource creates a source over the named tab.
func NewSheetsSource(reader SheetReader, sheet string) *SheetsSource {
	return &SheetsSource{reader: reader, sheet: sheet}
}

// FetchRows implements RowSource.
func (s *SheetsSource) FetchRows(ctx context.Context) ([]factura.RawRow, error) {
	const op = "FetchRows"

	rows, err := s.reader.ReadRows(ctx, s.sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: sheet %q: %w", op, s.sheet, err)
	}
	return rows, nil
}
