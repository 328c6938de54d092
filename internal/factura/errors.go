package factura

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRow is returned for nil rows and rows where every column is blank.
	ErrEmptyRow = errors.New("empty row")

	// ErrRowPanic is returned when normalizing a row panicked.
	ErrRowPanic = errors.New("row normalization panicked")
)

// RowError ties a normalization failure to the row position in the batch.
type RowError struct {
	// Index is the zero-based position of the row in the source batch.
	Index int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RowError) Error() string {
	return fmt.Sprintf("factura: row %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RowError) Unwrap() error {
	return e.Err
}
