package factura

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"estadocuenta/internal/logger"
)

// Normalize converts one raw row into a Record. Missing or malformed fields
// fall back to safe defaults; only nil or entirely blank rows are rejected.
// The returned record is not classified yet, see Classify.
func Normalize(raw RawRow, index int) (Record, error) {
	const op = "Normalize"

	if isBlank(raw) {
		return Record{}, fmt.Errorf("%s: %w", op, ErrEmptyRow)
	}

	issue, issueRaw, _ := ParseDate(raw[ColFecha])
	due, dueRaw, _ := ParseDate(raw[ColVencimiento])

	return Record{
		ID:            index,
		InvoiceNumber: text(raw[ColFactura]),
		IssueDate:     issue,
		IssueDateRaw:  issueRaw,
		DueDate:       due,
		DueDateRaw:    dueRaw,
		Amount:        ParseAmount(raw[ColImporte]),
		Client:        clientName(raw[ColCliente]),
		Terms:         text(raw[ColCondicion]),
		ReceiptRef:    text(raw[ColRecibo]),
		Detail:        text(raw[ColDetalle]),
		Plate:         text(raw[ColPatente]),
		OwedFlag:      text(raw[ColDebe]),
	}, nil
}

// Build normalizes and classifies a batch. Rows that fail are logged and
// dropped; the batch never aborts. Output keeps source order.
func Build(rows []RawRow, today time.Time) []Record {
	log := logger.WithComponent("factura")

	records := make([]Record, 0, len(rows))
	dropped := 0
	for i, row := range rows {
		rec, err := safeNormalize(row, i)
		if err != nil {
			dropped++
			log.Warn().
				Err(err).
				Int("row", i).
				Interface("raw", row).
				Msg("Dropping row that could not be normalized")
			continue
		}
		records = append(records, Classify(rec, today))
	}

	log.Debug().
		Int("total_rows", len(rows)).
		Int("records", len(records)).
		Int("dropped", dropped).
		Msg("Normalized facturas batch")

	return records
}

// safeNormalize isolates a single row so a panic only drops that row.
func safeNormalize(row RawRow, index int) (rec Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RowError{Index: index, Err: fmt.Errorf("%w: %v", ErrRowPanic, r)}
		}
	}()

	rec, err = Normalize(row, index)
	if err != nil {
		return Record{}, &RowError{Index: index, Err: err}
	}
	return rec, nil
}

// ParseAmount strips every rune that is not a digit, '.' or '-' and parses
// the rest as a decimal. Anything unparseable yields zero.
func ParseAmount(v any) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, stringify(v))

	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// clientName only accepts string values.
func clientName(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func text(v any) string {
	return strings.TrimSpace(stringify(v))
}

// stringify coerces a decoded JSON or spreadsheet value to text.
func stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	case float64:
		return formatNumber(value)
	case float32:
		return formatNumber(float64(value))
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case bool:
		return strconv.FormatBool(value)
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}

func isBlank(raw RawRow) bool {
	for _, v := range raw {
		if strings.TrimSpace(stringify(v)) != "" {
			return false
		}
	}
	return true
}
