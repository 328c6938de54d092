// Package factura turns loosely typed spreadsheet rows into invoice records.
//
// Rows arrive from the facturas spreadsheet (through the Apps Script JSON
// endpoint, the Google Sheets API, or a bulk-import file) as maps keyed by
// upper-case column names. Normalize coerces one row into a Record, Classify
// derives the aging and payment state for a given day, and Build does both for
// a whole batch while dropping rows that cannot be normalized.
//
// Source columns:
//   - FECHA: issue date
//   - FACTURA: invoice number, the business key for write-back
//   - IMPORTE: amount, currency formatted text or number
//   - CLIENTE: client name
//   - CONDICION: payment terms
//   - RECIBO: receipt reference
//   - VENCIMIENTO: due date
//   - DEBE: owed flag ("SI" unpaid, "NO" pending, anything else paid)
//   - DETALLE, PATENTE: optional descriptive columns
package factura

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Column names used by the facturas spreadsheet.
const (
	ColFecha       = "FECHA"
	ColFactura     = "FACTURA"
	ColImporte     = "IMPORTE"
	ColCliente     = "CLIENTE"
	ColCondicion   = "CONDICION"
	ColRecibo      = "RECIBO"
	ColVencimiento = "VENCIMIENTO"
	ColDebe        = "DEBE"
	ColDetalle     = "DETALLE"
	ColPatente     = "PATENTE"
)

// Columns lists the spreadsheet columns in sheet order.
var Columns = []string{
	ColFecha, ColFactura, ColImporte, ColCliente, ColCondicion,
	ColRecibo, ColVencimiento, ColDebe, ColDetalle, ColPatente,
}

// RawRow is one spreadsheet row keyed by column name.
type RawRow map[string]any

// PaymentState is the payment classification of a record.
type PaymentState string

const (
	StatePaid    PaymentState = "PAGADO"
	StatePending PaymentState = "PENDIENTE"
	StateUnpaid  PaymentState = "IMPAGO"
)

// PaymentStates lists every state in display order.
var PaymentStates = []PaymentState{StateUnpaid, StatePending, StatePaid}

// Valid reports whether s is one of the three known states.
func (s PaymentState) Valid() bool {
	switch s {
	case StatePaid, StatePending, StateUnpaid:
		return true
	}
	return false
}

// Owed reports whether the invoice is still payable.
func (s PaymentState) Owed() bool {
	return s == StatePending || s == StateUnpaid
}

// Record is a normalized factura.
type Record struct {
	// ID is the row position in the source batch. It is a display key only;
	// write-back matching uses InvoiceNumber.
	ID            int
	InvoiceNumber string

	// IssueDate and DueDate are zero when the source value could not be
	// parsed; the *Raw fields keep the source text for display.
	IssueDate    time.Time
	IssueDateRaw string
	DueDate      time.Time
	DueDateRaw   string

	Amount     decimal.Decimal
	Client     string
	Terms      string
	ReceiptRef string
	Detail     string
	Plate      string

	// OwedFlag is the raw DEBE column.
	OwedFlag string

	DaysOutstanding int
	PaymentState    PaymentState
}

// HasIssueDate reports whether the issue date was parsed.
func (r Record) HasIssueDate() bool {
	return !r.IssueDate.IsZero()
}

// IssueDateText renders the issue date as dd/mm/yy, or the raw source text.
func (r Record) IssueDateText() string {
	return dateText(r.IssueDate, r.IssueDateRaw)
}

// DueDateText renders the due date as dd/mm/yy, or the raw source text.
func (r Record) DueDateText() string {
	return dateText(r.DueDate, r.DueDateRaw)
}

func dateText(t time.Time, raw string) string {
	if t.IsZero() {
		return raw
	}
	return t.Format(DisplayDateLayout)
}

type recordJSON struct {
	ID              int             `json:"id"`
	InvoiceNumber   string          `json:"nroFactura"`
	IssueDate       string          `json:"fecha"`
	IssueDateISO    string          `json:"fechaISO,omitempty"`
	DueDate         string          `json:"vencimiento"`
	Amount          decimal.Decimal `json:"importe"`
	Client          string          `json:"cliente"`
	Terms           string          `json:"condicion"`
	ReceiptRef      string          `json:"recibo"`
	Detail          string          `json:"detalle,omitempty"`
	Plate           string          `json:"patente,omitempty"`
	OwedFlag        string          `json:"debe"`
	DaysOutstanding int             `json:"dias"`
	PaymentState    PaymentState    `json:"estado"`
}

// MarshalJSON renders the record with the field names the dashboard uses.
func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		ID:              r.ID,
		InvoiceNumber:   r.InvoiceNumber,
		IssueDate:       r.IssueDateText(),
		DueDate:         r.DueDateText(),
		Amount:          r.Amount,
		Client:          r.Client,
		Terms:           r.Terms,
		ReceiptRef:      r.ReceiptRef,
		Detail:          r.Detail,
		Plate:           r.Plate,
		OwedFlag:        r.OwedFlag,
		DaysOutstanding: r.DaysOutstanding,
		PaymentState:    r.PaymentState,
	}
	if r.HasIssueDate() {
		out.IssueDateISO = r.IssueDate.Format(ISODateLayout)
	}
	return json.Marshal(out)
}
