// Package session holds the dashboard state: the loaded records, the active
// filters and the reference day used for aging.
//
// State is an immutable value. Every change returns a new State so views
// computed from an older value stay consistent. Session wraps the current
// State for concurrent use by the CLI, the HTTP API and the scheduled reload.
package session

import (
	"time"

	"estadocuenta/internal/factura"
	"estadocuenta/internal/filter"
	"estadocuenta/internal/report"
)

// State is a snapshot of the dashboard.
type State struct {
	Records  []factura.Record
	Criteria filter.Criteria
	Today    time.Time
}

// View is what the dashboard renders for a State.
type View struct {
	Records []factura.Record `json:"facturas"`
	Report  report.Report    `json:"resumen"`
}

// New returns an empty state for the given day.
func New(today time.Time) State {
	return State{Today: today}
}

// WithRecords replaces the record set. The slice is copied.
func (s State) WithRecords(records []factura.Record) State {
	s.Records = append([]factura.Record(nil), records...)
	return s
}

// WithClient sets the client substring filter.
func (s State) WithClient(query string) State {
	s.Criteria.Client = query
	return s
}

// WithTab sets the active tab.
func (s State) WithTab(tab filter.Tab) State {
	s.Criteria.Tab = tab
	return s
}

// WithRange sets the issue date bounds; nil clears a bound.
func (s State) WithRange(from, to *time.Time) State {
	s.Criteria.From = from
	s.Criteria.To = to
	return s
}

// WithCriteria replaces every filter at once.
func (s State) WithCriteria(c filter.Criteria) State {
	s.Criteria = c
	return s
}

// WithPaid reconciles a successful write-back locally.
func (s State) WithPaid(invoiceNumber string) (State, int) {
	records, changed := MarkPaid(s.Records, invoiceNumber)
	s.Records = records
	return s, changed
}

// View filters the records and builds the report. Breakdowns by month and
// client cover the whole record set.
func (s State) View() View {
	filtered := filter.Apply(s.Records, s.Criteria)
	return View{
		Records: filtered,
		Report:  report.Build(s.Records, filtered, s.Today),
	}
}

// MarkPaid returns a copy of records where every record whose invoice number
// equals invoiceNumber is PAGADO with an empty owed flag. The number of
// records changed is returned alongside. The input slice is not modified.
func MarkPaid(records []factura.Record, invoiceNumber string) ([]factura.Record, int) {
	out := make([]factura.Record, len(records))
	copy(out, records)

	changed := 0
	for i := range out {
		if out[i].InvoiceNumber != invoiceNumber {
			continue
		}
		out[i].PaymentState = factura.StatePaid
		out[i].OwedFlag = ""
		changed++
	}
	return out, changed
}
