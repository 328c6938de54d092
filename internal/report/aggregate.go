// Package report sums facturas by payment state, month and client.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"estadocuenta/internal/factura"
)

// Summary is the total over a record set and its split by payment state.
// States without records are absent from the maps.
type Summary struct {
	Count        int                                      `json:"cantidad"`
	Total        decimal.Decimal                          `json:"total"`
	ByState      map[factura.PaymentState]decimal.Decimal `json:"porEstado"`
	CountByState map[factura.PaymentState]int             `json:"cantidadPorEstado"`
}

// Owed is the sum of the pending and unpaid subtotals.
func (s Summary) Owed() decimal.Decimal {
	return s.ByState[factura.StatePending].Add(s.ByState[factura.StateUnpaid])
}

// Report groups the views shown next to the record list. Summary covers the
// filtered records; ByMonth and ByClient cover the whole set.
type Report struct {
	Year     int                            `json:"anio"`
	Summary  Summary                        `json:"resumen"`
	ByMonth  map[time.Month]decimal.Decimal `json:"porMes"`
	ByClient map[string]decimal.Decimal     `json:"porCliente"`
}

// Summarize sums amounts by payment state.
func Summarize(records []factura.Record) Summary {
	s := Summary{
		Total:        decimal.Zero,
		ByState:      make(map[factura.PaymentState]decimal.Decimal),
		CountByState: make(map[factura.PaymentState]int),
	}
	for _, rec := range records {
		s.Count++
		s.Total = s.Total.Add(rec.Amount)
		s.ByState[rec.PaymentState] = s.ByState[rec.PaymentState].Add(rec.Amount)
		s.CountByState[rec.PaymentState]++
	}
	return s
}

// ByMonth sums the records issued in the given year by calendar month.
// Records without a valid issue date are skipped.
func ByMonth(records []factura.Record, year int) map[time.Month]decimal.Decimal {
	out := make(map[time.Month]decimal.Decimal)
	for _, rec := range records {
		if !rec.HasIssueDate() || rec.IssueDate.Year() != year {
			continue
		}
		m := rec.IssueDate.Month()
		out[m] = out[m].Add(rec.Amount)
	}
	return out
}

// ByClient sums amounts by client name.
func ByClient(records []factura.Record) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, rec := range records {
		out[rec.Client] = out[rec.Client].Add(rec.Amount)
	}
	return out
}

// Build assembles the report for a dashboard view.
func Build(all, filtered []factura.Record, today time.Time) Report {
	return Report{
		Year:     today.Year(),
		Summary:  Summarize(filtered),
		ByMonth:  ByMonth(all, today.Year()),
		ByClient: ByClient(all),
	}
}

// ClientTotal is one row of a client ranking.
type ClientTotal struct {
	Client string
	Total  decimal.Decimal
}

// RankClients orders client totals from largest to smallest, ties by name.
func RankClients(totals map[string]decimal.Decimal) []ClientTotal {
	out := make([]ClientTotal, 0, len(totals))
	for client, total := range totals {
		out = append(out, ClientTotal{Client: client, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Client < out[j].Client
	})
	return out
}

// Months returns the months present in a ByMonth result in calendar order.
func Months(totals map[time.Month]decimal.Decimal) []time.Month {
	out := make([]time.Month, 0, len(totals))
	for m := range totals {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FormatAmount renders an amount with two fraction digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
