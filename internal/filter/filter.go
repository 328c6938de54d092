// Package filter selects facturas by client, tab and issue date range.
package filter

import (
	"fmt"
	"strings"
	"time"

	"estadocuenta/internal/factura"
)

// AgingThresholdDays separates the "> 30 días" and "< 30 días" tabs.
const AgingThresholdDays = 30

// Tab is a dashboard category.
type Tab string

const (
	TabAll     Tab = "todas"
	TabOver30  Tab = "mas-30"
	TabUnder30 Tab = "menos-30"
	TabPaid    Tab = "pagadas"
	TabOwed    Tab = "adeudadas"
)

// Tabs lists the tabs in menu order.
var Tabs = []Tab{TabAll, TabOver30, TabUnder30, TabPaid, TabOwed}

var tabLabels = map[Tab]string{
	TabAll:     "Todas",
	TabOver30:  "> 30 días",
	TabUnder30: "< 30 días",
	TabPaid:    "Pagadas",
	TabOwed:    "Adeudadas",
}

var tabAliases = map[string]Tab{
	"":        TabAll,
	"all":     TabAll,
	"over30":  TabOver30,
	">30":     TabOver30,
	"under30": TabUnder30,
	"<30":     TabUnder30,
	"paid":    TabPaid,
	"owed":    TabOwed,
}

// Label returns the menu label.
func (t Tab) Label() string {
	if label, ok := tabLabels[t]; ok {
		return label
	}
	return string(t)
}

// ParseTab accepts a tab slug, its menu label, or an English alias.
func ParseTab(s string) (Tab, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, tab := range Tabs {
		if key == string(tab) || key == strings.ToLower(tab.Label()) {
			return tab, nil
		}
	}
	if tab, ok := tabAliases[strings.ReplaceAll(key, " ", "")]; ok {
		return tab, nil
	}
	return "", fmt.Errorf("unknown tab %q (valid: todas, mas-30, menos-30, pagadas, adeudadas)", s)
}

// Criteria is the dashboard filter state. The zero value matches everything.
type Criteria struct {
	// Client is matched as a case-insensitive substring.
	Client string

	Tab Tab

	// From and To bound the issue date, inclusive. Either may be nil.
	From *time.Time
	To   *time.Time
}

// Bounded reports whether a date range is set.
func (c Criteria) Bounded() bool {
	return c.From != nil || c.To != nil
}

// Match reports whether a single record passes every filter.
func (c Criteria) Match(rec factura.Record) bool {
	return MatchClient(rec, c.Client) && MatchTab(rec, c.Tab) && MatchRange(rec, c.From, c.To)
}

// Apply returns the records that pass every filter, in input order. The
// input slice is not modified.
func Apply(records []factura.Record, c Criteria) []factura.Record {
	out := make([]factura.Record, 0, len(records))
	for _, rec := range records {
		if c.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// MatchClient is a case-insensitive substring match; an empty query matches.
func MatchClient(rec factura.Record, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(rec.Client), strings.ToLower(query))
}

// MatchTab applies the tab rules. Unknown tabs behave like TabAll.
func MatchTab(rec factura.Record, tab Tab) bool {
	switch tab {
	case TabOver30:
		return rec.PaymentState != factura.StatePaid && rec.DaysOutstanding > AgingThresholdDays
	case TabUnder30:
		return rec.PaymentState != factura.StatePaid && rec.DaysOutstanding <= AgingThresholdDays
	case TabPaid:
		return rec.PaymentState == factura.StatePaid
	case TabOwed:
		return rec.PaymentState.Owed()
	default:
		return true
	}
}

// MatchRange checks the issue date against inclusive bounds at day
// granularity. Records without a valid issue date never pass a bounded
// range.
func MatchRange(rec factura.Record, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	if !rec.HasIssueDate() {
		return false
	}
	if from != nil && factura.DaysBetween(*from, rec.IssueDate) < 0 {
		return false
	}
	if to != nil && factura.DaysBetween(rec.IssueDate, *to) < 0 {
		return false
	}
	return true
}
