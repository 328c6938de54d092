package factura

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	// DisplayDateLayout is the dd/mm/yy form shown on cards and tables.
	DisplayDateLayout = "02/01/06"

	// ISODateLayout is used for query parameters and exports.
	ISODateLayout = "2006-01-02"

	// maxSerialDate is 9999-12-31 as a spreadsheet serial number.
	maxSerialDate = 2958465
)

// dateLayouts are tried in order. Slashed dates are day-first because the
// facturas sheet is kept in Argentine locale. Four-digit years come before
// two-digit ones so "02/01/2024" is not read as year 20.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-1-2",
	"2006/1/2",
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2.1.2006",
	"2.1.06",
}

// sheetLocation is the time zone the spreadsheet is kept in.
var sheetLocation atomic.Pointer[time.Location]

// SetLocation sets the spreadsheet's time zone. UTC timestamps (the way Apps
// Script serializes dates) are moved into it before taking the calendar day.
// A nil location resets it to UTC.
func SetLocation(loc *time.Location) {
	sheetLocation.Store(loc)
}

// Location returns the spreadsheet's time zone, UTC unless set.
func Location() *time.Location {
	if loc := sheetLocation.Load(); loc != nil {
		return loc
	}
	return time.UTC
}

// ParseDate parses a spreadsheet date value. Strings are tried against the
// accepted layouts, numbers are spreadsheet serial dates. The result keeps
// the calendar day as written, at midnight UTC; UTC timestamps are read in
// the spreadsheet's time zone first, see SetLocation. The second return value is
// the source text to show when parsing fails.
func ParseDate(v any) (time.Time, string, bool) {
	switch value := v.(type) {
	case nil:
		return time.Time{}, "", false
	case json.Number:
		if f, err := value.Float64(); err == nil {
			t, ok := serialDate(f)
			return t, value.String(), ok
		}
		return time.Time{}, value.String(), false
	case float64:
		t, ok := serialDate(value)
		return t, stringify(value), ok
	case int:
		t, ok := serialDate(float64(value))
		return t, stringify(value), ok
	case int64:
		t, ok := serialDate(float64(value))
		return t, stringify(value), ok
	case time.Time:
		if value.IsZero() {
			return time.Time{}, "", false
		}
		return civilDate(value), value.Format(ISODateLayout), true
	}

	raw := strings.TrimSpace(stringify(v))
	if raw == "" {
		return time.Time{}, "", false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		// Only a zoned timestamp in UTC is moved; an explicit offset already
		// names the writer's zone and zoneless layouts parse as UTC too.
		if layout == time.RFC3339 && t.Location() == time.UTC {
			t = t.In(Location())
		}
		return civilDate(t), raw, true
	}
	return time.Time{}, raw, false
}

// serialDate converts a spreadsheet serial number to a calendar date.
func serialDate(f float64) (time.Time, bool) {
	if f <= 0 || f > maxSerialDate {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}
	return civilDate(t), true
}

// civilDate drops the clock and zone, keeping the calendar day of t as seen
// in its own location.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseQueryDate parses a YYYY-MM-DD date given on the command line or in a
// query string.
func ParseQueryDate(s string) (time.Time, error) {
	t, err := time.Parse(ISODateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return civilDate(t), nil
}

// formatNumber renders a number without exponent so amount stripping keeps
// every digit.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
