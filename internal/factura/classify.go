package factura

import (
	"strings"
	"time"
)

// StateFromFlag derives the payment state from the DEBE column alone.
// Days outstanding never influence the state; aging is applied when
// filtering.
func StateFromFlag(flag string) PaymentState {
	switch strings.ToUpper(strings.TrimSpace(flag)) {
	case "SI", "SÍ", "YES":
		return StateUnpaid
	case "NO":
		return StatePending
	default:
		return StatePaid
	}
}

// DaysBetween counts calendar days from one date to another. The result is
// negative when to is before from.
func DaysBetween(from, to time.Time) int {
	return int(civilDate(to).Sub(civilDate(from)).Hours() / 24)
}

// Classify fills DaysOutstanding and PaymentState for the given day.
// Records without a valid issue date get zero days.
func Classify(rec Record, today time.Time) Record {
	rec.DaysOutstanding = 0
	if rec.HasIssueDate() {
		rec.DaysOutstanding = DaysBetween(rec.IssueDate, today)
	}
	rec.PaymentState = StateFromFlag(rec.OwedFlag)
	return rec
}
