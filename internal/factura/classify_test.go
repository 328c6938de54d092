package factura

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateFromFlag(t *testing.T) {
	tests := []struct {
		flag string
		want PaymentState
	}{
		{"SI", StateUnpaid},
		{"si", StateUnpaid},
		{" Si ", StateUnpaid},
		{"SÍ", StateUnpaid},
		{"yes", StateUnpaid},
		{"NO", StatePending},
		{"no", StatePending},
		{" No", StatePending},
		{"", StatePaid},
		{"PAGADO", StatePaid},
		{"x", StatePaid},
		{"false", StatePaid},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			got := StateFromFlag(tt.flag)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 60, DaysBetween(day(2024, 1, 1), day(2024, 3, 1)))
	assert.Equal(t, 0, DaysBetween(day(2024, 1, 1), day(2024, 1, 1)))
	assert.Equal(t, -5, DaysBetween(day(2024, 1, 6), day(2024, 1, 1)))

	// Clock time on "today" does not shift the count
	late := time.Date(2024, 3, 1, 23, 59, 0, 0, time.FixedZone("ART", -3*3600))
	assert.Equal(t, 60, DaysBetween(day(2024, 1, 1), late))
}

func TestClassifyScenario(t *testing.T) {
	rec, err := Normalize(RawRow{
		"CLIENTE": "Acme",
		"FACTURA": "A1",
		"IMPORTE": "$1,234.50",
		"DEBE":    "SI",
		"FECHA":   "2024-01-01",
	}, 0)
	require.NoError(t, err)

	rec = Classify(rec, day(2024, 3, 1))

	assert.True(t, decimal.RequireFromString("1234.50").Equal(rec.Amount))
	assert.Equal(t, StateUnpaid, rec.PaymentState)
	assert.Equal(t, 60, rec.DaysOutstanding)
}

func TestClassifyPendingRegardlessOfDays(t *testing.T) {
	for _, issued := range []string{"2020-01-01", "2024-02-29", "2030-01-01", "no date"} {
		rec, err := Normalize(RawRow{"FACTURA": "B1", "DEBE": "NO", "FECHA": issued}, 0)
		require.NoError(t, err)

		rec = Classify(rec, day(2024, 3, 1))
		assert.Equal(t, StatePending, rec.PaymentState, issued)
	}
}

func TestClassifyWithoutIssueDate(t *testing.T) {
	rec := Classify(Record{IssueDateRaw: "???", OwedFlag: "SI"}, day(2024, 3, 1))
	assert.Equal(t, 0, rec.DaysOutstanding)
	assert.False(t, rec.HasIssueDate())
}

func TestClassifyFutureIssueIsNegative(t *testing.T) {
	rec := Classify(Record{IssueDate: day(2024, 3, 11), OwedFlag: "SI"}, day(2024, 3, 1))
	assert.Equal(t, -10, rec.DaysOutstanding)
}

func TestPaymentStateOwed(t *testing.T) {
	assert.True(t, StateUnpaid.Owed())
	assert.True(t, StatePending.Owed())
	assert.False(t, StatePaid.Owed())
	assert.False(t, PaymentState("OTRO").Valid())
}
