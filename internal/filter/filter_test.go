package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estadocuenta/internal/factura"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rec(nro, client string, state factura.PaymentState, days int, issued time.Time) factura.Record {
	return factura.Record{
		InvoiceNumber:   nro,
		Client:          client,
		PaymentState:    state,
		DaysOutstanding: days,
		IssueDate:       issued,
	}
}

func fixture() []factura.Record {
	return []factura.Record{
		rec("1", "Acme SA", factura.StateUnpaid, 45, day(2024, 1, 15)),
		rec("2", "acme logística", factura.StatePending, 10, day(2024, 2, 19)),
		rec("3", "Beta", factura.StatePaid, 90, day(2023, 12, 1)),
		rec("4", "", factura.StateUnpaid, 30, day(2024, 1, 30)),
		rec("5", "Gamma", factura.StatePending, 31, time.Time{}),
		rec("6", "Acme SA", factura.StatePaid, 5, day(2024, 2, 24)),
	}
}

func numbers(records []factura.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.InvoiceNumber)
	}
	return out
}

func TestApplyTabs(t *testing.T) {
	tests := []struct {
		tab  Tab
		want []string
	}{
		{TabAll, []string{"1", "2", "3", "4", "5", "6"}},
		{TabOver30, []string{"1", "5"}},
		{TabUnder30, []string{"2", "4"}},
		{TabPaid, []string{"3", "6"}},
		{TabOwed, []string{"1", "2", "4", "5"}},
		{Tab("desconocida"), []string{"1", "2", "3", "4", "5", "6"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.tab), func(t *testing.T) {
			got := Apply(fixture(), Criteria{Tab: tt.tab})
			assert.Equal(t, tt.want, numbers(got))
		})
	}
}

func TestApplyClientSubstring(t *testing.T) {
	got := Apply(fixture(), Criteria{Client: "ACME"})
	assert.Equal(t, []string{"1", "2", "6"}, numbers(got))

	got = Apply(fixture(), Criteria{Client: "logís"})
	assert.Equal(t, []string{"2"}, numbers(got))

	got = Apply(fixture(), Criteria{Client: "zeta"})
	assert.Empty(t, got)
}

func TestEmptyQueryKeepsEmptyClientInEveryTab(t *testing.T) {
	empty := rec("E", "", factura.StateUnpaid, 3, day(2024, 1, 1))
	for _, tab := range Tabs {
		assert.True(t, MatchClient(empty, ""), tab)
	}
	got := Apply([]factura.Record{empty}, Criteria{Tab: TabOwed})
	assert.Len(t, got, 1)
}

func TestApplyIsConjunctive(t *testing.T) {
	records := fixture()
	c := Criteria{Client: "acme", Tab: TabOver30}

	got := Apply(records, c)
	assert.Equal(t, []string{"1"}, numbers(got))

	for _, r := range records {
		want := MatchClient(r, c.Client) && MatchTab(r, c.Tab)
		assert.Equal(t, want, c.Match(r), r.InvoiceNumber)
	}
}

func TestApplyDateRange(t *testing.T) {
	from := day(2024, 1, 15)
	to := day(2024, 2, 19)

	got := Apply(fixture(), Criteria{From: &from, To: &to})
	assert.Equal(t, []string{"1", "2", "4"}, numbers(got), "bounds are inclusive and undated records are excluded")

	got = Apply(fixture(), Criteria{From: &from})
	assert.Equal(t, []string{"1", "2", "4", "6"}, numbers(got))

	got = Apply(fixture(), Criteria{To: &from})
	assert.Equal(t, []string{"1", "3"}, numbers(got))
}

func TestApplyDoesNotTouchInput(t *testing.T) {
	records := fixture()
	_ = Apply(records, Criteria{Tab: TabPaid})
	require.Len(t, records, 6)
	assert.Equal(t, "1", records[0].InvoiceNumber)
}

func TestParseTab(t *testing.T) {
	tests := []struct {
		in   string
		want Tab
	}{
		{"", TabAll},
		{"Todas", TabAll},
		{"all", TabAll},
		{"> 30 días", TabOver30},
		{"mas-30", TabOver30},
		{"over30", TabOver30},
		{"< 30 días", TabUnder30},
		{"under30", TabUnder30},
		{"PAGADAS", TabPaid},
		{"paid", TabPaid},
		{"adeudadas", TabOwed},
		{" owed ", TabOwed},
	}
	for _, tt := range tests {
		got, err := ParseTab(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseTab("vencidas")
	assert.Error(t, err)
}

func TestTabLabel(t *testing.T) {
	assert.Equal(t, "> 30 días", TabOver30.Label())
	assert.Equal(t, "Adeudadas", TabOwed.Label())
}
