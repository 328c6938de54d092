package cmd

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estadocuenta/internal/config"
	"estadocuenta/internal/factura"
	"estadocuenta/internal/filter"
)

func filterCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addFilterFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestCriteriaFromFlags(t *testing.T) {
	cmd := filterCommand(t, "--cliente", "acme", "-t", "adeudadas", "--desde", "2024-01-01", "--hasta", "2024-03-31")

	c, err := criteriaFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, "acme", c.Client)
	assert.Equal(t, filter.TabOwed, c.Tab)
	require.NotNil(t, c.From)
	require.NotNil(t, c.To)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *c.From)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), *c.To)
}

func TestCriteriaFromFlagsDefaults(t *testing.T) {
	c, err := criteriaFromFlags(filterCommand(t))
	require.NoError(t, err)
	assert.Equal(t, filter.TabAll, c.Tab)
	assert.False(t, c.Bounded())
}

func TestCriteriaFromFlagsInvalid(t *testing.T) {
	_, err := criteriaFromFlags(filterCommand(t, "--tab", "vencidas-hace-mucho"))
	assert.Error(t, err)

	_, err = criteriaFromFlags(filterCommand(t, "--desde", "15/01/2024"))
	assert.ErrorContains(t, err, "--desde")
}

func TestTodayFromFlags(t *testing.T) {
	cfg := &config.Config{Timezone: "UTC"}

	today, err := todayFromFlags(filterCommand(t, "--fecha", "2024-03-15"), cfg)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), today)

	today, err = todayFromFlags(filterCommand(t), cfg)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), today, time.Minute)

	_, err = todayFromFlags(filterCommand(t, "--fecha", "mañana"), cfg)
	assert.Error(t, err)
}

func recordCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addRecordFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestRowFromFlags(t *testing.T) {
	today := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	cmd := recordCommand(t,
		"--factura", " A-0042 ",
		"--cliente", "Acme SA",
		"--importe", "1234.50",
		"--vencimiento", "2024-04-14",
		"--debe", "si",
	)

	row, err := rowFromFlags(cmd, today)
	require.NoError(t, err)
	assert.Equal(t, "A-0042", row[factura.ColFactura])
	assert.Equal(t, "15/03/2024", row[factura.ColFecha])
	assert.Equal(t, "14/04/2024", row[factura.ColVencimiento])
	assert.Equal(t, "SI", row[factura.ColDebe])

	rec, err := factura.Normalize(row, 0)
	require.NoError(t, err)
	rec = factura.Classify(rec, today)
	assert.Equal(t, today, rec.IssueDate)
	assert.Equal(t, factura.StateUnpaid, rec.PaymentState)
	assert.Equal(t, "1234.50", rec.Amount.StringFixed(2))
}

func TestRowFromFlagsIssueDate(t *testing.T) {
	row, err := rowFromFlags(recordCommand(t, "--factura", "B1", "--fecha", "2024-01-15", "--debe="), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "15/01/2024", row[factura.ColFecha])
	assert.Equal(t, "", row[factura.ColDebe])
	_, ok := row[factura.ColVencimiento]
	assert.False(t, ok)
}

func TestRowFromFlagsInvalid(t *testing.T) {
	_, err := rowFromFlags(recordCommand(t, "--factura", "  "), time.Now())
	assert.Error(t, err)

	_, err = rowFromFlags(recordCommand(t, "--factura", "B1", "--fecha", "2024/13/01"), time.Now())
	assert.ErrorContains(t, err, "--fecha")
}
