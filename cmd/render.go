package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"estadocuenta/internal/factura"
	"estadocuenta/internal/filter"
	"estadocuenta/internal/report"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	amountStyle = cellStyle.Align(lipgloss.Right)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2).
			MarginRight(1)

	stateColors = map[factura.PaymentState]lipgloss.Color{
		factura.StateUnpaid:  lipgloss.Color("196"),
		factura.StatePending: lipgloss.Color("214"),
		factura.StatePaid:    lipgloss.Color("42"),
	}
)

func stateStyle(s factura.PaymentState) lipgloss.Style {
	return cellStyle.Foreground(stateColors[s]).Bold(true)
}

// renderRecords prints the filtered records as a table.
func renderRecords(w io.Writer, records []factura.Record, c filter.Criteria) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Facturas · %s", c.Tab.Label())))
	if c.Client != "" {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Cliente: %q", c.Client)))
	}

	if len(records) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No hay facturas para los filtros seleccionados."))
		return
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.InvoiceNumber,
			rec.IssueDateText(),
			rec.Client,
			report.FormatAmount(rec.Amount),
			string(rec.PaymentState),
			strconv.Itoa(rec.DaysOutstanding),
			rec.DueDateText(),
			rec.Terms,
			rec.ReceiptRef,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Factura", "Fecha", "Cliente", "Importe", "Estado", "Días", "Vence", "Condición", "Recibo").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			switch col {
			case 3, 5:
				return amountStyle
			case 4:
				return stateStyle(records[row].PaymentState)
			}
			return cellStyle
		})

	fmt.Fprintln(w, t.String())
}

// renderCards prints the summary as one card per payment state plus total.
func renderCards(w io.Writer, s report.Summary) {
	cards := make([]string, 0, len(factura.PaymentStates)+1)
	cards = append(cards, card("Total", s.Count, report.FormatAmount(s.Total), lipgloss.Color("86")))
	for _, state := range factura.PaymentStates {
		cards = append(cards, card(string(state), s.CountByState[state], report.FormatAmount(s.ByState[state]), stateColors[state]))
	}
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
}

func card(label string, count int, amount string, color lipgloss.Color) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(color).Render(label)
	body := fmt.Sprintf("%s\n$ %s\n%s", title, amount, mutedStyle.Render(fmt.Sprintf("%d facturas", count)))
	return cardStyle.Render(body)
}

// renderBreakdowns prints the month and client totals.
func renderBreakdowns(w io.Writer, rep report.Report, topClients int) {
	months := report.Months(rep.ByMonth)
	if len(months) > 0 {
		rows := make([][]string, 0, len(months))
		for _, m := range months {
			rows = append(rows, []string{report.MonthName(int(m)), report.FormatAmount(rep.ByMonth[m])})
		}
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Facturación por mes (%d)", rep.Year)))
		fmt.Fprintln(w, twoColumnTable("Mes", "Importe", rows))
	}

	ranked := report.RankClients(rep.ByClient)
	if topClients > 0 && len(ranked) > topClients {
		ranked = ranked[:topClients]
	}
	if len(ranked) > 0 {
		rows := make([][]string, 0, len(ranked))
		for _, ct := range ranked {
			name := ct.Client
			if strings.TrimSpace(name) == "" {
				name = "(sin cliente)"
			}
			rows = append(rows, []string{name, report.FormatAmount(ct.Total)})
		}
		fmt.Fprintln(w, titleStyle.Render("Facturación por cliente"))
		fmt.Fprintln(w, twoColumnTable("Cliente", "Importe", rows))
	}
}

func twoColumnTable(left, right string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(left, right).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 {
				return amountStyle
			}
			return cellStyle
		}).
		String()
}
