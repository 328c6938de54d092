package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"estadocuenta/internal/factura"
)

const (
	recordsSheet = "Facturas"
	summarySheet = "Resumen"
)

var recordHeaders = []interface{}{
	"Factura", "Fecha", "Cliente", "Importe", "Estado", "Días",
	"Vencimiento", "Condición", "Recibo", "Detalle", "Patente",
}

var monthNames = [...]string{
	"", "Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName returns the Spanish month name.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthNames[m]
}

// WriteXLSX writes the records and the report as a two-sheet workbook.
func WriteXLSX(w io.Writer, records []factura.Record, rep Report) error {
	const op = "WriteXLSX"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return fmt.Errorf("%s: failed to rename sheet: %w", op, err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("%s: failed to create summary sheet: %w", op, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6E6E6"}},
	})
	if err != nil {
		return fmt.Errorf("%s: failed to create header style: %w", op, err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("%s: failed to create amount style: %w", op, err)
	}

	if err := writeRecords(f, records, headerStyle, amountStyle); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := writeSummary(f, rep, headerStyle, amountStyle); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%s: failed to write workbook: %w", op, err)
	}
	return nil
}

func writeRecords(f *excelize.File, records []factura.Record, headerStyle, amountStyle int) error {
	if err := f.SetSheetRow(recordsSheet, "A1", &recordHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(recordHeaders), 1)
	if err := f.SetCellStyle(recordsSheet, "A1", lastCol, headerStyle); err != nil {
		return fmt.Errorf("failed to style headers: %w", err)
	}

	for i, rec := range records {
		row := []interface{}{
			rec.InvoiceNumber,
			rec.IssueDateText(),
			rec.Client,
			rec.Amount.InexactFloat64(),
			string(rec.PaymentState),
			rec.DaysOutstanding,
			rec.DueDateText(),
			rec.Terms,
			rec.ReceiptRef,
			rec.Detail,
			rec.Plate,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(recordsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if len(records) > 0 {
		if err := f.SetCellStyle(recordsSheet, "D2", fmt.Sprintf("D%d", len(records)+1), amountStyle); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}
	return f.SetColWidth(recordsSheet, "A", "K", 16)
}

func writeSummary(f *excelize.File, rep Report, headerStyle, amountStyle int) error {
	rows := [][]interface{}{{"Estado", "Cantidad", "Importe"}}
	for _, state := range factura.PaymentStates {
		total, ok := rep.Summary.ByState[state]
		if !ok {
			continue
		}
		rows = append(rows, []interface{}{string(state), rep.Summary.CountByState[state], total.InexactFloat64()})
	}
	rows = append(rows, []interface{}{"Total", rep.Summary.Count, rep.Summary.Total.InexactFloat64()})
	rows = append(rows, []interface{}{})

	rows = append(rows, []interface{}{fmt.Sprintf("Mes (%d)", rep.Year), "", "Importe"})
	for _, m := range Months(rep.ByMonth) {
		rows = append(rows, []interface{}{MonthName(int(m)), "", rep.ByMonth[m].InexactFloat64()})
	}
	rows = append(rows, []interface{}{})

	rows = append(rows, []interface{}{"Cliente", "", "Importe"})
	for _, ct := range RankClients(rep.ByClient) {
		rows = append(rows, []interface{}{ct.Client, "", ct.Total.InexactFloat64()})
	}

	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}

	if err := f.SetCellStyle(summarySheet, "C2", fmt.Sprintf("C%d", len(rows)), amountStyle); err != nil {
		return fmt.Errorf("failed to style summary amounts: %w", err)
	}
	for i, row := range rows {
		if len(row) != 3 || row[2] != "Importe" {
			continue
		}
		if err := f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", i+1), fmt.Sprintf("C%d", i+1), headerStyle); err != nil {
			return fmt.Errorf("failed to style summary header: %w", err)
		}
	}
	return f.SetColWidth(summarySheet, "A", "C", 24)
}
