package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"estadocuenta/internal/factura"
)

// dateColumns hold spreadsheet serial numbers when read raw.
var dateColumns = map[string]bool{
	factura.ColFecha:       true,
	factura.ColVencimiento: true,
}

// ParseFile reads a .xlsx, .xlsm, .xls or .csv file into header-keyed rows.
func ParseFile(path string) ([]factura.RawRow, error) {
	const op = "ParseFile"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open file: %w", op, err)
	}
	defer f.Close()

	rows, err := Parse(f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, filepath.Base(path), err)
	}
	return rows, nil
}

// Parse reads rows from r according to the file extension.
func Parse(r io.Reader, ext string) ([]factura.RawRow, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "xlsx", "xlsm":
		records, err = readXLSX(r)
	case "xls":
		records, err = readXLS(r)
	case "csv":
		records, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	return rowsFromRecords(records)
}

// readXLSX returns the first sheet with raw cell values so dates stay serial
// numbers instead of locale-formatted text.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readXLS(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, ErrNoSheets
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrNoSheets
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for j := 0; j <= row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// readCSV accepts comma or semicolon separated files, with or without a BOM.
func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return records, nil
}

func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

// rowsFromRecords maps the header row onto each data row. Header keys are
// trimmed and upper-cased; blank rows are skipped.
func rowsFromRecords(records [][]string) ([]factura.RawRow, error) {
	start := -1
	for i, rec := range records {
		if !blank(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrNoHeader
	}

	header := make([]string, len(records[start]))
	for i, h := range records[start] {
		header[i] = strings.ToUpper(strings.TrimSpace(h))
	}

	rows := make([]factura.RawRow, 0, len(records)-start-1)
	for _, rec := range records[start+1:] {
		if blank(rec) {
			continue
		}
		row := make(factura.RawRow, len(header))
		for i, cell := range rec {
			if i >= len(header) || header[i] == "" {
				continue
			}
			row[header[i]] = cellValue(header[i], strings.TrimSpace(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cellValue turns numeric date cells into float64 so they are read as serial
// dates. Everything else stays text.
func cellValue(column, cell string) any {
	if !dateColumns[column] {
		return cell
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}

func blank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
