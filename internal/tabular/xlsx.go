package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/acadflow/acadflow/internal/record"
)

// ColumnWidth is the width applied to every exported spreadsheet column.
const ColumnWidth = 20

// DefaultSheetName is used when ExportOptions.SheetName is empty.
const DefaultSheetName = "Données"

// EncodeXLSX writes the same cells as EncodeCSV into a single-sheet workbook.
func EncodeXLSX(records []record.Record, columns []string, opts ExportOptions, loc Locale) ([]byte, error) {
	rows, err := table(records, columns, opts, loc)
	if err != nil {
		return nil, err
	}
	return writeWorkbook(rows, len(columns), opts.SheetName)
}

func headerXLSX(columns []string, opts ExportOptions) ([]byte, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	head := make([]string, len(columns))
	for i, key := range columns {
		head[i] = opts.header(key)
	}
	return writeWorkbook([][]string{head}, len(columns), opts.SheetName)
}

func writeWorkbook(rows [][]string, width int, sheet string) ([]byte, error) {
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	last, err := excelize.ColumnNumberToName(width)
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", last, ColumnWidth); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// readXLSX returns the rows of the first worksheet. Row n of the sheet is
// line n.
func readXLSX(r io.Reader) ([]sourceRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("open workbook: no worksheet")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	out := make([]sourceRow, len(rows))
	for i, cells := range rows {
		out[i] = sourceRow{line: i + 1, cells: cells}
	}
	return out, nil
}
