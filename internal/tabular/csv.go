package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/acadflow/acadflow/internal/record"
)

// ExportOptions tunes one export.
type ExportOptions struct {
	// Filename is the base name of the artifact, without date or extension.
	Filename string
	// OmitHeader drops the header line.
	OmitHeader bool
	// CustomHeaders maps a column key to the header written for it.
	CustomHeaders map[string]string
	// SheetName names the single worksheet of spreadsheet exports.
	SheetName string
}

func (o ExportOptions) header(key string) string {
	if h, ok := o.CustomHeaders[key]; ok && h != "" {
		return h
	}
	return key
}

// table flattens records into display strings, header first.
func table(records []record.Record, columns []string, opts ExportOptions, loc Locale) ([][]string, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}

	rows := make([][]string, 0, len(records)+1)
	if !opts.OmitHeader {
		head := make([]string, len(columns))
		for i, key := range columns {
			head[i] = opts.header(key)
		}
		rows = append(rows, head)
	}
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, key := range columns {
			row[i] = FormatValue(record.Value(rec, key), loc)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteCSV writes records as comma-separated text. Fields containing a comma,
// a double quote or a line break are quoted with inner quotes doubled.
func WriteCSV(w io.Writer, records []record.Record, columns []string, opts ExportOptions, loc Locale) error {
	rows, err := table(records, columns, opts, loc)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// EncodeCSV is WriteCSV into memory.
func EncodeCSV(records []record.Record, columns []string, opts ExportOptions, loc Locale) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records, columns, opts, loc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// readCSV parses delimited text into rows tagged with their source line.
// Ragged rows are kept as they are. encoding/csv skips empty lines, so every
// empty line after the header comes back as a row without cells.
func readCSV(r io.Reader) ([]sourceRow, error) {
	cr := csv.NewReader(cleanReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows []sourceRow
	next := 1
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}

		line, _ := cr.FieldPos(0)
		if len(rows) > 0 {
			for blank := next; blank < line; blank++ {
				rows = append(rows, sourceRow{line: blank})
			}
		}
		rows = append(rows, sourceRow{line: line, cells: cells})

		// A quoted field may span lines; the record ends where its last field does.
		last := len(cells) - 1
		lastLine, _ := cr.FieldPos(last)
		next = lastLine + strings.Count(cells[last], "\n") + 1
	}
	return rows, nil
}

// headerCSV writes only the header line, used for blank import templates.
func headerCSV(columns []string, opts ExportOptions) ([]byte, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	head := make([]string, len(columns))
	for i, key := range columns {
		head[i] = opts.header(key)
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll([][]string{head}); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
