package tabular

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/acadflow/acadflow/internal/record"
)

// Mapping maps a source header to the record field it fills.
type Mapping map[string]string

// Validator inspects one partially built record and returns its problems.
// An empty result means the record is valid.
type Validator func(rec record.Record) []string

// Summary counts the rows of one import. Blank rows are in TotalRows only.
type Summary struct {
	TotalRows int `json:"totalRows"`
	ValidRows int `json:"validRows"`
	ErrorRows int `json:"errorRows"`
}

// ImportResult is the outcome of one import.
type ImportResult struct {
	Data     []record.Record `json:"data"`
	Errors   []string        `json:"errors"`
	Warnings []string        `json:"warnings"`
	Summary  Summary         `json:"summary"`
}

// Failed reports whether the file was rejected before any row was read.
func (r *ImportResult) Failed() bool {
	return r.Summary.TotalRows == 0 && len(r.Errors) > 0
}

func failed(format string, args ...any) *ImportResult {
	return &ImportResult{
		Data:     []record.Record{},
		Errors:   []string{fmt.Sprintf(format, args...)},
		Warnings: []string{},
	}
}

// Source is one uploaded file.
type Source struct {
	Name   string
	Reader io.Reader
	// Format overrides the extension-based detection when set.
	Format Format
}

// sourceRow is one row of an uploaded table and the 1-based line it starts on.
type sourceRow struct {
	line  int
	cells []string
}

// Importer parses uploaded files into records.
type Importer struct {
	Locale Locale
	// Normalize, when set, adjusts each built record before validation. raw
	// holds the trimmed cell text of every field present in rec.
	Normalize func(rec record.Record, raw map[string]string)
}

// Import parses src, checks that every mapped header is present, then builds,
// validates and collects one record per data row. It never returns an error:
// unreadable files and missing headers produce a result with a single error
// and no rows.
func (im Importer) Import(ctx context.Context, src Source, mapping Mapping, validate Validator) *ImportResult {
	if src.Reader == nil {
		return failed("no file content")
	}
	if err := ctx.Err(); err != nil {
		return failed("import cancelled: %v", err)
	}

	format := src.Format
	if format == "" {
		var err error
		if format, err = DetectFormat(src.Name); err != nil {
			return failed("%v", err)
		}
	}

	var (
		rows []sourceRow
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(src.Reader)
	default:
		rows, err = readCSV(src.Reader)
	}
	if err != nil {
		return failed("unable to read file %s: %v", src.Name, err)
	}
	if len(rows) == 0 {
		return failed("file %s is empty", src.Name)
	}

	index := headerIndex(rows[0].cells)
	if missing := missingColumns(index, mapping); len(missing) > 0 {
		return failed("missing required columns: %s", strings.Join(missing, ", "))
	}

	res := &ImportResult{
		Data:     []record.Record{},
		Errors:   []string{},
		Warnings: []string{},
	}
	sources := sortedKeys(mapping)

	for i, sr := range rows[1:] {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("import cancelled after %d rows: %v", i, err))
			break
		}
		line, row := sr.line, sr.cells
		res.Summary.TotalRows++

		rec := make(record.Record, len(mapping))
		raw := make(map[string]string, len(mapping))
		for _, header := range sources {
			col := index[normalizeHeader(header)]
			if col >= len(row) {
				continue
			}
			if v, ok := Coerce(row[col], im.Locale); ok {
				field := mapping[header]
				rec[field] = v
				raw[field] = strings.TrimSpace(row[col])
			}
		}

		if len(rec) == 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: empty row skipped", line))
			continue
		}
		if im.Normalize != nil {
			im.Normalize(rec, raw)
		}
		if validate != nil {
			if problems := validate(rec); len(problems) > 0 {
				res.Errors = append(res.Errors, fmt.Sprintf("line %d: %s", line, strings.Join(problems, "; ")))
				res.Summary.ErrorRows++
				continue
			}
		}

		res.Data = append(res.Data, rec)
		res.Summary.ValidRows++
	}

	return res
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// headerIndex maps normalized header names to column positions. The first
// occurrence of a duplicated header wins.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	return index
}

func missingColumns(index map[string]int, mapping Mapping) []string {
	var missing []string
	for _, header := range sortedKeys(mapping) {
		if _, ok := index[normalizeHeader(header)]; !ok {
			missing = append(missing, header)
		}
	}
	return missing
}

func sortedKeys(m Mapping) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
