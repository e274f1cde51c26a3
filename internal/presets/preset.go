// Package presets declares, per academic record kind, the columns, headers
// and field rules used to display, export and import that kind of record.
// Presets are configuration data: the built-in ones register themselves at
// init and more can be loaded from a YAML file.
package presets

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/acadflow/acadflow/internal/grid"
	"github.com/acadflow/acadflow/internal/record"
	"github.com/acadflow/acadflow/internal/tabular"
)

// FieldType is the expected type of a field once imported.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldDate   FieldType = "date"
	FieldBool   FieldType = "boolean"
)

// Field is one column of a preset.
type Field struct {
	Field    string    `yaml:"field" json:"field"`
	Header   string    `yaml:"header" json:"header"`
	Type     FieldType `yaml:"type" json:"type"`
	Required bool      `yaml:"required" json:"required"`
	// Rules are validator tags checked on present values, e.g. "gte=0,lte=20".
	Rules string `yaml:"rules" json:"rules,omitempty"`
	// Filter exposes the field as a grid filter of that type.
	Filter  grid.FilterType `yaml:"filter" json:"filter,omitempty"`
	Options []string        `yaml:"options" json:"options,omitempty"`
	Width   string          `yaml:"width" json:"width,omitempty"`
}

// Preset is the import/export configuration of one record kind.
type Preset struct {
	Kind      string  `yaml:"kind" json:"kind"`
	Label     string  `yaml:"label" json:"label"`
	Group     string  `yaml:"group" json:"group"`
	Filename  string  `yaml:"filename" json:"filename"`
	SheetName string  `yaml:"sheet" json:"sheet"`
	Columns   []Field `yaml:"columns" json:"columns"`
}

// Mapping maps each header to its field, for imports.
func (p Preset) Mapping() tabular.Mapping {
	m := make(tabular.Mapping, len(p.Columns))
	for _, f := range p.Columns {
		m[f.Header] = f.Field
	}
	return m
}

// ExportColumns lists the field keys in column order.
func (p Preset) ExportColumns() []string {
	keys := make([]string, len(p.Columns))
	for i, f := range p.Columns {
		keys[i] = f.Field
	}
	return keys
}

// Headers maps each field key to its localized header.
func (p Preset) Headers() map[string]string {
	h := make(map[string]string, len(p.Columns))
	for _, f := range p.Columns {
		h[f.Field] = f.Header
	}
	return h
}

// ExportOptions returns the export options naming files and headers after the preset.
func (p Preset) ExportOptions() tabular.ExportOptions {
	return tabular.ExportOptions{
		Filename:      p.Filename,
		CustomHeaders: p.Headers(),
		SheetName:     p.SheetName,
	}
}

// GridColumns returns the grid column descriptors of the preset.
func (p Preset) GridColumns() []grid.Column {
	cols := make([]grid.Column, len(p.Columns))
	for i, f := range p.Columns {
		cols[i] = grid.Column{Key: f.Field, Title: f.Header, Width: f.Width}
	}
	return cols
}

// GridFilters returns a filter for every field declaring one.
func (p Preset) GridFilters() []grid.Filter {
	var filters []grid.Filter
	for _, f := range p.Columns {
		if f.Filter == "" {
			continue
		}
		gf := grid.Filter{Key: f.Field, Label: f.Header, Type: f.Filter}
		for _, o := range f.Options {
			gf.Options = append(gf.Options, grid.Option{Label: o, Value: o})
		}
		filters = append(filters, gf)
	}
	return filters
}

// Normalize converts imported values to the declared field types where the
// coercion precedence picked another type. Text fields keep the cell text as
// written ("007" stays "007", "Oui" stays "Oui"), and a 0 or 1 read as a
// boolean in a number field becomes a number. raw maps fields to their
// trimmed cell text; fields missing from raw are stringified instead.
func (p Preset) Normalize(rec record.Record, raw map[string]string) {
	for _, f := range p.Columns {
		v, ok := rec[f.Field]
		if !ok {
			continue
		}
		text, hasRaw := raw[f.Field]
		switch f.Type {
		case FieldText, "":
			if hasRaw {
				rec[f.Field] = text
				continue
			}
			switch val := v.(type) {
			case string:
			case time.Time:
				rec[f.Field] = val.Format(record.DateLayout)
			default:
				rec[f.Field] = record.Text(v)
			}
		case FieldNumber:
			b, isBool := v.(bool)
			if !isBool {
				continue
			}
			switch {
			case hasRaw && text == "1", !hasRaw && b:
				rec[f.Field] = 1.0
			case hasRaw && text == "0", !hasRaw && !b:
				rec[f.Field] = 0.0
			}
		}
	}
}

// Field returns the column with the given key.
func (p Preset) Field(key string) (Field, bool) {
	for _, f := range p.Columns {
		if f.Field == key {
			return f, true
		}
	}
	return Field{}, false
}

// Validate reports an unusable preset.
func (p Preset) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Kind) == "" {
		errs = append(errs, errors.New("kind is required"))
	}
	if len(p.Columns) == 0 {
		errs = append(errs, errors.New("at least one column is required"))
	}

	fields := make(map[string]bool)
	headers := make(map[string]bool)
	for i, f := range p.Columns {
		if f.Field == "" || f.Header == "" {
			errs = append(errs, fmt.Errorf("column %d: field and header are required", i+1))
			continue
		}
		if fields[f.Field] {
			errs = append(errs, fmt.Errorf("column %d: duplicate field %q", i+1, f.Field))
		}
		if h := strings.ToLower(strings.TrimSpace(f.Header)); headers[h] {
			errs = append(errs, fmt.Errorf("column %d: duplicate header %q", i+1, f.Header))
		} else {
			headers[h] = true
		}
		fields[f.Field] = true

		switch f.Type {
		case "", FieldText, FieldNumber, FieldDate, FieldBool:
		default:
			errs = append(errs, fmt.Errorf("column %s: unknown type %q", f.Field, f.Type))
		}
		if err := checkRules(f.Rules); err != nil {
			errs = append(errs, fmt.Errorf("column %s: %w", f.Field, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("preset %q: %w", p.Kind, errors.Join(errs...))
	}
	return nil
}
