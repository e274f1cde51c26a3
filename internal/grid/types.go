package grid

import (
	"errors"
	"io"

	"github.com/acadflow/acadflow/internal/record"
)

// DefaultPageSize is used when Config.PageSize is left at zero.
const DefaultPageSize = 10

// DefaultEmptyMessage is shown when no record survives search and filters.
const DefaultEmptyMessage = "Aucune donnée disponible"

var (
	ErrInvalidPageSize = errors.New("grid: page size must be positive")
	ErrEmptyColumnKey  = errors.New("grid: column key is required")
	ErrDuplicateColumn = errors.New("grid: duplicate column key")
	ErrExportDisabled  = errors.New("grid: export is disabled")
	ErrImportDisabled  = errors.New("grid: import is disabled")
	ErrNoHandler       = errors.New("grid: no handler registered")
	ErrUnknownAction   = errors.New("grid: unknown action")
	ErrActionDisabled  = errors.New("grid: action disabled for this row")
	ErrRowNotFound     = errors.New("grid: row not found")
)

// FilterType selects the widget and the matching rule of a Filter.
type FilterType string

const (
	FilterText    FilterType = "text"
	FilterSelect  FilterType = "select"
	FilterDate    FilterType = "date"
	FilterNumber  FilterType = "number"
	FilterBoolean FilterType = "boolean"
)

// SortDir is the direction of the active sort.
type SortDir string

const (
	SortNone SortDir = ""
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// FormatFunc renders a cell for display. It receives the raw value and the whole record.
type FormatFunc func(value any, rec record.Record) string

// Column describes one table column. Columns are sortable, filterable
// (searchable) and exportable unless the corresponding Disable flag is set.
type Column struct {
	Key           string // field name or dotted path into the record
	Title         string
	Width         string // presentation hint, e.g. "120px"
	DisableSort   bool
	DisableFilter bool
	DisableExport bool
	Format        FormatFunc
}

// Sortable reports whether clicking the header toggles the sort.
func (c Column) Sortable() bool { return !c.DisableSort }

// Filterable reports whether the column takes part in free-text search.
func (c Column) Filterable() bool { return !c.DisableFilter }

// Exportable reports whether the column may appear in an export.
func (c Column) Exportable() bool { return !c.DisableExport }

// Option is one enumerated choice of a select filter.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Filter is a named predicate input narrowing the rows by one field.
type Filter struct {
	Key     string     `json:"key"`
	Label   string     `json:"label"`
	Type    FilterType `json:"type"`
	Options []Option   `json:"options,omitempty"`
}

// Action is a per-row command.
type Action struct {
	Label    string
	Icon     string
	Variant  string // presentation only: "default", "danger", ...
	Disabled func(rec record.Record) bool
	OnClick  func(rec record.Record)
}

// Sort is the active sort specification. A zero Sort means unsorted.
type Sort struct {
	Key string  `json:"key,omitempty"`
	Dir SortDir `json:"dir,omitempty"`
}

// IDFunc extracts a stable identifier from a record. index is the record's
// position in the data slice handed to the grid.
type IDFunc func(rec record.Record, index int) string

// ExportFunc receives the full filtered and sorted rows and the keys of the
// visible, exportable columns in display order.
type ExportFunc func(rows []record.Record, columns []string) error

// ImportFunc receives one selected file.
type ImportFunc func(name string, r io.Reader) error

// Config carries the optional parts of a grid.
type Config struct {
	Filters []Filter
	Actions []Action

	PageSize int // zero means DefaultPageSize; negative is rejected

	DisableSearch    bool
	DisableSelection bool
	DisableExport    bool
	Importable       bool

	EmptyMessage string

	// ID defaults to the record's "id" field, then to its position in data.
	ID IDFunc
	// Formatter renders cells of columns without a Format func. Defaults to record.Text.
	Formatter func(value any) string

	OnExport  ExportFunc
	OnImport  ImportFunc
	OnRefresh func()
}
