// Package grid implements the view-state engine behind every data table of the
// application: free-text search, typed filters, single-column sort,
// pagination, column visibility, row selection and the export/import/refresh
// callbacks.
//
// A Grid never owns the data it displays and never performs I/O. The derived
// view is recomputed from the data and the view state on every call, so the
// state mutators below are the only way the result changes.
package grid

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/acadflow/acadflow/internal/record"
)

// Grid holds the transient view state of one table.
type Grid struct {
	data    []record.Record
	columns []Column
	cfg     Config

	loading  bool
	search   string
	filters  map[string]string
	sort     Sort
	page     int
	selected map[string]bool
	hidden   map[string]bool
}

// New creates a grid over data. All columns start visible, no search, no
// filter, no sort, page 1, nothing selected.
func New(data []record.Record, columns []Column, cfg Config) (*Grid, error) {
	if cfg.PageSize < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, cfg.PageSize)
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = DefaultEmptyMessage
	}
	if cfg.ID == nil {
		cfg.ID = DefaultID
	}
	if cfg.Formatter == nil {
		cfg.Formatter = record.Text
	}
	if err := validateColumns(columns); err != nil {
		return nil, err
	}

	return &Grid{
		data:     data,
		columns:  columns,
		cfg:      cfg,
		filters:  make(map[string]string),
		page:     1,
		selected: make(map[string]bool),
		hidden:   make(map[string]bool),
	}, nil
}

// DefaultID uses the "id" field when present, else the position in data.
func DefaultID(rec record.Record, index int) string {
	if v, ok := rec["id"]; ok {
		if id := record.Text(v); id != "" {
			return id
		}
	}
	return "#" + strconv.Itoa(index)
}

func validateColumns(columns []Column) error {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if c.Key == "" {
			return ErrEmptyColumnKey
		}
		if seen[c.Key] {
			return fmt.Errorf("%w: %s", ErrDuplicateColumn, c.Key)
		}
		seen[c.Key] = true
	}
	return nil
}

// SetData replaces the displayed collection. Search, filters and sort are
// kept; the page is clamped to the new length and selected ids that are no
// longer on the current page are dropped.
func (g *Grid) SetData(data []record.Record) {
	g.data = data
	g.clampPage()
	g.pruneSelection()
}

// SetColumns replaces the column set. Visibility and sort state referring to
// removed columns is discarded.
func (g *Grid) SetColumns(columns []Column) error {
	if err := validateColumns(columns); err != nil {
		return err
	}
	g.columns = columns

	for key := range g.hidden {
		if _, ok := g.column(key); !ok {
			delete(g.hidden, key)
		}
	}
	if c, ok := g.column(g.sort.Key); !ok || !c.Sortable() {
		g.sort = Sort{}
	}
	g.clampPage()
	return nil
}

// SetLoading toggles the busy state. While loading, View returns no rows.
func (g *Grid) SetLoading(loading bool) { g.loading = loading }

// Loading reports the busy state.
func (g *Grid) Loading() bool { return g.loading }

// SetSearch sets the free-text search term and returns to the first page.
func (g *Grid) SetSearch(term string) {
	g.search = term
	g.firstPage()
}

// Search returns the current search term.
func (g *Grid) Search() string { return g.search }

// SetFilter sets the value of one filter. An empty value clears it.
func (g *Grid) SetFilter(key, value string) {
	if value == "" {
		delete(g.filters, key)
	} else {
		g.filters[key] = value
	}
	g.firstPage()
}

// ClearFilters removes every active filter value.
func (g *Grid) ClearFilters() {
	g.filters = make(map[string]string)
	g.firstPage()
}

// FilterValue returns the active value of a filter.
func (g *Grid) FilterValue(key string) string { return g.filters[key] }

// ToggleSort implements the header click cycle:
// none -> asc(k) -> desc(k) -> none, and any other column -> asc(new).
// Unknown or non-sortable columns are ignored.
func (g *Grid) ToggleSort(key string) {
	c, ok := g.column(key)
	if !ok || !c.Sortable() {
		return
	}

	switch {
	case g.sort.Key != key:
		g.sort = Sort{Key: key, Dir: SortAsc}
	case g.sort.Dir == SortAsc:
		g.sort = Sort{Key: key, Dir: SortDesc}
	default:
		g.sort = Sort{}
	}
	g.ClearSelection()
}

// SetSort restores a sort directly. Unknown or non-sortable columns and
// invalid directions clear the sort.
func (g *Grid) SetSort(key string, dir SortDir) {
	c, ok := g.column(key)
	if !ok || !c.Sortable() || (dir != SortAsc && dir != SortDesc) {
		g.sort = Sort{}
		g.ClearSelection()
		return
	}
	if g.sort != (Sort{Key: key, Dir: dir}) {
		g.sort = Sort{Key: key, Dir: dir}
		g.ClearSelection()
	}
}

// Sort returns the active sort.
func (g *Grid) Sort() Sort { return g.sort }

// SetPage moves to page p, clamped to the valid range. Selection is scoped
// to one page, so moving to another page clears it.
func (g *Grid) SetPage(p int) {
	before := g.Page()
	g.page = p
	g.clampPage()
	if g.page != before {
		g.ClearSelection()
	}
}

// firstPage returns to page 1 after the filtered collection changed shape.
func (g *Grid) firstPage() {
	g.page = 1
	g.ClearSelection()
}

// Page returns the current 1-based page.
func (g *Grid) Page() int {
	g.clampPage()
	return g.page
}

// PageSize returns the configured page size.
func (g *Grid) PageSize() int { return g.cfg.PageSize }

// TotalPages returns ceil(filtered rows / page size).
func (g *Grid) TotalPages() int {
	return pageCount(len(g.derive()), g.cfg.PageSize)
}

func pageCount(n, size int) int {
	return (n + size - 1) / size
}

func (g *Grid) clampPage() {
	total := g.TotalPages()
	if g.page > total {
		g.page = total
	}
	if g.page < 1 {
		g.page = 1
	}
}

// ToggleColumn flips the visibility of a column.
func (g *Grid) ToggleColumn(key string) {
	g.SetColumnVisible(key, g.hidden[key])
}

// SetColumnVisible shows or hides a column. Hidden columns stay configured
// but are neither rendered nor exported.
func (g *Grid) SetColumnVisible(key string, visible bool) {
	if _, ok := g.column(key); !ok {
		return
	}
	if visible {
		delete(g.hidden, key)
	} else {
		g.hidden[key] = true
	}
}

// VisibleColumns returns the rendered columns in configuration order.
func (g *Grid) VisibleColumns() []Column {
	out := make([]Column, 0, len(g.columns))
	for _, c := range g.columns {
		if !g.hidden[c.Key] {
			out = append(out, c)
		}
	}
	return out
}

// Columns returns every configured column.
func (g *Grid) Columns() []Column { return g.columns }

// ExportColumns returns the keys of columns that are visible and exportable.
func (g *Grid) ExportColumns() []string {
	var keys []string
	for _, c := range g.VisibleColumns() {
		if c.Exportable() {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// ToggleRow flips the selection of the row with the given id.
// It returns false when selection is disabled or the row is not on the
// current page.
func (g *Grid) ToggleRow(id string) bool {
	if g.cfg.DisableSelection {
		return false
	}
	if !slices.ContainsFunc(g.pageEntries(), func(e entry) bool { return e.id == id }) {
		return false
	}
	if g.selected[id] {
		delete(g.selected, id)
	} else {
		g.selected[id] = true
	}
	return true
}

// SelectPage sets the selection of every row rendered on the current page.
func (g *Grid) SelectPage(selected bool) {
	if g.cfg.DisableSelection {
		return
	}
	for _, e := range g.pageEntries() {
		if selected {
			g.selected[e.id] = true
		} else {
			delete(g.selected, e.id)
		}
	}
}

// ClearSelection deselects everything.
func (g *Grid) ClearSelection() {
	g.selected = make(map[string]bool)
}

// IsSelected reports whether the row with the given id is selected.
func (g *Grid) IsSelected(id string) bool { return g.selected[id] }

// Selected returns the selected records of the current page, in display order.
func (g *Grid) Selected() []record.Record {
	var out []record.Record
	for _, e := range g.pageEntries() {
		if g.selected[e.id] {
			out = append(out, e.rec)
		}
	}
	return out
}

// pruneSelection drops selected ids that are not rendered on the current page.
func (g *Grid) pruneSelection() {
	if len(g.selected) == 0 {
		return
	}
	onPage := make(map[string]bool)
	for _, e := range g.pageEntries() {
		onPage[e.id] = true
	}
	for id := range g.selected {
		if !onPage[id] {
			delete(g.selected, id)
		}
	}
}

// Export hands the full filtered and sorted collection, not only the current
// page, to the export callback.
func (g *Grid) Export() error {
	if g.cfg.DisableExport {
		return ErrExportDisabled
	}
	if g.cfg.OnExport == nil {
		return fmt.Errorf("%w: export", ErrNoHandler)
	}
	return g.cfg.OnExport(g.Rows(), g.ExportColumns())
}

// Import hands one selected file to the import callback.
func (g *Grid) Import(name string, r io.Reader) error {
	if !g.cfg.Importable {
		return ErrImportDisabled
	}
	if g.cfg.OnImport == nil {
		return fmt.Errorf("%w: import", ErrNoHandler)
	}
	return g.cfg.OnImport(name, r)
}

// Refresh asks the owner of the data to reload it.
func (g *Grid) Refresh() {
	if g.cfg.OnRefresh != nil {
		g.cfg.OnRefresh()
	}
}

// RunAction invokes the action with the given label on the row with the given id.
func (g *Grid) RunAction(label, id string) error {
	var action *Action
	for i := range g.cfg.Actions {
		if strings.EqualFold(g.cfg.Actions[i].Label, label) {
			action = &g.cfg.Actions[i]
			break
		}
	}
	if action == nil {
		return fmt.Errorf("%w: %s", ErrUnknownAction, label)
	}

	rec, ok := g.find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}
	if action.Disabled != nil && action.Disabled(rec) {
		return ErrActionDisabled
	}
	if action.OnClick != nil {
		action.OnClick(rec)
	}
	return nil
}

func (g *Grid) column(key string) (Column, bool) {
	for _, c := range g.columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

func (g *Grid) filter(key string) (Filter, bool) {
	for _, f := range g.cfg.Filters {
		if f.Key == key {
			return f, true
		}
	}
	return Filter{}, false
}

func (g *Grid) find(id string) (record.Record, bool) {
	for i, rec := range g.data {
		if g.cfg.ID(rec, i) == id {
			return rec, true
		}
	}
	return nil, false
}
