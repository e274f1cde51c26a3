package grid

import (
	"slices"
	"strings"

	"github.com/acadflow/acadflow/internal/record"
)

// HeaderCell is one rendered column header.
type HeaderCell struct {
	Key      string  `json:"key"`
	Title    string  `json:"title"`
	Width    string  `json:"width,omitempty"`
	Sortable bool    `json:"sortable"`
	Sort     SortDir `json:"sort,omitempty"`
}

// Cell is one rendered cell.
type Cell struct {
	Key     string `json:"key"`
	Value   any    `json:"value"`
	Display string `json:"display"`
}

// ActionState is an action as offered on one row.
type ActionState struct {
	Label    string `json:"label"`
	Icon     string `json:"icon,omitempty"`
	Variant  string `json:"variant,omitempty"`
	Disabled bool   `json:"disabled"`
}

// Row is one rendered row of the current page.
type Row struct {
	ID       string        `json:"id"`
	Record   record.Record `json:"-"`
	Cells    []Cell        `json:"cells"`
	Selected bool          `json:"selected"`
	Actions  []ActionState `json:"actions,omitempty"`
}

// FilterState is a filter descriptor with its active value.
type FilterState struct {
	Filter
	Value string `json:"value,omitempty"`
}

// ColumnToggle lists a column in the visibility menu.
type ColumnToggle struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Visible bool   `json:"visible"`
}

// View is the derived, render-ready state of a grid.
type View struct {
	Columns    []HeaderCell   `json:"columns"`
	Toggles    []ColumnToggle `json:"toggles"`
	Filters    []FilterState  `json:"filters,omitempty"`
	Rows       []Row          `json:"rows"`
	Search     string         `json:"search,omitempty"`
	Sort       Sort           `json:"sort"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
	TotalRows  int            `json:"totalRows"`

	Loading      bool   `json:"loading"`
	Empty        bool   `json:"empty"`
	EmptyMessage string `json:"emptyMessage,omitempty"`

	SelectedCount int  `json:"selectedCount"`
	PageSelected  bool `json:"pageSelected"`

	Searchable bool `json:"searchable"`
	Selectable bool `json:"selectable"`
	Exportable bool `json:"exportable"`
	Importable bool `json:"importable"`
}

type entry struct {
	rec record.Record
	id  string
}

// Rows returns the full filtered and sorted collection.
func (g *Grid) Rows() []record.Record {
	entries := g.derive()
	out := make([]record.Record, len(entries))
	for i, e := range entries {
		out[i] = e.rec
	}
	return out
}

// View computes the page currently displayed.
func (g *Grid) View() View {
	g.clampPage()

	v := View{
		Search:       g.search,
		Sort:         g.sort,
		Page:         g.page,
		PageSize:     g.cfg.PageSize,
		Loading:      g.loading,
		EmptyMessage: g.cfg.EmptyMessage,
		Searchable:   !g.cfg.DisableSearch,
		Selectable:   !g.cfg.DisableSelection,
		Exportable:   !g.cfg.DisableExport,
		Importable:   g.cfg.Importable,
	}

	visible := g.VisibleColumns()
	for _, c := range visible {
		h := HeaderCell{Key: c.Key, Title: c.Title, Width: c.Width, Sortable: c.Sortable()}
		if g.sort.Key == c.Key {
			h.Sort = g.sort.Dir
		}
		v.Columns = append(v.Columns, h)
	}
	for _, c := range g.columns {
		v.Toggles = append(v.Toggles, ColumnToggle{Key: c.Key, Title: c.Title, Visible: !g.hidden[c.Key]})
	}
	for _, f := range g.cfg.Filters {
		v.Filters = append(v.Filters, FilterState{Filter: f, Value: g.filters[f.Key]})
	}

	if g.loading {
		return v
	}

	entries := g.derive()
	v.TotalRows = len(entries)
	v.TotalPages = pageCount(len(entries), g.cfg.PageSize)
	v.Empty = len(entries) == 0

	page := paginate(entries, g.page, g.cfg.PageSize)
	v.PageSelected = len(page) > 0
	for _, e := range page {
		row := Row{ID: e.id, Record: e.rec, Selected: g.selected[e.id]}
		if row.Selected {
			v.SelectedCount++
		} else {
			v.PageSelected = false
		}
		for _, c := range visible {
			val := record.Value(e.rec, c.Key)
			display := ""
			if c.Format != nil {
				display = c.Format(val, e.rec)
			} else {
				display = g.cfg.Formatter(val)
			}
			row.Cells = append(row.Cells, Cell{Key: c.Key, Value: val, Display: display})
		}
		for _, a := range g.cfg.Actions {
			row.Actions = append(row.Actions, ActionState{
				Label:    a.Label,
				Icon:     a.Icon,
				Variant:  a.Variant,
				Disabled: a.Disabled != nil && a.Disabled(e.rec),
			})
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

func (g *Grid) pageEntries() []entry {
	g.clampPage()
	return paginate(g.derive(), g.page, g.cfg.PageSize)
}

func paginate(entries []entry, page, size int) []entry {
	start := (page - 1) * size
	if start < 0 || start >= len(entries) {
		return nil
	}
	end := min(start+size, len(entries))
	return entries[start:end]
}

// derive applies search, filters and sort to the data.
func (g *Grid) derive() []entry {
	entries := make([]entry, 0, len(g.data))
	for i, rec := range g.data {
		entries = append(entries, entry{rec: rec, id: g.cfg.ID(rec, i)})
	}

	if term := strings.ToLower(g.search); term != "" && !g.cfg.DisableSearch {
		entries = slices.DeleteFunc(entries, func(e entry) bool {
			return !g.matchesSearch(e.rec, term)
		})
	}

	for key, value := range g.filters {
		if value == "" {
			continue
		}
		f, ok := g.filter(key)
		if !ok {
			f = Filter{Key: key, Type: FilterText}
		}
		entries = slices.DeleteFunc(entries, func(e entry) bool {
			return !matchesFilter(f, value, record.Value(e.rec, key))
		})
	}

	if g.sort.Key != "" && g.sort.Dir != SortNone {
		key, desc := g.sort.Key, g.sort.Dir == SortDesc
		slices.SortStableFunc(entries, func(a, b entry) int {
			c := record.Compare(record.Value(a.rec, key), record.Value(b.rec, key))
			if desc {
				return -c
			}
			return c
		})
	}

	return entries
}

func (g *Grid) matchesSearch(rec record.Record, term string) bool {
	for _, c := range g.columns {
		if !c.Filterable() {
			continue
		}
		if strings.Contains(strings.ToLower(record.Text(record.Value(rec, c.Key))), term) {
			return true
		}
	}
	return false
}

// matchesFilter evaluates one filter: boolean filters compare coerced values
// for equality, select filters with enumerated options compare whole values,
// and everything else is a case-insensitive substring test.
func matchesFilter(f Filter, want string, got any) bool {
	switch {
	case f.Type == FilterBoolean:
		wb, ok := record.ToBool(want)
		if !ok {
			return true
		}
		gb, ok := record.ToBool(got)
		return ok && gb == wb
	case f.Type == FilterSelect && len(f.Options) > 0:
		return strings.EqualFold(record.Text(got), want)
	default:
		return strings.Contains(strings.ToLower(record.Text(got)), strings.ToLower(want))
	}
}
