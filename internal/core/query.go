package core

import (
	"github.com/acadflow/acadflow/internal/grid"
)

// Query is grid view state carried by a request. The HTTP host keeps no
// session, so every request rebuilds the grid and replays its Query.
type Query struct {
	Search   string
	Filters  map[string]string
	Sort     string
	Dir      grid.SortDir
	Page     int
	PageSize int
	Hidden   []string
	Selected []string
}

// Apply replays q onto g. The page is set after search, filters and sort
// since they move the grid back to page 1, and selection comes last since
// it only holds rows of the current page.
func (q Query) Apply(g *grid.Grid) {
	for _, key := range q.Hidden {
		g.SetColumnVisible(key, false)
	}
	g.SetSearch(q.Search)
	for key, value := range q.Filters {
		g.SetFilter(key, value)
	}
	if q.Sort != "" {
		dir := q.Dir
		if dir == grid.SortNone {
			dir = grid.SortAsc
		}
		g.SetSort(q.Sort, dir)
	}
	if q.Page > 0 {
		g.SetPage(q.Page)
	}
	for _, id := range q.Selected {
		if !g.IsSelected(id) {
			g.ToggleRow(id)
		}
	}
}
