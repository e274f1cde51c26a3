package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/acadflow/acadflow/internal/core"
	"github.com/acadflow/acadflow/internal/grid"
)

// parseQuery reads grid state from query parameters:
//
//	search, sort, dir=asc|desc, page, pageSize, filter[key]=value,
//	hidden=a,b and selected=id1,id2
//
// Malformed numbers fall back to defaults and the page size is capped at maxPageSize.
func parseQuery(r *http.Request, maxPageSize int) core.Query {
	v := r.URL.Query()
	q := core.Query{
		Search:   v.Get("search"),
		Sort:     v.Get("sort"),
		Page:     parseIntParam(v.Get("page"), 0),
		PageSize: parseIntParam(v.Get("pageSize"), 0),
		Hidden:   splitParam(v.Get("hidden")),
		Selected: splitParam(v.Get("selected")),
	}
	if maxPageSize > 0 && q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}

	switch grid.SortDir(strings.ToLower(v.Get("dir"))) {
	case grid.SortDesc:
		q.Dir = grid.SortDesc
	default:
		q.Dir = grid.SortAsc
	}

	for key, values := range v {
		name, ok := strings.CutPrefix(key, "filter[")
		if !ok || !strings.HasSuffix(name, "]") {
			continue
		}
		name = strings.TrimSuffix(name, "]")
		if name == "" || len(values) == 0 || values[0] == "" {
			continue
		}
		if q.Filters == nil {
			q.Filters = make(map[string]string)
		}
		q.Filters[name] = values[0]
	}
	return q
}

// parseIntParam returns def for empty, malformed or non-positive values.
func parseIntParam(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func splitParam(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
