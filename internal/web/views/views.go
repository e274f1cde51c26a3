// Package views renders the HTML fragments of the AcadFlow grid.
//
// Components are plain templ components so handlers can render them as
// full pages or as HTMX partials.
package views

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/acadflow/acadflow/internal/core"
	"github.com/acadflow/acadflow/internal/grid"
	"github.com/acadflow/acadflow/internal/presets"
)

type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err == nil {
		_, w.err = io.WriteString(w.w, s)
	}
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) printf(format string, args ...any) {
	if w.err == nil {
		_, w.err = fmt.Fprintf(w.w, format, args...)
	}
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<div class="alert alert-error" role="alert"><p class="alert-message">`)
		w.text(message)
		w.raw(`</p>`)
		if action != "" {
			w.raw(`<p class="alert-action">`)
			w.text(action)
			w.raw(`</p>`)
		}
		w.raw(`<p class="alert-code">Code : `)
		w.text(code)
		w.raw(`</p></div>`)
		return w.err
	})
}

// Dashboard lists the record kinds.
func Dashboard(all []presets.Preset) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<!DOCTYPE html><html lang="fr"><head><meta charset="utf-8"><title>AcadFlow</title></head><body><main><h1>AcadFlow</h1><ul class="kinds">`)
		group := ""
		for _, p := range all {
			if p.Group != group {
				group = p.Group
				w.raw(`<li class="group">`)
				w.text(group)
				w.raw(`</li>`)
			}
			w.raw(`<li><a href="/`)
			w.text(url.PathEscape(p.Kind))
			w.raw(`" hx-get="/api/`)
			w.text(url.PathEscape(p.Kind))
			w.raw(`/rows" hx-target="#grid">`)
			w.text(p.Label)
			w.raw(`</a></li>`)
		}
		w.raw(`</ul><section id="grid"></section></main></body></html>`)
		return w.err
	})
}

// Grid renders the toolbar, table and pager of one grid view.
func Grid(kind string, v grid.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		base := "/api/" + url.PathEscape(kind)

		w.raw(`<div class="grid" id="grid-`)
		w.text(kind)
		w.raw(`">`)
		toolbar(w, base, v)

		if v.Loading {
			w.raw(`<div class="grid-loading" aria-busy="true">Chargement…</div></div>`)
			return w.err
		}

		w.raw(`<table><thead><tr>`)
		if v.Selectable {
			w.raw(`<th class="select"></th>`)
		}
		for _, c := range v.Columns {
			header(w, base, c)
		}
		w.raw(`<th class="actions"></th></tr></thead><tbody>`)

		if v.Empty {
			w.printf(`<tr class="empty"><td colspan="%d">`, len(v.Columns)+2)
			w.text(v.EmptyMessage)
			w.raw(`</td></tr>`)
		}
		for _, row := range v.Rows {
			body(w, base, v, row)
		}
		w.raw(`</tbody></table>`)
		pager(w, base, v)
		w.raw(`</div>`)
		return w.err
	})
}

func toolbar(w *writer, base string, v grid.View) {
	w.raw(`<div class="grid-toolbar">`)
	if v.Searchable {
		w.raw(`<input type="search" name="search" placeholder="Rechercher…" value="`)
		w.text(v.Search)
		w.raw(`" hx-get="`)
		w.text(base + "/rows")
		w.raw(`" hx-trigger="keyup changed delay:300ms" hx-target="closest .grid" hx-swap="outerHTML">`)
	}
	for _, f := range v.Filters {
		w.raw(`<label>`)
		w.text(f.Label)
		if len(f.Options) > 0 {
			w.raw(`<select name="filter[`)
			w.text(f.Key)
			w.raw(`]"><option value="">Tous</option>`)
			for _, o := range f.Options {
				w.raw(`<option value="`)
				w.text(o.Value)
				w.raw(`"`)
				if o.Value == f.Value {
					w.raw(` selected`)
				}
				w.raw(`>`)
				w.text(o.Label)
				w.raw(`</option>`)
			}
			w.raw(`</select>`)
		} else {
			w.raw(`<input name="filter[`)
			w.text(f.Key)
			w.raw(`]" value="`)
			w.text(f.Value)
			w.raw(`">`)
		}
		w.raw(`</label>`)
	}
	if v.Exportable {
		w.raw(`<a class="btn" href="`)
		w.text(base + "/export?format=csv")
		w.raw(`">CSV</a><a class="btn" href="`)
		w.text(base + "/export?format=xlsx")
		w.raw(`">Excel</a>`)
	}
	if v.Importable {
		w.raw(`<form hx-post="`)
		w.text(base + "/import")
		w.raw(`" hx-encoding="multipart/form-data" hx-target="next .import-result"><input type="file" name="file" accept=".csv,.xlsx"><button type="submit">Importer</button></form><div class="import-result"></div>`)
	}
	if v.SelectedCount > 0 {
		w.printf(`<span class="selection">%d sélectionné(s)</span>`, v.SelectedCount)
	}
	w.raw(`</div>`)
}

func header(w *writer, base string, c grid.HeaderCell) {
	w.raw(`<th`)
	if c.Width != "" {
		w.raw(` style="width:`)
		w.text(c.Width)
		w.raw(`"`)
	}
	if c.Sort != grid.SortNone {
		w.raw(` aria-sort="`)
		if c.Sort == grid.SortAsc {
			w.raw(`ascending`)
		} else {
			w.raw(`descending`)
		}
		w.raw(`"`)
	}
	w.raw(`>`)
	if !c.Sortable {
		w.text(c.Title)
		w.raw(`</th>`)
		return
	}
	next := grid.SortAsc
	if c.Sort == grid.SortAsc {
		next = grid.SortDesc
	}
	q := url.Values{"sort": {c.Key}}
	if c.Sort != grid.SortDesc {
		q.Set("dir", string(next))
	} else {
		q.Del("sort")
	}
	w.raw(`<a hx-get="`)
	w.text(base + "/rows?" + q.Encode())
	w.raw(`" hx-target="closest .grid" hx-swap="outerHTML">`)
	w.text(c.Title)
	switch c.Sort {
	case grid.SortAsc:
		w.raw(` ▲`)
	case grid.SortDesc:
		w.raw(` ▼`)
	}
	w.raw(`</a></th>`)
}

func body(w *writer, base string, v grid.View, row grid.Row) {
	w.raw(`<tr data-id="`)
	w.text(row.ID)
	w.raw(`"`)
	if row.Selected {
		w.raw(` class="selected"`)
	}
	w.raw(`>`)
	if v.Selectable {
		w.raw(`<td class="select"><input type="checkbox" name="selected" value="`)
		w.text(row.ID)
		w.raw(`"`)
		if row.Selected {
			w.raw(` checked`)
		}
		w.raw(`></td>`)
	}
	for _, c := range row.Cells {
		w.raw(`<td>`)
		w.text(c.Display)
		w.raw(`</td>`)
	}
	w.raw(`<td class="actions">`)
	for _, a := range row.Actions {
		if a.Label == core.DeleteAction {
			w.raw(`<button hx-delete="`)
			w.text(base + "/rows/" + url.PathEscape(row.ID))
			w.raw(`" hx-confirm="Supprimer cet enregistrement ?" hx-target="closest tr" hx-swap="delete"`)
		} else {
			w.raw(`<button`)
		}
		if a.Disabled {
			w.raw(` disabled`)
		}
		w.raw(` class="btn-`)
		w.text(a.Variant)
		w.raw(`">`)
		w.text(a.Label)
		w.raw(`</button>`)
	}
	w.raw(`</td></tr>`)
}

func pager(w *writer, base string, v grid.View) {
	if v.TotalPages <= 1 {
		return
	}
	w.raw(`<nav class="pager">`)
	link := func(label string, page int, enabled bool) {
		if !enabled {
			w.raw(`<span class="disabled">`)
			w.text(label)
			w.raw(`</span>`)
			return
		}
		w.raw(`<a hx-get="`)
		w.text(base + "/rows?page=" + strconv.Itoa(page))
		w.raw(`" hx-target="closest .grid" hx-swap="outerHTML">`)
		w.text(label)
		w.raw(`</a>`)
	}
	link("Précédent", v.Page-1, v.Page > 1)
	w.printf(`<span class="page">Page %d / %d (%d lignes)</span>`, v.Page, v.TotalPages, v.TotalRows)
	link("Suivant", v.Page+1, v.Page < v.TotalPages)
	w.raw(`</nav>`)
}

// ImportSummary renders the outcome of one import.
func ImportSummary(report *core.ImportReport) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		class := "import-ok"
		if report.Failed() || report.Summary.ErrorRows > 0 {
			class = "import-errors"
		}
		w.raw(`<div class="import-summary `)
		w.raw(class)
		w.raw(`"><p>`)
		w.text(report.File)
		w.printf(` : %d ligne(s), %d valide(s), %d en erreur, %d importée(s).</p>`,
			report.Summary.TotalRows, report.Summary.ValidRows, report.Summary.ErrorRows, report.Inserted)
		list(w, "errors", report.Errors)
		list(w, "warnings", report.Warnings)
		w.raw(`</div>`)
		return w.err
	})
}

func list(w *writer, class string, items []string) {
	if len(items) == 0 {
		return
	}
	w.raw(`<ul class="`)
	w.raw(class)
	w.raw(`">`)
	for _, it := range items {
		w.raw(`<li>`)
		w.text(it)
		w.raw(`</li>`)
	}
	w.raw(`</ul>`)
}
