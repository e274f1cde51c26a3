package grid

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/acadflow/acadflow/internal/record"
)

func students() []record.Record {
	return []record.Record{
		{"id": "s1", "matricule": "E001", "nom": "Dupont", "prenom": "Jean", "note": 12.0, "actif": true, "classe": record.Record{"nom": "L1"}},
		{"id": "s2", "matricule": "E002", "nom": "Martin", "prenom": "Alice", "note": 15.5, "actif": false, "classe": record.Record{"nom": "L2"}},
		{"id": "s3", "matricule": "E003", "nom": "Durand", "prenom": "Paul", "note": 9.0, "actif": true, "classe": record.Record{"nom": "L1"}},
		{"id": "s4", "matricule": "E004", "nom": "Bernard", "prenom": "Zoé", "note": 18.0, "actif": true, "classe": record.Record{"nom": "L3"}},
		{"id": "s5", "matricule": "E005", "nom": "Petit", "prenom": "Luc", "note": 10.0, "actif": false, "classe": record.Record{"nom": "L2"}},
	}
}

func studentColumns() []Column {
	return []Column{
		{Key: "matricule", Title: "Matricule"},
		{Key: "nom", Title: "Nom"},
		{Key: "prenom", Title: "Prénom"},
		{Key: "note", Title: "Note"},
		{Key: "classe.nom", Title: "Classe"},
		{Key: "actif", Title: "Actif", DisableSort: true},
	}
}

func newGrid(t *testing.T, data []record.Record, cfg Config) *Grid {
	t.Helper()
	g, err := New(data, studentColumns(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func nomsOf(rows []record.Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = record.Text(r["nom"])
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		g := newGrid(t, students(), Config{})
		if g.PageSize() != DefaultPageSize {
			t.Errorf("PageSize() = %d, want %d", g.PageSize(), DefaultPageSize)
		}
		if g.Page() != 1 {
			t.Errorf("Page() = %d, want 1", g.Page())
		}
		if got := len(g.VisibleColumns()); got != 6 {
			t.Errorf("VisibleColumns() = %d, want 6", got)
		}
		if g.Sort() != (Sort{}) {
			t.Errorf("Sort() = %+v, want none", g.Sort())
		}
	})

	tests := []struct {
		name    string
		columns []Column
		cfg     Config
		wantErr error
	}{
		{"negative page size", studentColumns(), Config{PageSize: -1}, ErrInvalidPageSize},
		{"empty key", []Column{{Key: ""}}, Config{}, ErrEmptyColumnKey},
		{"duplicate key", []Column{{Key: "nom"}, {Key: "nom"}}, Config{}, ErrDuplicateColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil, tt.columns, tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		term string
		want []string
	}{
		{"dup", []string{"Dupont"}},
		{"DUP", []string{"Dupont"}},
		{"upont", []string{"Dupont"}},
		{"du", []string{"Dupont", "Durand"}},
		{"L2", []string{"Martin", "Petit"}},
		{"15.5", []string{"Martin"}},
		{"zzz", nil},
		{"", []string{"Dupont", "Martin", "Durand", "Bernard", "Petit"}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			g := newGrid(t, students(), Config{})
			g.SetSearch(tt.term)
			got := nomsOf(g.Rows())
			if !slices.Equal(got, tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
				t.Errorf("SetSearch(%q) rows = %v, want %v", tt.term, got, tt.want)
			}
		})
	}
}

func TestSearchSkipsUnfilterableColumns(t *testing.T) {
	cols := studentColumns()
	cols[1].DisableFilter = true
	g, err := New(students(), cols, Config{})
	if err != nil {
		t.Fatal(err)
	}
	g.SetSearch("dupont")
	if n := len(g.Rows()); n != 0 {
		t.Errorf("rows = %d, want 0 when nom is excluded from search", n)
	}
}

func TestFilters(t *testing.T) {
	cfg := Config{Filters: []Filter{
		{Key: "classe.nom", Label: "Classe", Type: FilterSelect, Options: []Option{{"L1", "L1"}, {"L2", "L2"}, {"L3", "L3"}}},
		{Key: "actif", Label: "Actif", Type: FilterBoolean},
		{Key: "nom", Label: "Nom", Type: FilterText},
	}}

	tests := []struct {
		name    string
		filters map[string]string
		want    []string
	}{
		{"select exact", map[string]string{"classe.nom": "l1"}, []string{"Dupont", "Durand"}},
		{"boolean", map[string]string{"actif": "non"}, []string{"Martin", "Petit"}},
		{"text substring", map[string]string{"nom": "ar"}, []string{"Martin", "Bernard"}},
		{"combined", map[string]string{"classe.nom": "L2", "actif": "false"}, []string{"Martin", "Petit"}},
		{"all empty is identity", map[string]string{"classe.nom": "", "actif": "", "nom": ""}, []string{"Dupont", "Martin", "Durand", "Bernard", "Petit"}},
		{"unparseable boolean ignored", map[string]string{"actif": "peut-être"}, []string{"Dupont", "Martin", "Durand", "Bernard", "Petit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGrid(t, students(), cfg)
			for k, v := range tt.filters {
				g.SetFilter(k, v)
			}
			if got := nomsOf(g.Rows()); !slices.Equal(got, tt.want) {
				t.Errorf("rows = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClearFiltersResetsPage(t *testing.T) {
	g := newGrid(t, students(), Config{PageSize: 2})
	g.SetFilter("nom", "t")
	g.SetPage(2)
	if g.Page() != 2 {
		t.Fatalf("Page() = %d, want 2", g.Page())
	}
	g.ClearFilters()
	if g.Page() != 1 {
		t.Errorf("Page() after ClearFilters = %d, want 1", g.Page())
	}
	if n := len(g.Rows()); n != 5 {
		t.Errorf("rows after ClearFilters = %d, want 5", n)
	}
}

func TestToggleSort(t *testing.T) {
	g := newGrid(t, students(), Config{})
	original := nomsOf(g.Rows())

	g.ToggleSort("note")
	if got := g.Sort(); got != (Sort{Key: "note", Dir: SortAsc}) {
		t.Fatalf("first click sort = %+v", got)
	}
	if got, want := nomsOf(g.Rows()), []string{"Durand", "Petit", "Dupont", "Martin", "Bernard"}; !slices.Equal(got, want) {
		t.Errorf("asc rows = %v, want %v", got, want)
	}

	g.ToggleSort("note")
	if got, want := nomsOf(g.Rows()), []string{"Bernard", "Martin", "Dupont", "Petit", "Durand"}; !slices.Equal(got, want) {
		t.Errorf("desc rows = %v, want %v", got, want)
	}

	g.ToggleSort("note")
	if g.Sort() != (Sort{}) {
		t.Errorf("third click sort = %+v, want none", g.Sort())
	}
	if got := nomsOf(g.Rows()); !slices.Equal(got, original) {
		t.Errorf("unsorted rows = %v, want original order %v", got, original)
	}

	g.ToggleSort("note")
	g.ToggleSort("nom")
	if got := g.Sort(); got != (Sort{Key: "nom", Dir: SortAsc}) {
		t.Errorf("switching column sort = %+v, want nom asc", got)
	}

	g.ToggleSort("actif")
	if got := g.Sort(); got.Key != "nom" {
		t.Errorf("non-sortable column changed sort to %+v", got)
	}
}

func TestSortIsStable(t *testing.T) {
	data := []record.Record{
		{"id": "1", "nom": "A", "note": 10.0},
		{"id": "2", "nom": "B", "note": 12.0},
		{"id": "3", "nom": "C", "note": 10.0},
		{"id": "4", "nom": "D", "note": 12.0},
	}
	g := newGrid(t, data, Config{})
	g.SetSort("note", SortAsc)
	if got, want := nomsOf(g.Rows()), []string{"A", "C", "B", "D"}; !slices.Equal(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
	g.SetSort("note", SortDesc)
	if got, want := nomsOf(g.Rows()), []string{"B", "D", "A", "C"}; !slices.Equal(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
}

func TestPagination(t *testing.T) {
	for _, size := range []int{1, 2, 3, 4, 5, 7} {
		t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
			g := newGrid(t, students(), Config{PageSize: size})
			g.SetSort("nom", SortAsc)
			all := g.Rows()

			var concat []string
			for p := 1; p <= g.TotalPages(); p++ {
				g.SetPage(p)
				v := g.View()
				if len(v.Rows) > size {
					t.Fatalf("page %d has %d rows, page size %d", p, len(v.Rows), size)
				}
				for _, r := range v.Rows {
					concat = append(concat, record.Text(r.Record["nom"]))
				}
			}
			if want := nomsOf(all); !slices.Equal(concat, want) {
				t.Errorf("pages concatenated = %v, want %v", concat, want)
			}
			if want := (len(all) + size - 1) / size; g.TotalPages() != want {
				t.Errorf("TotalPages() = %d, want %d", g.TotalPages(), want)
			}
		})
	}
}

func TestSetPageClamps(t *testing.T) {
	g := newGrid(t, students(), Config{PageSize: 2})
	g.SetPage(99)
	if g.Page() != 3 {
		t.Errorf("Page() = %d, want 3", g.Page())
	}
	g.SetPage(-4)
	if g.Page() != 1 {
		t.Errorf("Page() = %d, want 1", g.Page())
	}

	g.SetPage(3)
	g.SetData(students()[:1])
	if g.Page() != 1 {
		t.Errorf("Page() after shrinking data = %d, want 1", g.Page())
	}
}

func TestSearchResetsPage(t *testing.T) {
	g := newGrid(t, students(), Config{PageSize: 2})
	g.SetPage(3)
	g.SetSearch("e")
	if g.Page() != 1 {
		t.Errorf("Page() = %d, want 1", g.Page())
	}
}

func TestEmptyAndLoading(t *testing.T) {
	g := newGrid(t, students(), Config{})
	g.SetSearch("nobody")
	v := g.View()
	if !v.Empty || v.EmptyMessage != DefaultEmptyMessage {
		t.Errorf("view Empty = %v message = %q", v.Empty, v.EmptyMessage)
	}
	if v.TotalPages != 0 || v.Page != 1 {
		t.Errorf("empty view pages = %d page = %d", v.TotalPages, v.Page)
	}

	g.SetSearch("")
	g.SetLoading(true)
	v = g.View()
	if !v.Loading || len(v.Rows) != 0 {
		t.Errorf("loading view = loading %v rows %d", v.Loading, len(v.Rows))
	}
	if len(v.Columns) == 0 {
		t.Error("loading view should still carry headers")
	}
}

func TestViewCells(t *testing.T) {
	cols := studentColumns()
	cols[3].Format = func(v any, _ record.Record) string { return record.Text(v) + "/20" }
	g, err := New(students()[:1], cols, Config{
		Formatter: func(v any) string {
			if b, ok := v.(bool); ok {
				if b {
					return "Oui"
				}
				return "Non"
			}
			return record.Text(v)
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	v := g.View()
	if len(v.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(v.Rows))
	}
	got := map[string]string{}
	for _, c := range v.Rows[0].Cells {
		got[c.Key] = c.Display
	}
	want := map[string]string{"note": "12/20", "actif": "Oui", "classe.nom": "L1", "nom": "Dupont"}
	for k, w := range want {
		if got[k] != w {
			t.Errorf("cell %s = %q, want %q", k, got[k], w)
		}
	}
}

func TestColumnVisibility(t *testing.T) {
	g := newGrid(t, students(), Config{})
	g.ToggleColumn("prenom")
	for _, c := range g.VisibleColumns() {
		if c.Key == "prenom" {
			t.Fatal("prenom still visible")
		}
	}
	if slices.Contains(g.ExportColumns(), "prenom") {
		t.Error("hidden column exported")
	}
	g.ToggleColumn("prenom")
	if got := len(g.VisibleColumns()); got != 6 {
		t.Errorf("VisibleColumns() = %d, want 6", got)
	}
}

func TestSelection(t *testing.T) {
	g := newGrid(t, students(), Config{PageSize: 2})

	g.SelectPage(true)
	if got, want := nomsOf(g.Selected()), []string{"Dupont", "Martin"}; !slices.Equal(got, want) {
		t.Errorf("Selected() = %v, want %v", got, want)
	}
	if v := g.View(); v.SelectedCount != 2 || !v.PageSelected {
		t.Errorf("SelectedCount = %d, PageSelected = %v", v.SelectedCount, v.PageSelected)
	}

	if g.ToggleRow("s3") {
		t.Error("ToggleRow selected a row of another page")
	}
	if g.ToggleRow("missing") {
		t.Error("ToggleRow on unknown id returned true")
	}

	g.SetPage(1)
	if !g.IsSelected("s1") {
		t.Error("selection cleared when staying on the same page")
	}

	g.ToggleRow("s2")
	if got := nomsOf(g.Selected()); !slices.Equal(got, []string{"Dupont"}) {
		t.Errorf("Selected() after toggle = %v, want [Dupont]", got)
	}

	g.ClearSelection()
	if n := len(g.Selected()); n != 0 {
		t.Errorf("Selected() after clear = %d", n)
	}

	disabled := newGrid(t, students(), Config{DisableSelection: true})
	if disabled.ToggleRow("s1") {
		t.Error("ToggleRow succeeded with selection disabled")
	}
}

func TestSelectionIsScopedToOnePage(t *testing.T) {
	data := make([]record.Record, 25)
	for i := range data {
		data[i] = record.Record{"id": fmt.Sprintf("r%02d", i+1), "nom": fmt.Sprintf("Etudiant%02d", i+1)}
	}

	g := newGrid(t, data, Config{PageSize: 10})
	g.SelectPage(true)
	g.SetPage(2)
	if n := len(g.Selected()); n != 0 {
		t.Fatalf("Selected() after SetPage = %d, want 0", n)
	}
	g.SelectPage(true)

	v := g.View()
	if v.Page != 2 || v.SelectedCount != 10 || len(g.Selected()) != 10 {
		t.Errorf("page %d: SelectedCount = %d, Selected() = %d, want 10", v.Page, v.SelectedCount, len(g.Selected()))
	}
	if g.IsSelected("r01") {
		t.Error("row of page 1 still selected")
	}

	tests := []struct {
		name   string
		change func(g *Grid)
	}{
		{"search", func(g *Grid) { g.SetSearch("etudiant") }},
		{"filter", func(g *Grid) { g.SetFilter("nom", "0") }},
		{"clear filters", func(g *Grid) { g.ClearFilters() }},
		{"toggle sort", func(g *Grid) { g.ToggleSort("nom") }},
		{"set sort", func(g *Grid) { g.SetSort("nom", SortDesc) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGrid(t, data, Config{PageSize: 10})
			g.SelectPage(true)
			tt.change(g)
			if n := len(g.Selected()); n != 0 {
				t.Errorf("Selected() = %d, want 0", n)
			}
		})
	}
}

func TestSetDataDropsSelectionOffPage(t *testing.T) {
	g := newGrid(t, students(), Config{PageSize: 2})
	g.SelectPage(true)

	g.SetData(students()[1:])
	if g.IsSelected("s1") {
		t.Error("selection kept for removed row")
	}
	if !g.IsSelected("s2") {
		t.Error("selection lost for a row still on the page")
	}
}

func TestExport(t *testing.T) {
	var gotRows []record.Record
	var gotCols []string
	cols := studentColumns()
	cols[5].DisableExport = true

	g, err := New(students(), cols, Config{
		PageSize: 2,
		OnExport: func(rows []record.Record, columns []string) error {
			gotRows, gotCols = rows, columns
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	g.SetFilter("classe.nom", "L")
	g.SetSort("nom", SortDesc)
	g.ToggleColumn("prenom")

	if err := g.Export(); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(gotRows) != 5 {
		t.Errorf("exported %d rows, want all 5 filtered rows", len(gotRows))
	}
	if got, want := nomsOf(gotRows)[0], "Petit"; got != want {
		t.Errorf("first exported row = %s, want %s", got, want)
	}
	if want := []string{"matricule", "nom", "note", "classe.nom"}; !slices.Equal(gotCols, want) {
		t.Errorf("exported columns = %v, want %v", gotCols, want)
	}

	off := newGrid(t, students(), Config{DisableExport: true})
	if err := off.Export(); !errors.Is(err, ErrExportDisabled) {
		t.Errorf("Export() with export disabled = %v", err)
	}
	none := newGrid(t, students(), Config{})
	if err := none.Export(); !errors.Is(err, ErrNoHandler) {
		t.Errorf("Export() without handler = %v", err)
	}
}

func TestImport(t *testing.T) {
	var gotName, gotBody string
	g := newGrid(t, nil, Config{
		Importable: true,
		OnImport: func(name string, r io.Reader) error {
			b, err := io.ReadAll(r)
			gotName, gotBody = name, string(b)
			return err
		},
	})
	if err := g.Import("etudiants.csv", strings.NewReader("a,b")); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if gotName != "etudiants.csv" || gotBody != "a,b" {
		t.Errorf("handler got %q %q", gotName, gotBody)
	}

	off := newGrid(t, nil, Config{})
	if err := off.Import("x.csv", strings.NewReader("")); !errors.Is(err, ErrImportDisabled) {
		t.Errorf("Import() on non-importable grid = %v", err)
	}
}

func TestRunAction(t *testing.T) {
	var clicked string
	g := newGrid(t, students(), Config{
		Actions: []Action{{
			Label:    "Supprimer",
			Variant:  "danger",
			Disabled: func(r record.Record) bool { return r["actif"] == true },
			OnClick:  func(r record.Record) { clicked = record.Text(r["nom"]) },
		}},
	})

	if err := g.RunAction("supprimer", "s2"); err != nil {
		t.Fatalf("RunAction() error = %v", err)
	}
	if clicked != "Martin" {
		t.Errorf("clicked = %q, want Martin", clicked)
	}
	if err := g.RunAction("Supprimer", "s1"); !errors.Is(err, ErrActionDisabled) {
		t.Errorf("RunAction() on disabled row = %v", err)
	}
	if err := g.RunAction("Archiver", "s2"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("RunAction() unknown = %v", err)
	}
	if err := g.RunAction("Supprimer", "zz"); !errors.Is(err, ErrRowNotFound) {
		t.Errorf("RunAction() missing row = %v", err)
	}

	v := g.View()
	if !v.Rows[0].Actions[0].Disabled || v.Rows[1].Actions[0].Disabled {
		t.Errorf("action disabled states = %v %v", v.Rows[0].Actions[0].Disabled, v.Rows[1].Actions[0].Disabled)
	}
}

func TestRefresh(t *testing.T) {
	calls := 0
	g := newGrid(t, nil, Config{OnRefresh: func() { calls++ }})
	g.Refresh()
	if calls != 1 {
		t.Errorf("OnRefresh called %d times", calls)
	}
}
