package presets

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/acadflow/acadflow/internal/record"
	"github.com/acadflow/acadflow/internal/tabular"
)

func mustGet(t *testing.T, kind string) Preset {
	t.Helper()
	p, ok := Get(kind)
	if !ok {
		t.Fatalf("preset %q not registered", kind)
	}
	return p
}

func TestBuiltins(t *testing.T) {
	for _, kind := range []string{Students, Grades, Classes, Evaluations} {
		t.Run(kind, func(t *testing.T) {
			p := mustGet(t, kind)
			if err := p.Validate(); err != nil {
				t.Errorf("Validate() = %v", err)
			}
			if len(p.Mapping()) != len(p.Columns) {
				t.Errorf("Mapping() has %d entries, want %d", len(p.Mapping()), len(p.Columns))
			}
			if p.Filename == "" || p.Label == "" {
				t.Error("missing filename or label")
			}
		})
	}

	kinds := Kinds()
	for _, kind := range []string{Classes, Evaluations, Grades, Students} {
		if !slices.Contains(kinds, kind) {
			t.Errorf("Kinds() = %v, missing %s", kinds, kind)
		}
	}
	if !slices.IsSorted(kinds) {
		t.Errorf("Kinds() not sorted: %v", kinds)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register() of a duplicate kind did not panic")
		}
	}()
	Register(Preset{Kind: Students})
}

func TestPresetAccessors(t *testing.T) {
	p := mustGet(t, Grades)

	if got := p.Mapping()["Note"]; got != "note" {
		t.Errorf("Mapping()[Note] = %q", got)
	}
	if got := p.Headers()["appreciation"]; got != "Appréciation" {
		t.Errorf("Headers()[appreciation] = %q", got)
	}
	if got := p.ExportColumns(); got[0] != "matricule" || len(got) != len(p.Columns) {
		t.Errorf("ExportColumns() = %v", got)
	}
	opts := p.ExportOptions()
	if opts.Filename != "notes" || opts.SheetName != "Notes" {
		t.Errorf("ExportOptions() = %+v", opts)
	}
	if cols := p.GridColumns(); cols[4].Key != "note" || cols[4].Title != "Note" {
		t.Errorf("GridColumns()[4] = %+v", cols[4])
	}

	s := mustGet(t, Students)
	filters := s.GridFilters()
	if len(filters) != 3 || filters[0].Key != "sexe" || len(filters[0].Options) != 2 {
		t.Errorf("GridFilters() = %+v", filters)
	}
}

func TestGradeValidator(t *testing.T) {
	validate := mustGet(t, Grades).Validator()

	tests := []struct {
		name string
		rec  record.Record
		want []string
	}{
		{"valid", record.Record{"matricule": "E001", "evaluation": "DS1", "note": 15.5}, nil},
		{"bounds", record.Record{"matricule": "E001", "evaluation": "DS1", "note": 20.0}, nil},
		{"too high", record.Record{"matricule": "E001", "evaluation": "DS1", "note": 25.0}, []string{"Note doit être inférieur ou égal à 20"}},
		{"negative", record.Record{"matricule": "E001", "evaluation": "DS1", "note": -1.0}, []string{"Note doit être supérieur ou égal à 0"}},
		{"missing required", record.Record{"note": 12.0}, []string{"Matricule est obligatoire", "Évaluation est obligatoire"}},
		{"not a number", record.Record{"matricule": "E001", "evaluation": "DS1", "note": "abs"}, []string{"Note doit être un nombre"}},
		{"bad coefficient", record.Record{"matricule": "E001", "evaluation": "DS1", "note": 10.0, "coefficient": 0.0}, []string{"Coefficient doit être supérieur à 0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validate(tt.rec); !slices.Equal(got, tt.want) {
				t.Errorf("validate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStudentValidator(t *testing.T) {
	validate := mustGet(t, Students).Validator()

	got := validate(record.Record{
		"matricule": "E001", "nom": "Dupont", "prenom": "Jean",
		"email": "pas-un-email", "sexe": "X", "date_naissance": "demain",
	})
	want := []string{
		"Email doit être une adresse e-mail valide",
		"Date de naissance doit être une date valide (JJ/MM/AAAA)",
		"Sexe doit être l'une des valeurs suivantes : M, F",
	}
	if !slices.Equal(got, want) {
		t.Errorf("validate() = %q, want %q", got, want)
	}

	ok := validate(record.Record{
		"matricule": "E001", "nom": "Dupont", "prenom": "Jean",
		"email": "jean.dupont@univ.fr", "sexe": "M",
		"date_naissance": time.Date(2003, 5, 14, 0, 0, 0, 0, time.UTC), "actif": true,
	})
	if len(ok) != 0 {
		t.Errorf("validate(valid) = %q", ok)
	}
}

func TestNormalize(t *testing.T) {
	p := mustGet(t, Grades)
	rec := record.Record{"matricule": 1234.0, "note": true, "evaluation": time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)}
	p.Normalize(rec, nil)

	if rec["matricule"] != "1234" {
		t.Errorf("matricule = %#v", rec["matricule"])
	}
	if rec["note"] != 1.0 {
		t.Errorf("note = %#v", rec["note"])
	}
	if rec["evaluation"] != "2024-03-12" {
		t.Errorf("evaluation = %#v", rec["evaluation"])
	}
}

func TestStudentImportKeepsCellText(t *testing.T) {
	p := mustGet(t, Students)
	im := tabular.Importer{Locale: tabular.DefaultLocale(), Normalize: p.Normalize}

	body := "Matricule,Nom,Prénom,Email,Date de naissance,Sexe,Classe,Actif\n" +
		"007,Dupont,Jean,,,M,1,Oui\n" +
		"1,Oui,Non,,14/05/2003,F,12/03/2024,non\n"

	res := im.Import(context.Background(), tabular.Source{Name: "etudiants.csv", Reader: strings.NewReader(body)}, p.Mapping(), p.Validator())
	if len(res.Errors) != 0 || len(res.Data) != 2 {
		t.Fatalf("data = %v errors = %v", res.Data, res.Errors)
	}

	tests := []struct {
		row   int
		field string
		want  any
	}{
		{0, "matricule", "007"},
		{0, "classe", "1"},
		{0, "actif", true},
		{1, "matricule", "1"},
		{1, "nom", "Oui"},
		{1, "prenom", "Non"},
		{1, "classe", "12/03/2024"},
		{1, "date_naissance", time.Date(2003, 5, 14, 0, 0, 0, 0, time.UTC)},
		{1, "actif", false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := res.Data[tt.row][tt.field]; got != tt.want {
				t.Errorf("row %d %s = %#v, want %#v", tt.row, tt.field, got, tt.want)
			}
		})
	}
}

func TestGradeImportRejectsBooleanNote(t *testing.T) {
	p := mustGet(t, Grades)
	im := tabular.Importer{Locale: tabular.DefaultLocale(), Normalize: p.Normalize}

	body := "Matricule,Nom,Prénom,Évaluation,Note,Coefficient,Appréciation\n" +
		"E001,Dupont,Jean,DS1,oui,1,\n" +
		"E002,Martin,Alice,DS1,0,1,\n"
	res := im.Import(context.Background(), tabular.Source{Name: "notes.csv", Reader: strings.NewReader(body)}, p.Mapping(), p.Validator())

	if res.Summary.ErrorRows != 1 || len(res.Data) != 1 || res.Data[0]["note"] != 0.0 {
		t.Errorf("data = %v errors = %v", res.Data, res.Errors)
	}
}

func TestGradeImport(t *testing.T) {
	p := mustGet(t, Grades)
	im := tabular.Importer{Locale: tabular.DefaultLocale(), Normalize: p.Normalize}

	body := "Matricule,Nom,Prénom,Évaluation,Note,Coefficient,Appréciation\n" +
		"E001,Dupont,Jean,DS1,15.5,2,Bien\n" +
		"E002,Martin,Alice,DS1,25,2,\n" +
		",,,,,,\n" +
		"E003,Durand,Paul,DS1,1,1,Faible\n"

	res := im.Import(context.Background(), tabular.Source{Name: "notes.csv", Reader: strings.NewReader(body)}, p.Mapping(), p.Validator())

	if res.Summary != (tabular.Summary{TotalRows: 4, ValidRows: 2, ErrorRows: 1}) {
		t.Fatalf("summary = %+v errors = %v", res.Summary, res.Errors)
	}
	if len(res.Errors) != 1 || !strings.HasPrefix(res.Errors[0], "line 3:") || !strings.Contains(res.Errors[0], "20") {
		t.Errorf("errors = %v", res.Errors)
	}
	if res.Data[1]["note"] != 1.0 {
		t.Errorf("note read as boolean was not normalized: %#v", res.Data[1]["note"])
	}
}

func TestDecode(t *testing.T) {
	yml := `
presets:
  - kind: teachers
    label: Liste des enseignants
    group: Personnel
    filename: enseignants
    columns:
      - field: matricule
        header: Matricule
        required: true
        rules: max=32
      - field: grade
        header: Grade
        filter: select
        options: [MCF, PR]
`
	got, err := Decode(strings.NewReader(yml))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got) != 1 || got[0].Kind != "teachers" || got[0].Columns[1].Type != FieldText {
		t.Errorf("Decode() = %+v", got)
	}

	bad := []string{
		"presets:\n  - kind: x\n    columns:\n      - field: a\n        header: A\n        rules: nosuchrule\n",
		"presets:\n  - kind: x\n    columns: []\n",
		"presets:\n  - kind: x\n    unknown: 1\n",
		"presets:\n  - kind: x\n    columns:\n      - field: a\n        header: A\n      - field: a\n        header: B\n",
	}
	for _, b := range bad {
		if _, err := Decode(strings.NewReader(b)); err == nil {
			t.Errorf("Decode(%q) accepted invalid presets", b)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	yml := "presets:\n  - kind: rooms\n    label: Salles\n    columns:\n      - field: code\n        header: Code\n        required: true\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if _, ok := Get("rooms"); !ok {
		t.Error("rooms not registered")
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("second LoadFile() accepted an already registered kind")
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFile() of a missing file succeeded")
	}
}
