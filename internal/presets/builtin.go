package presets

import "github.com/acadflow/acadflow/internal/grid"

// Built-in kinds.
const (
	Students    = "students"
	Grades      = "grades"
	Classes     = "classes"
	Evaluations = "evaluations"
)

func init() {
	RegisterBuiltins()
}

func builtins() []Preset {
	return []Preset{
		{
			Kind:      Students,
			Label:     "Liste des étudiants",
			Group:     "Scolarité",
			Filename:  "etudiants",
			SheetName: "Étudiants",
			Columns: []Field{
				{Field: "matricule", Header: "Matricule", Type: FieldText, Required: true, Rules: "max=32", Width: "120px"},
				{Field: "nom", Header: "Nom", Type: FieldText, Required: true, Rules: "max=100"},
				{Field: "prenom", Header: "Prénom", Type: FieldText, Required: true, Rules: "max=100"},
				{Field: "email", Header: "Email", Type: FieldText, Rules: "email"},
				{Field: "date_naissance", Header: "Date de naissance", Type: FieldDate},
				{Field: "sexe", Header: "Sexe", Type: FieldText, Rules: "oneof=M F", Filter: grid.FilterSelect, Options: []string{"M", "F"}},
				{Field: "classe", Header: "Classe", Type: FieldText, Filter: grid.FilterText},
				{Field: "actif", Header: "Actif", Type: FieldBool, Filter: grid.FilterBoolean},
			},
		},
		{
			Kind:      Grades,
			Label:     "Relevé de notes",
			Group:     "Évaluations",
			Filename:  "notes",
			SheetName: "Notes",
			Columns: []Field{
				{Field: "matricule", Header: "Matricule", Type: FieldText, Required: true, Rules: "max=32"},
				{Field: "nom", Header: "Nom", Type: FieldText},
				{Field: "prenom", Header: "Prénom", Type: FieldText},
				{Field: "evaluation", Header: "Évaluation", Type: FieldText, Required: true, Filter: grid.FilterText},
				{Field: "note", Header: "Note", Type: FieldNumber, Required: true, Rules: "gte=0,lte=20", Filter: grid.FilterNumber},
				{Field: "coefficient", Header: "Coefficient", Type: FieldNumber, Rules: "gt=0"},
				{Field: "appreciation", Header: "Appréciation", Type: FieldText, Rules: "max=255"},
			},
		},
		{
			Kind:      Classes,
			Label:     "Liste des classes",
			Group:     "Scolarité",
			Filename:  "classes",
			SheetName: "Classes",
			Columns: []Field{
				{Field: "code", Header: "Code", Type: FieldText, Required: true, Rules: "max=32"},
				{Field: "nom", Header: "Nom", Type: FieldText, Required: true},
				{Field: "niveau", Header: "Niveau", Type: FieldText, Filter: grid.FilterSelect, Options: []string{"L1", "L2", "L3", "M1", "M2"}},
				{Field: "filiere", Header: "Filière", Type: FieldText, Filter: grid.FilterText},
				{Field: "annee", Header: "Année académique", Type: FieldText},
				{Field: "effectif", Header: "Effectif", Type: FieldNumber, Rules: "gte=0"},
			},
		},
		{
			Kind:      Evaluations,
			Label:     "Liste des évaluations",
			Group:     "Évaluations",
			Filename:  "evaluations",
			SheetName: "Évaluations",
			Columns: []Field{
				{Field: "code", Header: "Code", Type: FieldText, Required: true, Rules: "max=32"},
				{Field: "intitule", Header: "Intitulé", Type: FieldText, Required: true},
				{Field: "matiere", Header: "Matière", Type: FieldText, Required: true, Filter: grid.FilterText},
				{Field: "classe", Header: "Classe", Type: FieldText, Filter: grid.FilterText},
				{Field: "type", Header: "Type", Type: FieldText, Rules: "oneof=Devoir Examen TP Projet", Filter: grid.FilterSelect, Options: []string{"Devoir", "Examen", "TP", "Projet"}},
				{Field: "date", Header: "Date", Type: FieldDate, Required: true, Filter: grid.FilterDate},
				{Field: "coefficient", Header: "Coefficient", Type: FieldNumber, Rules: "gt=0"},
				{Field: "bareme", Header: "Barème", Type: FieldNumber, Rules: "gt=0"},
			},
		},
	}
}
