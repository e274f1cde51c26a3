package record

import (
	"testing"
	"time"
)

func TestGet(t *testing.T) {
	rec := Record{
		"nom":        "Dupont",
		"classe":     Record{"nom": "L1 Info", "niveau": map[string]any{"code": "L1"}},
		"a.b":        "literal",
		"note":       15.5,
		"inscrit":    true,
		"nullable":   nil,
		"classeMeta": "x",
	}

	tests := []struct {
		name   string
		key    string
		want   any
		wantOK bool
	}{
		{"plain key", "nom", "Dupont", true},
		{"nested record", "classe.nom", "L1 Info", true},
		{"nested plain map", "classe.niveau.code", "L1", true},
		{"literal dotted key wins", "a.b", "literal", true},
		{"missing key", "prenom", nil, false},
		{"missing nested", "classe.code", nil, false},
		{"path through scalar", "nom.first", nil, false},
		{"explicit nil", "nullable", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Get(rec, tt.key)
			if ok != tt.wantOK {
				t.Fatalf("Get(%q) ok = %v, want %v", tt.key, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Get(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"integer float", 12.0, "12"},
		{"decimal float", 15.5, "15.5"},
		{"int", 7, "7"},
		{"bool", true, "true"},
		{"date", time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), "2024-03-12"},
		{"zero date", time.Time{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("Text(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"numbers numeric not lexical", 9.0, 10.0, -1},
		{"mixed numeric kinds", 3, 2.5, 1},
		{"equal numbers", 4, 4.0, 0},
		{"strings", "Dupont", "Martin", -1},
		{"dates", d2, d1, 1},
		{"bools", false, true, -1},
		{"nil first", nil, "a", -1},
		{"nil last arg", "a", nil, 1},
		{"both nil", nil, nil, 0},
		{"mixed kinds by text", "10", 9.0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestToBool(t *testing.T) {
	tests := []struct {
		in     any
		want   bool
		wantOK bool
	}{
		{true, true, true},
		{"Oui", true, true},
		{"NON", false, true},
		{"1", true, true},
		{0.0, false, true},
		{"peut-être", false, false},
		{nil, false, false},
	}

	for _, tt := range tests {
		got, ok := ToBool(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ToBool(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
