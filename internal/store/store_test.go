package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/acadflow/acadflow/internal/config"
	"github.com/acadflow/acadflow/internal/record"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	n, err := m.Append(ctx, "students", []record.Record{
		{"nom": "Dupont"},
		{"id": "fixed", "nom": "Martin"},
	})
	if err != nil || n != 2 {
		t.Fatalf("Append() = %d, %v", n, err)
	}

	recs, err := m.List(ctx, "students")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0]["nom"] != "Dupont" || recs[1]["id"] != "fixed" {
		t.Fatalf("List() = %v", recs)
	}
	if record.Text(recs[0]["id"]) == "" {
		t.Error("Append() did not assign an id")
	}

	recs[0]["nom"] = "changed"
	again, _ := m.List(ctx, "students")
	if again[0]["nom"] != "Dupont" {
		t.Error("List() exposes stored records")
	}

	if _, err := m.Append(ctx, "students", []record.Record{{"id": "fixed"}}); err == nil {
		t.Error("Append() accepted a duplicate id")
	}

	if err := m.Delete(ctx, "students", "fixed"); err != nil {
		t.Fatalf("Delete() = %v", err)
	}
	if err := m.Delete(ctx, "students", "fixed"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice = %v, want ErrNotFound", err)
	}

	if other, _ := m.List(ctx, "grades"); len(other) != 0 {
		t.Errorf("kinds are not isolated: %v", other)
	}

	if err := m.Reset(ctx, "students"); err != nil {
		t.Fatal(err)
	}
	if recs, _ := m.List(ctx, "students"); len(recs) != 0 {
		t.Errorf("List() after Reset() = %v", recs)
	}
}

func TestMemoryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMemory().List(ctx, "students"); !errors.Is(err, context.Canceled) {
		t.Errorf("List() = %v, want context.Canceled", err)
	}
}

func TestRecordCodec(t *testing.T) {
	in := record.Record{
		"nom":            "Dupont",
		"note":           15.5,
		"actif":          true,
		"date_naissance": time.Date(2003, 5, 14, 0, 0, 0, 0, time.UTC),
		"classe":         record.Record{"nom": "L1", "rentree": time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)},
		"code":           "2024-03-12",
	}

	data, err := encodeRecord(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := decodeRecord(data)
	if err != nil {
		t.Fatal(err)
	}

	if out["nom"] != "Dupont" || out["note"] != 15.5 || out["actif"] != true {
		t.Errorf("decoded = %#v", out)
	}
	if d, ok := out["date_naissance"].(time.Time); !ok || !d.Equal(in["date_naissance"].(time.Time)) {
		t.Errorf("date_naissance = %#v", out["date_naissance"])
	}
	nested, ok := out["classe"].(record.Record)
	if !ok || nested["nom"] != "L1" {
		t.Fatalf("classe = %#v", out["classe"])
	}
	if _, ok := nested["rentree"].(time.Time); !ok {
		t.Errorf("nested date = %#v", nested["rentree"])
	}
	if out["code"] != "2024-03-12" {
		t.Errorf("date-like text = %#v, want the string kept", out["code"])
	}
}

func TestOpenWithoutDatabase(t *testing.T) {
	st, closeFn, err := Open(context.Background(), config.DatabaseConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if _, ok := st.(*Memory); !ok {
		t.Errorf("Open() = %T, want *Memory", st)
	}
}

func TestOpenInvalidURL(t *testing.T) {
	if _, _, err := Open(context.Background(), config.DatabaseConfig{URL: "postgres://%zz"}); err == nil {
		t.Error("Open() accepted a malformed URL")
	}
}
