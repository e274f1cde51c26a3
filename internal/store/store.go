// Package store keeps the academic records shown in the grids and filled by
// imports. Records are grouped by kind ("students", "grades", ...) and keep
// their insertion order.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/acadflow/acadflow/internal/record"
)

// ErrNotFound is returned when a record id does not exist for a kind.
var ErrNotFound = errors.New("record not found")

// Store is the record source behind the grids.
type Store interface {
	// List returns every record of a kind in insertion order.
	List(ctx context.Context, kind string) ([]record.Record, error)
	// Append stores records and returns how many were added. Records
	// without an "id" get a new one.
	Append(ctx context.Context, kind string, recs []record.Record) (int, error)
	// Delete removes one record.
	Delete(ctx context.Context, kind, id string) error
	// Reset removes every record of a kind.
	Reset(ctx context.Context, kind string) error
}

// IDField is the record field holding the identifier.
const IDField = "id"

func ensureID(rec record.Record) (record.Record, string) {
	out := rec.Clone()
	id := record.Text(out[IDField])
	if id == "" {
		id = uuid.NewString()
		out[IDField] = id
	}
	return out, id
}
