package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/acadflow/acadflow/internal/record"
)

// Memory is a Store held in process memory. It is used when no database
// is configured and in tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]record.Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]record.Record)}
}

func (m *Memory) List(ctx context.Context, kind string) ([]record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	src := m.data[kind]
	out := make([]record.Record, len(src))
	for i, rec := range src {
		out[i] = rec.Clone()
	}
	return out, nil
}

func (m *Memory) Append(ctx context.Context, kind string, recs []record.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := make(map[string]bool, len(m.data[kind]))
	for _, rec := range m.data[kind] {
		existing[record.Text(rec[IDField])] = true
	}

	added := make([]record.Record, 0, len(recs))
	for _, rec := range recs {
		stored, id := ensureID(rec)
		if existing[id] {
			return 0, fmt.Errorf("append %s: duplicate id %s", kind, id)
		}
		existing[id] = true
		added = append(added, stored)
	}
	m.data[kind] = append(m.data[kind], added...)
	return len(added), nil
}

func (m *Memory) Delete(ctx context.Context, kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.data[kind]
	i := slices.IndexFunc(recs, func(rec record.Record) bool { return record.Text(rec[IDField]) == id })
	if i < 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, kind, id)
	}
	m.data[kind] = slices.Delete(recs, i, i+1)
	return nil
}

func (m *Memory) Reset(ctx context.Context, kind string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, kind)
	return nil
}
