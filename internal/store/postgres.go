package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/acadflow/acadflow/internal/record"
)

const schema = `
CREATE TABLE IF NOT EXISTS academic_records (
	seq        BIGSERIAL PRIMARY KEY,
	id         UUID NOT NULL UNIQUE,
	kind       TEXT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS academic_records_kind_idx ON academic_records (kind, seq);
`

// Postgres is a Store persisting records as JSONB rows in PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an open pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the records table when missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, kind string) ([]record.Record, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id::text, data FROM academic_records WHERE kind = $1 ORDER BY seq`, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer rows.Close()

	var out []record.Record
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", kind, id, err)
		}
		rec[IDField] = id
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return out, nil
}

// Append inserts all records in one transaction using the COPY protocol.
func (p *Postgres) Append(ctx context.Context, kind string, recs []record.Record) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		stored, idText := ensureID(rec)
		id, err := uuid.Parse(idText)
		if err != nil {
			id = uuid.New()
		}
		delete(stored, IDField)

		data, err := encodeRecord(stored)
		if err != nil {
			return 0, fmt.Errorf("encode %s: %w", kind, err)
		}
		rows = append(rows, []any{id, kind, data})
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"academic_records"},
		[]string{"id", "kind", "data"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("copy %s: %w", kind, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return int(n), nil
}

func (p *Postgres) Delete(ctx context.Context, kind, id string) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM academic_records WHERE kind = $1 AND id::text = $2`, kind, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", kind, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, kind, id)
	}
	return nil
}

func (p *Postgres) Reset(ctx context.Context, kind string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM academic_records WHERE kind = $1`, kind); err != nil {
		return fmt.Errorf("reset %s: %w", kind, err)
	}
	return nil
}

// dateTag marks a date in JSONB: {"$date": "YYYY-MM-DD"}. Plain strings are
// never read back as dates, even when they look like one.
const dateTag = "$date"

// encodeRecord writes dates as tagged YYYY-MM-DD objects so that decodeRecord
// can restore them.
func encodeRecord(rec record.Record) ([]byte, error) {
	flat := make(map[string]any, len(rec))
	for k, v := range rec {
		switch val := v.(type) {
		case time.Time:
			flat[k] = map[string]string{dateTag: val.Format(record.DateLayout)}
		case record.Record:
			nested, err := encodeRecord(val)
			if err != nil {
				return nil, err
			}
			flat[k] = json.RawMessage(nested)
		default:
			flat[k] = v
		}
	}
	return json.Marshal(flat)
}

func decodeRecord(data []byte) (record.Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return restore(raw), nil
}

func taggedDate(m map[string]any) (time.Time, bool) {
	if len(m) != 1 {
		return time.Time{}, false
	}
	s, ok := m[dateTag].(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(record.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func restore(m map[string]any) record.Record {
	rec := make(record.Record, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			if t, ok := taggedDate(val); ok {
				rec[k] = t
			} else {
				rec[k] = restore(val)
			}
		default:
			rec[k] = v
		}
	}
	return rec
}
