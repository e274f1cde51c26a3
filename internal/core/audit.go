package core

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditAction is the kind of operation recorded in the journal.
type AuditAction string

const (
	ActionImport    AuditAction = "import"
	ActionExport    AuditAction = "export"
	ActionTemplate  AuditAction = "template"
	ActionRowDelete AuditAction = "row_delete"
	ActionReset     AuditAction = "reset"
)

// AuditSeverity ranks entries for display.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// AuditEntry is one journal line.
type AuditEntry struct {
	ID           string        `json:"id"`
	Action       AuditAction   `json:"action"`
	Severity     AuditSeverity `json:"severity"`
	Kind         string        `json:"kind"`
	File         string        `json:"file,omitempty"`
	RowKey       string        `json:"rowKey,omitempty"`
	RowsAffected int           `json:"rowsAffected"`
	ErrorRows    int           `json:"errorRows,omitempty"`
	IPAddress    string        `json:"ipAddress,omitempty"`
	UserAgent    string        `json:"userAgent,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionImport, ActionRowDelete:
		return SeverityHigh
	case ActionReset:
		return SeverityCritical
	case ActionTemplate:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// DefaultAuditCapacity bounds the journal when no capacity is given.
const DefaultAuditCapacity = 500

// AuditLog is a bounded in-memory journal, newest entries last.
type AuditLog struct {
	mu       sync.RWMutex
	entries  []AuditEntry
	capacity int
	now      func() time.Time
}

// NewAuditLog keeps at most capacity entries, dropping the oldest.
func NewAuditLog(capacity int, now func() time.Time) *AuditLog {
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	if now == nil {
		now = time.Now
	}
	return &AuditLog{capacity: capacity, now: now}
}

// Record stamps e with an id, severity, time and the client recorded in ctx.
func (a *AuditLog) Record(ctx context.Context, e AuditEntry) AuditEntry {
	e.ID = uuid.NewString()
	e.Severity = determineSeverity(e.Action)
	e.CreatedAt = a.now()
	client := ClientFrom(ctx)
	if e.IPAddress == "" {
		e.IPAddress = client.IP
	}
	if e.UserAgent == "" {
		e.UserAgent = client.UserAgent
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	if over := len(a.entries) - a.capacity; over > 0 {
		a.entries = slices.Delete(a.entries, 0, over)
	}
	return e
}

// Recent returns up to limit entries, newest first. An empty kind matches all.
func (a *AuditLog) Recent(kind string, limit int) []AuditEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := []AuditEntry{}
	for i := len(a.entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if kind == "" || a.entries[i].Kind == kind {
			out = append(out, a.entries[i])
		}
	}
	return out
}

// Prune drops entries created before cutoff and returns how many went.
func (a *AuditLog) Prune(cutoff time.Time) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := slices.IndexFunc(a.entries, func(e AuditEntry) bool { return !e.CreatedAt.Before(cutoff) })
	if i < 0 {
		i = len(a.entries)
	}
	a.entries = slices.Delete(a.entries, 0, i)
	return i
}
