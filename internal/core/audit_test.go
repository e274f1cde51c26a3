package core

import (
	"context"
	"testing"
	"time"
)

func TestAuditLog(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	log := NewAuditLog(3, func() time.Time { return now })
	ctx := WithClient(context.Background(), Client{UserAgent: "curl/8"})

	for i, kind := range []string{"grades", "students", "grades", "grades"} {
		now = now.Add(time.Hour)
		e := log.Record(ctx, AuditEntry{Action: ActionExport, Kind: kind, RowsAffected: i})
		if e.ID == "" || e.UserAgent != "curl/8" || e.Severity != SeverityMedium {
			t.Fatalf("Record() = %+v", e)
		}
	}

	all := log.Recent("", 0)
	if len(all) != 3 {
		t.Fatalf("capacity not enforced: %d entries", len(all))
	}
	if all[0].RowsAffected != 3 || all[2].RowsAffected != 1 {
		t.Errorf("Recent() order = %+v", all)
	}
	if got := log.Recent("grades", 1); len(got) != 1 || got[0].RowsAffected != 3 {
		t.Errorf("Recent(grades, 1) = %+v", got)
	}

	if n := log.Prune(all[1].CreatedAt); n != 1 {
		t.Errorf("Prune() = %d, want 1", n)
	}
	if n := log.Prune(now.Add(time.Hour)); n != 2 {
		t.Errorf("Prune() = %d, want 2", n)
	}
	if got := log.Recent("", 0); len(got) != 0 {
		t.Errorf("after Prune() = %+v", got)
	}
}

func TestDetermineSeverity(t *testing.T) {
	tests := []struct {
		action AuditAction
		want   AuditSeverity
	}{
		{ActionImport, SeverityHigh},
		{ActionRowDelete, SeverityHigh},
		{ActionReset, SeverityCritical},
		{ActionTemplate, SeverityLow},
		{ActionExport, SeverityMedium},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			if got := determineSeverity(tt.action); got != tt.want {
				t.Errorf("determineSeverity(%s) = %s, want %s", tt.action, got, tt.want)
			}
		})
	}
}
