package database

import (
	"context"
	"testing"
	"time"

	"trust-reconciliation-go/internal/models"
)

func TestRecordAuditEvent(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	err := service.Record(context.Background(), models.AuditEvent{
		Type:    "reconciliation.run",
		Outcome: "completed",
		Payload: map[string]string{
			"as_of":       "2026-09-01",
			"discrepancy": "0.00",
		},
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	var count int
	if err := service.db.QueryRow(`SELECT COUNT(*) FROM audit_events`).Scan(&count); err != nil {
		t.Fatalf("Failed to count audit events: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 audit event, got %d", count)
	}
}

func TestRecordAuditEvent_EmptyPayload(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	err := service.Record(context.Background(), models.AuditEvent{
		Type:    "reconciliation.run",
		Outcome: "aborted",
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
}
