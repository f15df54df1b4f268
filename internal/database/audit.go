package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trust-reconciliation-go/internal/models"

	"github.com/google/uuid"
)

// Record persists one audit event. Append-only; callers treat failures as
// warnings, never as run failures.
func (s *Service) Record(ctx context.Context, event models.AuditEvent) error {
	id := event.Id
	if id == "" {
		id = uuid.New().String()
	}
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	var payload []byte
	if event.Payload != nil {
		var err error
		payload, err = json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal audit payload: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, queryInsertAuditEvent, id, event.Type, event.Outcome, string(payload), ts)
	if err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}
