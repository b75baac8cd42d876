package store

import (
	"context"

	"github.com/permflow/engine/pkg/catalogue/models"
)

// RecordEvent inserts e in its own transaction, independent of whatever
// transaction the triggering operation ran in, so an audit write never
// rolls back with the business change it describes, and never blocks it
// either (§4.8, C8).
func (s *GORMStore) RecordEvent(ctx context.Context, e *models.AuditEvent) error {
	_, err := createWithID(s.db, ctx, e, func(e *models.AuditEvent, id string) { e.ID = id }, e.ID, nil)
	return err
}

func (s *GORMStore) ListEventsByResource(ctx context.Context, resourceType, resourceID string) ([]*models.AuditEvent, error) {
	return listAll[models.AuditEvent](s.db, ctx, "occurred_at DESC", nil,
		"resource_type = ? AND resource_id = ?", resourceType, resourceID)
}
