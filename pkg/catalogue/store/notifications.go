package store

import (
	"context"
	"time"

	"github.com/permflow/engine/pkg/catalogue/models"
)

func (s *GORMStore) GetNotificationByFingerprint(ctx context.Context, fingerprint string) (*models.AdminNotification, error) {
	return getByField[models.AdminNotification](s.db, ctx, "fingerprint", fingerprint, models.ErrNotificationNotFound)
}

func (s *GORMStore) CreateNotification(ctx context.Context, n *models.AdminNotification) (string, error) {
	return createWithID(s.db, ctx, n, func(n *models.AdminNotification, id string) { n.ID = id }, n.ID, nil)
}

func (s *GORMStore) UpdateNotification(ctx context.Context, n *models.AdminNotification) error {
	return updateFull(s.db, ctx, n.ID, n, models.ErrNotificationNotFound)
}

func (s *GORMStore) ListUnresolved(ctx context.Context) ([]*models.AdminNotification, error) {
	return listAll[models.AdminNotification](s.db, ctx, "last_occurrence DESC", nil, "resolved = ?", false)
}

func (s *GORMStore) PurgeResolvedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("resolved = ? AND resolved_at < ?", true, cutoff).
		Delete(&models.AdminNotification{})
	return res.RowsAffected, res.Error
}
