package store

import (
	"context"

	"github.com/permflow/engine/pkg/catalogue/models"
)

func (s *GORMStore) CreateMembership(ctx context.Context, m *models.UserGroupMembership) (string, error) {
	return createWithID(s.db, ctx, m, func(m *models.UserGroupMembership, id string) { m.ID = id }, m.ID, nil)
}

func (s *GORMStore) ListMembershipsByGroup(ctx context.Context, groupID string) ([]*models.UserGroupMembership, error) {
	return listAll[models.UserGroupMembership](s.db, ctx, "", []string{"User"}, "group_id = ?", groupID)
}

func (s *GORMStore) ListMembershipsByUser(ctx context.Context, userID string) ([]*models.UserGroupMembership, error) {
	return listAll[models.UserGroupMembership](s.db, ctx, "", []string{"Group"}, "user_id = ?", userID)
}

// DeleteMembership is idempotent: deleting zero rows is not an error, since
// the directory sync (C3) calls it for memberships it merely suspects are
// stale.
func (s *GORMStore) DeleteMembership(ctx context.Context, userID, groupID string) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Delete(&models.UserGroupMembership{}).Error
}
