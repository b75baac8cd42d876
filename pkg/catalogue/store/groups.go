package store

import (
	"context"

	"github.com/permflow/engine/pkg/catalogue/models"
)

func (s *GORMStore) CreateGroup(ctx context.Context, g *models.Group) (string, error) {
	return createWithID(s.db, ctx, g, func(g *models.Group, id string) { g.ID = id }, g.ID, models.ErrDuplicateGroup)
}

func (s *GORMStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	return getByField[models.Group](s.db, ctx, "id", id, models.ErrGroupNotFound)
}

func (s *GORMStore) GetGroupByName(ctx context.Context, name string) (*models.Group, error) {
	return getByField[models.Group](s.db, ctx, "name", name, models.ErrGroupNotFound)
}

func (s *GORMStore) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return listAll[models.Group](s.db, ctx, "name", nil)
}

func (s *GORMStore) UpdateGroup(ctx context.Context, g *models.Group) error {
	return updateFull(s.db, ctx, g.ID, g, models.ErrGroupNotFound)
}

func (s *GORMStore) DeleteGroup(ctx context.Context, id string) error {
	return deleteByField[models.Group](s.db, ctx, "id", id)
}
