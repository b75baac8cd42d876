package store

import (
	"context"

	"github.com/permflow/engine/pkg/catalogue/models"
)

func (s *GORMStore) CreateUser(ctx context.Context, u *models.User) (string, error) {
	return createWithID(s.db, ctx, u, func(u *models.User, id string) { u.ID = id }, u.ID, models.ErrDuplicateUser)
}

func (s *GORMStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return getByField[models.User](s.db, ctx, "id", id, models.ErrUserNotFound)
}

func (s *GORMStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return getByField[models.User](s.db, ctx, "username", username, models.ErrUserNotFound)
}

func (s *GORMStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	return listAll[models.User](s.db, ctx, "username", nil)
}

func (s *GORMStore) UpdateUser(ctx context.Context, u *models.User) error {
	return updateFull(s.db, ctx, u.ID, u, models.ErrUserNotFound)
}

func (s *GORMStore) DeleteUser(ctx context.Context, id string) error {
	return deleteByField[models.User](s.db, ctx, "id", id)
}
