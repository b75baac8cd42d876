package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// getByField loads the single row of T whose column matches value, applying
// preloads and translating gorm.ErrRecordNotFound into notFoundErr.
func getByField[T any](db *gorm.DB, ctx context.Context, field string, value any, notFoundErr error, preloads ...string) (*T, error) {
	var entity T
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Where(field+" = ?", value).First(&entity).Error; err != nil {
		return nil, convertNotFoundError(err, notFoundErr)
	}
	return &entity, nil
}

// listAll loads every row of T matching the given conditions, in no
// particular order beyond what the caller supplies via order.
func listAll[T any](db *gorm.DB, ctx context.Context, order string, preloads []string, conds ...any) ([]*T, error) {
	var entities []*T
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if order != "" {
		q = q.Order(order)
	}
	if len(conds) > 0 {
		q = q.Where(conds[0], conds[1:]...)
	}
	if err := q.Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// createWithID assigns a new UUID to entity (unless currentID is already
// set) via idSetter, inserts it, and translates a unique-constraint
// violation into dupErr.
func createWithID[T any](db *gorm.DB, ctx context.Context, entity *T, idSetter func(*T, string), currentID string, dupErr error) (string, error) {
	id := currentID
	if id == "" {
		id = uuid.NewString()
		idSetter(entity, id)
	}
	if err := db.WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueConstraintError(err) {
			return "", dupErr
		}
		return "", err
	}
	return id, nil
}

// deleteByField deletes every row of T whose column matches value. Deleting
// zero rows is not an error: callers that need idempotent deletes rely on
// this passthrough rather than checking RowsAffected themselves.
func deleteByField[T any](db *gorm.DB, ctx context.Context, field string, value any) error {
	var entity T
	return db.WithContext(ctx).Where(field+" = ?", value).Delete(&entity).Error
}

// updateFull overwrites every column of the row matching id with entity's
// current field values, including zero values — plain GORM Updates(struct)
// silently skips zero fields, which would make clearing a value back to its
// zero state impossible. Returns notFoundErr if no row matched.
func updateFull[T any](db *gorm.DB, ctx context.Context, id string, entity *T, notFoundErr error) error {
	res := db.WithContext(ctx).Model(entity).Where("id = ?", id).Select("*").Updates(entity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFoundErr
	}
	return nil
}
