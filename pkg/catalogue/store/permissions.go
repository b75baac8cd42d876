package store

import (
	"context"

	"github.com/permflow/engine/pkg/catalogue/models"
)

func (s *GORMStore) CreatePermission(ctx context.Context, p *models.FolderGroupPermission) (string, error) {
	return createWithID(s.db, ctx, p, func(p *models.FolderGroupPermission, id string) { p.ID = id }, p.ID, models.ErrDuplicatePermission)
}

func (s *GORMStore) GetPermission(ctx context.Context, folderID, groupID string, mode models.PermissionMode) (*models.FolderGroupPermission, error) {
	var p models.FolderGroupPermission
	err := s.db.WithContext(ctx).
		Where("folder_id = ? AND group_id = ? AND mode = ?", folderID, groupID, mode).
		First(&p).Error
	if err != nil {
		return nil, convertNotFoundError(err, models.ErrPermissionNotFound)
	}
	return &p, nil
}

func (s *GORMStore) ListPermissionsByFolder(ctx context.Context, folderID string) ([]*models.FolderGroupPermission, error) {
	return listAll[models.FolderGroupPermission](s.db, ctx, "", []string{"Group"}, "folder_id = ?", folderID)
}

func (s *GORMStore) ListActivePermissionsByFolderAndMode(ctx context.Context, folderID string, mode models.PermissionMode) ([]*models.FolderGroupPermission, error) {
	return listAll[models.FolderGroupPermission](s.db, ctx, "", []string{"Group"},
		"folder_id = ? AND mode = ? AND active = ? AND deletion_in_progress = ?", folderID, mode, true, false)
}

func (s *GORMStore) UpdatePermission(ctx context.Context, p *models.FolderGroupPermission) error {
	return updateFull(s.db, ctx, p.ID, p, models.ErrPermissionNotFound)
}

func (s *GORMStore) DeletePermission(ctx context.Context, id string) error {
	return deleteByField[models.FolderGroupPermission](s.db, ctx, "id", id)
}
