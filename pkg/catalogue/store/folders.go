package store

import (
	"context"

	"github.com/permflow/engine/pkg/catalogue/models"
)

func (s *GORMStore) CreateFolder(ctx context.Context, f *models.Folder) (string, error) {
	return createWithID(s.db, ctx, f, func(f *models.Folder, id string) { f.ID = id }, f.ID, models.ErrDuplicateFolder)
}

func (s *GORMStore) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	return getByField[models.Folder](s.db, ctx, "id", id, models.ErrFolderNotFound, "Owners", "Validators")
}

func (s *GORMStore) GetFolderByPath(ctx context.Context, path string) (*models.Folder, error) {
	return getByField[models.Folder](s.db, ctx, "path", path, models.ErrFolderNotFound, "Owners", "Validators")
}

func (s *GORMStore) ListFolders(ctx context.Context) ([]*models.Folder, error) {
	return listAll[models.Folder](s.db, ctx, "path", []string{"Owners", "Validators"})
}

func (s *GORMStore) UpdateFolder(ctx context.Context, f *models.Folder) error {
	return updateFull(s.db, ctx, f.ID, f, models.ErrFolderNotFound)
}

func (s *GORMStore) DeleteFolder(ctx context.Context, id string) error {
	return deleteByField[models.Folder](s.db, ctx, "id", id)
}

func (s *GORMStore) AddFolderOwner(ctx context.Context, folderID, userID string, position int) error {
	owner := models.FolderOwner{FolderID: folderID, UserID: userID, Position: position}
	_, err := createWithID(s.db, ctx, &owner, func(o *models.FolderOwner, id string) { o.ID = id }, "", nil)
	return err
}

func (s *GORMStore) RemoveFolderOwner(ctx context.Context, folderID, userID string) error {
	return s.db.WithContext(ctx).
		Where("folder_id = ? AND user_id = ?", folderID, userID).
		Delete(&models.FolderOwner{}).Error
}

func (s *GORMStore) ListFolderOwners(ctx context.Context, folderID string) ([]*models.FolderOwner, error) {
	return listAll[models.FolderOwner](s.db, ctx, "position", nil, "folder_id = ?", folderID)
}

func (s *GORMStore) AddFolderValidator(ctx context.Context, folderID, userID string, position int) error {
	validator := models.FolderValidator{FolderID: folderID, UserID: userID, Position: position}
	_, err := createWithID(s.db, ctx, &validator, func(v *models.FolderValidator, id string) { v.ID = id }, "", nil)
	return err
}

func (s *GORMStore) RemoveFolderValidator(ctx context.Context, folderID, userID string) error {
	return s.db.WithContext(ctx).
		Where("folder_id = ? AND user_id = ?", folderID, userID).
		Delete(&models.FolderValidator{}).Error
}

func (s *GORMStore) ListFolderValidators(ctx context.Context, folderID string) ([]*models.FolderValidator, error) {
	return listAll[models.FolderValidator](s.db, ctx, "position", nil, "folder_id = ?", folderID)
}
