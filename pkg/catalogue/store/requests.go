package store

import (
	"context"

	"github.com/permflow/engine/pkg/catalogue/models"
)

func (s *GORMStore) CreateRequest(ctx context.Context, r *models.PermissionRequest) (string, error) {
	return createWithID(s.db, ctx, r, func(r *models.PermissionRequest, id string) { r.ID = id }, r.ID, nil)
}

func (s *GORMStore) GetRequest(ctx context.Context, id string) (*models.PermissionRequest, error) {
	return getByField[models.PermissionRequest](s.db, ctx, "id", id, models.ErrRequestNotFound, "Requester", "Folder")
}

func (s *GORMStore) ListRequestsByStatus(ctx context.Context, status models.RequestStatus) ([]*models.PermissionRequest, error) {
	return listAll[models.PermissionRequest](s.db, ctx, "created_at", []string{"Requester", "Folder"}, "status = ?", status)
}

// FindActiveByTriple returns the most recent non-terminal request matching
// the triple, or ErrRequestNotFound if none exists (§4.7 classification).
func (s *GORMStore) FindActiveByTriple(ctx context.Context, t models.Triple) (*models.PermissionRequest, error) {
	var r models.PermissionRequest
	err := s.db.WithContext(ctx).
		Where("requester_id = ? AND folder_id = ? AND mode = ? AND status IN ?",
			t.RequesterID, t.FolderID, t.Mode,
			[]models.RequestStatus{models.RequestPending, models.RequestApproved}).
		Order("created_at DESC").
		First(&r).Error
	if err != nil {
		return nil, convertNotFoundError(err, models.ErrRequestNotFound)
	}
	return &r, nil
}

// FindLatestByTriple returns the most recently created request matching the
// triple regardless of status, used to detect a retry of a previously
// failed request (§4.7).
func (s *GORMStore) FindLatestByTriple(ctx context.Context, t models.Triple) (*models.PermissionRequest, error) {
	var r models.PermissionRequest
	err := s.db.WithContext(ctx).
		Where("requester_id = ? AND folder_id = ? AND mode = ?", t.RequesterID, t.FolderID, t.Mode).
		Order("created_at DESC").
		First(&r).Error
	if err != nil {
		return nil, convertNotFoundError(err, models.ErrRequestNotFound)
	}
	return &r, nil
}

func (s *GORMStore) UpdateRequest(ctx context.Context, r *models.PermissionRequest) error {
	return updateFull(s.db, ctx, r.ID, r, models.ErrRequestNotFound)
}
