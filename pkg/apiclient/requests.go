package apiclient

import "github.com/permflow/engine/pkg/catalogue/models"

// SubmitRequestInput is the body for submitting a new permission request.
type SubmitRequestInput struct {
	RequesterID  string                `json:"requester_id"`
	FolderID     string                `json:"folder_id"`
	Mode         models.PermissionMode `json:"mode"`
	BusinessNeed string                `json:"business_need"`
}

// DecisionInput is the body for approve/reject/cancel/revoke decisions.
type DecisionInput struct {
	ActorID string `json:"actor_id"`
	Comment string `json:"comment,omitempty"`
}

// SubmitRequest submits a new permission request.
func (c *Client) SubmitRequest(in SubmitRequestInput) (*models.PermissionRequest, error) {
	return createResource[models.PermissionRequest](c, "/api/v1/requests/", in)
}

// GetRequest fetches a single permission request by ID.
func (c *Client) GetRequest(id string) (*models.PermissionRequest, error) {
	return getResource[models.PermissionRequest](c, resourcePath("/api/v1/requests/%s", id))
}

// ListRequestsByStatus lists permission requests in the given status. An
// empty status defaults to the server's own default (pending).
func (c *Client) ListRequestsByStatus(status models.RequestStatus) ([]models.PermissionRequest, error) {
	path := "/api/v1/requests/"
	if status != "" {
		path = resourcePath("/api/v1/requests/?status=%s", status)
	}
	return listResources[models.PermissionRequest](c, path)
}

// ApproveRequest approves a pending request.
func (c *Client) ApproveRequest(id string, in DecisionInput) (*models.PermissionRequest, error) {
	return createResource[models.PermissionRequest](c, resourcePath("/api/v1/requests/%s/approve", id), in)
}

// RejectRequest rejects a pending request.
func (c *Client) RejectRequest(id string, in DecisionInput) (*models.PermissionRequest, error) {
	return createResource[models.PermissionRequest](c, resourcePath("/api/v1/requests/%s/reject", id), in)
}

// CancelRequest cancels a pending request.
func (c *Client) CancelRequest(id string, in DecisionInput) (*models.PermissionRequest, error) {
	return createResource[models.PermissionRequest](c, resourcePath("/api/v1/requests/%s/cancel", id), in)
}

// RevokeRequest revokes a previously approved request.
func (c *Client) RevokeRequest(id string, in DecisionInput) (*models.PermissionRequest, error) {
	return createResource[models.PermissionRequest](c, resourcePath("/api/v1/requests/%s/revoke", id), in)
}

// ListRequestTasks lists the task plan installed for a request.
func (c *Client) ListRequestTasks(requestID string) ([]models.Task, error) {
	return listResources[models.Task](c, resourcePath("/api/v1/requests/%s/tasks", requestID))
}
