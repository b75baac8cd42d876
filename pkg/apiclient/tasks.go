package apiclient

import "github.com/permflow/engine/pkg/catalogue/models"

// GetTask fetches a single task by ID.
func (c *Client) GetTask(id string) (*models.Task, error) {
	return getResource[models.Task](c, resourcePath("/api/v1/tasks/%s", id))
}

// CancelTask cancels a pending or retry-scheduled task.
func (c *Client) CancelTask(id string) (*models.Task, error) {
	return createResource[models.Task](c, resourcePath("/api/v1/tasks/%s/cancel", id), nil)
}
