package apiclient

import "github.com/permflow/engine/pkg/catalogue/models"

// ListUnresolvedNotifications lists all unresolved admin notifications.
func (c *Client) ListUnresolvedNotifications() ([]models.AdminNotification, error) {
	return listResources[models.AdminNotification](c, "/api/v1/notifications/")
}

// ResolveNotification marks a notification resolved by its fingerprint.
func (c *Client) ResolveNotification(fingerprint string) (*models.AdminNotification, error) {
	return createResource[models.AdminNotification](c, resourcePath("/api/v1/notifications/%s/resolve", fingerprint), nil)
}
