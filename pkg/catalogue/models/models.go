// Package models defines the persisted entities of the access-request
// workflow engine: the directory-service catalogue (User, Group,
// UserGroupMembership), the folder/permission graph (Folder,
// FolderGroupPermission), the request/task pipeline (PermissionRequest,
// Task), and the append-only/dedup side tables (AuditEvent,
// AdminNotification).
package models

// AllModels returns every GORM model for auto-migration. Order matters for
// SQLite's foreign-key creation but not for Postgres.
func AllModels() []any {
	return []any{
		&User{},
		&Group{},
		&UserGroupMembership{},
		&Folder{},
		&FolderOwner{},
		&FolderValidator{},
		&FolderGroupPermission{},
		&PermissionRequest{},
		&Task{},
		&AuditEvent{},
		&AdminNotification{},
	}
}
