package store

import (
	"context"
	"time"

	"github.com/permflow/engine/pkg/catalogue/models"
)

// UserStore manages the synced-from-directory user catalogue (§3, C3).
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) (string, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

// GroupStore manages the synced-from-directory group catalogue (§3, C3).
type GroupStore interface {
	CreateGroup(ctx context.Context, g *models.Group) (string, error)
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	GetGroupByName(ctx context.Context, name string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)
	UpdateGroup(ctx context.Context, g *models.Group) error
	DeleteGroup(ctx context.Context, id string) error
}

// MembershipStore tracks which users belong to which groups, as last
// observed from the directory (§3, C3).
type MembershipStore interface {
	CreateMembership(ctx context.Context, m *models.UserGroupMembership) (string, error)
	ListMembershipsByGroup(ctx context.Context, groupID string) ([]*models.UserGroupMembership, error)
	ListMembershipsByUser(ctx context.Context, userID string) ([]*models.UserGroupMembership, error)
	DeleteMembership(ctx context.Context, userID, groupID string) error
}

// FolderStore manages the folder catalogue and its owners/validators (§3).
type FolderStore interface {
	CreateFolder(ctx context.Context, f *models.Folder) (string, error)
	GetFolder(ctx context.Context, id string) (*models.Folder, error)
	GetFolderByPath(ctx context.Context, path string) (*models.Folder, error)
	ListFolders(ctx context.Context) ([]*models.Folder, error)
	UpdateFolder(ctx context.Context, f *models.Folder) error
	DeleteFolder(ctx context.Context, id string) error

	AddFolderOwner(ctx context.Context, folderID, userID string, position int) error
	RemoveFolderOwner(ctx context.Context, folderID, userID string) error
	ListFolderOwners(ctx context.Context, folderID string) ([]*models.FolderOwner, error)

	AddFolderValidator(ctx context.Context, folderID, userID string, position int) error
	RemoveFolderValidator(ctx context.Context, folderID, userID string) error
	ListFolderValidators(ctx context.Context, folderID string) ([]*models.FolderValidator, error)
}

// PermissionStore manages the group-to-folder grants that a directory sync
// and the orchestrator maintain together (§3, §4.6).
type PermissionStore interface {
	CreatePermission(ctx context.Context, p *models.FolderGroupPermission) (string, error)
	GetPermission(ctx context.Context, folderID, groupID string, mode models.PermissionMode) (*models.FolderGroupPermission, error)
	ListPermissionsByFolder(ctx context.Context, folderID string) ([]*models.FolderGroupPermission, error)
	ListActivePermissionsByFolderAndMode(ctx context.Context, folderID string, mode models.PermissionMode) ([]*models.FolderGroupPermission, error)
	UpdatePermission(ctx context.Context, p *models.FolderGroupPermission) error
	DeletePermission(ctx context.Context, id string) error
}

// RequestStore manages the permission-request lifecycle (§3, C7).
type RequestStore interface {
	CreateRequest(ctx context.Context, r *models.PermissionRequest) (string, error)
	GetRequest(ctx context.Context, id string) (*models.PermissionRequest, error)
	ListRequestsByStatus(ctx context.Context, status models.RequestStatus) ([]*models.PermissionRequest, error)
	// FindActiveByTriple returns the non-terminal request, if any, matching
	// the (requester, folder, mode) triple (§4.7 classification).
	FindActiveByTriple(ctx context.Context, t models.Triple) (*models.PermissionRequest, error)
	// FindLatestByTriple returns the most recently created request matching
	// the triple regardless of status, used to detect a retry of a failed
	// request (§4.7).
	FindLatestByTriple(ctx context.Context, t models.Triple) (*models.PermissionRequest, error)
	UpdateRequest(ctx context.Context, r *models.PermissionRequest) error
}

// TaskStore implements C5: durable task persistence plus the queries the
// orchestrator (C6) needs to find ready work and resolve dependencies.
type TaskStore interface {
	CreateTask(ctx context.Context, t *models.Task) (string, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, t *models.Task) error

	// Ready returns up to limit tasks that are due for execution: status
	// pending or retry, NextExecutionTime null or in the past, and with no
	// unfinished dependency. Implementations use row-level locking so two
	// orchestrator instances never dispatch the same task twice.
	Ready(ctx context.Context, limit int) ([]*models.Task, error)

	// AwaitingDependency returns tasks blocked on DependsOnTaskID, used by
	// the orchestrator to re-check after a dependency finishes.
	AwaitingDependency(ctx context.Context, dependsOnTaskID string) ([]*models.Task, error)

	// SiblingsOf returns every task created for the same permission
	// request, used for the failure cascade (§4.6).
	SiblingsOf(ctx context.Context, permissionRequestID string) ([]*models.Task, error)

	// ListByRequest returns every task for a permission request in creation
	// order, used by the API to report progress.
	ListByRequest(ctx context.Context, permissionRequestID string) ([]*models.Task, error)

	// PurgeOlderThan deletes terminal tasks created before cutoff, used by
	// the periodic driver's retention sweep (§4.9).
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditStore implements C8: an append-only sink, never updated or deleted
// by application code.
type AuditStore interface {
	RecordEvent(ctx context.Context, e *models.AuditEvent) error
	ListEventsByResource(ctx context.Context, resourceType, resourceID string) ([]*models.AuditEvent, error)
}

// NotificationStore implements the dedup table behind C4.
type NotificationStore interface {
	GetNotificationByFingerprint(ctx context.Context, fingerprint string) (*models.AdminNotification, error)
	CreateNotification(ctx context.Context, n *models.AdminNotification) (string, error)
	UpdateNotification(ctx context.Context, n *models.AdminNotification) error
	ListUnresolved(ctx context.Context) ([]*models.AdminNotification, error)
	PurgeResolvedOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store is the full persistence surface the engine depends on. GORMStore is
// the only production implementation; tests may swap in a lighter fake
// where the interface boundary makes that worthwhile.
type Store interface {
	UserStore
	GroupStore
	MembershipStore
	FolderStore
	PermissionStore
	RequestStore
	TaskStore
	AuditStore
	NotificationStore

	Close() error
}
