package models

import "time"

// PermissionMode is the access mode granted by a FolderGroupPermission.
type PermissionMode string

const (
	ModeRead  PermissionMode = "read"
	ModeWrite PermissionMode = "write"
)

// IsValid reports whether m is one of the two supported modes.
func (m PermissionMode) IsValid() bool {
	return m == ModeRead || m == ModeWrite
}

// Code returns the CSV idModo code for the mode (§4.1/§6): 1 for read, 2 for write.
func (m PermissionMode) Code() int {
	if m == ModeWrite {
		return 2
	}
	return 1
}

// Folder is a managed filesystem path with an owner/validator relation (§3).
// Owners are always authorised to validate; Validators add to, never
// replace, that set — enforced by requests.CanValidate, not by storage shape.
type Folder struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Path        string    `gorm:"uniqueIndex;not null;size:1024" json:"path"`
	Name        string    `gorm:"size:255" json:"name"`
	Description string    `gorm:"size:1024" json:"description,omitempty"`
	Active      bool      `gorm:"default:true" json:"active"`
	CreatedBy   string    `gorm:"size:36" json:"created_by,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Owners     []FolderOwner     `gorm:"foreignKey:FolderID" json:"owners,omitempty"`
	Validators []FolderValidator `gorm:"foreignKey:FolderID" json:"validators,omitempty"`
}

func (Folder) TableName() string { return "folders" }

// FolderOwner is an ordered owner of a Folder. Owners may always validate
// requests against their folder.
type FolderOwner struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	FolderID string `gorm:"not null;size:36;uniqueIndex:idx_folder_owner" json:"folder_id"`
	UserID   string `gorm:"not null;size:36;uniqueIndex:idx_folder_owner" json:"user_id"`
	Position int    `gorm:"not null;default:0" json:"position"`
}

func (FolderOwner) TableName() string { return "folder_owners" }

// FolderValidator is an explicit validator of a Folder, additive to the
// owner set (§3, §4.7 "who-may-validate").
type FolderValidator struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	FolderID string `gorm:"not null;size:36;uniqueIndex:idx_folder_validator" json:"folder_id"`
	UserID   string `gorm:"not null;size:36;uniqueIndex:idx_folder_validator" json:"user_id"`
	Position int    `gorm:"not null;default:0" json:"position"`
}

func (FolderValidator) TableName() string { return "folder_validators" }

// FolderGroupPermission is the (folder, group, mode) linkage that drives ACL
// materialisation downstream (§3). DeletionInProgress is stored and
// returned in JSON; no code path in this module sets it, so it stays false.
type FolderGroupPermission struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	FolderID           string    `gorm:"not null;size:36;uniqueIndex:idx_folder_group_mode" json:"folder_id"`
	GroupID            string    `gorm:"not null;size:36;uniqueIndex:idx_folder_group_mode" json:"group_id"`
	Mode               PermissionMode `gorm:"not null;size:10;uniqueIndex:idx_folder_group_mode" json:"mode"`
	Active             bool      `gorm:"default:true" json:"active"`
	DeletionInProgress bool      `gorm:"default:false" json:"deletion_in_progress"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Folder Folder `gorm:"foreignKey:FolderID" json:"-"`
	Group  Group  `gorm:"foreignKey:GroupID" json:"-"`
}

func (FolderGroupPermission) TableName() string { return "folder_group_permissions" }
