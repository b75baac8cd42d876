package models

import "time"

// GroupClassification labels the directory classification of a group, used
// only for display/reporting; it does not affect the state machine.
type GroupClassification string

const (
	ClassificationStandard GroupClassification = "standard"
	ClassificationSecurity GroupClassification = "security"
	ClassificationService  GroupClassification = "service"
)

// Group mirrors a directory-service group (§3). Lifecycle mirrors User:
// created/updated during catalogue sync, marked inactive when the sync
// sweep no longer observes it in the directory.
type Group struct {
	ID                string              `gorm:"primaryKey;size:36" json:"id"`
	Name              string              `gorm:"uniqueIndex;not null;size:255" json:"name"`
	DistinguishedName string              `gorm:"uniqueIndex;not null;size:512" json:"distinguished_name"`
	Description       string              `gorm:"size:1024" json:"description,omitempty"`
	Classification    GroupClassification `gorm:"size:50;default:standard" json:"classification"`
	Active            bool                `gorm:"default:true" json:"active"`
	LastSynced        *time.Time          `json:"last_synced,omitempty"`
	CreatedAt         time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Group) TableName() string { return "groups" }

// UserGroupMembership reflects directory state at last observation (§3).
// It is a cache for display/reporting; C3's live LDAP lookup is
// decision-authoritative for verification and classification.
type UserGroupMembership struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"not null;size:36;uniqueIndex:idx_user_group" json:"user_id"`
	GroupID   string    `gorm:"not null;size:36;uniqueIndex:idx_user_group" json:"group_id"`
	Active    bool      `gorm:"default:true" json:"active"`
	GrantedBy string    `gorm:"size:36" json:"granted_by,omitempty"`
	Notes     string    `gorm:"size:1024" json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Group Group `gorm:"foreignKey:GroupID" json:"-"`
}

func (UserGroupMembership) TableName() string { return "user_group_memberships" }
