package models

import "time"

// User mirrors a directory-service principal as last observed by catalogue
// sync (§3, §4.9). It is not a source of truth for group membership — C3
// is — but it is the anchor for requests, audit actors, and notifications.
type User struct {
	ID                 string     `gorm:"primaryKey;size:36" json:"id"`
	Username           string     `gorm:"uniqueIndex;not null;size:255" json:"username"`
	EmployeeID         string     `gorm:"size:64" json:"employee_id,omitempty"`
	Email              string     `gorm:"uniqueIndex;size:255" json:"email"`
	DisplayName        string     `gorm:"size:255" json:"display_name"`
	Department         string     `gorm:"size:255" json:"department,omitempty"`
	DistinguishedName  string     `gorm:"size:512" json:"distinguished_name,omitempty"`
	Active             bool       `gorm:"default:true" json:"active"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
	LastSynced         *time.Time `json:"last_synced,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// DisplayNameOrUsername returns DisplayName, falling back to Username.
func (u *User) DisplayNameOrUsername() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
