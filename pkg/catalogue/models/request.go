package models

import "time"

// RequestStatus is the lifecycle state of a PermissionRequest (§3).
// Transitions are one-way except approved -> revoked (§3 invariants).
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
	RequestCanceled RequestStatus = "canceled"
	RequestRevoked  RequestStatus = "revoked"
	RequestFailed   RequestStatus = "failed"
)

// IsTerminal reports whether status admits no further transition except the
// single approved->revoked exception, which callers must check separately.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestRejected, RequestCanceled, RequestRevoked, RequestFailed:
		return true
	default:
		return false
	}
}

// PermissionRequest is a requester's ask for a mode on a folder (§3).
type PermissionRequest struct {
	ID                 string         `gorm:"primaryKey;size:36" json:"id"`
	RequesterID        string         `gorm:"not null;size:36;index" json:"requester_id"`
	FolderID           string         `gorm:"not null;size:36;index" json:"folder_id"`
	ValidatorID        string         `gorm:"size:36" json:"validator_id,omitempty"`
	Mode               PermissionMode `gorm:"not null;size:10" json:"mode"`
	BusinessNeed       string         `gorm:"size:4096" json:"business_need"`
	Status             RequestStatus  `gorm:"not null;size:20;index" json:"status"`
	AssignedGroupID    string         `gorm:"size:36" json:"assigned_group_id,omitempty"`
	DecisionComment    string         `gorm:"size:4096" json:"decision_comment,omitempty"`
	ValidatedAt        *time.Time     `json:"validated_at,omitempty"`
	CreatedAt          time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	Requester User  `gorm:"foreignKey:RequesterID" json:"-"`
	Folder    Folder `gorm:"foreignKey:FolderID" json:"-"`
}

func (PermissionRequest) TableName() string { return "permission_requests" }

// Triple is the (requester, folder, mode) identity used by classification.
type Triple struct {
	RequesterID string
	FolderID    string
	Mode        PermissionMode
}

// Classification is the outcome of classifying a candidate request against
// the catalogue, before any state change is made (§4.7).
type Classification string

const (
	ClassificationNew       Classification = "new"
	ClassificationDuplicate Classification = "duplicate"
	ClassificationChange    Classification = "change"
	ClassificationRetry     Classification = "retry"
)
