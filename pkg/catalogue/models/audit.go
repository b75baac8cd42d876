package models

import "time"

// AuditEvent is an append-only record of a single action taken against the
// system (§3, C8). Never updated or deleted by application code.
type AuditEvent struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Actor        string    `gorm:"size:255;index" json:"actor"`
	EventType    string    `gorm:"size:100;index" json:"event_type"`
	Action       string    `gorm:"size:100" json:"action"`
	ResourceType string    `gorm:"size:100;index" json:"resource_type"`
	ResourceID   string    `gorm:"size:36;index" json:"resource_id"`
	Description  string    `gorm:"size:2048" json:"description"`
	Metadata     []byte    `gorm:"type:jsonb" json:"metadata,omitempty"`
	IP           string    `gorm:"size:64" json:"ip,omitempty"`
	UserAgent    string    `gorm:"size:512" json:"user_agent,omitempty"`
	OccurredAt   time.Time `gorm:"autoCreateTime;index" json:"occurred_at"`
}

func (AuditEvent) TableName() string { return "audit_events" }

// AdminNotification is the dedup table backing C4: one row per
// fingerprint = hash(error-type, service-name, message[:500]).
type AdminNotification struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	Fingerprint     string     `gorm:"uniqueIndex;not null;size:64" json:"fingerprint"`
	ErrorType       string     `gorm:"size:100;index" json:"error_type"`
	ServiceName     string     `gorm:"size:100" json:"service_name"`
	Message         string     `gorm:"size:2048" json:"message"`
	FirstOccurrence time.Time  `gorm:"not null" json:"first_occurrence"`
	LastOccurrence  time.Time  `gorm:"not null" json:"last_occurrence"`
	Count           int        `gorm:"not null;default:1" json:"count"`
	Sent            bool       `gorm:"default:false" json:"sent"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
	Resolved        bool       `gorm:"default:false;index" json:"resolved"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AdminNotification) TableName() string { return "admin_notifications" }
