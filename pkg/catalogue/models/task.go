package models

import "time"

// TaskKind distinguishes the two dispatch paths of C6 (§3, §4.6).
type TaskKind string

const (
	TaskKindWorkflow     TaskKind = "workflow"
	TaskKindVerification TaskKind = "verification"
)

// TaskStatus is the lifecycle state of a Task (§3).
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskRetry     TaskStatus = "retry"
	TaskCancelled TaskStatus = "cancelled"
)

// DefaultMaxAttempts is the spec default for Task.MaxAttempts (§3, TASK_MAX_RETRIES).
const DefaultMaxAttempts = 3

// Task is one automated step in applying or verifying a permission change
// (§3). Payload and Result are opaque at the storage boundary but are never
// read as untyped maps by callers — see payload.go for the tagged-variant
// envelope that DESIGN NOTES §9 calls for.
type Task struct {
	ID                string     `gorm:"primaryKey;size:36" json:"id"`
	Name              string     `gorm:"size:255" json:"name"`
	Kind              TaskKind   `gorm:"not null;size:20;index" json:"kind"`
	Status            TaskStatus `gorm:"not null;size:20;index" json:"status"`
	AttemptCount      int        `gorm:"not null;default:0" json:"attempt_count"`
	MaxAttempts       int        `gorm:"not null;default:3" json:"max_attempts"`
	NextExecutionTime *time.Time `gorm:"index" json:"next_execution_time,omitempty"`
	DelaySeconds      int        `gorm:"not null;default:0" json:"delay_seconds"`
	DependsOnTaskID   *string    `gorm:"size:36;index" json:"depends_on_task_id,omitempty"`
	Payload           []byte     `gorm:"type:jsonb" json:"-"`
	Result            []byte     `gorm:"type:jsonb" json:"-"`
	ErrorMessage      string     `gorm:"size:4096" json:"error_message,omitempty"`
	PermissionRequestID *string  `gorm:"size:36;index" json:"permission_request_id,omitempty"`
	CreatedBy         string     `gorm:"size:36" json:"created_by,omitempty"`
	StartedAt         *time.Time `json:"started_at,omitempty"`
	FinishedAt        *time.Time `json:"finished_at,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

// ExhaustedAttempts reports whether the task has used its full retry
// budget (§3 invariant: 0 <= attempt_count <= max_attempts).
func (t *Task) ExhaustedAttempts() bool {
	return t.AttemptCount >= t.MaxAttempts
}

// IsTerminal reports whether status admits no further orchestrator action.
func (t *Task) IsTerminal() bool {
	switch t.Status {
	case TaskCompleted, TaskFailed, TaskCancelled:
		return true
	default:
		return false
	}
}

// IsCancelable reports whether the task may still be cancelled (§4.6).
func (t *Task) IsCancelable() bool {
	return t.Status == TaskPending || t.Status == TaskRetry
}
