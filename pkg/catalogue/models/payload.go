package models

import (
	"encoding/json"
	"fmt"
)

// Action is the membership-change verb carried by a task payload and
// mirrored onto a CSV artefact's idAccion column (§4.1, §4.6).
type Action string

const (
	ActionAdd           Action = "add"
	ActionRemove        Action = "remove"
	ActionRemoveADSync  Action = "remove_ad_sync"
	ActionDelete        Action = "delete"
)

// Code returns the CSV idAccion code: 1 for add, 2 for every removal variant.
func (a Action) Code() int {
	if a == ActionAdd {
		return 1
	}
	return 2
}

// IsRemoval reports whether success for this action is defined as
// non-membership (§4.6 verification dispatch).
func (a Action) IsRemoval() bool {
	return a == ActionRemove || a == ActionRemoveADSync || a == ActionDelete
}

// ExecutionType records whether a task was run through the fast path or the
// periodic orchestrator loop (§4.6).
type ExecutionType string

const (
	ExecutionImmediate ExecutionType = "immediate"
	ExecutionQueued     ExecutionType = "queued"
)

// WorkflowPayload is the tagged-variant payload for TaskKindWorkflow tasks.
type WorkflowPayload struct {
	Kind                string `json:"kind"`
	PermissionRequestID string `json:"permission_request_id"`
	RequesterUsername   string `json:"requester_username"`
	FolderID            string `json:"folder_id"`
	FolderPath          string `json:"folder_path"`
	GroupID             string `json:"group_id"`
	GroupName           string `json:"group_name"`
	GroupDN             string `json:"group_dn"`
	Mode                PermissionMode `json:"mode"`
	Action              Action `json:"action"`
	ArtefactPath        string `json:"artefact_path"`
	RunIDPrefix         string `json:"run_id_prefix"`
}

// VerificationPayload is the tagged-variant payload for
// TaskKindVerification tasks.
type VerificationPayload struct {
	Kind                string         `json:"kind"`
	PermissionRequestID string         `json:"permission_request_id"`
	RequesterUsername   string         `json:"requester_username"`
	FolderID            string         `json:"folder_id"`
	GroupID             string         `json:"group_id"`
	GroupName           string         `json:"group_name"`
	Mode                PermissionMode `json:"mode"`
	Action              Action         `json:"action"`
	ArtefactPath        string         `json:"artefact_path,omitempty"`
}

const (
	payloadKindWorkflow     = "workflow"
	payloadKindVerification = "verification"
)

// EncodeWorkflowPayload marshals p, stamping its Kind discriminator.
func EncodeWorkflowPayload(p WorkflowPayload) []byte {
	p.Kind = payloadKindWorkflow
	b, _ := json.Marshal(p)
	return b
}

// EncodeVerificationPayload marshals p, stamping its Kind discriminator.
func EncodeVerificationPayload(p VerificationPayload) []byte {
	p.Kind = payloadKindVerification
	b, _ := json.Marshal(p)
	return b
}

// DecodeWorkflowPayload unmarshals t.Payload, refusing to decode a payload
// from the wrong kind so callers never silently read garbage.
func DecodeWorkflowPayload(t *Task) (WorkflowPayload, error) {
	var p WorkflowPayload
	if t.Kind != TaskKindWorkflow {
		return p, fmt.Errorf("task %s is kind %q, not workflow", t.ID, t.Kind)
	}
	if err := json.Unmarshal(t.Payload, &p); err != nil {
		return p, fmt.Errorf("decode workflow payload for task %s: %w", t.ID, err)
	}
	return p, nil
}

// DecodeVerificationPayload unmarshals t.Payload for a verification task.
func DecodeVerificationPayload(t *Task) (VerificationPayload, error) {
	var p VerificationPayload
	if t.Kind != TaskKindVerification {
		return p, fmt.Errorf("task %s is kind %q, not verification", t.ID, t.Kind)
	}
	if err := json.Unmarshal(t.Payload, &p); err != nil {
		return p, fmt.Errorf("decode verification payload for task %s: %w", t.ID, err)
	}
	return p, nil
}

// WorkflowResult is the tagged-variant result stored after a workflow task
// reaches a terminal outcome.
type WorkflowResult struct {
	Kind          string        `json:"kind"`
	RunID         string        `json:"run_id"`
	State         string        `json:"state"`
	ExecutionType ExecutionType `json:"execution_type"`
}

// VerificationResult is the tagged-variant result stored after a
// verification task reaches a terminal (or inconclusive) outcome.
type VerificationResult struct {
	Kind          string        `json:"kind"`
	Member        bool          `json:"member"`
	Inconclusive  bool          `json:"inconclusive"`
	ExecutionType ExecutionType `json:"execution_type"`
}

// CancellationResult is the tagged-variant result stored when a task is
// cancelled (§4.6).
type CancellationResult struct {
	Kind         string `json:"kind"`
	CancelledBy  string `json:"cancelled_by"`
	Reason       string `json:"reason"`
}

const (
	resultKindWorkflow     = "workflow"
	resultKindVerification = "verification"
	resultKindCancellation = "cancellation"
)

func EncodeWorkflowResult(r WorkflowResult) []byte {
	r.Kind = resultKindWorkflow
	b, _ := json.Marshal(r)
	return b
}

func EncodeVerificationResult(r VerificationResult) []byte {
	r.Kind = resultKindVerification
	b, _ := json.Marshal(r)
	return b
}

func EncodeCancellationResult(r CancellationResult) []byte {
	r.Kind = resultKindCancellation
	b, _ := json.Marshal(r)
	return b
}

// DecodeWorkflowResult unmarshals t.Result as a WorkflowResult. Returns the
// zero value, no error, if the task has no result yet.
func DecodeWorkflowResult(t *Task) (WorkflowResult, error) {
	var r WorkflowResult
	if len(t.Result) == 0 {
		return r, nil
	}
	err := json.Unmarshal(t.Result, &r)
	return r, err
}

// DecodeVerificationResult unmarshals t.Result as a VerificationResult.
func DecodeVerificationResult(t *Task) (VerificationResult, error) {
	var r VerificationResult
	if len(t.Result) == 0 {
		return r, nil
	}
	err := json.Unmarshal(t.Result, &r)
	return r, err
}
