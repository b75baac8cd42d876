package requests

import (
	"fmt"

	"github.com/permflow/engine/pkg/catalogue/models"
)

// TaskSpec describes one task to create as part of a Decision, before it
// has an ID. DependsOnIndex is an index into the same TaskPlan (-1 means no
// dependency), resolved to a real task ID once prior tasks are persisted.
type TaskSpec struct {
	Kind           models.TaskKind
	DependsOnIndex int
	Workflow       *models.WorkflowPayload
	Verification   *models.VerificationPayload
}

// TaskPlan is an ordered list of tasks to create for a Decision, index 0
// first.
type TaskPlan []TaskSpec

// CSVRequest is one artefact the caller must write before installing the
// Decision's tasks. Writers are addressed by the TaskSpec index that needs
// the resulting path recorded in its payload's ArtefactPath.
type CSVRequest struct {
	TaskIndex int
	Action    models.Action
	Mode      models.PermissionMode
}

// Decision is the outcome of a state-machine operation: the new request
// status, an optional user-visible refusal reason, the tasks to create,
// and the CSV artefacts those tasks need written first. The Engine applies
// a Decision through separate store writes, not inside one transaction;
// Classify/Approve/Reject/Cancel/Revoke never
// touch the store themselves.
type Decision struct {
	Allowed       bool
	RefusalReason string

	NewStatus       models.RequestStatus
	DecisionComment string
	AssignedGroupID string

	CancelRequestIDs []string // other requests to cancel as a side effect (change path)
	TaskPlan         TaskPlan
	CSVArtefacts     []CSVRequest
}

func refuse(reason string) Decision {
	return Decision{Allowed: false, RefusalReason: reason}
}

// Approve implements the `new` and `change` approval paths of §4.7.
//
// firstPermission is the first FolderGroupPermission matching (folder,
// mode) — the caller resolves "first" by creation order, since that
// ordering is a storage concern, not a decision concern. oldGroupID/oldMode
// identify the group and mode a change approval must remove before granting
// the newly requested mode; both are ignored outside the change path.
func Approve(classification models.Classification, req *models.PermissionRequest, firstPermission *models.FolderGroupPermission, priorPendingSameFolder *models.PermissionRequest, oldGroupID string, oldMode models.PermissionMode) Decision {
	if firstPermission == nil {
		return refuse(fmt.Sprintf("no permission group is configured for folder %s in mode %s", req.FolderID, req.Mode))
	}

	switch classification {
	case models.ClassificationNew, models.ClassificationRetry:
		return Decision{
			Allowed:         true,
			NewStatus:       models.RequestApproved,
			AssignedGroupID: firstPermission.GroupID,
			TaskPlan: TaskPlan{
				{Kind: models.TaskKindWorkflow, DependsOnIndex: -1, Workflow: &models.WorkflowPayload{
					PermissionRequestID: req.ID,
					RequesterUsername:   req.RequesterID,
					FolderID:            req.FolderID,
					Mode:                req.Mode,
					Action:              models.ActionAdd,
					GroupID:             firstPermission.GroupID,
				}},
				{Kind: models.TaskKindVerification, DependsOnIndex: 0, Verification: &models.VerificationPayload{
					PermissionRequestID: req.ID,
					RequesterUsername:   req.RequesterID,
					FolderID:            req.FolderID,
					GroupID:             firstPermission.GroupID,
					Mode:                req.Mode,
					Action:              models.ActionAdd,
				}},
			},
			CSVArtefacts: []CSVRequest{{TaskIndex: 0, Action: models.ActionAdd, Mode: req.Mode}},
		}

	case models.ClassificationChange:
		d := Decision{
			Allowed:         true,
			NewStatus:       models.RequestApproved,
			AssignedGroupID: firstPermission.GroupID,
			TaskPlan: TaskPlan{
				{Kind: models.TaskKindWorkflow, DependsOnIndex: -1, Workflow: &models.WorkflowPayload{
					PermissionRequestID: req.ID,
					RequesterUsername:   req.RequesterID,
					FolderID:            req.FolderID,
					Mode:                oldMode,
					Action:              models.ActionRemove,
					GroupID:             oldGroupID,
				}},
				{Kind: models.TaskKindWorkflow, DependsOnIndex: 0, Workflow: &models.WorkflowPayload{
					PermissionRequestID: req.ID,
					RequesterUsername:   req.RequesterID,
					FolderID:            req.FolderID,
					Mode:                req.Mode,
					Action:              models.ActionAdd,
					GroupID:             firstPermission.GroupID,
				}},
				{Kind: models.TaskKindVerification, DependsOnIndex: 1, Verification: &models.VerificationPayload{
					PermissionRequestID: req.ID,
					RequesterUsername:   req.RequesterID,
					FolderID:            req.FolderID,
					GroupID:             firstPermission.GroupID,
					Mode:                req.Mode,
					Action:              models.ActionAdd,
				}},
			},
			CSVArtefacts: []CSVRequest{
				{TaskIndex: 0, Action: models.ActionRemove, Mode: oldMode},
				{TaskIndex: 1, Action: models.ActionAdd, Mode: req.Mode},
			},
		}
		if priorPendingSameFolder != nil {
			d.CancelRequestIDs = []string{priorPendingSameFolder.ID}
			d.DecisionComment = fmt.Sprintf("superseded by change request %s", req.ID)
		}
		return d

	case models.ClassificationDuplicate:
		return refuse("user already has this permission via an existing group")

	default:
		return refuse("unrecognised classification")
	}
}

// Reject implements §4.7 rejection: any pending request may be rejected.
func Reject(req *models.PermissionRequest, comment string) Decision {
	if req.Status != models.RequestPending {
		return refuse("only a pending request may be rejected")
	}
	return Decision{
		Allowed:         true,
		NewStatus:       models.RequestRejected,
		DecisionComment: comment,
	}
}

// Cancel implements §4.7 cancellation: permitted only while pending.
func Cancel(req *models.PermissionRequest, actor, reason string) Decision {
	if req.Status != models.RequestPending {
		return refuse("only a pending request may be cancelled")
	}
	return Decision{
		Allowed:         true,
		NewStatus:       models.RequestCanceled,
		DecisionComment: fmt.Sprintf("cancelled by %s: %s", actor, reason),
	}
}

// Revoke implements §4.7 revocation: permitted only while approved. The
// Decision does not touch the source FolderGroupPermission, and
// Engine.Revoke does not set its deletion_in_progress flag either.
func Revoke(req *models.PermissionRequest) Decision {
	if req.Status != models.RequestApproved {
		return refuse("only an approved request may be revoked")
	}
	return Decision{
		Allowed:   true,
		NewStatus: models.RequestRevoked,
		TaskPlan: TaskPlan{
			{Kind: models.TaskKindWorkflow, DependsOnIndex: -1, Workflow: &models.WorkflowPayload{
				PermissionRequestID: req.ID,
				RequesterUsername:   req.RequesterID,
				FolderID:            req.FolderID,
				GroupID:             req.AssignedGroupID,
				Mode:                req.Mode,
				Action:              models.ActionRemove,
			}},
			{Kind: models.TaskKindVerification, DependsOnIndex: 0, Verification: &models.VerificationPayload{
				PermissionRequestID: req.ID,
				RequesterUsername:   req.RequesterID,
				FolderID:            req.FolderID,
				GroupID:             req.AssignedGroupID,
				Mode:                req.Mode,
				Action:              models.ActionRemove,
			}},
		},
		CSVArtefacts: []CSVRequest{{TaskIndex: 0, Action: models.ActionRemove, Mode: req.Mode}},
	}
}

// CanValidate implements §4.7's who-may-validate rule.
func CanValidate(req *models.PermissionRequest, actorID string, actorIsAdmin bool, folderOwnerIDs, folderValidatorIDs []string) bool {
	if actorIsAdmin {
		return true
	}
	if req.ValidatorID != "" {
		return actorID == req.ValidatorID
	}
	for _, id := range folderOwnerIDs {
		if id == actorID {
			return true
		}
	}
	for _, id := range folderValidatorIDs {
		if id == actorID {
			return true
		}
	}
	return false
}
