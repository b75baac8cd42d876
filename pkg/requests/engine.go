package requests

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/permflow/engine/internal/logger"
	"github.com/permflow/engine/pkg/artifact"
	"github.com/permflow/engine/pkg/catalogue/models"
	"github.com/permflow/engine/pkg/catalogue/store"
	"github.com/permflow/engine/pkg/metrics"
)

// fastPather is the narrow slice of the orchestrator's surface the Engine
// needs: an immediate dispatch attempt for the first task of a freshly
// approved plan, so an approving validator sees progress within
// ImmediateTimeout instead of waiting for the next periodic tick (§4.6,
// §4.7 fast-path-on-approval).
type fastPather interface {
	AttemptNow(ctx context.Context, taskID string) error
}

// Engine is the thin shell around Snapshot/Classify/Approve/Reject/Cancel/
// Revoke: it is the only place in this package that touches the store, the
// CSV writer, or the orchestrator. Its writes are separate store calls, not
// one transaction.
type Engine struct {
	store        store.Store
	artefacts    *artifact.Writer
	orchestrator fastPather
	metrics      metrics.RequestMetrics
}

// New constructs an Engine. orchestrator may be nil, in which case newly
// approved tasks simply wait for the next periodic tick instead of
// attempting immediate dispatch.
func New(s store.Store, artefacts *artifact.Writer, orchestrator fastPather) *Engine {
	return &Engine{store: s, artefacts: artefacts, orchestrator: orchestrator, metrics: metrics.NewRequestMetrics()}
}

// Submit creates a new PermissionRequest for a triple, classifying it
// against the current catalogue snapshot first so a duplicate or
// conflicting ask is rejected before it is ever persisted as pending
// (§4.7).
func (e *Engine) Submit(ctx context.Context, t models.Triple, businessNeed string) (*models.PermissionRequest, error) {
	snap, err := LoadSnapshot(ctx, e.store, t)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	classification := Classify(snap)
	if classification == models.ClassificationDuplicate || snap.ActiveRequest != nil {
		return nil, models.ErrRequestConflict
	}

	req := &models.PermissionRequest{
		ID:           uuid.NewString(),
		RequesterID:  t.RequesterID,
		FolderID:     t.FolderID,
		Mode:         t.Mode,
		BusinessNeed: businessNeed,
		Status:       models.RequestPending,
	}
	if _, err := e.store.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if err := e.audit(ctx, t.RequesterID, "request.submitted", req.ID, fmt.Sprintf(
		"requested %s on folder %s", t.Mode, t.FolderID)); err != nil {
		logger.Error("failed to record submission audit event", "error", err)
	}
	if e.metrics != nil {
		e.metrics.RecordSubmitted(string(t.Mode))
	}
	return req, nil
}

// Approve validates actorID may decide on req, resolves the state-machine
// Decision, and applies it: writes CSV artefacts, installs the task chain,
// updates the request, and attempts the plan's first task immediately
// (§4.6, §4.7).
func (e *Engine) Approve(ctx context.Context, requestID, actorID string, actorIsAdmin bool) (*models.PermissionRequest, error) {
	req, err := e.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := e.requireValidator(ctx, req, actorID, actorIsAdmin); err != nil {
		return nil, err
	}
	if req.Status != models.RequestPending {
		return nil, models.ErrRequestInvalidState
	}

	t := models.Triple{RequesterID: req.RequesterID, FolderID: req.FolderID, Mode: req.Mode}
	snap, err := LoadSnapshot(ctx, e.store, t)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	classification := Classify(snap)

	firstPermission, err := e.firstPermission(ctx, req.FolderID, req.Mode)
	if err != nil {
		return nil, err
	}

	var priorPending *models.PermissionRequest
	if snap.ChangeRequest != nil && snap.ChangeRequest.Status == models.RequestPending && snap.ChangeRequest.ID != req.ID {
		priorPending = snap.ChangeRequest
	}

	oldGroupID, oldMode := oldAssignment(snap)

	decision := Approve(classification, req, firstPermission, priorPending, oldGroupID, oldMode)
	return e.apply(ctx, req, actorID, decision)
}

// oldAssignment resolves the (group, mode) a change approval must remove.
// A membership through a different-mode group is authoritative; absent
// that, an approved change request's own assignment is the next best
// source, since only an approved request would have actually granted one.
func oldAssignment(snap Snapshot) (string, models.PermissionMode) {
	if snap.OldPermission != nil {
		return snap.OldPermission.GroupID, snap.OldPermission.Mode
	}
	if snap.ChangeRequest != nil && snap.ChangeRequest.Status == models.RequestApproved {
		return snap.ChangeRequest.AssignedGroupID, snap.ChangeRequest.Mode
	}
	return "", ""
}

// Reject applies Reject's Decision for a pending request (§4.7).
func (e *Engine) Reject(ctx context.Context, requestID, actorID string, actorIsAdmin bool, comment string) (*models.PermissionRequest, error) {
	req, err := e.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := e.requireValidator(ctx, req, actorID, actorIsAdmin); err != nil {
		return nil, err
	}
	return e.apply(ctx, req, actorID, Reject(req, comment))
}

// Cancel applies Cancel's Decision; only the requester or an admin may
// cancel their own pending request (§4.7).
func (e *Engine) Cancel(ctx context.Context, requestID, actorID string, actorIsAdmin bool, reason string) (*models.PermissionRequest, error) {
	req, err := e.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !actorIsAdmin && actorID != req.RequesterID {
		return nil, models.ErrRequestInvalidState
	}
	return e.apply(ctx, req, actorID, Cancel(req, actorID, reason))
}

// Revoke applies Revoke's Decision for an approved request, tearing down
// the membership it granted (§4.7).
func (e *Engine) Revoke(ctx context.Context, requestID, actorID string, actorIsAdmin bool) (*models.PermissionRequest, error) {
	req, err := e.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := e.requireValidator(ctx, req, actorID, actorIsAdmin); err != nil {
		return nil, err
	}
	return e.apply(ctx, req, actorID, Revoke(req))
}

func (e *Engine) requireValidator(ctx context.Context, req *models.PermissionRequest, actorID string, actorIsAdmin bool) error {
	if actorIsAdmin {
		return nil
	}
	owners, err := e.store.ListFolderOwners(ctx, req.FolderID)
	if err != nil {
		return err
	}
	validators, err := e.store.ListFolderValidators(ctx, req.FolderID)
	if err != nil {
		return err
	}
	ownerIDs := make([]string, len(owners))
	for i, o := range owners {
		ownerIDs[i] = o.UserID
	}
	validatorIDs := make([]string, len(validators))
	for i, v := range validators {
		validatorIDs[i] = v.UserID
	}
	if !CanValidate(req, actorID, actorIsAdmin, ownerIDs, validatorIDs) {
		return models.ErrForbidden
	}
	return nil
}

// firstPermission resolves the first-by-creation-order FolderGroupPermission
// matching (folder, mode), the storage-ordering concern Approve's doc
// comment defers to its caller.
func (e *Engine) firstPermission(ctx context.Context, folderID string, mode models.PermissionMode) (*models.FolderGroupPermission, error) {
	perms, err := e.store.ListActivePermissionsByFolderAndMode(ctx, folderID, mode)
	if err != nil {
		return nil, err
	}
	if len(perms) == 0 {
		return nil, nil
	}
	first := perms[0]
	for _, p := range perms[1:] {
		if p.CreatedAt.Before(first.CreatedAt) {
			first = p
		}
	}
	return first, nil
}

// apply persists a Decision: the request's new status, any cancelled
// siblings, the CSV artefacts it needs, and its task plan, then attempts
// the plan's first task immediately (§4.6 fast path, §4.7).
func (e *Engine) apply(ctx context.Context, req *models.PermissionRequest, actorID string, d Decision) (*models.PermissionRequest, error) {
	if !d.Allowed {
		return nil, fmt.Errorf("%w: %s", models.ErrRequestInvalidState, d.RefusalReason)
	}

	req.Status = d.NewStatus
	if d.DecisionComment != "" {
		req.DecisionComment = d.DecisionComment
	}
	if d.AssignedGroupID != "" {
		req.AssignedGroupID = d.AssignedGroupID
	}
	if err := e.store.UpdateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}

	for _, cancelID := range d.CancelRequestIDs {
		other, err := e.store.GetRequest(ctx, cancelID)
		if err != nil {
			logger.Error("failed to load request to cancel", "error", err, "request_id", cancelID)
			continue
		}
		supersedeDecision := Cancel(other, actorID, fmt.Sprintf("superseded by request %s", req.ID))
		if supersedeDecision.Allowed {
			other.Status = supersedeDecision.NewStatus
			other.DecisionComment = supersedeDecision.DecisionComment
			if err := e.store.UpdateRequest(ctx, other); err != nil {
				logger.Error("failed to persist superseded request", "error", err, "request_id", cancelID)
			}
		}
	}

	_, firstTaskID, err := e.installTaskPlan(ctx, req, d)
	if err != nil {
		return nil, fmt.Errorf("install task plan: %w", err)
	}

	if err := e.audit(ctx, actorID, fmt.Sprintf("request.%s", d.NewStatus), req.ID, d.DecisionComment); err != nil {
		logger.Error("failed to record decision audit event", "error", err)
	}
	if e.metrics != nil {
		e.metrics.RecordDecision(string(d.NewStatus))
	}

	if firstTaskID != "" && e.orchestrator != nil {
		if err := e.orchestrator.AttemptNow(ctx, firstTaskID); err != nil {
			logger.Warn("fast-path dispatch failed, falling back to periodic tick", "error", err, "task_id", firstTaskID)
		}
	}
	return req, nil
}

// installTaskPlan writes every CSV artefact d.CSVArtefacts names, then
// creates each task in d.TaskPlan in order, resolving DependsOnIndex to the
// real persisted ID of an earlier task in the same plan, and stamping the
// resolved artefact path into the matching task's payload (§4.1, §4.6).
func (e *Engine) installTaskPlan(ctx context.Context, req *models.PermissionRequest, d Decision) ([]string, string, error) {
	if len(d.TaskPlan) == 0 {
		return nil, "", nil
	}

	artefactPaths := make(map[int]string, len(d.CSVArtefacts))
	for _, csvReq := range d.CSVArtefacts {
		if e.artefacts == nil {
			continue
		}
		spec := d.TaskPlan[csvReq.TaskIndex]
		var username, groupName, employeeID string
		if spec.Workflow != nil {
			username = spec.Workflow.RequesterUsername
			if spec.Workflow.GroupID != "" {
				if group, err := e.store.GetGroup(ctx, spec.Workflow.GroupID); err == nil {
					groupName = group.Name
				}
			}
		}
		if user, err := e.store.GetUser(ctx, req.RequesterID); err == nil {
			if username == "" {
				username = user.Username
			}
			employeeID = user.EmployeeID
		}
		path, err := e.artefacts.WriteSingle(artifact.Row{
			UserName:   username,
			ADGroup:    groupName,
			TaskID:     req.ID,
			Action:     csvReq.Action,
			EmployeeID: employeeID,
			ResourceID: req.FolderID,
			Mode:       csvReq.Mode,
		})
		if err != nil {
			return nil, "", fmt.Errorf("write csv artefact for task %d: %w", csvReq.TaskIndex, err)
		}
		artefactPaths[csvReq.TaskIndex] = path
	}

	requesterUsername := req.RequesterID
	if user, err := e.store.GetUser(ctx, req.RequesterID); err == nil {
		requesterUsername = user.Username
	}

	ids := make([]string, len(d.TaskPlan))
	for i, spec := range d.TaskPlan {
		task := &models.Task{
			ID:                  uuid.NewString(),
			Kind:                spec.Kind,
			Status:              models.TaskPending,
			PermissionRequestID: &req.ID,
			CreatedBy:           req.RequesterID,
		}

		switch spec.Kind {
		case models.TaskKindWorkflow:
			p := *spec.Workflow
			p.RequesterUsername = requesterUsername
			p.ArtefactPath = artefactPaths[i]
			if p.GroupID != "" && p.GroupName == "" {
				if group, err := e.store.GetGroup(ctx, p.GroupID); err == nil {
					p.GroupName = group.Name
				}
			}
			task.Payload = models.EncodeWorkflowPayload(p)
		case models.TaskKindVerification:
			p := *spec.Verification
			p.RequesterUsername = requesterUsername
			p.ArtefactPath = artefactPaths[i]
			if p.GroupID != "" && p.GroupName == "" {
				if group, err := e.store.GetGroup(ctx, p.GroupID); err == nil {
					p.GroupName = group.Name
				}
			}
			task.Payload = models.EncodeVerificationPayload(p)
		}

		if spec.DependsOnIndex >= 0 {
			dependsOn := ids[spec.DependsOnIndex]
			task.DependsOnTaskID = &dependsOn
		}

		id, err := e.store.CreateTask(ctx, task)
		if err != nil {
			return nil, "", fmt.Errorf("create task %d: %w", i, err)
		}
		ids[i] = id
	}

	var firstTaskID string
	for i, spec := range d.TaskPlan {
		if spec.DependsOnIndex == -1 {
			firstTaskID = ids[i]
			break
		}
	}
	return ids, firstTaskID, nil
}

func (e *Engine) audit(ctx context.Context, actor, eventType, resourceID, description string) error {
	return e.store.RecordEvent(ctx, &models.AuditEvent{
		ID:           uuid.NewString(),
		Actor:        actor,
		EventType:    eventType,
		Action:       eventType,
		ResourceType: "permission_request",
		ResourceID:   resourceID,
		Description:  description,
	})
}
