package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/permflow/engine/internal/logger"
	"github.com/permflow/engine/pkg/catalogue/models"
	"github.com/permflow/engine/pkg/workflowclient"
	"github.com/permflow/engine/pkg/xerrors"
)

// dispatchWorkflow submits a workflow-kind task's run. On the fast path
// (immediate=true, a caller waiting on the result right now) it polls for a
// terminal state up to ImmediateTimeout, every PollInterval. On the normal
// queued path it treats submission acknowledgement alone as success and
// lets the chained verification-kind task confirm the effect landed later
// (§4.6 step 3) — polling to terminal on every periodic tick would block
// that tick's whole batch for up to ImmediateTimeout per task.
func (o *Orchestrator) dispatchWorkflow(ctx context.Context, t *models.Task, immediate bool) error {
	payload, err := models.DecodeWorkflowPayload(t)
	if err != nil {
		return xerrors.New(xerrors.KindPermanent, "orchestrator.dispatchWorkflow", err)
	}

	runID := fmt.Sprintf("%s-%d", t.ID, t.AttemptCount)
	conf := map[string]any{
		"permission_request_id": payload.PermissionRequestID,
		"requester_username":    payload.RequesterUsername,
		"folder_id":             payload.FolderID,
		"group_id":              payload.GroupID,
		"group_dn":              payload.GroupDN,
		"mode":                  payload.Mode,
		"action":                payload.Action,
		"artefact_path":         payload.ArtefactPath,
	}

	submittedID, err := o.workflow.SubmitRun(ctx, workflowclient.RunConfig{
		DAGID: o.cfg.WorkflowDAGID,
		RunID: runID,
		Conf:  conf,
	})
	if err != nil {
		return err
	}

	if !immediate {
		t.Result = models.EncodeWorkflowResult(models.WorkflowResult{
			RunID: submittedID, State: string(workflowclient.StateQueued), ExecutionType: models.ExecutionQueued,
		})
		return nil
	}

	state, err := o.awaitTerminal(ctx, o.cfg.WorkflowDAGID, submittedID)
	if err != nil {
		return err
	}

	if state != workflowclient.StateSuccess {
		t.Result = models.EncodeWorkflowResult(models.WorkflowResult{
			RunID: submittedID, State: string(state), ExecutionType: models.ExecutionImmediate,
		})
		return xerrors.New(xerrors.KindExternalFailed, "orchestrator.dispatchWorkflow",
			fmt.Errorf("workflow run %s ended in state %s", submittedID, state))
	}

	t.Result = models.EncodeWorkflowResult(models.WorkflowResult{
		RunID: submittedID, State: string(state), ExecutionType: models.ExecutionImmediate,
	})
	return nil
}

// awaitTerminal polls GetRun until state is terminal or ImmediateTimeout
// elapses.
func (o *Orchestrator) awaitTerminal(ctx context.Context, dagID, runID string) (workflowclient.RunState, error) {
	deadline := time.Now().Add(o.cfg.ImmediateTimeout)
	for {
		state, err := o.workflow.GetRun(ctx, dagID, runID)
		if err != nil {
			return "", err
		}
		if state.IsTerminal() {
			return state, nil
		}
		if time.Now().After(deadline) {
			return "", xerrors.New(xerrors.KindTransient, "orchestrator.awaitTerminal",
				fmt.Errorf("run %s still %s after %s", runID, state, o.cfg.ImmediateTimeout))
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(o.cfg.PollInterval):
		}
	}
}

// dispatchVerification confirms an executor's membership change landed in
// the directory, treating a directory lookup failure as inconclusive
// rather than failed (§4.6 scenario 4: "inconclusive-on-unreachable").
func (o *Orchestrator) dispatchVerification(ctx context.Context, t *models.Task, immediate bool) error {
	payload, err := models.DecodeVerificationPayload(t)
	if err != nil {
		return xerrors.New(xerrors.KindPermanent, "orchestrator.dispatchVerification", err)
	}

	member, err := o.directory.IsMember(ctx, payload.RequesterUsername, payload.GroupName)
	if err != nil {
		logger.Warn("directory unreachable during verification, treating as inconclusive",
			"error", err, "task_id", t.ID)
		executionType := models.ExecutionQueued
		if immediate {
			executionType = models.ExecutionImmediate
		}
		t.Result = models.EncodeVerificationResult(models.VerificationResult{
			Inconclusive: true, ExecutionType: executionType,
		})
		return xerrors.New(xerrors.KindTransient, "orchestrator.dispatchVerification", err)
	}

	want := !payload.Action.IsRemoval()
	executionType := models.ExecutionQueued
	if immediate {
		executionType = models.ExecutionImmediate
	}

	if member != want {
		return xerrors.New(xerrors.KindTransient, "orchestrator.dispatchVerification",
			fmt.Errorf("membership state for %s in %s does not yet reflect %s", payload.RequesterUsername, payload.GroupName, payload.Action))
	}

	t.Result = models.EncodeVerificationResult(models.VerificationResult{
		Member: member, ExecutionType: executionType,
	})
	return nil
}
