// Package orchestrator implements C6: the task orchestrator that drives
// approved permission changes through the workflow executor and a
// verification stage, and C9's tick-driving loop.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/permflow/engine/internal/logger"
	"github.com/permflow/engine/pkg/artifact"
	"github.com/permflow/engine/pkg/catalogue/models"
	"github.com/permflow/engine/pkg/catalogue/store"
	"github.com/permflow/engine/pkg/directory"
	"github.com/permflow/engine/pkg/metrics"
	"github.com/permflow/engine/pkg/notifier"
	"github.com/permflow/engine/pkg/workflowclient"
)

const (
	defaultProcessingInterval = 300 * time.Second
	defaultBatchSize          = 10
	defaultRetryDelay         = 30 * time.Second
	defaultImmediateTimeout   = 300 * time.Second
	defaultPollInterval       = 10 * time.Second
)

// Config configures the orchestrator's scheduling constants.
type Config struct {
	ProcessingInterval time.Duration
	BatchSize          int
	RetryDelay         time.Duration
	ImmediateTimeout   time.Duration
	PollInterval       time.Duration

	// WorkflowDAGID names the single workflow-executor job every task of
	// kind workflow is submitted against; folder/group/mode/action travel
	// in the run's Conf instead of as separate jobs (§4.2).
	WorkflowDAGID string
}

const defaultWorkflowDAGID = "permission_change"

func (c *Config) applyDefaults() {
	if c.ProcessingInterval == 0 {
		c.ProcessingInterval = defaultProcessingInterval
	}
	if c.BatchSize == 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = defaultRetryDelay
	}
	if c.ImmediateTimeout == 0 {
		c.ImmediateTimeout = defaultImmediateTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.WorkflowDAGID == "" {
		c.WorkflowDAGID = defaultWorkflowDAGID
	}
}

// Orchestrator drives ready tasks to completion. One instance runs per
// process; concurrent processes coordinate through the task store's
// skip-locked Ready query rather than any distributed lock here.
type Orchestrator struct {
	cfg Config

	store     store.Store
	workflow  *workflowclient.Client
	directory *directory.Adapter
	artefacts *artifact.Writer
	notifier  *notifier.Notifier

	tickMu  sync.Mutex
	metrics metrics.OrchestratorMetrics
}

// New constructs an Orchestrator.
func New(cfg Config, s store.Store, wf *workflowclient.Client, dir *directory.Adapter, art *artifact.Writer, notif *notifier.Notifier) *Orchestrator {
	cfg.applyDefaults()
	return &Orchestrator{
		cfg: cfg, store: s, workflow: wf, directory: dir, artefacts: art, notifier: notif,
		metrics: metrics.NewOrchestratorMetrics(),
	}
}

// Tick runs one orchestration pass. A process-local mutex guards against
// overlapping ticks; a tick already in flight causes this call to return
// immediately rather than block (§4.6, §5: "a try-lock on a process-local
// mutex").
func (o *Orchestrator) Tick(ctx context.Context) error {
	if !o.tickMu.TryLock() {
		logger.Debug("orchestrator tick skipped: previous tick still in flight")
		return nil
	}
	defer o.tickMu.Unlock()

	start := time.Now()
	tasks, err := o.store.Ready(ctx, o.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("fetch ready tasks: %w", err)
	}

	for _, t := range tasks {
		o.processTask(ctx, t)
	}
	if o.metrics != nil {
		o.metrics.ObserveTick(time.Since(start), len(tasks))
	}
	return nil
}

// Run ticks the orchestrator every ProcessingInterval until ctx is
// cancelled (§4.9).
func (o *Orchestrator) Run(ctx context.Context) {
	ticker := time.NewTicker(o.cfg.ProcessingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := o.Tick(ctx); err != nil {
				logger.Error("orchestrator tick failed", "error", err)
			}
		}
	}
}

func (o *Orchestrator) processTask(ctx context.Context, t *models.Task) {
	now := time.Now().UTC()
	t.Status = models.TaskRunning
	t.StartedAt = &now
	t.AttemptCount++
	if err := o.store.UpdateTask(ctx, t); err != nil {
		logger.Error("failed to mark task running", "error", err, "task_id", t.ID)
		return
	}

	o.dispatch(ctx, t, false)
}

// dispatch runs the kind-specific dispatch and applies its outcome. immediate
// stamps the resulting ExecutionType and is set by AttemptNow's fast path
// (§4.6 "fast-path-on-approval optimization").
func (o *Orchestrator) dispatch(ctx context.Context, t *models.Task, immediate bool) {
	if o.metrics != nil {
		o.metrics.RecordDispatch(string(t.Kind))
	}

	var dispatchErr error
	switch t.Kind {
	case models.TaskKindWorkflow:
		dispatchErr = o.dispatchWorkflow(ctx, t, immediate)
	case models.TaskKindVerification:
		dispatchErr = o.dispatchVerification(ctx, t, immediate)
	default:
		dispatchErr = fmt.Errorf("unknown task kind %q", t.Kind)
	}

	if dispatchErr == nil {
		o.completeTask(ctx, t)
		return
	}
	o.failOrRetry(ctx, t, dispatchErr)
}

// AttemptNow dispatches a single pending task immediately rather than
// waiting for the next periodic tick, used right after a request is
// approved so the requester sees fast feedback when the executor responds
// within ImmediateTimeout (§4.6, §4.7).
func (o *Orchestrator) AttemptNow(ctx context.Context, taskID string) error {
	t, err := o.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if t.Status != models.TaskPending {
		return nil
	}
	now := time.Now().UTC()
	t.Status = models.TaskRunning
	t.StartedAt = &now
	t.AttemptCount++
	if err := o.store.UpdateTask(ctx, t); err != nil {
		return err
	}
	o.dispatch(ctx, t, true)
	return nil
}

func (o *Orchestrator) completeTask(ctx context.Context, t *models.Task) {
	finished := time.Now().UTC()
	t.Status = models.TaskCompleted
	t.FinishedAt = &finished
	if err := o.store.UpdateTask(ctx, t); err != nil {
		logger.Error("failed to mark task completed", "error", err, "task_id", t.ID)
		return
	}
	if o.metrics != nil {
		o.metrics.RecordOutcome(string(t.Kind), "completed")
		if t.StartedAt != nil {
			o.metrics.ObserveTaskLatency(string(t.Kind), finished.Sub(*t.StartedAt))
		}
	}
	o.resolveEagerDependents(ctx, t)
}

// failOrRetry implements §4.6 step 2's failure branch: schedule a retry
// unless attempts are exhausted, in which case the task becomes terminally
// failed and the cascade runs exactly once.
func (o *Orchestrator) failOrRetry(ctx context.Context, t *models.Task, cause error) {
	t.ErrorMessage = cause.Error()

	if t.ExhaustedAttempts() {
		finished := time.Now().UTC()
		t.Status = models.TaskFailed
		t.FinishedAt = &finished
		if err := o.store.UpdateTask(ctx, t); err != nil {
			logger.Error("failed to mark task failed", "error", err, "task_id", t.ID)
			return
		}
		if o.metrics != nil {
			o.metrics.RecordOutcome(string(t.Kind), "failed")
			if t.StartedAt != nil {
				o.metrics.ObserveTaskLatency(string(t.Kind), finished.Sub(*t.StartedAt))
			}
		}
		o.cascadeFailure(ctx, t)
		return
	}

	t.Status = models.TaskRetry
	next := time.Now().UTC().Add(o.cfg.RetryDelay)
	t.NextExecutionTime = &next
	if err := o.store.UpdateTask(ctx, t); err != nil {
		logger.Error("failed to schedule task retry", "error", err, "task_id", t.ID)
	}
	if o.metrics != nil {
		o.metrics.RecordOutcome(string(t.Kind), "retry")
	}
}

// cascadeFailure implements §4.6 step 5: a dependent still waiting on the
// task that just failed can never become ready (Ready's dependency join
// only admits depends_on_task_id rows whose parent completed), so it's
// cancelled here rather than left pending forever.
func (o *Orchestrator) cascadeFailure(ctx context.Context, t *models.Task) {
	if t.PermissionRequestID == nil {
		return
	}

	dependents, err := o.store.AwaitingDependency(ctx, t.ID)
	if err != nil {
		logger.Error("failed to load dependents for cascade", "error", err, "task_id", t.ID)
	}
	for _, dep := range dependents {
		if !dep.IsCancelable() {
			continue
		}
		if err := o.CancelTask(ctx, dep.ID, "orchestrator", fmt.Sprintf("dependency %s failed", t.ID)); err != nil {
			logger.Error("failed to cancel dependent task on cascade", "error", err, "task_id", dep.ID)
		}
	}

	siblings, err := o.store.SiblingsOf(ctx, *t.PermissionRequestID)
	if err != nil {
		logger.Error("failed to load siblings for cascade", "error", err, "task_id", t.ID)
		return
	}

	allTerminalNonSuccess := true
	for _, s := range siblings {
		if s.Status != models.TaskFailed && s.Status != models.TaskCancelled {
			allTerminalNonSuccess = false
			break
		}
	}
	if !allTerminalNonSuccess {
		return
	}

	req, err := o.store.GetRequest(ctx, *t.PermissionRequestID)
	if err != nil {
		logger.Error("failed to load request for cascade", "error", err, "request_id", *t.PermissionRequestID)
		return
	}
	req.Status = models.RequestFailed
	req.DecisionComment = fmt.Sprintf("automatically failed: %s", t.ErrorMessage)
	if err := o.store.UpdateRequest(ctx, req); err != nil {
		logger.Error("failed to mark request failed", "error", err, "request_id", req.ID)
		return
	}

	if err := o.store.RecordEvent(ctx, &models.AuditEvent{
		Actor:        "orchestrator",
		EventType:    "request.failed",
		Action:       "cascade",
		ResourceType: "permission_request",
		ResourceID:   req.ID,
		Description:  fmt.Sprintf("cascaded failure from task %s: %s", t.ID, t.ErrorMessage),
	}); err != nil {
		logger.Error("failed to record cascade audit event", "error", err)
	}

	if o.notifier != nil {
		if err := o.notifier.Notify(ctx, "DAG_EXECUTION_FAILED_AFTER_RETRIES", "workflow-executor", t.ErrorMessage); err != nil {
			logger.Error("failed to emit cascade notification", "error", err)
		}
	}
}

// resolveEagerDependents implements §4.6 step 6.
func (o *Orchestrator) resolveEagerDependents(ctx context.Context, completedTask *models.Task) {
	dependents, err := o.store.AwaitingDependency(ctx, completedTask.ID)
	if err != nil {
		logger.Error("failed to load dependents", "error", err, "task_id", completedTask.ID)
		return
	}

	for _, dep := range dependents {
		if dep.Kind != models.TaskKindVerification {
			// Workflow-kind dependents fall through to the next ready sweep;
			// Ready's dependency join already admits them now that their
			// prerequisite is complete.
			continue
		}

		started := time.Now().UTC()
		dep.Status = models.TaskRunning
		dep.StartedAt = &started
		dep.AttemptCount++
		if err := o.store.UpdateTask(ctx, dep); err != nil {
			logger.Error("failed to mark eager dependent running", "error", err, "task_id", dep.ID)
			continue
		}
		o.dispatch(ctx, dep, true)
	}
}

// CancelTask implements §4.6 cancellation.
func (o *Orchestrator) CancelTask(ctx context.Context, taskID, actor, reason string) error {
	t, err := o.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if !t.IsCancelable() {
		return models.ErrTaskNotCancelable
	}

	t.Status = models.TaskCancelled
	t.Result = models.EncodeCancellationResult(models.CancellationResult{CancelledBy: actor, Reason: reason})
	if err := o.store.UpdateTask(ctx, t); err != nil {
		return err
	}

	if t.Kind == models.TaskKindWorkflow {
		if payload, err := models.DecodeWorkflowPayload(t); err == nil && o.artefacts != nil {
			if err := o.artefacts.DeleteByPath(payload.ArtefactPath); err != nil {
				logger.Error("failed to delete artefact on cancel", "error", err, "task_id", t.ID)
			}
		}
	}
	return nil
}

// CancelSiblings cancels every cancelable task owned by a request as a
// single convenience operation (§4.6).
func (o *Orchestrator) CancelSiblings(ctx context.Context, requestID, actor, reason string) error {
	siblings, err := o.store.SiblingsOf(ctx, requestID)
	if err != nil {
		return err
	}
	for _, t := range siblings {
		if !t.IsCancelable() {
			continue
		}
		if err := o.CancelTask(ctx, t.ID, actor, reason); err != nil {
			return err
		}
	}
	return nil
}

// Purge implements §4.6 cleanup.
func (o *Orchestrator) Purge(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	return o.store.PurgeOlderThan(ctx, cutoff)
}
