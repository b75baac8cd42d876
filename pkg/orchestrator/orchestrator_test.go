package orchestrator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permflow/engine/pkg/artifact"
	"github.com/permflow/engine/pkg/catalogue/models"
	"github.com/permflow/engine/pkg/catalogue/store"
	"github.com/permflow/engine/pkg/workflowclient"
)

// newTestOrchestrator wires an Orchestrator against a throwaway in-memory
// SQLite store and a workflowclient.Client pointed at an httptest.Server
// standing in for the workflow executor. The directory adapter is left
// nil: these tests only dispatch workflow-kind tasks, so verification
// dispatch (which needs a live LDAP connection) never runs.
func newTestOrchestrator(t *testing.T, handler http.HandlerFunc) (*Orchestrator, store.Store) {
	t.Helper()

	s, err := store.New(&store.Config{Type: store.DatabaseTypeSQLite, SQLite: store.SQLiteConfig{Path: ":memory:"}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	wf := workflowclient.New(workflowclient.Config{
		BaseURL: server.URL + "/api/v1", Username: "svc", Password: "secret", Style: workflowclient.AuthStyleBasic,
	})

	writer, err := artifact.New(artifact.Config{OutputDir: t.TempDir()}, nil)
	require.NoError(t, err)

	o := New(Config{
		BatchSize:        10,
		ImmediateTimeout: time.Second,
		PollInterval:     10 * time.Millisecond,
		RetryDelay:       time.Millisecond,
	}, s, wf, nil, writer, nil)

	return o, s
}

func seedWorkflowTask(t *testing.T, s store.Store, requestID string) *models.Task {
	t.Helper()
	payload := models.EncodeWorkflowPayload(models.WorkflowPayload{
		PermissionRequestID: requestID,
		RequesterUsername:   "alice",
		FolderID:            "f-1",
		GroupID:             "g-1",
		GroupName:           "finance-read",
		Mode:                models.ModeRead,
		Action:              models.ActionAdd,
	})
	task := &models.Task{
		Kind:                models.TaskKindWorkflow,
		Status:              models.TaskPending,
		PermissionRequestID: &requestID,
		Payload:             payload,
	}
	id, err := s.CreateTask(t.Context(), task)
	require.NoError(t, err)
	task.ID = id
	return task
}

// alwaysSuccessWorkflow answers both SubmitRun and GetRun with a successful
// terminal state, regardless of path.
func alwaysSuccessWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		_ = json.NewEncoder(w).Encode(map[string]string{"dag_run_id": "run-1"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"state": "success"})
}

// alwaysFailWorkflow answers GetRun with a terminal failed state; only the
// fast (immediate) path ever reaches GetRun, so this models a run that was
// accepted but failed asynchronously after submission.
func alwaysFailWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		_ = json.NewEncoder(w).Encode(map[string]string{"dag_run_id": "run-1"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"state": "failed"})
}

// rejectsSubmissionWorkflow fails at SubmitRun itself — the only failure a
// non-immediate (Tick-driven) workflow dispatch can still observe, since
// that path treats submission acknowledgement alone as success and never
// polls GetRun.
func rejectsSubmissionWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "executor unavailable"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"state": "failed"})
}

func TestTick_CompletesReadyWorkflowTask(t *testing.T) {
	t.Parallel()

	o, s := newTestOrchestrator(t, alwaysSuccessWorkflow)
	task := seedWorkflowTask(t, s, "req-1")

	require.NoError(t, o.Tick(t.Context()))

	got, err := s.GetTask(t.Context(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, got.Status)
	assert.Equal(t, 1, got.AttemptCount)
}

func TestTick_SchedulesRetryOnFailure(t *testing.T) {
	t.Parallel()

	o, s := newTestOrchestrator(t, rejectsSubmissionWorkflow)
	task := seedWorkflowTask(t, s, "req-1")
	task.MaxAttempts = 3
	require.NoError(t, s.UpdateTask(t.Context(), task))

	require.NoError(t, o.Tick(t.Context()))

	got, err := s.GetTask(t.Context(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskRetry, got.Status)
	assert.NotNil(t, got.NextExecutionTime)
}

func TestTick_CascadesFailureToRequestWhenAttemptsExhausted(t *testing.T) {
	t.Parallel()

	o, s := newTestOrchestrator(t, rejectsSubmissionWorkflow)
	task := seedWorkflowTask(t, s, "req-1")
	task.MaxAttempts = 1
	require.NoError(t, s.UpdateTask(t.Context(), task))

	// the normal workflow+verify chain: the verify task depends on the
	// workflow task and starts out pending, same as Approve's TaskPlan.
	verifyPayload := models.EncodeVerificationPayload(models.VerificationPayload{
		PermissionRequestID: "req-1", RequesterUsername: "alice", GroupName: "finance-read",
	})
	verifyTask := &models.Task{
		Kind:                models.TaskKindVerification,
		Status:              models.TaskPending,
		PermissionRequestID: strPtr("req-1"),
		DependsOnTaskID:     &task.ID,
		Payload:             verifyPayload,
	}
	verifyID, err := s.CreateTask(t.Context(), verifyTask)
	require.NoError(t, err)

	req := &models.PermissionRequest{ID: "req-1", RequesterID: "u-1", FolderID: "f-1", Mode: models.ModeRead, Status: models.RequestApproved}
	_, err = s.CreateRequest(t.Context(), req)
	require.NoError(t, err)

	require.NoError(t, o.Tick(t.Context()))

	gotTask, err := s.GetTask(t.Context(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskFailed, gotTask.Status)

	gotVerify, err := s.GetTask(t.Context(), verifyID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCancelled, gotVerify.Status, "a dependent on a failed task can never become ready, so cascade must cancel it")

	gotReq, err := s.GetRequest(t.Context(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestFailed, gotReq.Status)
}

func strPtr(s string) *string { return &s }

func TestAttemptNow_DispatchesImmediatelyAndStampsExecutionType(t *testing.T) {
	t.Parallel()

	o, s := newTestOrchestrator(t, alwaysSuccessWorkflow)
	task := seedWorkflowTask(t, s, "req-1")

	require.NoError(t, o.AttemptNow(t.Context(), task.ID))

	got, err := s.GetTask(t.Context(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, got.Status)

	result, err := models.DecodeWorkflowResult(got)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionImmediate, result.ExecutionType)
}

func TestAttemptNow_FailsOnTerminalNonSuccessState(t *testing.T) {
	t.Parallel()

	o, s := newTestOrchestrator(t, alwaysFailWorkflow)
	task := seedWorkflowTask(t, s, "req-1")
	task.MaxAttempts = 1
	require.NoError(t, s.UpdateTask(t.Context(), task))

	require.NoError(t, o.AttemptNow(t.Context(), task.ID))

	got, err := s.GetTask(t.Context(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskFailed, got.Status, "the fast path polls GetRun to terminal, so an async failure surfaces immediately")
}

func TestAttemptNow_NoOpOnNonPendingTask(t *testing.T) {
	t.Parallel()

	o, s := newTestOrchestrator(t, alwaysSuccessWorkflow)
	task := seedWorkflowTask(t, s, "req-1")
	task.Status = models.TaskCompleted
	require.NoError(t, s.UpdateTask(t.Context(), task))

	require.NoError(t, o.AttemptNow(t.Context(), task.ID))

	got, err := s.GetTask(t.Context(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AttemptCount, "already-completed task is untouched")
}

func TestCancelTask_RefusesNonCancelable(t *testing.T) {
	t.Parallel()

	o, s := newTestOrchestrator(t, alwaysSuccessWorkflow)
	task := seedWorkflowTask(t, s, "req-1")
	task.Status = models.TaskCompleted
	require.NoError(t, s.UpdateTask(t.Context(), task))

	err := o.CancelTask(t.Context(), task.ID, "admin", "no longer needed")
	assert.ErrorIs(t, err, models.ErrTaskNotCancelable)
}

func TestCancelTask_CancelsPendingTask(t *testing.T) {
	t.Parallel()

	o, s := newTestOrchestrator(t, alwaysSuccessWorkflow)
	task := seedWorkflowTask(t, s, "req-1")

	require.NoError(t, o.CancelTask(t.Context(), task.ID, "admin", "superseded"))

	got, err := s.GetTask(t.Context(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCancelled, got.Status)
}

func TestCancelSiblings_CancelsAllCancelableTasksForRequest(t *testing.T) {
	t.Parallel()

	o, s := newTestOrchestrator(t, alwaysSuccessWorkflow)
	t1 := seedWorkflowTask(t, s, "req-1")
	t2 := seedWorkflowTask(t, s, "req-1")
	t2.Status = models.TaskCompleted
	require.NoError(t, s.UpdateTask(t.Context(), t2))

	require.NoError(t, o.CancelSiblings(t.Context(), "req-1", "admin", "cancel all"))

	got1, err := s.GetTask(t.Context(), t1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCancelled, got1.Status)

	got2, err := s.GetTask(t.Context(), t2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, got2.Status, "already-terminal sibling is left alone")
}

func TestPurge_RemovesOldTerminalTasks(t *testing.T) {
	t.Parallel()

	o, s := newTestOrchestrator(t, alwaysSuccessWorkflow)
	task := seedWorkflowTask(t, s, "req-1")
	task.Status = models.TaskCompleted
	require.NoError(t, s.UpdateTask(t.Context(), task))

	removed, err := o.Purge(t.Context(), -1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
