package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permflow/engine/pkg/catalogue/models"
	"github.com/permflow/engine/pkg/catalogue/store"
)

func newTestTaskRouter(t *testing.T) (*chi.Mux, store.Store) {
	t.Helper()
	s, err := store.New(&store.Config{Type: store.DatabaseTypeSQLite, SQLite: store.SQLiteConfig{Path: ":memory:"}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	h := NewTaskHandler(s)
	r := chi.NewRouter()
	r.Get("/tasks/{id}", h.Get)
	r.Post("/tasks/{id}/cancel", h.Cancel)
	r.Get("/requests/{requestID}/tasks", h.ListByRequest)
	return r, s
}

func seedTask(t *testing.T, s store.Store, requestID string, status models.TaskStatus) *models.Task {
	t.Helper()
	task := &models.Task{
		PermissionRequestID: &requestID,
		Kind:                models.TaskKindWorkflow,
		Status:              status,
	}
	id, err := s.CreateTask(t.Context(), task)
	require.NoError(t, err)
	task.ID = id
	return task
}

func TestTaskHandler_Get(t *testing.T) {
	t.Parallel()

	router, s := newTestTaskRouter(t)
	task := seedTask(t, s, "req-1", models.TaskPending)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks/"+task.ID, nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTaskHandler_Get_NotFound(t *testing.T) {
	t.Parallel()

	router, _ := newTestTaskRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks/does-not-exist", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskHandler_ListByRequest(t *testing.T) {
	t.Parallel()

	router, s := newTestTaskRouter(t)
	seedTask(t, s, "req-1", models.TaskPending)
	seedTask(t, s, "req-1", models.TaskPending)
	seedTask(t, s, "req-2", models.TaskPending)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/requests/req-1/tasks", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"permission_request_id":"req-1"`)
}

func TestTaskHandler_Cancel(t *testing.T) {
	t.Parallel()

	router, s := newTestTaskRouter(t)
	task := seedTask(t, s, "req-1", models.TaskPending)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tasks/"+task.ID+"/cancel", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	got, err := s.GetTask(t.Context(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCancelled, got.Status)
}

func TestTaskHandler_Cancel_RefusesNonCancelable(t *testing.T) {
	t.Parallel()

	router, s := newTestTaskRouter(t)
	task := seedTask(t, s, "req-1", models.TaskCompleted)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tasks/"+task.ID+"/cancel", nil)
	router.ServeHTTP(rec, req)

	assert.NotEqual(t, http.StatusOK, rec.Code)
}
