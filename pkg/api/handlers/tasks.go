package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/permflow/engine/pkg/catalogue/models"
	"github.com/permflow/engine/pkg/catalogue/store"
)

// TaskHandler exposes read access to the task pipeline and cancellation of
// not-yet-dispatched tasks (§4.6). Tasks are otherwise driven entirely by
// the orchestrator; the API never dispatches one directly.
type TaskHandler struct {
	store store.Store
}

func NewTaskHandler(s store.Store) *TaskHandler {
	return &TaskHandler{store: s}
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSONOK(w, task)
}

func (h *TaskHandler) ListByRequest(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.ListByRequest(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSONOK(w, tasks)
}

func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	if !task.IsCancelable() {
		WriteError(w, models.ErrTaskNotCancelable)
		return
	}
	task.Status = models.TaskCancelled
	if err := h.store.UpdateTask(r.Context(), task); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSONOK(w, task)
}
