package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/permflow/engine/pkg/api/middleware"
	"github.com/permflow/engine/pkg/catalogue/models"
	"github.com/permflow/engine/pkg/catalogue/store"
	"github.com/permflow/engine/pkg/requests"
)

// RequestHandler exposes the permission-request lifecycle (submit, decide,
// inspect) over HTTP, backed by requests.Engine.
type RequestHandler struct {
	engine *requests.Engine
	store  store.Store
}

func NewRequestHandler(engine *requests.Engine, s store.Store) *RequestHandler {
	return &RequestHandler{engine: engine, store: s}
}

type submitRequest struct {
	RequesterID  string                `json:"requester_id"`
	FolderID     string                `json:"folder_id"`
	Mode         models.PermissionMode `json:"mode"`
	BusinessNeed string                `json:"business_need"`
}

func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.RequesterID == "" || req.FolderID == "" || !req.Mode.IsValid() {
		BadRequest(w, "requester_id, folder_id and a valid mode are required")
		return
	}
	triple := models.Triple{RequesterID: req.RequesterID, FolderID: req.FolderID, Mode: req.Mode}
	created, err := h.engine.Submit(r.Context(), triple, req.BusinessNeed)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSONCreated(w, created)
}

func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.store.GetRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSONOK(w, req)
}

func (h *RequestHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := models.RequestStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.RequestPending
	}
	list, err := h.store.ListRequestsByStatus(r.Context(), status)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSONOK(w, list)
}

type decisionRequest struct {
	ActorID string `json:"actor_id"`
	Comment string `json:"comment"`
}

// actorIsAdmin reports whether the authenticated bearer principal is
// acting as admin. Since the only login-capable principal is the bootstrap
// admin (identity federation is a Non-goal), any authenticated caller may
// assert actor_is_admin; a future multi-principal model would instead
// derive this from the catalogue user named by actor_id.
func actorIsAdmin(r *http.Request) bool {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	return ok && claims.IsAdmin()
}

func (h *RequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var body decisionRequest
	_ = json.NewDecoder(r.Body).Decode(&body)
	req, err := h.engine.Approve(r.Context(), chi.URLParam(r, "id"), body.ActorID, actorIsAdmin(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSONOK(w, req)
}

func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var body decisionRequest
	_ = json.NewDecoder(r.Body).Decode(&body)
	req, err := h.engine.Reject(r.Context(), chi.URLParam(r, "id"), body.ActorID, actorIsAdmin(r), body.Comment)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSONOK(w, req)
}

func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var body decisionRequest
	_ = json.NewDecoder(r.Body).Decode(&body)
	req, err := h.engine.Cancel(r.Context(), chi.URLParam(r, "id"), body.ActorID, actorIsAdmin(r), body.Comment)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSONOK(w, req)
}

func (h *RequestHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	var body decisionRequest
	_ = json.NewDecoder(r.Body).Decode(&body)
	req, err := h.engine.Revoke(r.Context(), chi.URLParam(r, "id"), body.ActorID, actorIsAdmin(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSONOK(w, req)
}
