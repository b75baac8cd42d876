package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/permflow/engine/pkg/catalogue/store"
)

// NotificationHandler exposes C4's admin-notification table for an operator
// dashboard/CLI to triage and resolve outstanding alerts.
type NotificationHandler struct {
	store store.Store
}

func NewNotificationHandler(s store.Store) *NotificationHandler {
	return &NotificationHandler{store: s}
}

func (h *NotificationHandler) ListUnresolved(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListUnresolved(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSONOK(w, list)
}

func (h *NotificationHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.GetNotificationByFingerprint(r.Context(), chi.URLParam(r, "fingerprint"))
	if err != nil {
		WriteError(w, err)
		return
	}
	now := time.Now().UTC()
	n.Resolved = true
	n.ResolvedAt = &now
	if err := h.store.UpdateNotification(r.Context(), n); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSONOK(w, n)
}
