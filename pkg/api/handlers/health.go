package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/permflow/engine/pkg/catalogue/store"
)

// dbPinger is implemented by store.GORMStore; asserted rather than added to
// store.Store so fakes used in handler tests don't need a DB() method.
type dbPinger interface {
	DB() *gorm.DB
}

// HealthHandler serves the unauthenticated liveness/readiness probes.
type HealthHandler struct {
	store store.Store
}

func NewHealthHandler(s store.Store) *HealthHandler {
	return &HealthHandler{store: s}
}

type healthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// Liveness reports the process is up, with no dependency checks.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	WriteJSONOK(w, healthResponse{Status: "ok", Time: time.Now().UTC().Format(time.RFC3339)})
}

// Readiness reports whether the catalogue store is reachable.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	pinger, ok := h.store.(dbPinger)
	if !ok {
		WriteJSONOK(w, healthResponse{Status: "ok", Time: time.Now().UTC().Format(time.RFC3339)})
		return
	}
	sqlDB, err := pinger.DB().DB()
	if err != nil || sqlDB.Ping() != nil {
		WriteProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "database unreachable")
		return
	}
	WriteJSONOK(w, healthResponse{Status: "ok", Time: time.Now().UTC().Format(time.RFC3339)})
}
