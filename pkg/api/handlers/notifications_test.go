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

func newTestNotificationRouter(t *testing.T) (*chi.Mux, store.Store) {
	t.Helper()
	s, err := store.New(&store.Config{Type: store.DatabaseTypeSQLite, SQLite: store.SQLiteConfig{Path: ":memory:"}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	h := NewNotificationHandler(s)
	r := chi.NewRouter()
	r.Get("/notifications", h.ListUnresolved)
	r.Post("/notifications/{fingerprint}/resolve", h.Resolve)
	return r, s
}

func TestNotificationHandler_ListUnresolved(t *testing.T) {
	t.Parallel()

	router, s := newTestNotificationRouter(t)
	_, err := s.CreateNotification(t.Context(), &models.AdminNotification{
		Fingerprint: "fp-1", ErrorType: "e", ServiceName: "s", Message: "m",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fp-1")
}

func TestNotificationHandler_Resolve(t *testing.T) {
	t.Parallel()

	router, s := newTestNotificationRouter(t)
	_, err := s.CreateNotification(t.Context(), &models.AdminNotification{
		Fingerprint: "fp-1", ErrorType: "e", ServiceName: "s", Message: "m",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notifications/fp-1/resolve", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	n, err := s.GetNotificationByFingerprint(t.Context(), "fp-1")
	require.NoError(t, err)
	assert.True(t, n.Resolved)
	assert.NotNil(t, n.ResolvedAt)
}

func TestNotificationHandler_Resolve_NotFound(t *testing.T) {
	t.Parallel()

	router, _ := newTestNotificationRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notifications/does-not-exist/resolve", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
