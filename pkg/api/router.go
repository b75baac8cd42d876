package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/permflow/engine/internal/logger"
	apiauth "github.com/permflow/engine/pkg/api/auth"
	"github.com/permflow/engine/pkg/api/handlers"
	apimw "github.com/permflow/engine/pkg/api/middleware"
	"github.com/permflow/engine/pkg/catalogue/store"
	"github.com/permflow/engine/pkg/metrics"
	"github.com/permflow/engine/pkg/requests"
)

// NewRouter builds the chi router for the control surface:
//
//	GET  /health, /health/ready           - unauthenticated probes
//	GET  /metrics                         - Prometheus scrape endpoint (absent if metrics disabled)
//	POST /api/v1/auth/login               - bootstrap admin login
//	POST /api/v1/requests                 - submit a permission request
//	GET  /api/v1/requests?status=         - list by status
//	GET  /api/v1/requests/{id}            - fetch one
//	POST /api/v1/requests/{id}/approve    - decide (admin or folder validator)
//	POST /api/v1/requests/{id}/reject
//	POST /api/v1/requests/{id}/cancel
//	POST /api/v1/requests/{id}/revoke
//	GET  /api/v1/requests/{id}/tasks      - task plan for a request
//	GET  /api/v1/tasks/{id}
//	POST /api/v1/tasks/{id}/cancel
//	GET  /api/v1/notifications
//	POST /api/v1/notifications/{fingerprint}/resolve
func NewRouter(s store.Store, engine *requests.Engine, tokens *apiauth.Service, admin handlers.AdminCredentials) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	health := handlers.NewHealthHandler(s)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", health.Liveness)
		r.Get("/ready", health.Readiness)
	})

	if h := metrics.Handler(); h != nil {
		r.Handle("/metrics", h)
	}

	authHandler := handlers.NewAuthHandler(admin, tokens)
	requestHandler := handlers.NewRequestHandler(engine, s)
	taskHandler := handlers.NewTaskHandler(s)
	notificationHandler := handlers.NewNotificationHandler(s)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(apimw.JWTAuth(tokens))

			r.Route("/requests", func(r chi.Router) {
				r.Post("/", requestHandler.Submit)
				r.Get("/", requestHandler.ListByStatus)
				r.Get("/{id}", requestHandler.Get)
				r.Post("/{id}/approve", requestHandler.Approve)
				r.Post("/{id}/reject", requestHandler.Reject)
				r.Post("/{id}/cancel", requestHandler.Cancel)
				r.Post("/{id}/revoke", requestHandler.Revoke)
				r.Get("/{requestID}/tasks", taskHandler.ListByRequest)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/{id}", taskHandler.Get)
				r.Post("/{id}/cancel", taskHandler.Cancel)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.ListUnresolved)
				r.Post("/{fingerprint}/resolve", notificationHandler.Resolve)
			})
		})
	})

	return r
}

// requestLogger logs each request through the shared structured logger,
// at DEBUG for health probes and INFO otherwise, mirroring the teacher's
// noise-reduction convention for k8s probe traffic.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		args := []any{
			"request_id", chimw.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		}
		if r.URL.Path == "/health" || r.URL.Path == "/health/ready" {
			logger.Debug("API request completed", args...)
		} else {
			logger.Info("API request completed", args...)
		}
	})
}
