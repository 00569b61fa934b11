// Package httptransport is the thin HTTP layer. Handlers decode, delegate
// to domain services, and encode; no validation or integrity logic lives
// here.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shiftguard/internal/auditchain"
	"shiftguard/internal/compliance"
	platformmetrics "shiftguard/internal/platform/metrics"
	"shiftguard/internal/workforce"
	authmw "shiftguard/pkg/platform/middleware/auth"
	rolemw "shiftguard/pkg/platform/middleware/role"
)

// RoleManager may approve corrections and inspect audit chains. Workers
// hold RoleWorker and can only operate their own clock.
const (
	RoleWorker  = "worker"
	RoleManager = "manager"
)

// Handler wires the clock, compliance, and audit endpoints to their
// services.
type Handler struct {
	workforce  *workforce.Service
	compliance *compliance.Service
	audits     *auditchain.Service
	logger     *slog.Logger
}

// NewHandler builds the HTTP handler set.
func NewHandler(wf *workforce.Service, cs *compliance.Service, as *auditchain.Service, logger *slog.Logger) *Handler {
	return &Handler{
		workforce:  wf,
		compliance: cs,
		audits:     as,
		logger:     logger,
	}
}

// NewRouter mounts all endpoints. Everything except health and metrics
// sits behind bearer auth; correction approval and audit inspection
// additionally require the manager role.
func NewRouter(h *Handler, validator authmw.JWTValidator, httpMetrics *platformmetrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware)
	}

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(validator, h.logger))

		r.Post("/clock/in", h.handleClockIn)
		r.Post("/clock/out", h.handleClockOut)
		r.Post("/breaks/start", h.handleBreakStart)
		r.Post("/breaks/end", h.handleBreakEnd)

		r.Post("/compliance/validate", h.handleValidate)

		r.Group(func(r chi.Router) {
			r.Use(rolemw.Require(h.logger, RoleManager))

			r.Post("/corrections/approve", h.handleCorrectionApprove)
			r.Get("/audit/chains/{chainID}", h.handleChainList)
			r.Get("/audit/chains/{chainID}/verify", h.handleChainVerify)
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
