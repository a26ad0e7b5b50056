package transport

import (
	"net/http"

	"german-butchery/internal/middleware"
	"german-butchery/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

func (h *DashboardHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(guards.Staff...)
		r.Get("/dashboard", h.Stats)
	})
}

// Stats returns order, product and revenue counters for the admin console
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.Stats(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to load dashboard")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}
