package transport

import (
	"encoding/json"
	"net/http"

	"german-butchery/internal/middleware"
	"german-butchery/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PutSettingRequest wraps the opaque JSON value of a setting
type PutSettingRequest struct {
	Value json.RawMessage `json:"value" validate:"required"`
}

type SettingHandler struct {
	settingService service.SettingService
	logger         *zap.Logger
}

func NewSettingHandler(settingService service.SettingService, logger *zap.Logger) *SettingHandler {
	return &SettingHandler{
		settingService: settingService,
		logger:         logger,
	}
}

func (h *SettingHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/settings", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{key}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(guards.Staff...)
			r.Put("/{key}", h.Put)
			r.Delete("/{key}", h.Delete)
		})
	})
}

// List returns every setting as one key to value object
func (h *SettingHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list settings")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, settings)
}

func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	setting, err := h.settingService.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get setting")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, setting)
}

// Put creates or replaces a setting
func (h *SettingHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req PutSettingRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	key := chi.URLParam(r, "key")
	setting, err := h.settingService.Put(r.Context(), key, req.Value)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to save setting")
		return
	}

	h.logger.Info("Setting saved", zap.String("key", key))
	middleware.RespondWithJSON(w, http.StatusOK, setting)
}

func (h *SettingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.settingService.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete setting")
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, "setting deleted successfully")
}
