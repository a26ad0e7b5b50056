package transport

import (
	"net/http"

	"german-butchery/internal/middleware"
	"german-butchery/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreateDeliveryZoneRequest struct {
	Name     string          `json:"name" validate:"required,max=100"`
	Fee      decimal.Decimal `json:"fee" validate:"gte=0"`
	IsActive *bool           `json:"is_active"`
}

type UpdateDeliveryZoneRequest struct {
	Name     *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Fee      *decimal.Decimal `json:"fee" validate:"omitempty,gte=0"`
	IsActive *bool            `json:"is_active"`
}

// DeliveryZoneHandler serves the delivery fee table
type DeliveryZoneHandler struct {
	zoneService service.DeliveryZoneService
	logger      *zap.Logger
}

func NewDeliveryZoneHandler(zoneService service.DeliveryZoneService, logger *zap.Logger) *DeliveryZoneHandler {
	return &DeliveryZoneHandler{
		zoneService: zoneService,
		logger:      logger,
	}
}

func (h *DeliveryZoneHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/delivery-zones", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(guards.Staff...)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

func (h *DeliveryZoneHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.zoneService.List(r.Context(), queryBool(r, "include_inactive"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list delivery zones")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

func (h *DeliveryZoneHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	zone, err := h.zoneService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get delivery zone")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, zone)
}

func (h *DeliveryZoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDeliveryZoneRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	zone, err := h.zoneService.Create(r.Context(), req.Name, req.Fee, req.IsActive)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to create delivery zone")
		return
	}

	h.logger.Info("Delivery zone created", zap.String("zone_id", zone.ID.String()), zap.String("name", zone.Name))
	middleware.RespondWithJSON(w, http.StatusCreated, zone)
}

func (h *DeliveryZoneHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateDeliveryZoneRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	zone, err := h.zoneService.Update(r.Context(), id, service.DeliveryZoneUpdate{
		Name:     req.Name,
		Fee:      req.Fee,
		IsActive: req.IsActive,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update delivery zone")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, zone)
}

func (h *DeliveryZoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.zoneService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete delivery zone")
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, "delivery zone deleted successfully")
}
