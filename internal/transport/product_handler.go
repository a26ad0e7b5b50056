package transport

import (
	"fmt"
	"net/http"

	"german-butchery/internal/middleware"
	"german-butchery/internal/repository"
	"german-butchery/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductImageRequest is one image in a product write
type ProductImageRequest struct {
	ImageURL     string `json:"image_url" validate:"required,max=500"`
	DisplayOrder *int   `json:"display_order" validate:"omitempty,gte=0"`
	IsPrimary    bool   `json:"is_primary"`
}

// ProductUnitRequest is one sellable unit in a product write
type ProductUnitRequest struct {
	Unit       string          `json:"unit" validate:"required,max=20"`
	Multiplier decimal.Decimal `json:"multiplier" validate:"gt=0"`
	IsDefault  bool            `json:"is_default"`
}

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	SKU              *string               `json:"sku" validate:"omitempty,max=64"`
	Title            string                `json:"title" validate:"required,max=255"`
	Slug             string                `json:"slug" validate:"omitempty,max=255"`
	Description      string                `json:"description"`
	BaseUnit         string                `json:"base_unit" validate:"required,max=20"`
	BaseUnitInGrams  *int                  `json:"base_unit_in_grams" validate:"omitempty,gt=0"`
	PricePerBaseUnit decimal.Decimal       `json:"price_per_base_unit" validate:"gte=0"`
	Currency         string                `json:"currency" validate:"omitempty,len=3"`
	IsActive         *bool                 `json:"is_active"`
	CategoryIDs      []uuid.UUID           `json:"category_ids"`
	Images           []ProductImageRequest `json:"images" validate:"omitempty,dive"`
	Units            []ProductUnitRequest  `json:"units" validate:"omitempty,dive"`
}

// UpdateProductRequest is a partial product update. Supplied collections
// replace the stored ones.
type UpdateProductRequest struct {
	SKU              *string                `json:"sku" validate:"omitempty,max=64"`
	Title            *string                `json:"title" validate:"omitempty,min=1,max=255"`
	Slug             *string                `json:"slug" validate:"omitempty,min=1,max=255"`
	Description      *string                `json:"description"`
	BaseUnit         *string                `json:"base_unit" validate:"omitempty,min=1,max=20"`
	BaseUnitInGrams  *int                   `json:"base_unit_in_grams" validate:"omitempty,gt=0"`
	PricePerBaseUnit *decimal.Decimal       `json:"price_per_base_unit" validate:"omitempty,gte=0"`
	Currency         *string                `json:"currency" validate:"omitempty,len=3"`
	IsActive         *bool                  `json:"is_active"`
	CategoryIDs      *[]uuid.UUID           `json:"category_ids"`
	Images           *[]ProductImageRequest `json:"images" validate:"omitempty,dive"`
	Units            *[]ProductUnitRequest  `json:"units" validate:"omitempty,dive"`
}

// BulkUpdateRequest applies the same patch to a set of products
type BulkUpdateRequest struct {
	ProductIDs []uuid.UUID      `json:"product_ids"`
	Updates    BulkUpdateFields `json:"updates"`
}

// BulkUpdateFields are the fields a bulk update may set
type BulkUpdateFields struct {
	IsActive         *bool            `json:"is_active"`
	PricePerBaseUnit *decimal.Decimal `json:"price_per_base_unit" validate:"omitempty,gte=0"`
	Currency         *string          `json:"currency" validate:"omitempty,len=3"`
}

func imageInputs(in []ProductImageRequest) []service.ImageInput {
	out := make([]service.ImageInput, len(in))
	for i, img := range in {
		out[i] = service.ImageInput{ImageURL: img.ImageURL, DisplayOrder: img.DisplayOrder, IsPrimary: img.IsPrimary}
	}
	return out
}

func unitInputs(in []ProductUnitRequest) []service.UnitInput {
	out := make([]service.UnitInput, len(in))
	for i, u := range in {
		out[i] = service.UnitInput{Unit: u.Unit, Multiplier: u.Multiplier, IsDefault: u.IsDefault}
	}
	return out
}

// ProductHandler handles HTTP requests for the catalog
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(guards.Staff...)
			r.Post("/", h.Create)
			r.Post("/bulk-update", h.BulkUpdate)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List handles GET /api/products?category=&search=&include_inactive=&sort_by=&sort_order=&page=&limit=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.ProductFilter{
		CategorySlug:    q.Get("category"),
		Search:          q.Get("search"),
		IncludeInactive: queryBool(r, "include_inactive"),
		SortBy:          q.Get("sort_by"),
		SortOrder:       repository.ParseSortOrder(q.Get("sort_order")),
	}

	page, err := h.productService.List(r.Context(), filter, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.productService.Create(r.Context(), service.ProductInput{
		SKU:              req.SKU,
		Title:            req.Title,
		Slug:             req.Slug,
		Description:      req.Description,
		BaseUnit:         req.BaseUnit,
		BaseUnitInGrams:  req.BaseUnitInGrams,
		PricePerBaseUnit: req.PricePerBaseUnit,
		Currency:         req.Currency,
		IsActive:         req.IsActive,
		CategoryIDs:      req.CategoryIDs,
		Images:           imageInputs(req.Images),
		Units:            unitInputs(req.Units),
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("slug", product.Slug))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	update := service.ProductUpdate{
		SKU:              req.SKU,
		Title:            req.Title,
		Slug:             req.Slug,
		Description:      req.Description,
		BaseUnit:         req.BaseUnit,
		BaseUnitInGrams:  req.BaseUnitInGrams,
		PricePerBaseUnit: req.PricePerBaseUnit,
		Currency:         req.Currency,
		IsActive:         req.IsActive,
		CategoryIDs:      req.CategoryIDs,
	}
	if req.Images != nil {
		images := imageInputs(*req.Images)
		update.Images = &images
	}
	if req.Units != nil {
		units := unitInputs(*req.Units)
		update.Units = &units
	}

	product, err := h.productService.Update(r.Context(), id, update)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithMessage(w, http.StatusOK, "product deleted successfully")
}

// BulkUpdate applies one patch to every selected product
func (h *ProductHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req BulkUpdateRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	n, err := h.productService.BulkUpdate(r.Context(), req.ProductIDs, repository.ProductPatch{
		IsActive:         req.Updates.IsActive,
		PricePerBaseUnit: req.Updates.PricePerBaseUnit,
		Currency:         req.Updates.Currency,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to bulk update products")
		return
	}

	h.logger.Info("Products bulk updated", zap.Int("selected", len(req.ProductIDs)), zap.Int64("updated", n))
	middleware.RespondWithMessage(w, http.StatusOK, fmt.Sprintf("%d products updated successfully", n))
}
