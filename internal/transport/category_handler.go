package transport

import (
	"net/http"

	"german-butchery/internal/middleware"
	"german-butchery/internal/repository"
	"german-butchery/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name         string     `json:"name" validate:"required,max=100"`
	Slug         string     `json:"slug" validate:"omitempty,max=100"`
	Description  string     `json:"description"`
	ImageURL     string     `json:"image_url" validate:"omitempty,max=500"`
	ParentID     *uuid.UUID `json:"parent_id"`
	DisplayOrder int        `json:"display_order" validate:"gte=0"`
	IsActive     *bool      `json:"is_active"`
}

// UpdateCategoryRequest is a partial category update. clear_parent moves the
// category to the top level.
type UpdateCategoryRequest struct {
	Name         *string    `json:"name" validate:"omitempty,min=1,max=100"`
	Slug         *string    `json:"slug" validate:"omitempty,min=1,max=100"`
	Description  *string    `json:"description"`
	ImageURL     *string    `json:"image_url" validate:"omitempty,max=500"`
	ParentID     *uuid.UUID `json:"parent_id"`
	ClearParent  bool       `json:"clear_parent"`
	DisplayOrder *int       `json:"display_order" validate:"omitempty,gte=0"`
	IsActive     *bool      `json:"is_active"`
}

type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/categories", func(r chi.Router) {
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

// List handles GET /api/categories?parent=&include_inactive=&page=&limit=
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.CategoryFilter{IncludeInactive: queryBool(r, "include_inactive")}
	if raw := r.URL.Query().Get("parent"); raw != "" {
		parentID, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid parent")
			return
		}
		filter.ParentID = &parentID
	}

	page, err := h.categoryService.List(r.Context(), filter, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	category, err := h.categoryService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	category, err := h.categoryService.Create(r.Context(), service.CategoryInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		ParentID:     req.ParentID,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to create category")
		return
	}

	h.logger.Info("Category created", zap.String("category_id", category.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	category, err := h.categoryService.Update(r.Context(), id, service.CategoryUpdate{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		ParentID:     req.ParentID,
		ClearParent:  req.ClearParent,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete category")
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, "category deleted successfully")
}
