package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"german-butchery/internal/domain"
	"german-butchery/internal/repository"

	"github.com/google/uuid"
)

// CategoryInput carries the fields of a new category
type CategoryInput struct {
	Name         string
	Slug         string
	Description  string
	ImageURL     string
	ParentID     *uuid.UUID
	DisplayOrder int
	IsActive     *bool
}

// CategoryUpdate carries a partial category update
type CategoryUpdate struct {
	Name         *string
	Slug         *string
	Description  *string
	ImageURL     *string
	ParentID     *uuid.UUID
	ClearParent  bool
	DisplayOrder *int
	IsActive     *bool
}

// CategoryService defines the interface for category business logic
type CategoryService interface {
	List(ctx context.Context, filter repository.CategoryFilter, page, limit int) (domain.Page[*domain.Category], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Create(ctx context.Context, in CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, in CategoryUpdate) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) List(ctx context.Context, filter repository.CategoryFilter, page, limit int) (domain.Page[*domain.Category], error) {
	req := domain.NewPageRequest(page, limit)

	categories, total, err := s.categoryRepo.List(ctx, filter, req)
	if err != nil {
		return domain.Page[*domain.Category]{}, fmt.Errorf("failed to list categories: %w", err)
	}

	return domain.NewPage(categories, req, total), nil
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (s *categoryService) Create(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	category := &domain.Category{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(in.Name),
		Slug:         strings.TrimSpace(in.Slug),
		Description:  in.Description,
		ImageURL:     strings.TrimSpace(in.ImageURL),
		ParentID:     in.ParentID,
		DisplayOrder: in.DisplayOrder,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}

	if err := validateCategory(category); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, in CategoryUpdate) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if in.Name != nil {
		category.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		category.Slug = strings.TrimSpace(*in.Slug)
	}
	if in.Description != nil {
		category.Description = *in.Description
	}
	if in.ImageURL != nil {
		category.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.ClearParent {
		category.ParentID = nil
	} else if in.ParentID != nil {
		category.ParentID = in.ParentID
	}
	if in.DisplayOrder != nil {
		category.DisplayOrder = *in.DisplayOrder
	}
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}

	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if !in.ClearParent && in.ParentID != nil {
		if err := s.checkAncestry(ctx, category); err != nil {
			return nil, err
		}
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// checkAncestry walks up from the new parent and rejects the move when the
// category shows up among its own ancestors
func (s *categoryService) checkAncestry(ctx context.Context, c *domain.Category) error {
	seen := map[uuid.UUID]bool{}
	for next := c.ParentID; next != nil; {
		if *next == c.ID {
			return validationError("a category cannot be nested under its own descendant")
		}
		if seen[*next] {
			// pre-existing loop above the new parent; it does not pass through c
			return nil
		}
		seen[*next] = true

		ancestor, err := s.categoryRepo.FindByID(ctx, *next)
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return validationError("parent category not found")
		}
		if err != nil {
			return fmt.Errorf("failed to load parent category: %w", err)
		}
		next = ancestor.ParentID
	}
	return nil
}

func validateCategory(c *domain.Category) error {
	switch {
	case c.Name == "":
		return validationError("name is required")
	case c.Slug == "":
		return validationError("slug is required")
	case c.ParentID != nil && *c.ParentID == c.ID:
		return validationError("a category cannot be its own parent")
	}
	return nil
}
