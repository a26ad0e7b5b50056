package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"german-butchery/internal/domain"
	"german-butchery/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImageInput describes one product image in a write request
type ImageInput struct {
	ImageURL     string
	DisplayOrder *int
	IsPrimary    bool
}

// UnitInput describes one sellable unit in a write request
type UnitInput struct {
	Unit       string
	Multiplier decimal.Decimal
	IsDefault  bool
}

// ProductInput carries the fields of a new product
type ProductInput struct {
	SKU              *string
	Title            string
	Slug             string
	Description      string
	BaseUnit         string
	BaseUnitInGrams  *int
	PricePerBaseUnit decimal.Decimal
	Currency         string
	IsActive         *bool
	CategoryIDs      []uuid.UUID
	Images           []ImageInput
	Units            []UnitInput
}

// ProductUpdate carries a partial product update. Nil fields are kept and
// non-nil child collections replace the stored ones.
type ProductUpdate struct {
	SKU              *string
	Title            *string
	Slug             *string
	Description      *string
	BaseUnit         *string
	BaseUnitInGrams  *int
	PricePerBaseUnit *decimal.Decimal
	Currency         *string
	IsActive         *bool
	CategoryIDs      *[]uuid.UUID
	Images           *[]ImageInput
	Units            *[]UnitInput
}

// ProductService defines the interface for catalog business logic
type ProductService interface {
	List(ctx context.Context, filter repository.ProductFilter, page, limit int) (domain.Page[*domain.Product], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, in ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, in ProductUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	BulkUpdate(ctx context.Context, ids []uuid.UUID, patch repository.ProductPatch) (int64, error)
}

type productService struct {
	productRepo     repository.ProductRepository
	defaultCurrency string
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, defaultCurrency string) ProductService {
	if defaultCurrency == "" {
		defaultCurrency = domain.DefaultCurrency
	}
	return &productService{productRepo: productRepo, defaultCurrency: defaultCurrency}
}

func (s *productService) List(ctx context.Context, filter repository.ProductFilter, page, limit int) (domain.Page[*domain.Product], error) {
	req := domain.NewPageRequest(page, limit)

	products, total, err := s.productRepo.List(ctx, filter, req)
	if err != nil {
		return domain.Page[*domain.Product]{}, fmt.Errorf("failed to list products: %w", err)
	}

	return domain.NewPage(products, req, total), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// Create validates the input, derives the slug when absent and stores the
// product with its children.
func (s *productService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	product := &domain.Product{
		ID:               uuid.New(),
		SKU:              normalizeSKU(in.SKU),
		Title:            strings.TrimSpace(in.Title),
		Slug:             strings.TrimSpace(in.Slug),
		Description:      in.Description,
		BaseUnit:         strings.TrimSpace(in.BaseUnit),
		BaseUnitInGrams:  in.BaseUnitInGrams,
		PricePerBaseUnit: in.PricePerBaseUnit,
		Currency:         strings.ToUpper(strings.TrimSpace(in.Currency)),
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if product.Currency == "" {
		product.Currency = s.defaultCurrency
	}
	if product.Slug == "" {
		product.Slug = Slugify(product.Title)
	}

	if err := validateProduct(product); err != nil {
		return nil, err
	}

	product.Categories = categoryRefs(in.CategoryIDs)
	product.Images = buildImages(in.Images)

	units, err := buildUnits(product.BaseUnit, in.Units)
	if err != nil {
		return nil, err
	}
	product.Units = units

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return s.Get(ctx, product.ID)
}

// Update merges the supplied fields onto the stored product
func (s *productService) Update(ctx context.Context, id uuid.UUID, in ProductUpdate) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if in.SKU != nil {
		product.SKU = normalizeSKU(in.SKU)
	}
	if in.Title != nil {
		product.Title = strings.TrimSpace(*in.Title)
	}
	if in.Slug != nil {
		product.Slug = strings.TrimSpace(*in.Slug)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.BaseUnit != nil {
		product.BaseUnit = strings.TrimSpace(*in.BaseUnit)
	}
	if in.BaseUnitInGrams != nil {
		product.BaseUnitInGrams = in.BaseUnitInGrams
	}
	if in.PricePerBaseUnit != nil {
		product.PricePerBaseUnit = *in.PricePerBaseUnit
	}
	if in.Currency != nil {
		product.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}

	if err := validateProduct(product); err != nil {
		return nil, err
	}

	replace := repository.ProductReplace{}
	if in.CategoryIDs != nil {
		product.Categories = categoryRefs(*in.CategoryIDs)
		replace.Categories = true
	}
	if in.Images != nil {
		product.Images = buildImages(*in.Images)
		replace.Images = true
	}
	if in.Units != nil {
		units, err := buildUnits(product.BaseUnit, *in.Units)
		if err != nil {
			return nil, err
		}
		product.Units = units
		replace.Units = true
	}

	if err := s.productRepo.Update(ctx, product, replace); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.Get(ctx, id)
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// BulkUpdate rejects an empty selection or patch before touching storage
func (s *productService) BulkUpdate(ctx context.Context, ids []uuid.UUID, patch repository.ProductPatch) (int64, error) {
	if len(ids) == 0 {
		return 0, validationError("no product ids provided")
	}
	if patch.Empty() {
		return 0, validationError("no fields to update")
	}
	if patch.PricePerBaseUnit != nil {
		if err := validateAmount("price_per_base_unit", *patch.PricePerBaseUnit); err != nil {
			return 0, err
		}
	}
	if patch.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*patch.Currency))
		if len(currency) != 3 {
			return 0, validationError("currency must be a three letter code")
		}
		patch.Currency = &currency
	}

	n, err := s.productRepo.BulkUpdate(ctx, ids, patch)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update products: %w", err)
	}
	return n, nil
}

func validateProduct(p *domain.Product) error {
	if err := validateAmount("price_per_base_unit", p.PricePerBaseUnit); err != nil {
		return err
	}

	switch {
	case p.Title == "":
		return validationError("title is required")
	case p.Slug == "":
		return validationError("slug is required")
	case p.BaseUnit == "":
		return validationError("base_unit is required")
	case len(p.Currency) != 3:
		return validationError("currency must be a three letter code")
	case p.BaseUnitInGrams != nil && *p.BaseUnitInGrams <= 0:
		return validationError("base_unit_in_grams must be positive")
	}
	return nil
}

func normalizeSKU(sku *string) *string {
	if sku == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*sku)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func categoryRefs(ids []uuid.UUID) []domain.CategorySummary {
	seen := make(map[uuid.UUID]bool, len(ids))
	refs := make([]domain.CategorySummary, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		refs = append(refs, domain.CategorySummary{ID: id})
	}
	return refs
}

// buildImages keeps the request order unless explicit display orders are given
func buildImages(in []ImageInput) []domain.ProductImage {
	images := make([]domain.ProductImage, 0, len(in))
	for i, img := range in {
		order := i
		if img.DisplayOrder != nil {
			order = *img.DisplayOrder
		}
		images = append(images, domain.ProductImage{
			ImageURL:     strings.TrimSpace(img.ImageURL),
			DisplayOrder: order,
			IsPrimary:    img.IsPrimary,
		})
	}
	return domain.NormalizeImages(images)
}

// buildUnits always offers the base unit at multiplier 1 and flags exactly one
// default unit.
func buildUnits(baseUnit string, in []UnitInput) ([]domain.ProductUnit, error) {
	units := make([]domain.ProductUnit, 0, len(in)+1)
	seen := make(map[string]bool, len(in)+1)
	defaultIdx := -1

	for _, u := range in {
		name := strings.TrimSpace(u.Unit)
		if name == "" {
			return nil, validationError("unit name is required")
		}
		if seen[name] {
			return nil, validationError("unit %q listed twice", name)
		}
		if !u.Multiplier.IsPositive() {
			return nil, validationError("multiplier of unit %q must be positive", name)
		}
		if !domain.FitsScale(u.Multiplier, domain.QuantityScale) {
			return nil, validationError("multiplier of unit %q supports at most %d decimal places", name, domain.QuantityScale)
		}
		if name == baseUnit && !u.Multiplier.Equal(decimal.NewFromInt(1)) {
			return nil, validationError("base unit %q must have multiplier 1", name)
		}
		seen[name] = true
		if u.IsDefault && defaultIdx < 0 {
			defaultIdx = len(units)
		}
		units = append(units, domain.ProductUnit{Unit: name, Multiplier: u.Multiplier})
	}

	if !seen[baseUnit] {
		units = append([]domain.ProductUnit{{Unit: baseUnit, Multiplier: decimal.NewFromInt(1)}}, units...)
		if defaultIdx >= 0 {
			defaultIdx++
		}
	}

	if defaultIdx < 0 {
		for i := range units {
			if units[i].Unit == baseUnit {
				defaultIdx = i
				break
			}
		}
	}
	units[defaultIdx].IsDefault = true

	return units, nil
}
