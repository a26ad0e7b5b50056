package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a product or order does not carry one
const DefaultCurrency = "RWF"

var ErrUnknownUnit = errors.New("unit is not offered for this product")

// Product represents a product in the catalog
type Product struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	SKU              *string         `json:"sku,omitempty" db:"sku"`
	Title            string          `json:"title" db:"title"`
	Slug             string          `json:"slug" db:"slug"`
	Description      string          `json:"description" db:"description"`
	BaseUnit         string          `json:"base_unit" db:"base_unit"`
	BaseUnitInGrams  *int            `json:"base_unit_in_grams,omitempty" db:"base_unit_in_grams"`
	PricePerBaseUnit decimal.Decimal `json:"price_per_base_unit" db:"price_per_base_unit"`
	Currency         string          `json:"currency" db:"currency"`
	IsActive         bool            `json:"is_active" db:"is_active"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`

	Categories []CategorySummary `json:"categories"`
	Images     []ProductImage    `json:"images"`
	Units      []ProductUnit     `json:"units"`
}

// ProductUnit is a sellable unit variant expressed as a multiple of the base unit
type ProductUnit struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ProductID  uuid.UUID       `json:"product_id" db:"product_id"`
	Unit       string          `json:"unit" db:"unit"`
	Multiplier decimal.Decimal `json:"multiplier" db:"multiplier"`
	IsDefault  bool            `json:"is_default" db:"is_default"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// ProductImage is an ordered product picture
type ProductImage struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	ImageURL     string    `json:"image_url" db:"image_url"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	IsPrimary    bool      `json:"is_primary" db:"is_primary"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// CategorySummary is the slice of a category embedded in a product
type CategorySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// Multiplier resolves how many base units one unit of the given name holds.
// The base unit always resolves to 1, even without an explicit variant row.
func (p *Product) Multiplier(unit string) (decimal.Decimal, error) {
	for _, u := range p.Units {
		if u.Unit == unit {
			return u.Multiplier, nil
		}
	}
	if unit == p.BaseUnit {
		return decimal.NewFromInt(1), nil
	}
	return decimal.Zero, ErrUnknownUnit
}

// UnitPrice returns the price of one unit of the given variant, rounded to
// cents
func (p *Product) UnitPrice(unit string) (decimal.Decimal, error) {
	multiplier, err := p.Multiplier(unit)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundMoney(p.PricePerBaseUnit.Mul(multiplier)), nil
}

// DefaultUnit returns the flagged default variant, falling back to the base unit
func (p *Product) DefaultUnit() string {
	for _, u := range p.Units {
		if u.IsDefault {
			return u.Unit
		}
	}
	return p.BaseUnit
}

// PrimaryImage returns the primary image URL or an empty string
func (p *Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.ImageURL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].ImageURL
	}
	return ""
}

// NormalizeImages keeps at most one primary image. When none is flagged the
// first image becomes primary.
func NormalizeImages(images []ProductImage) []ProductImage {
	seenPrimary := false
	for i := range images {
		if images[i].IsPrimary {
			if seenPrimary {
				images[i].IsPrimary = false
			}
			seenPrimary = true
		}
	}
	if !seenPrimary && len(images) > 0 {
		images[0].IsPrimary = true
	}
	return images
}
