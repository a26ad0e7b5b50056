package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"german-butchery/internal/cart"
	"german-butchery/internal/domain"
	"german-butchery/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidCartID = fmt.Errorf("%w: cart id must be a UUID", ErrValidation)

// CartService resolves catalog prices for cart lines and persists every change
type CartService interface {
	Get(ctx context.Context, cartID string) (*cart.Cart, error)
	AddItem(ctx context.Context, cartID string, productID uuid.UUID, unit string, quantity decimal.Decimal) (*cart.Cart, error)
	UpdateItem(ctx context.Context, cartID string, productID uuid.UUID, unit string, quantity decimal.Decimal) (*cart.Cart, error)
	RemoveItem(ctx context.Context, cartID string, productID uuid.UUID, unit string) (*cart.Cart, error)
	Clear(ctx context.Context, cartID string) error
}

type cartService struct {
	store       cart.Store
	productRepo repository.ProductRepository
}

func NewCartService(store cart.Store, productRepo repository.ProductRepository) CartService {
	return &cartService{store: store, productRepo: productRepo}
}

func (s *cartService) Get(ctx context.Context, cartID string) (*cart.Cart, error) {
	if err := validateCartID(cartID); err != nil {
		return nil, err
	}
	c, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return c, nil
}

// AddItem prices the unit from the catalog and merges it into the cart
func (s *cartService) AddItem(ctx context.Context, cartID string, productID uuid.UUID, unit string, quantity decimal.Decimal) (*cart.Cart, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	item, err := s.resolveItem(ctx, productID, unit)
	if err != nil {
		return nil, err
	}
	item.Quantity = quantity

	if err := c.Add(item); err != nil {
		return nil, validationError("%v", err)
	}
	return s.save(ctx, c)
}

// UpdateItem sets the quantity of an existing line; zero or less removes it
func (s *cartService) UpdateItem(ctx context.Context, cartID string, productID uuid.UUID, unit string, quantity decimal.Decimal) (*cart.Cart, error) {
	if quantity.IsPositive() {
		if err := validateQuantity(quantity); err != nil {
			return nil, err
		}
	}

	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if err := c.SetQuantity(productID, strings.TrimSpace(unit), quantity); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

func (s *cartService) RemoveItem(ctx context.Context, cartID string, productID uuid.UUID, unit string) (*cart.Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if err := c.Remove(productID, strings.TrimSpace(unit)); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

func (s *cartService) Clear(ctx context.Context, cartID string) error {
	if err := validateCartID(cartID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *cartService) resolveItem(ctx context.Context, productID uuid.UUID, unit string) (cart.Item, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return cart.Item{}, fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
		}
		return cart.Item{}, fmt.Errorf("failed to get product: %w", err)
	}
	if !product.IsActive {
		return cart.Item{}, fmt.Errorf("%w: %s", ErrProductUnavailable, product.Title)
	}

	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = product.DefaultUnit()
	}
	multiplier, err := product.Multiplier(unit)
	if err != nil {
		return cart.Item{}, validationError("%s is not sold per %q", product.Title, unit)
	}

	return cart.Item{
		ProductID:      product.ID,
		Title:          product.Title,
		Slug:           product.Slug,
		ImageURL:       product.PrimaryImage(),
		Unit:           unit,
		UnitMultiplier: multiplier,
		UnitPrice:      domain.RoundMoney(product.PricePerBaseUnit.Mul(multiplier)),
		Currency:       product.Currency,
	}, nil
}

func (s *cartService) save(ctx context.Context, c *cart.Cart) (*cart.Cart, error) {
	if err := s.store.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return c, nil
}

func validateCartID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidCartID
	}
	return nil
}
