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

// DeliveryZoneUpdate carries a partial zone update
type DeliveryZoneUpdate struct {
	Name     *string
	Fee      *decimal.Decimal
	IsActive *bool
}

type DeliveryZoneService interface {
	List(ctx context.Context, includeInactive bool, page, limit int) (domain.Page[*domain.DeliveryZone], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.DeliveryZone, error)
	Create(ctx context.Context, name string, fee decimal.Decimal, isActive *bool) (*domain.DeliveryZone, error)
	Update(ctx context.Context, id uuid.UUID, in DeliveryZoneUpdate) (*domain.DeliveryZone, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type deliveryZoneService struct {
	zoneRepo repository.DeliveryZoneRepository
}

func NewDeliveryZoneService(zoneRepo repository.DeliveryZoneRepository) DeliveryZoneService {
	return &deliveryZoneService{zoneRepo: zoneRepo}
}

func (s *deliveryZoneService) List(ctx context.Context, includeInactive bool, page, limit int) (domain.Page[*domain.DeliveryZone], error) {
	req := domain.NewPageRequest(page, limit)

	zones, total, err := s.zoneRepo.List(ctx, includeInactive, req)
	if err != nil {
		return domain.Page[*domain.DeliveryZone]{}, fmt.Errorf("failed to list delivery zones: %w", err)
	}

	return domain.NewPage(zones, req, total), nil
}

func (s *deliveryZoneService) Get(ctx context.Context, id uuid.UUID) (*domain.DeliveryZone, error) {
	zone, err := s.zoneRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery zone: %w", err)
	}
	return zone, nil
}

func (s *deliveryZoneService) Create(ctx context.Context, name string, fee decimal.Decimal, isActive *bool) (*domain.DeliveryZone, error) {
	zone := &domain.DeliveryZone{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Fee:       fee,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if isActive != nil {
		zone.IsActive = *isActive
	}

	if err := validateZone(zone); err != nil {
		return nil, err
	}

	if err := s.zoneRepo.Create(ctx, zone); err != nil {
		return nil, fmt.Errorf("failed to create delivery zone: %w", err)
	}
	return zone, nil
}

func (s *deliveryZoneService) Update(ctx context.Context, id uuid.UUID, in DeliveryZoneUpdate) (*domain.DeliveryZone, error) {
	zone, err := s.zoneRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery zone: %w", err)
	}

	if in.Name != nil {
		zone.Name = strings.TrimSpace(*in.Name)
	}
	if in.Fee != nil {
		zone.Fee = *in.Fee
	}
	if in.IsActive != nil {
		zone.IsActive = *in.IsActive
	}

	if err := validateZone(zone); err != nil {
		return nil, err
	}

	if err := s.zoneRepo.Update(ctx, zone); err != nil {
		return nil, fmt.Errorf("failed to update delivery zone: %w", err)
	}
	return zone, nil
}

func (s *deliveryZoneService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.zoneRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete delivery zone: %w", err)
	}
	return nil
}

func validateZone(z *domain.DeliveryZone) error {
	if z.Name == "" {
		return validationError("name is required")
	}
	return validateAmount("fee", z.Fee)
}
