package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"german-butchery/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrDeliveryZoneNotFound = errors.New("delivery zone not found")
)

type DeliveryZoneRepository interface {
	Create(ctx context.Context, zone *domain.DeliveryZone) error
	Update(ctx context.Context, zone *domain.DeliveryZone) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.DeliveryZone, error)
	List(ctx context.Context, includeInactive bool, page domain.PageRequest) ([]*domain.DeliveryZone, int, error)
}

type deliveryZoneRepository struct {
	db *sql.DB
}

func NewDeliveryZoneRepository(db *sql.DB) DeliveryZoneRepository {
	return &deliveryZoneRepository{db: db}
}

func (r *deliveryZoneRepository) Create(ctx context.Context, zone *domain.DeliveryZone) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO delivery_zones (id, name, fee, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		zone.ID, zone.Name, zone.Fee, zone.IsActive, zone.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create delivery zone: %w", err)
	}
	return nil
}

func (r *deliveryZoneRepository) Update(ctx context.Context, zone *domain.DeliveryZone) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE delivery_zones SET name = $2, fee = $3, is_active = $4 WHERE id = $1`,
		zone.ID, zone.Name, zone.Fee, zone.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update delivery zone: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDeliveryZoneNotFound
	}
	return nil
}

func (r *deliveryZoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM delivery_zones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete delivery zone: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDeliveryZoneNotFound
	}
	return nil
}

func (r *deliveryZoneRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.DeliveryZone, error) {
	zone := &domain.DeliveryZone{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, fee, is_active, created_at FROM delivery_zones WHERE id = $1`, id).
		Scan(&zone.ID, &zone.Name, &zone.Fee, &zone.IsActive, &zone.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeliveryZoneNotFound
		}
		return nil, fmt.Errorf("failed to find delivery zone by ID: %w", err)
	}
	return zone, nil
}

// List returns zones ordered by name
func (r *deliveryZoneRepository) List(ctx context.Context, includeInactive bool, page domain.PageRequest) ([]*domain.DeliveryZone, int, error) {
	whereClause := "WHERE is_active = TRUE"
	if includeInactive {
		whereClause = ""
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM delivery_zones "+whereClause).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count delivery zones: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, fee, is_active, created_at
		FROM delivery_zones `+whereClause+`
		ORDER BY name ASC, id ASC
		LIMIT $1 OFFSET $2`, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list delivery zones: %w", err)
	}
	defer rows.Close()

	zones := []*domain.DeliveryZone{}
	for rows.Next() {
		zone := &domain.DeliveryZone{}
		if err := rows.Scan(&zone.ID, &zone.Name, &zone.Fee, &zone.IsActive, &zone.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan delivery zone: %w", err)
		}
		zones = append(zones, zone)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating delivery zones: %w", err)
	}

	return zones, total, nil
}
