package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"german-butchery/internal/database"
	"german-butchery/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderStatusChanged is returned when the order moved on between read and update
	ErrOrderStatusChanged = errors.New("order status changed concurrently")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, status *domain.OrderStatus, page domain.PageRequest) ([]*domain.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*domain.OrderStats, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, customer_name, phone, email, delivery_type, subtotal, delivery_fee, total_amount,
	currency, status, payment_method, payment_status, notes, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.CustomerName,
		&order.Phone,
		&order.Email,
		&order.DeliveryType,
		&order.Subtotal,
		&order.DeliveryFee,
		&order.TotalAmount,
		&order.Currency,
		&order.Status,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	return order, err
}

// Create inserts the order with its items and delivery record in one transaction
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (id, customer_name, phone, email, delivery_type, subtotal, delivery_fee,
				total_amount, currency, status, payment_method, payment_status, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			order.ID,
			order.CustomerName,
			order.Phone,
			order.Email,
			order.DeliveryType,
			order.Subtotal,
			order.DeliveryFee,
			order.TotalAmount,
			order.Currency,
			order.Status,
			order.PaymentMethod,
			order.PaymentStatus,
			order.Notes,
			order.CreatedAt,
			order.UpdatedAt,
		)
		if err != nil {
			if isCheckViolation(err) {
				return ErrCheckViolation
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range order.Items {
			item := &order.Items[i]
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			item.OrderID = order.ID

			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (id, order_id, product_id, product_title, unit, unit_multiplier,
					requested_quantity, unit_price, total_price)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				item.ID,
				item.OrderID,
				item.ProductID,
				item.ProductTitle,
				item.Unit,
				item.UnitMultiplier,
				item.Quantity,
				item.UnitPrice,
				item.TotalPrice,
			)
			if err != nil {
				if isForeignKeyViolation(err) {
					return ErrInvalidReference
				}
				if isCheckViolation(err) {
					return ErrCheckViolation
				}
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}

		if order.Delivery != nil {
			d := order.Delivery
			if d.ID == uuid.Nil {
				d.ID = uuid.New()
			}
			d.OrderID = order.ID
			if d.CreatedAt.IsZero() {
				d.CreatedAt = order.CreatedAt
			}

			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_delivery (id, order_id, customer_name, delivery_address, delivery_phone,
					delivery_fee, delivery_zone, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				d.ID,
				d.OrderID,
				d.CustomerName,
				d.DeliveryAddress,
				d.DeliveryPhone,
				d.DeliveryFee,
				d.DeliveryZone,
				d.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to create order delivery: %w", err)
			}
		}

		return nil
	})
}

// FindByID retrieves an order with its items and delivery record
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	if err := r.loadOrderChildren(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

// List retrieves orders newest first with an optional status filter
func (r *orderRepository) List(ctx context.Context, status *domain.OrderStatus, page domain.PageRequest) ([]*domain.Order, int, error) {
	whereClause := ""
	args := []any{}
	if status != nil {
		whereClause = "WHERE status = $1"
		args = append(args, *status)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		%s
		ORDER BY created_at DESC, id ASC
		LIMIT $%d OFFSET $%d
	`, orderColumns, whereClause, len(args)+1, len(args)+2)

	args = append(args, page.Limit, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.loadOrderChildren(ctx, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateStatus moves an order from one status to another. The update only
// applies while the stored status still equals from.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check order existence: %w", err)
		}
		if !exists {
			return ErrOrderNotFound
		}
		return ErrOrderStatusChanged
	}

	return nil
}

// Delete removes an order; items and delivery cascade
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Stats counts orders and sums revenue over orders that were not cancelled
func (r *orderRepository) Stats(ctx context.Context) (*domain.OrderStats, error) {
	stats := &domain.OrderStats{}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COALESCE(SUM(total_amount) FILTER (WHERE status <> 'cancelled'), 0)
		FROM orders`).Scan(&stats.TotalOrders, &stats.PendingOrders, &stats.Revenue)
	if err != nil {
		return nil, fmt.Errorf("failed to compute order stats: %w", err)
	}
	return stats, nil
}

func (r *orderRepository) loadOrderChildren(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		o.Items = []domain.OrderItem{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	idArg := uuidStrings(ids)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_title, unit, unit_multiplier,
			requested_quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY product_title ASC, id ASC`, idArg)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductTitle,
			&item.Unit,
			&item.UnitMultiplier,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
		); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		byID[item.OrderID].Items = append(byID[item.OrderID].Items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT id, order_id, customer_name, delivery_address, delivery_phone, delivery_fee, delivery_zone, created_at
		FROM order_delivery
		WHERE order_id = ANY($1::uuid[])`, idArg)
	if err != nil {
		return fmt.Errorf("failed to load order delivery: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		d := &domain.OrderDelivery{}
		if err := rows.Scan(
			&d.ID,
			&d.OrderID,
			&d.CustomerName,
			&d.DeliveryAddress,
			&d.DeliveryPhone,
			&d.DeliveryFee,
			&d.DeliveryZone,
			&d.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan order delivery: %w", err)
		}
		byID[d.OrderID].Delivery = d
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order delivery: %w", err)
	}

	return nil
}
