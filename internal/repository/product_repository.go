package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"german-butchery/internal/database"
	"german-butchery/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ParseSortOrder accepts asc/desc in any case and defaults to descending
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(s, "asc") {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// ProductFilter narrows a product listing
type ProductFilter struct {
	CategorySlug    string
	Search          string
	IncludeInactive bool
	SortBy          string
	SortOrder       SortOrder
}

// ProductReplace selects which child collections an update rewrites
type ProductReplace struct {
	Categories bool
	Images     bool
	Units      bool
}

// ProductPatch holds the fields a bulk update may set. Nil fields are left alone.
type ProductPatch struct {
	IsActive         *bool
	PricePerBaseUnit *decimal.Decimal
	Currency         *string
}

// Empty reports whether the patch would change nothing
func (p ProductPatch) Empty() bool {
	return p.IsActive == nil && p.PricePerBaseUnit == nil && p.Currency == nil
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product, replace ProductReplace) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter, page domain.PageRequest) ([]*domain.Product, int, error)
	BulkUpdate(ctx context.Context, ids []uuid.UUID, patch ProductPatch) (int64, error)
	Count(ctx context.Context) (int, error)
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.sku, p.title, p.slug, p.description, p.base_unit, p.base_unit_in_grams,
	p.price_per_base_unit, p.currency, p.is_active, p.created_at, p.updated_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.SKU,
		&product.Title,
		&product.Slug,
		&product.Description,
		&product.BaseUnit,
		&product.BaseUnitInGrams,
		&product.PricePerBaseUnit,
		&product.Currency,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	return product, err
}

// Create inserts the product and its categories, images and units in one transaction
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO products (id, sku, title, slug, description, base_unit, base_unit_in_grams,
				price_per_base_unit, currency, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`

		_, err := tx.ExecContext(
			ctx,
			query,
			product.ID,
			product.SKU,
			product.Title,
			product.Slug,
			product.Description,
			product.BaseUnit,
			product.BaseUnitInGrams,
			product.PricePerBaseUnit,
			product.Currency,
			product.IsActive,
			product.CreatedAt,
			product.UpdatedAt,
		)
		if err != nil {
			if classified := classifyConflict(err); classified != nil {
				return classified
			}
			return fmt.Errorf("failed to create product: %w", err)
		}

		return writeProductChildren(ctx, tx, product, ProductReplace{Categories: true, Images: true, Units: true})
	})
}

// Update rewrites the product row and replaces the selected child collections
func (r *productRepository) Update(ctx context.Context, product *domain.Product, replace ProductReplace) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			UPDATE products
			SET sku = $2, title = $3, slug = $4, description = $5, base_unit = $6,
			    base_unit_in_grams = $7, price_per_base_unit = $8, currency = $9, is_active = $10
			WHERE id = $1
			RETURNING updated_at
		`

		err := tx.QueryRowContext(
			ctx,
			query,
			product.ID,
			product.SKU,
			product.Title,
			product.Slug,
			product.Description,
			product.BaseUnit,
			product.BaseUnitInGrams,
			product.PricePerBaseUnit,
			product.Currency,
			product.IsActive,
		).Scan(&product.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProductNotFound
			}
			if classified := classifyConflict(err); classified != nil {
				return classified
			}
			return fmt.Errorf("failed to update product: %w", err)
		}

		if replace.Categories {
			if _, err := tx.ExecContext(ctx, `DELETE FROM product_categories WHERE product_id = $1`, product.ID); err != nil {
				return fmt.Errorf("failed to clear product categories: %w", err)
			}
		}
		if replace.Images {
			if _, err := tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = $1`, product.ID); err != nil {
				return fmt.Errorf("failed to clear product images: %w", err)
			}
		}
		if replace.Units {
			if _, err := tx.ExecContext(ctx, `DELETE FROM product_units WHERE product_id = $1`, product.ID); err != nil {
				return fmt.Errorf("failed to clear product units: %w", err)
			}
		}

		return writeProductChildren(ctx, tx, product, replace)
	})
}

func writeProductChildren(ctx context.Context, tx *sql.Tx, product *domain.Product, replace ProductReplace) error {
	if replace.Categories {
		for _, c := range product.Categories {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				product.ID, c.ID)
			if err != nil {
				if isForeignKeyViolation(err) {
					return ErrInvalidReference
				}
				return fmt.Errorf("failed to link product category: %w", err)
			}
		}
	}

	if replace.Images {
		for i := range product.Images {
			img := &product.Images[i]
			if img.ID == uuid.Nil {
				img.ID = uuid.New()
			}
			img.ProductID = product.ID
			if img.CreatedAt.IsZero() {
				img.CreatedAt = product.UpdatedAt
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO product_images (id, product_id, image_url, display_order, is_primary, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				img.ID, img.ProductID, img.ImageURL, img.DisplayOrder, img.IsPrimary, img.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to insert product image: %w", err)
			}
		}
	}

	if replace.Units {
		for i := range product.Units {
			unit := &product.Units[i]
			if unit.ID == uuid.Nil {
				unit.ID = uuid.New()
			}
			unit.ProductID = product.ID
			if unit.CreatedAt.IsZero() {
				unit.CreatedAt = product.UpdatedAt
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO product_units (id, product_id, unit, multiplier, is_default, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				unit.ID, unit.ProductID, unit.Unit, unit.Multiplier, unit.IsDefault, unit.CreatedAt)
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("duplicate unit %q: %w", unit.Unit, ErrInvalidReference)
				}
				return fmt.Errorf("failed to insert product unit: %w", err)
			}
		}
	}

	return nil
}

// Delete removes a product; images, units and category links cascade
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product with its categories, images and units
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	if err := loadProductChildren(ctx, r.db, []*domain.Product{product}); err != nil {
		return nil, err
	}

	return product, nil
}

// List retrieves products with category and search filters, sorting and pagination
func (r *productRepository) List(ctx context.Context, filter ProductFilter, page domain.PageRequest) ([]*domain.Product, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]string{
		"title":      "p.title",
		"price":      "p.price_per_base_unit",
		"created_at": "p.created_at",
	}

	sortColumn, ok := validSortFields[filter.SortBy]
	if !ok {
		sortColumn = "p.created_at"
	}

	sortOrder := filter.SortOrder
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}

	conditions := []string{}
	args := []any{}
	argIndex := 1

	if !filter.IncludeInactive {
		conditions = append(conditions, "p.is_active = TRUE")
	}

	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM product_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.product_id = p.id AND c.slug = $%d)`, argIndex))
		args = append(args, slug)
		argIndex++
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products p %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		%s
		ORDER BY %s %s, p.id ASC
		LIMIT $%d OFFSET $%d
	`, productColumns, whereClause, sortColumn, sortOrder, argIndex, argIndex+1)

	args = append(args, page.Limit, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	if err := loadProductChildren(ctx, r.db, products); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// BulkUpdate applies the patch to every listed product in a single statement
func (r *productRepository) BulkUpdate(ctx context.Context, ids []uuid.UUID, patch ProductPatch) (int64, error) {
	if len(ids) == 0 || patch.Empty() {
		return 0, nil
	}

	sets := []string{}
	args := []any{uuidStrings(ids)}

	if patch.IsActive != nil {
		args = append(args, *patch.IsActive)
		sets = append(sets, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if patch.PricePerBaseUnit != nil {
		args = append(args, *patch.PricePerBaseUnit)
		sets = append(sets, fmt.Sprintf("price_per_base_unit = $%d", len(args)))
	}
	if patch.Currency != nil {
		args = append(args, *patch.Currency)
		sets = append(sets, fmt.Sprintf("currency = $%d", len(args)))
	}

	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = ANY($1::uuid[])`, strings.Join(sets, ", "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update products: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// Count returns the number of products regardless of status
func (r *productRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// loadProductChildren fills categories, images and units for a page of products
// with one query per collection.
func loadProductChildren(ctx context.Context, q querier, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Product, len(products))
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		p.Categories = []domain.CategorySummary{}
		p.Images = []domain.ProductImage{}
		p.Units = []domain.ProductUnit{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}
	idArg := uuidStrings(ids)

	rows, err := q.QueryContext(ctx, `
		SELECT pc.product_id, c.id, c.name, c.slug
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1::uuid[])
		ORDER BY c.display_order ASC, c.name ASC`, idArg)
	if err != nil {
		return fmt.Errorf("failed to load product categories: %w", err)
	}
	for rows.Next() {
		var productID uuid.UUID
		var c domain.CategorySummary
		if err := rows.Scan(&productID, &c.ID, &c.Name, &c.Slug); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan product category: %w", err)
		}
		byID[productID].Categories = append(byID[productID].Categories, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating product categories: %w", err)
	}

	rows, err = q.QueryContext(ctx, `
		SELECT id, product_id, image_url, display_order, is_primary, created_at
		FROM product_images
		WHERE product_id = ANY($1::uuid[])
		ORDER BY display_order ASC, created_at ASC`, idArg)
	if err != nil {
		return fmt.Errorf("failed to load product images: %w", err)
	}
	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImageURL, &img.DisplayOrder, &img.IsPrimary, &img.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan product image: %w", err)
		}
		byID[img.ProductID].Images = append(byID[img.ProductID].Images, img)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating product images: %w", err)
	}

	rows, err = q.QueryContext(ctx, `
		SELECT id, product_id, unit, multiplier, is_default, created_at
		FROM product_units
		WHERE product_id = ANY($1::uuid[])
		ORDER BY multiplier ASC, unit ASC`, idArg)
	if err != nil {
		return fmt.Errorf("failed to load product units: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var unit domain.ProductUnit
		if err := rows.Scan(&unit.ID, &unit.ProductID, &unit.Unit, &unit.Multiplier, &unit.IsDefault, &unit.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan product unit: %w", err)
		}
		byID[unit.ProductID].Units = append(byID[unit.ProductID].Units, unit)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating product units: %w", err)
	}

	return nil
}
