package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"owzars-commerce/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	images, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("failed to marshal product images: %w", err)
	}

	query := `
		INSERT INTO products (id, title, description, price, images, category, inventory, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Title,
		product.Description,
		product.Price,
		images,
		product.Category,
		product.Inventory,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	images, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("failed to marshal product images: %w", err)
	}

	query := `
		UPDATE products
		SET title = $2, description = $3, price = $4, images = $5,
		    category = $6, inventory = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Title,
		product.Description,
		product.Price,
		images,
		product.Category,
		product.Inventory,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
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

// Delete removes a product from the database using parameterized queries
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

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, title, description, price, images, category, inventory, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindByIDs retrieves the products for the given IDs, keyed by ID.
// IDs with no matching product are simply absent from the result.
func (r *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	products := make(map[uuid.UUID]*domain.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	query := `
		SELECT id, title, description, price, images, category, inventory, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to find products by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products[product.ID] = product
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// List retrieves all products, newest first
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, title, description, price, images, category, inventory, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var images []byte

	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Description,
		&product.Price,
		&images,
		&product.Category,
		&product.Inventory,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(images) > 0 {
		if err := json.Unmarshal(images, &product.Images); err != nil {
			return nil, fmt.Errorf("failed to unmarshal product images: %w", err)
		}
	}

	return product, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
