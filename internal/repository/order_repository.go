package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"owzars-commerce/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderAlreadyExists signals that an order for the same checkout
	// session was inserted by a concurrent caller. The reconciler treats
	// it as success and re-reads the canonical row.
	ErrOrderAlreadyExists = errors.New("order for this checkout session already exists")
)

const pgUniqueViolation = "23505"

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	FindByEmail(ctx context.Context, email string) ([]*domain.Order, error)
	FindAll(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts a new order and its item snapshots in one transaction.
// The unique constraint on checkout_session_id is the backstop against
// concurrent duplicate inserts; violations surface as ErrOrderAlreadyExists.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (id, email, total, currency, checkout_session_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		order.ID,
		nullableString(order.Email),
		order.Total,
		order.Currency,
		order.CheckoutSessionID,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrOrderAlreadyExists
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, position, product_id, title, price, quantity, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i, item := range order.Items {
		_, err = tx.ExecContext(
			ctx,
			itemQuery,
			order.ID,
			i,
			item.ProductID,
			item.Title,
			item.Price,
			item.Quantity,
			nullableString(item.Image),
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

// FindByID retrieves an order by ID
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.findOne(ctx, "id = $1", id)
}

// FindBySessionID retrieves an order by its checkout session identifier.
// This is the idempotency fast path of reconciliation.
func (r *orderRepository) FindBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	return r.findOne(ctx, "checkout_session_id = $1", sessionID)
}

// FindByEmail retrieves a customer's orders, newest first
func (r *orderRepository) FindByEmail(ctx context.Context, email string) ([]*domain.Order, error) {
	return r.findMany(ctx, "WHERE email = $1", email)
}

// FindAll retrieves every order, newest first
func (r *orderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	return r.findMany(ctx, "")
}

// UpdateStatus overwrites an order's status and refreshes updated_at
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, ErrOrderNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *orderRepository) findOne(ctx context.Context, where string, arg any) (*domain.Order, error) {
	query := fmt.Sprintf(`
		SELECT id, email, total, currency, checkout_session_id, status, created_at, updated_at
		FROM orders
		WHERE %s
	`, where)

	order := &domain.Order{}
	var email sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&order.ID,
		&email,
		&order.Total,
		&order.Currency,
		&order.CheckoutSessionID,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	order.Email = email.String

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) findMany(ctx context.Context, where string, args ...any) ([]*domain.Order, error) {
	query := fmt.Sprintf(`
		SELECT id, email, total, currency, checkout_session_id, status, created_at, updated_at
		FROM orders
		%s
		ORDER BY created_at DESC
	`, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		var email sql.NullString

		err := rows.Scan(
			&order.ID,
			&email,
			&order.Total,
			&order.Currency,
			&order.CheckoutSessionID,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		order.Email = email.String
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	query := `
		SELECT product_id, title, price, quantity, image
		FROM order_items
		WHERE order_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		item := domain.OrderItem{}
		var image sql.NullString

		err := rows.Scan(&item.ProductID, &item.Title, &item.Price, &item.Quantity, &image)
		if err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}

		item.Image = image.String
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	order.Items = items
	return nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
