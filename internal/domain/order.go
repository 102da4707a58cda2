package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus enumerates the lifecycle states of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known order statuses
func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusPaid, OrderStatusFulfilled, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is a snapshot of a purchased product at checkout time.
// Title, price and image are copied from the catalog so later product
// edits do not rewrite order history.
type OrderItem struct {
	ProductID string  `json:"product_id" db:"product_id"`
	Title     string  `json:"title" db:"title"`
	Price     float64 `json:"price" db:"price"`
	Quantity  int     `json:"quantity" db:"quantity"`
	Image     string  `json:"image,omitempty" db:"image"`
}

// Order is the durable record materialized from a paid checkout session.
// CheckoutSessionID is unique per order and acts as the idempotency key.
type Order struct {
	ID                uuid.UUID   `json:"id" db:"id"`
	Email             string      `json:"email,omitempty" db:"email"`
	Items             []OrderItem `json:"items"`
	Total             float64     `json:"total" db:"total"`
	Currency          string      `json:"currency" db:"currency"`
	CheckoutSessionID string      `json:"checkout_session_id" db:"checkout_session_id"`
	Status            OrderStatus `json:"status" db:"status"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}
