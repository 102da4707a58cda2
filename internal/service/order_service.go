package service

import (
	"context"
	"errors"
	"fmt"

	"owzars-commerce/internal/domain"
	"owzars-commerce/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidOrderStatus = errors.New("invalid order status")
)

// OrderService exposes order queries and the admin status workflow.
type OrderService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByEmail(ctx context.Context, email string) ([]*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

// GetByID retrieves a single order
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

// ListByEmail retrieves a customer's orders, newest first
func (s *orderService) ListByEmail(ctx context.Context, email string) ([]*domain.Order, error) {
	orders, err := s.orderRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for customer: %w", err)
	}
	return orders, nil
}

// ListAll retrieves every order, newest first
func (s *orderService) ListAll(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus overwrites an order's status. Any transition between the
// four known statuses is accepted. The target status is validated before
// anything is mutated.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, ErrInvalidOrderStatus
	}

	return s.orderRepo.UpdateStatus(ctx, id, domain.OrderStatus(status))
}
