package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"owzars-commerce/internal/domain"
	"owzars-commerce/internal/payment"
	"owzars-commerce/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultCurrency is the currency checkout line items are priced in.
	DefaultCurrency = "usd"

	// PlaceholderTitle is the item title snapshot used when a purchased
	// product can no longer be resolved against the catalog.
	PlaceholderTitle = "Product"
)

var (
	ErrCartEmpty   = errors.New("cart is empty")
	ErrInvalidCart = errors.New("some products are invalid")
)

// CheckoutService opens hosted checkout sessions and reconciles paid
// sessions into orders.
type CheckoutService interface {
	// CreateSession validates the cart against the catalog and opens a
	// hosted payment session. No local state is written; until
	// reconciliation the session lives entirely with the processor.
	CreateSession(ctx context.Context, items []domain.CartItem) (*payment.CreateSessionResult, error)

	// Reconcile returns the order for a payment session, creating it on
	// first confirmation. A (nil, nil) result means the processor has not
	// reported the session paid yet and the caller should ask the buyer
	// to wait.
	Reconcile(ctx context.Context, sessionID string) (*domain.Order, error)
}

type checkoutService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	provider    payment.Provider
	baseURL     string
	logger      *zap.Logger
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	provider payment.Provider,
	baseURL string,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		provider:    provider,
		baseURL:     baseURL,
		logger:      logger,
	}
}

// CreateSession implements the checkout session initiator
func (s *checkoutService) CreateSession(ctx context.Context, items []domain.CartItem) (*payment.CreateSessionResult, error) {
	valid := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		if item.ProductID != "" && item.Quantity > 0 {
			valid = append(valid, item)
		}
	}
	if len(valid) == 0 {
		return nil, ErrCartEmpty
	}

	ids := make([]uuid.UUID, 0, len(valid))
	for _, item := range valid {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, ErrInvalidCart
		}
		ids = append(ids, id)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart products: %w", err)
	}

	lineItems := make([]payment.LineItem, 0, len(valid))
	for i, item := range valid {
		product, ok := products[ids[i]]
		if !ok {
			return nil, ErrInvalidCart
		}

		lineItem := payment.LineItem{
			Name:       product.Title,
			UnitAmount: toMinorUnits(product.Price),
			Quantity:   int64(item.Quantity),
			Currency:   DefaultCurrency,
		}
		if image := product.FirstImage(); image != "" {
			lineItem.Images = []string{image}
		}
		lineItems = append(lineItems, lineItem)
	}

	// The original cart rides along as opaque metadata so reconciliation
	// can rebuild item snapshots without any local session state.
	cartJSON, err := json.Marshal(valid)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cart metadata: %w", err)
	}

	result, err := s.provider.CreateSession(ctx, &payment.CreateSessionInput{
		LineItems:  lineItems,
		SuccessURL: s.baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.baseURL + "/checkout/cancel",
		Metadata:   map[string]string{payment.CartMetadataKey: string(cartJSON)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.logger.Info("Checkout session created",
		zap.String("session_id", result.SessionID),
		zap.Int("line_items", len(lineItems)),
	)

	return result, nil
}

// Reconcile turns a confirmed payment into exactly one persisted order.
//
// The lookup and the insert are not atomic across concurrent callers;
// the unique constraint on the session identifier is the final backstop,
// and a conflicting insert resolves by re-reading the canonical row.
func (s *checkoutService) Reconcile(ctx context.Context, sessionID string) (*domain.Order, error) {
	// Idempotency fast path: an existing order short-circuits all
	// external calls.
	existing, err := s.orderRepo.FindBySessionID(ctx, sessionID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrOrderNotFound) {
		return nil, fmt.Errorf("failed to look up order by session: %w", err)
	}

	sess, err := s.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, payment.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}

	if sess.PaymentStatus != payment.StatusPaid {
		return nil, nil
	}

	// Money has moved; from here on the reconciler must produce an order
	// even with a degraded item list.
	order := &domain.Order{
		ID:                uuid.New(),
		Email:             sess.CustomerEmail,
		Items:             s.buildItems(ctx, sess),
		Total:             float64(sess.AmountTotal) / 100,
		Currency:          sess.Currency,
		CheckoutSessionID: sess.ID,
		Status:            domain.OrderStatus(sess.PaymentStatus),
		CreatedAt:         nowUTC(),
		UpdatedAt:         nowUTC(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrOrderAlreadyExists) {
			// A concurrent reconciliation beat us to the insert; return
			// the canonical order instead of surfacing the conflict.
			return s.orderRepo.FindBySessionID(ctx, sessionID)
		}
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	s.logger.Info("Order materialized from checkout session",
		zap.String("order_id", order.ID.String()),
		zap.String("session_id", sess.ID),
		zap.Float64("total", order.Total),
	)

	return order, nil
}

// buildItems reconstructs item snapshots from the session's cart
// metadata, best-effort: malformed metadata yields an empty list and
// unresolvable products get placeholder snapshots.
func (s *checkoutService) buildItems(ctx context.Context, sess *payment.Session) []domain.OrderItem {
	var cartItems []domain.CartItem
	if raw := sess.Metadata[payment.CartMetadataKey]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &cartItems); err != nil {
			s.logger.Warn("Failed to parse cart metadata, creating order without item detail",
				zap.String("session_id", sess.ID),
				zap.Error(err),
			)
			cartItems = nil
		}
	}

	ids := make([]uuid.UUID, 0, len(cartItems))
	for _, item := range cartItems {
		if id, err := uuid.Parse(item.ProductID); err == nil {
			ids = append(ids, id)
		}
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to resolve products for order items, using placeholders",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		products = nil
	}

	items := make([]domain.OrderItem, 0, len(cartItems))
	for _, cartItem := range cartItems {
		item := domain.OrderItem{
			ProductID: cartItem.ProductID,
			Title:     PlaceholderTitle,
			Price:     0,
			Quantity:  cartItem.Quantity,
		}
		if id, err := uuid.Parse(cartItem.ProductID); err == nil {
			if product, ok := products[id]; ok {
				item.Title = product.Title
				item.Price = product.Price
				item.Image = product.FirstImage()
			}
		}
		items = append(items, item)
	}

	return items
}

func toMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
