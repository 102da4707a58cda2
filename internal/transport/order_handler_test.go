package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"owzars-commerce/internal/domain"
	"owzars-commerce/internal/repository"
	"owzars-commerce/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubOrderService struct {
	orders map[uuid.UUID]*domain.Order
}

func newStubOrderService() *stubOrderService {
	return &stubOrderService{orders: make(map[uuid.UUID]*domain.Order)}
}

func (s *stubOrderService) add(email string) *domain.Order {
	order := &domain.Order{
		ID:                uuid.New(),
		Email:             email,
		Items:             []domain.OrderItem{{ProductID: uuid.New().String(), Title: "Desk Lamp", Price: 10.00, Quantity: 1}},
		Total:             10.00,
		Currency:          "usd",
		CheckoutSessionID: "cs_test_" + uuid.New().String(),
		Status:            domain.OrderStatusPaid,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
	s.orders[order.ID] = order
	return order
}

func (s *stubOrderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (s *stubOrderService) ListByEmail(ctx context.Context, email string) ([]*domain.Order, error) {
	out := []*domain.Order{}
	for _, order := range s.orders {
		if order.Email == email {
			out = append(out, order)
		}
	}
	return out, nil
}

func (s *stubOrderService) ListAll(ctx context.Context) ([]*domain.Order, error) {
	out := []*domain.Order{}
	for _, order := range s.orders {
		out = append(out, order)
	}
	return out, nil
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, service.ErrInvalidOrderStatus
	}
	order, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	order.Status = domain.OrderStatus(status)
	return order, nil
}

func newOrderRouter(svc service.OrderService, email, role string) *chi.Mux {
	r := chi.NewRouter()
	handler := NewOrderHandler(svc, zap.NewNop())

	adminOnly := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if role != "admin" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	handler.RegisterRoutes(r, fakeAuth(uuid.New().String(), email, role), adminOnly)
	return r
}

func TestListMine(t *testing.T) {
	svc := newStubOrderService()
	svc.add("buyer@example.com")
	svc.add("buyer@example.com")
	svc.add("other@example.com")

	router := newOrderRouter(svc, "buyer@example.com", "user")

	req := httptest.NewRequest("GET", "/api/orders/mine", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string][]*domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp["orders"], 2)
	for _, order := range resp["orders"] {
		assert.Equal(t, "buyer@example.com", order.Email)
	}
}

func TestGetOrder_OwnerAllowed(t *testing.T) {
	svc := newStubOrderService()
	order := svc.add("buyer@example.com")

	router := newOrderRouter(svc, "buyer@example.com", "user")

	req := httptest.NewRequest("GET", "/api/orders/"+order.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]*domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, order.ID, resp["order"].ID)
}

func TestGetOrder_StrangerForbidden(t *testing.T) {
	svc := newStubOrderService()
	order := svc.add("buyer@example.com")

	router := newOrderRouter(svc, "stranger@example.com", "user")

	req := httptest.NewRequest("GET", "/api/orders/"+order.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetOrder_AdminAllowed(t *testing.T) {
	svc := newStubOrderService()
	order := svc.add("buyer@example.com")

	router := newOrderRouter(svc, "admin@example.com", "admin")

	req := httptest.NewRequest("GET", "/api/orders/"+order.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetOrder_GuestOrderHiddenFromNonAdmins(t *testing.T) {
	svc := newStubOrderService()
	order := svc.add("")

	router := newOrderRouter(svc, "buyer@example.com", "user")

	req := httptest.NewRequest("GET", "/api/orders/"+order.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	router := newOrderRouter(newStubOrderService(), "buyer@example.com", "user")

	req := httptest.NewRequest("GET", "/api/orders/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrder_InvalidID(t *testing.T) {
	router := newOrderRouter(newStubOrderService(), "buyer@example.com", "user")

	req := httptest.NewRequest("GET", "/api/orders/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAll_AdminOnly(t *testing.T) {
	svc := newStubOrderService()
	svc.add("a@example.com")
	svc.add("b@example.com")

	adminRouter := newOrderRouter(svc, "admin@example.com", "admin")
	req := httptest.NewRequest("GET", "/api/orders/", nil)
	w := httptest.NewRecorder()
	adminRouter.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string][]*domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp["orders"], 2)

	userRouter := newOrderRouter(svc, "buyer@example.com", "user")
	req = httptest.NewRequest("GET", "/api/orders/", nil)
	w = httptest.NewRecorder()
	userRouter.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	svc := newStubOrderService()
	order := svc.add("buyer@example.com")

	router := newOrderRouter(svc, "admin@example.com", "admin")

	body, err := json.Marshal(UpdateOrderStatusRequest{Status: "fulfilled"})
	require.NoError(t, err)

	req := httptest.NewRequest("PATCH", "/api/orders/"+order.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]*domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.OrderStatusFulfilled, resp["order"].Status)
}

func TestUpdateOrderStatus_RejectsUnknownStatus(t *testing.T) {
	svc := newStubOrderService()
	order := svc.add("buyer@example.com")

	router := newOrderRouter(svc, "admin@example.com", "admin")

	body, err := json.Marshal(UpdateOrderStatusRequest{Status: "shipped"})
	require.NoError(t, err)

	req := httptest.NewRequest("PATCH", "/api/orders/"+order.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrderStatus_MissingStatusFailsValidation(t *testing.T) {
	svc := newStubOrderService()
	order := svc.add("buyer@example.com")

	router := newOrderRouter(svc, "admin@example.com", "admin")

	req := httptest.NewRequest("PATCH", "/api/orders/"+order.ID.String(), bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrderStatus_UnknownOrder(t *testing.T) {
	router := newOrderRouter(newStubOrderService(), "admin@example.com", "admin")

	body, err := json.Marshal(UpdateOrderStatusRequest{Status: "cancelled"})
	require.NoError(t, err)

	req := httptest.NewRequest("PATCH", "/api/orders/"+uuid.New().String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
