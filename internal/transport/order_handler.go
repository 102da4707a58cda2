package transport

import (
	"errors"
	"net/http"

	"owzars-commerce/internal/domain"
	"owzars-commerce/internal/middleware"
	"owzars-commerce/internal/repository"
	"owzars-commerce/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpdateOrderStatusRequest represents the admin status transition payload
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderHandler handles HTTP requests for order queries and the admin
// status workflow
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/mine", h.ListMine)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Get("/", h.ListAll)
			r.Patch("/{id}", h.UpdateStatus)
		})
	})
}

// ListAll returns every order, newest first (admin only)
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string][]*domain.Order{"orders": orders})
}

// ListMine returns the caller's orders, newest first
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetUserEmail(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orderService.ListByEmail(r.Context(), email)
	if err != nil {
		h.logger.Error("Failed to list customer orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string][]*domain.Order{"orders": orders})
}

// Get returns a single order to its owner or an admin
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return
	}

	order, err := h.orderService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "not found")
			return
		}
		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	role, _ := middleware.GetUserRole(r.Context())
	email, _ := middleware.GetUserEmail(r.Context())
	if role != "admin" && (order.Email == "" || order.Email != email) {
		middleware.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]*domain.Order{"order": order})
}

// UpdateStatus overwrites an order's status (admin only). Any of the
// four known statuses is a legal target.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req UpdateOrderStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrderStatus):
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid status")
		case errors.Is(err, repository.ErrOrderNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "not found")
		default:
			h.logger.Error("Failed to update order status", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order")
		}
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]*domain.Order{"order": order})
}
