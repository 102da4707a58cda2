package transport

import (
	"errors"
	"net/http"

	"owzars-commerce/internal/domain"
	"owzars-commerce/internal/middleware"
	"owzars-commerce/internal/payment"
	"owzars-commerce/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutRequest represents the checkout initiation payload
type CheckoutRequest struct {
	Items []domain.CartItem `json:"items"`
}

// CheckoutResponse carries the processor's redirect handle
type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// CheckoutHandler handles checkout initiation and the success callback
type CheckoutHandler struct {
	checkoutService service.CheckoutService
	logger          *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// RegisterRoutes registers checkout routes. rateLimit guards session
// creation; nil disables it (tests).
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, authMiddleware, rateLimit func(http.Handler) http.Handler) {
	r.Route("/api/checkout", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			if rateLimit != nil {
				r.Use(rateLimit)
			}
			r.Post("/session", h.CreateSession)
		})
		r.Get("/success", h.Success)
	})
}

// CreateSession validates the cart and opens a hosted payment session
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.checkoutService.CreateSession(r.Context(), req.Items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartEmpty):
			middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
		case errors.Is(err, service.ErrInvalidCart):
			middleware.RespondWithError(w, http.StatusBadRequest, "some products are invalid")
		default:
			h.logger.Error("Failed to create checkout session", zap.Error(err))
			middleware.RespondWithError(w, http.StatusBadGateway, "payment processor unavailable")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CheckoutResponse{
		URL:       result.URL,
		SessionID: result.SessionID,
	})
}

// Success is the processor redirect target: it reconciles the session
// into an order and returns it, or reports that confirmation is pending.
func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	order, err := h.checkoutService.Reconcile(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, payment.ErrSessionNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "checkout session not found")
			return
		}
		h.logger.Error("Reconciliation failed", zap.String("session_id", sessionID), zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "payment processor unavailable, retry shortly")
		return
	}

	if order == nil {
		// Payment not confirmed yet; the buyer should wait and retry.
		middleware.RespondWithJSON(w, http.StatusAccepted, map[string]string{
			"status": "pending_confirmation",
		})
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]*domain.Order{"order": order})
}
