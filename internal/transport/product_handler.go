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

// ProductRequest represents the admin create/update payload
type ProductRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       float64  `json:"price" validate:"gte=0"`
	Images      []string `json:"images"`
	Category    string   `json:"category" validate:"required"`
	Inventory   int      `json:"inventory" validate:"gte=0"`
}

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers catalog routes. Reads are public; writes
// require the admin role.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns the catalog, newest first
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string][]*domain.Product{"products": products})
}

// Get returns a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]*domain.Product{"product": product})
}

// Create handles admin product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.Create(r.Context(), productInput(req))
	if err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			middleware.RespondWithError(w, http.StatusBadRequest, "missing required fields")
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]*domain.Product{"product": product})
}

// Update handles admin product edits
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.Update(r.Context(), id, productInput(req))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "not found")
		case errors.Is(err, service.ErrInvalidProduct):
			middleware.RespondWithError(w, http.StatusBadRequest, "missing required fields")
		default:
			h.logger.Error("Failed to update product", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]*domain.Product{"product": product})
}

// Delete handles admin product removal
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func productInput(req ProductRequest) service.ProductInput {
	return service.ProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Images:      req.Images,
		Category:    req.Category,
		Inventory:   req.Inventory,
	}
}
