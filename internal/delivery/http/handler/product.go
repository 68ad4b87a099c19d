package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Pesokrava/catalog_api/internal/delivery/http/request"
	"github.com/Pesokrava/catalog_api/internal/delivery/http/response"
	"github.com/Pesokrava/catalog_api/internal/domain"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	"github.com/Pesokrava/catalog_api/internal/usecase/product"
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service *product.Service
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *product.Service, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  log,
	}
}

// ProductRequest represents the request body for creating or replacing a product
type ProductRequest struct {
	Name        string    `json:"name" validate:"required,min=3,max=100"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=500"`
	Price       float64   `json:"price" validate:"gt=0"`
	ImageURL    *string   `json:"image_url,omitempty" validate:"omitempty,max=200"`
	Stock       int       `json:"stock" validate:"gte=0"`
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
}

func (req ProductRequest) toDomain() *domain.Product {
	return &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	}
}

// List handles GET /products
// @Summary List active products
// @Tags Products
// @Produce json
// @Success 200 {object} map[string]interface{} "List of products"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, products)
}

// ListByCategory handles GET /products/category/{id}
// @Summary List active products of a category
// @Tags Products
// @Produce json
// @Param id path string true "Category ID (UUID)"
// @Success 200 {object} map[string]interface{} "List of products"
// @Failure 400 {object} response.ErrorResponse "Invalid category ID"
// @Failure 404 {object} response.ErrorResponse "Category not found"
// @Router /products/category/{id} [get]
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	products, err := h.service.ListByCategory(r.Context(), categoryID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, products)
}

// GetByID handles GET /products/{id}
// @Summary Get a product by ID
// @Description Get a product including its derived rating
// @Tags Products
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} map[string]interface{} "Product details"
// @Failure 400 {object} response.ErrorResponse "Invalid product ID or category not found"
// @Failure 404 {object} response.ErrorResponse "Product not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, product)
}

// Create handles POST /products
// @Summary Create a new product
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body ProductRequest true "Product details"
// @Success 201 {object} map[string]interface{} "Product created successfully"
// @Failure 400 {object} response.ErrorResponse "Invalid request body or category not found"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 403 {object} response.ErrorResponse "Only sellers can do this"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validate(w, req) {
		return
	}

	product := req.toDomain()
	if err := h.service.Create(r.Context(), user, product); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, product)
}

// Update handles PUT /products/{id}
// @Summary Replace a product
// @Description Overwrite every client-settable field of a product the caller owns
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID (UUID)"
// @Param product body ProductRequest true "Updated product details"
// @Success 200 {object} map[string]interface{} "Product updated successfully"
// @Failure 400 {object} response.ErrorResponse "Invalid request or category not found"
// @Failure 403 {object} response.ErrorResponse "Not the owner"
// @Failure 404 {object} response.ErrorResponse "Product not found"
// @Router /products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req ProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validate(w, req) {
		return
	}

	product, err := h.service.Update(r.Context(), user, id, req.toDomain())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, product)
}

// Delete handles DELETE /products/{id}
// @Summary Delete a product
// @Description Mark a product the caller owns as inactive
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} map[string]string "Product marked as inactive"
// @Failure 400 {object} response.ErrorResponse "Invalid product ID or category not found"
// @Failure 403 {object} response.ErrorResponse "Not the owner"
// @Failure 404 {object} response.ErrorResponse "Product not found"
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.service.Delete(r.Context(), user, id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Message(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Product marked as inactive",
	})
}
