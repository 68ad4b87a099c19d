package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Pesokrava/catalog_api/internal/delivery/http/request"
	"github.com/Pesokrava/catalog_api/internal/delivery/http/response"
	"github.com/Pesokrava/catalog_api/internal/domain"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	"github.com/Pesokrava/catalog_api/internal/usecase/review"
)

// ReviewHandler handles HTTP requests for reviews
type ReviewHandler struct {
	service *review.Service
	logger  *logger.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service *review.Service, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  log,
	}
}

// CreateReviewRequest represents the request body for creating a review
type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Comment   *string   `json:"comment,omitempty" validate:"omitempty,max=5000"`
	Grade     int       `json:"grade" validate:"gte=1,lte=5"`
}

// List handles GET /reviews
// @Summary List active reviews
// @Tags Reviews
// @Produce json
// @Success 200 {object} map[string]interface{} "List of reviews"
// @Router /reviews [get]
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, reviews)
}

// ListByProduct handles GET /reviews/products/{id}/reviews
// @Summary List active reviews of a product
// @Tags Reviews
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} map[string]interface{} "List of reviews"
// @Failure 400 {object} response.ErrorResponse "Invalid product ID"
// @Failure 404 {object} response.ErrorResponse "Product not found"
// @Router /reviews/products/{id}/reviews [get]
func (h *ReviewHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	reviews, err := h.service.ListByProduct(r.Context(), productID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, reviews)
}

// Create handles POST /reviews
// @Summary Review a product
// @Description Create a review and recompute the product rating
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param review body CreateReviewRequest true "Review details"
// @Success 201 {object} map[string]interface{} "Review created successfully"
// @Failure 400 {object} response.ErrorResponse "Invalid request body"
// @Failure 403 {object} response.ErrorResponse "Only buyers can do this"
// @Failure 404 {object} response.ErrorResponse "Product not found"
// @Failure 409 {object} response.ErrorResponse "Review already exists"
// @Failure 422 {object} response.ErrorResponse "Grade should be in range 1-5"
// @Router /reviews [post]
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validate(w, req) {
		return
	}

	rv := &domain.Review{
		ProductID: req.ProductID,
		Comment:   req.Comment,
		Grade:     req.Grade,
	}

	if err := h.service.Create(r.Context(), user, rv); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, rv)
}

// Delete handles DELETE /reviews/{id}
// @Summary Delete a review
// @Description Mark a review as inactive and recompute the product rating
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID (UUID)"
// @Success 200 {object} map[string]string "Review deleted"
// @Failure 400 {object} response.ErrorResponse "Invalid review ID"
// @Failure 403 {object} response.ErrorResponse "Only admins can do this"
// @Failure 404 {object} response.ErrorResponse "Review not found"
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	if err := h.service.Delete(r.Context(), user, id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Message(w, http.StatusOK, map[string]string{"message": "Review deleted"})
}
