package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Pesokrava/catalog_api/internal/delivery/http/request"
	"github.com/Pesokrava/catalog_api/internal/delivery/http/response"
	"github.com/Pesokrava/catalog_api/internal/domain"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	"github.com/Pesokrava/catalog_api/internal/usecase/category"
)

// CategoryHandler handles HTTP requests for categories
type CategoryHandler struct {
	service *category.Service
	logger  *logger.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(service *category.Service, log *logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  log,
	}
}

// CategoryRequest represents the request body for creating or replacing a category
type CategoryRequest struct {
	Name     string     `json:"name" validate:"required,min=3,max=50"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// List handles GET /categories
// @Summary List active categories
// @Tags Categories
// @Produce json
// @Success 200 {object} map[string]interface{} "List of categories"
// @Router /categories [get]
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, categories)
}

// GetByID handles GET /categories/{id}
// @Summary Get a category
// @Tags Categories
// @Produce json
// @Param id path string true "Category ID (UUID)"
// @Success 200 {object} map[string]interface{} "Category"
// @Failure 404 {object} response.ErrorResponse "Category not found"
// @Router /categories/{id} [get]
func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	c, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, c)
}

// Create handles POST /categories
// @Summary Create a category
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category body CategoryRequest true "Category details"
// @Success 201 {object} map[string]interface{} "Category created"
// @Failure 400 {object} response.ErrorResponse "Parent category not found"
// @Failure 403 {object} response.ErrorResponse "Only admins can do this"
// @Router /categories [post]
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validate(w, req) {
		return
	}

	c := &domain.Category{Name: req.Name, ParentID: req.ParentID}
	if err := h.service.Create(r.Context(), user, c); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, c)
}

// Update handles PUT /categories/{id}
// @Summary Replace a category
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID (UUID)"
// @Param category body CategoryRequest true "Category details"
// @Success 200 {object} map[string]interface{} "Category updated"
// @Failure 400 {object} response.ErrorResponse "Parent category not found"
// @Failure 404 {object} response.ErrorResponse "Category not found"
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var req CategoryRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validate(w, req) {
		return
	}

	c, err := h.service.Update(r.Context(), user, id, &domain.Category{Name: req.Name, ParentID: req.ParentID})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, c)
}

// Delete handles DELETE /categories/{id}
// @Summary Delete a category
// @Tags Categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID (UUID)"
// @Success 200 {object} map[string]string "Category marked as inactive"
// @Failure 404 {object} response.ErrorResponse "Category not found"
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := h.service.Delete(r.Context(), user, id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Message(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Category marked as inactive",
	})
}
