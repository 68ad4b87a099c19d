package handler

import (
	"net/http"

	"github.com/Pesokrava/catalog_api/internal/delivery/http/request"
	"github.com/Pesokrava/catalog_api/internal/delivery/http/response"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	"github.com/Pesokrava/catalog_api/internal/usecase/user"
)

// UserHandler handles registration and token endpoints
type UserHandler struct {
	service *user.Service
	logger  *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *user.Service, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  log,
	}
}

// Register handles POST /users
// @Summary Register an account
// @Tags Users
// @Accept json
// @Produce json
// @Param user body user.Registration true "Account details"
// @Success 201 {object} map[string]interface{} "Account created"
// @Failure 409 {object} response.ErrorResponse "Email already registered"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Router /users [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg user.Registration
	if err := request.DecodeJSON(r, &reg); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.service.Register(r.Context(), reg)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, u)
}

// Login handles POST /users/token
// @Summary Issue tokens
// @Description OAuth2 password flow; the username field carries the email
// @Tags Users
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Email"
// @Param password formData string true "Password"
// @Success 200 {object} user.Tokens
// @Failure 401 {object} response.ErrorResponse "Incorrect email or password"
// @Router /users/token [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	tokens, err := h.service.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, tokens)
}

// Refresh handles POST /users/refresh-token
// @Summary Refresh the access token
// @Tags Users
// @Produce json
// @Param refresh_token query string false "Refresh token (or form field)"
// @Success 200 {object} user.Tokens
// @Failure 401 {object} response.ErrorResponse "Could not validate credentials"
// @Router /users/refresh-token [post]
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := request.FormOrQuery(r, "refresh_token")
	if token == "" {
		w.Header().Set("WWW-Authenticate", "Bearer")
		response.Error(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	tokens, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, tokens)
}
