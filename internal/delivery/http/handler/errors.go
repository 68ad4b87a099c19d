package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Pesokrava/catalog_api/internal/delivery/http/middleware"
	"github.com/Pesokrava/catalog_api/internal/delivery/http/response"
	"github.com/Pesokrava/catalog_api/internal/domain"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	pkgvalidator "github.com/Pesokrava/catalog_api/internal/pkg/validator"
)

// errorStatus maps domain error kinds to HTTP statuses and fallback messages
var errorStatus = []struct {
	kind    error
	status  int
	message string
}{
	{domain.ErrNotFound, http.StatusNotFound, "Not found"},
	{domain.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "Not authenticated"},
	{domain.ErrConflict, http.StatusConflict, "Conflict"},
	{domain.ErrAlreadyExists, http.StatusConflict, "Already exists"},
	{domain.ErrInvalidInput, http.StatusUnprocessableEntity, "Invalid input"},
	{domain.ErrInvalidReference, http.StatusBadRequest, "Invalid reference"},
}

// fieldMessages replaces the generic validator text for fields whose
// failure message is part of the API contract
var fieldMessages = map[string]string{
	"grade": domain.ErrInvalidGrade.Message,
}

// writeError translates a service error into an HTTP response
func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	for _, e := range errorStatus {
		if !errors.Is(err, e.kind) {
			continue
		}

		message := e.message
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			message = domainErr.Message
		}

		if e.status == http.StatusUnauthorized {
			w.Header().Set("WWW-Authenticate", "Bearer")
		}
		response.Error(w, e.status, message)
		return
	}

	log.WithRequest(r.Context()).Error("Internal error", err)
	response.Error(w, http.StatusInternalServerError, "Internal server error")
}

// validate checks a request body and writes a 422 describing the first
// failing fields. It reports whether the body was valid.
func validate(w http.ResponseWriter, body interface{}) bool {
	err := pkgvalidator.Struct(body)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		response.Error(w, http.StatusUnprocessableEntity, "Invalid input")
		return false
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if msg, ok := fieldMessages[fe.Field()]; ok {
			msgs = append(msgs, msg)
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	response.Error(w, http.StatusUnprocessableEntity, strings.Join(msgs, "; "))
	return false
}

// actor returns the authenticated caller or writes a 401
func actor(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		response.Error(w, http.StatusUnauthorized, "Not authenticated")
	}
	return user, ok
}
