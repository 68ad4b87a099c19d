package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, map[string]int{"count": 2})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"count":2}}`, w.Body.String())
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()

	Created(w, []string{})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusNotFound, "Product not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, w.Body.String())
}

func TestMessage(t *testing.T) {
	w := httptest.NewRecorder()

	Message(w, http.StatusOK, map[string]string{"message": "Review deleted"})

	assert.JSONEq(t, `{"message":"Review deleted"}`, w.Body.String())
}
