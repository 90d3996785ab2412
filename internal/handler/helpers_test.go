package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"medstock/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrOrderNotFound, http.StatusNotFound},
		{service.ErrInventoryNotFound, http.StatusNotFound},
		{service.ErrOutOfSequence, http.StatusConflict},
		{service.ErrUnauthorized, http.StatusForbidden},
		{service.ErrInsufficientStock, http.StatusUnprocessableEntity},
		{service.ErrInvalidStage, http.StatusBadRequest},
		{service.ErrInvalidVendor, http.StatusBadRequest},
		{service.ErrMissingInvoice, http.StatusBadRequest},
		{service.ErrInvalidProduct, http.StatusBadRequest},
		{service.ErrInvalidQuantity, http.StatusBadRequest},
		{service.ErrMissingDetail, http.StatusBadRequest},
		{service.ErrInvalidLocation, http.StatusBadRequest},
		{service.ErrEmailExists, http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("database on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), "status for %v", tc.err)
	}

	// Wrapped errors still map
	wrapped := fmt.Errorf("advance failed: %w", service.ErrOutOfSequence)
	assert.Equal(t, http.StatusConflict, statusFor(wrapped))
}

func TestCurrentUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("parses the middleware value", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		id := uuid.New()
		c.Set("userID", id.String())

		got, ok := currentUserID(c)
		assert.True(t, ok)
		assert.Equal(t, id, got)
	})

	t.Run("missing or garbage value fails", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		_, ok := currentUserID(c)
		assert.False(t, ok)

		c.Set("userID", "nope")
		_, ok = currentUserID(c)
		assert.False(t, ok)
	})
}
