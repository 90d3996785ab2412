package handler

import (
	"errors"
	"net/http"

	"medstock/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// statusFor maps domain errors to HTTP status codes. Anything unmapped is a
// storage or programming failure and surfaces as a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrInventoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrOutOfSequence):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidStage),
		errors.Is(err, service.ErrInvalidVendor),
		errors.Is(err, service.ErrMissingInvoice),
		errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrMissingDetail),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrEmailExists):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// currentUserID reads the authenticated user's ID set by the auth middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("userID"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
