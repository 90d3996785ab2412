package service

import "errors"

// Domain error kinds. All are user-facing and recoverable; handlers map them
// to HTTP status codes with errors.Is. Storage failures are returned wrapped
// and surface as internal errors instead.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInventoryNotFound = errors.New("inventory not found")
	ErrInvalidStage      = errors.New("unknown stage")
	ErrUnauthorized      = errors.New("role not authorized for this stage")
	ErrOutOfSequence     = errors.New("stage is not the pending stage")
	ErrInvalidVendor     = errors.New("invalid vendor")
	ErrMissingInvoice    = errors.New("invoice image is required")
	ErrInvalidProduct    = errors.New("no such product")
	ErrInvalidQuantity   = errors.New("quantity must be a positive number")
	ErrInsufficientStock = errors.New("quantity used cannot be greater than available")
	ErrMissingDetail     = errors.New("detail is required")

	ErrInvalidLocation    = errors.New("invalid location")
	ErrEmailExists        = errors.New("email address exists, use another")
	ErrInvalidCredentials = errors.New("incorrect email or password")
)
