package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates protocol")
	ErrValidation      = errors.New("validation failed")

	// ErrOrderNotFound covers both missing orders and orders owned by another
	// caller, so access checks never leak existence.
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrDraftIncomplete = errors.New("draft order is incomplete")
	ErrAddressTooShort = errors.New("delivery address is too short")
	ErrQueryRejected   = errors.New("query rejected")
)
