package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input the caller must fix. Handlers map it to 400.
	ErrValidation = errors.New("validation failed")

	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrEmptyCart               = fmt.Errorf("%w: cart is empty", ErrValidation)
	ErrProductUnavailable      = fmt.Errorf("%w: product is not available", ErrValidation)
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
