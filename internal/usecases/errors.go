package usecases

import (
	"errors"
	"fmt"
)

var (
	// ErrOracleUnavailable matches any failure of the text-generation oracle
	ErrOracleUnavailable = errors.New("oracle unavailable")
	// ErrCatalogUnavailable marks a degraded catalog fetch inside the matcher
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrProductNotFound    = errors.New("product not found")
	ErrNotOwner           = errors.New("product belongs to another wholesaler")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrBelowMinOrder      = errors.New("quantity below minimum order")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrInvalidRole        = errors.New("role must be wholesaler or vendor")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
)

// OracleError wraps a failed oracle call with the pipeline stage that issued it
type OracleError struct {
	Stage string
	Err   error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("%s: oracle call failed: %v", e.Stage, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

func (e *OracleError) Is(target error) bool { return target == ErrOracleUnavailable }
