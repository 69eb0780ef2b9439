package rates

import (
	"errors"

	"ratesvc/internal/domain/fees"
	"ratesvc/internal/repositories"
)

// Service errors
var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrAlreadyInstantiated    = errors.New("rates contract already instantiated")
	ErrNotInstantiated        = errors.New("rates contract not instantiated")
	ErrUnsupportedInstruction = errors.New("unsupported instruction")
	ErrInvalidRequest         = errors.New("invalid request")
)

// ErrorKind buckets an error for metrics and for mapping to transport status codes.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case fees.IsTemporalError(err):
		return "temporal"
	case fees.IsValidationError(err), errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrUnsupportedInstruction):
		return "validation"
	case fees.IsArithmeticError(err):
		return "arithmetic"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotInstantiated), errors.Is(err, repositories.ErrRatesConfigNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyInstantiated), errors.Is(err, repositories.ErrDuplicateRatesConfig):
		return "conflict"
	default:
		return "internal"
	}
}
