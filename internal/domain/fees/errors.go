package fees

import "errors"

// Validation errors
var (
	ErrInvalidRate      = errors.New("invalid rate")
	ErrInvalidThreshold = errors.New("invalid threshold")
	ErrNoRecipients     = errors.New("rate has no recipients")
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrInvalidFunds     = errors.New("invalid funds")
)

// ErrInvalidTimestamp is returned when the current time does not move past the
// last evaluated timestamp.
var ErrInvalidTimestamp error = &temporalError{msg: "invalid timestamp: current time must be after last timestamp"}

// Arithmetic errors
var (
	ErrOverflow          = errors.New("overflow")
	ErrUnderflow         = errors.New("underflow")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// temporalError also matches ErrInvalidRate, which is what timestamp ordering
// violations have always been reported as.
type temporalError struct {
	msg string
}

func (e *temporalError) Error() string { return e.msg }

func (*temporalError) Is(target error) bool { return target == ErrInvalidRate }

func IsValidationError(err error) bool {
	if IsTemporalError(err) {
		return false
	}
	return errors.Is(err, ErrInvalidRate) ||
		errors.Is(err, ErrInvalidThreshold) ||
		errors.Is(err, ErrNoRecipients) ||
		errors.Is(err, ErrInvalidRecipient) ||
		errors.Is(err, ErrInvalidFunds)
}

func IsTemporalError(err error) bool {
	return errors.Is(err, ErrInvalidTimestamp)
}

func IsArithmeticError(err error) bool {
	return errors.Is(err, ErrOverflow) ||
		errors.Is(err, ErrUnderflow) ||
		errors.Is(err, ErrInsufficientFunds)
}
