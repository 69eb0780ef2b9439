package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var addressRegex = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,128}$`)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator collects field errors for a request body.
type Validator struct {
	Errors []ValidationError
}

func New() *Validator {
	return &Validator{
		Errors: make([]ValidationError, 0),
	}
}

func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

func (v *Validator) AddError(field, message string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// CheckAddress records an error unless s looks like a ledger address.
func (v *Validator) CheckAddress(s, field string) {
	v.Check(IsAddress(s), field, "must be a valid address")
}

// Err joins all collected errors, or returns nil.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	msgs := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func IsAddress(s string) bool {
	return addressRegex.MatchString(s)
}
