package datastores

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint: gochecknoglobals // safe for concurrent use

// ErrInvalidValue is wrapped by every [ValidationError].
var ErrInvalidValue = errors.New("store: invalid value")

// Validation is the result of checking a candidate value for Field.
// It is valid when Reason is empty.
type Validation struct {
	Field  string
	Value  string
	Reason string
}

func (v Validation) Valid() bool { return v.Reason == "" }

// Err returns nil for a valid result and a [*ValidationError] otherwise.
func (v Validation) Err() error {
	if v.Valid() {
		return nil
	}
	return &ValidationError{v}
}

type ValidationError struct{ Validation }

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidValue }

func ValidateName(value string) Validation {
	return check("name", value, "required", "must not be empty")
}

// ValidatePhone accepts exactly 10 characters. Digits are not enforced.
func ValidatePhone(value string) Validation {
	return check("phone", value, "len=10", "must be 10 characters long")
}

func ValidateBirthday(value string) Validation {
	return check("birthday", value, "required,datetime=2006-01-02", "must be a date formatted as YYYY-MM-DD")
}

func check(field, value, tag, reason string) Validation {
	v := Validation{Field: field, Value: value}
	if validate.Var(value, tag) != nil {
		v.Reason = reason
	}
	return v
}
