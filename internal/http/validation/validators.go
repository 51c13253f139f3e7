// Package validation provides small composable validators for request fields.
package validation

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Validator is a function that validates a string value and returns an error message if invalid.
type Validator func(v string) string

// Required validates that a field is not empty and does not exceed maxLen characters.
// Uses rune count for proper Unicode support.
func Required(fieldName string, maxLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return fieldName + " is required."
		}
		if utf8.RuneCountInString(v) > maxLen {
			return fmt.Sprintf("%s cannot exceed %d characters.", fieldName, maxLen)
		}
		return ""
	}
}

// Email validates that a field is a single bare email address no longer than maxLen bytes.
// Display-name forms such as "Ann <ann@example.com>" are rejected.
func Email(fieldName string, maxLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return fieldName + " is required."
		}
		if len(v) > maxLen {
			return fmt.Sprintf("%s cannot exceed %d characters.", fieldName, maxLen)
		}
		addr, err := mail.ParseAddress(v)
		if err != nil || addr.Name != "" || addr.Address != v {
			return "Enter a valid email address."
		}
		return ""
	}
}

// MaxBytes validates that a non-empty field does not exceed maxLen bytes.
// Unlike Required, surrounding whitespace is significant.
func MaxBytes(fieldName string, maxLen int) Validator {
	return func(v string) string {
		if v == "" {
			return fieldName + " is required."
		}
		if len(v) > maxLen {
			return fmt.Sprintf("%s cannot exceed %d bytes.", fieldName, maxLen)
		}
		return ""
	}
}

// Integer validates that a field is a base-10 64-bit integer.
func Integer(fieldName string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return fieldName + " is required."
		}
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return fieldName + " must be an integer."
		}
		return ""
	}
}

// FieldValidator provides a fluent API for validating multiple fields.
type FieldValidator struct {
	errors map[string]string
}

// New creates a new FieldValidator instance.
func New() *FieldValidator {
	return &FieldValidator{errors: make(map[string]string)}
}

// Validate validates a field with one or more validators.
// It stops at the first error for each field.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	if _, seen := fv.errors[field]; seen {
		return fv
	}
	for _, v := range validators {
		if err := v(value); err != "" {
			fv.errors[field] = err
			break
		}
	}
	return fv
}

// Add records msg for field unless the field already has an error.
func (fv *FieldValidator) Add(field, msg string) *FieldValidator {
	if _, seen := fv.errors[field]; !seen && msg != "" {
		fv.errors[field] = msg
	}
	return fv
}

// Valid reports whether no errors have been recorded.
func (fv *FieldValidator) Valid() bool {
	return len(fv.errors) == 0
}

// Errors returns the accumulated validation errors.
func (fv *FieldValidator) Errors() map[string]string {
	return fv.errors
}
