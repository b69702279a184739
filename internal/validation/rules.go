// Package validation checks request values against declarative rule lists
// and model structs against their validate tags.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "storefront/internal/errors"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Rule is one check applied to a field value. The set of rules is closed:
// only the types declared in this package implement it.
type Rule interface {
	rule()
}

// Required fails on a value that is empty after trimming. A failed Required
// suppresses the remaining rules of the field.
type Required struct{}

// Email requires a plausible e-mail address.
type Email struct{}

// Password requires at least MinPasswordLength characters.
type Password struct{}

// Numeric requires a value that parses as a decimal number.
type Numeric struct{}

// MinLength requires at least N characters.
type MinLength struct{ N int }

// MaxLength allows at most N characters.
type MaxLength struct{ N int }

// Pattern requires the value to match Re.
type Pattern struct{ Re *regexp.Regexp }

func (Required) rule()  {}
func (Email) rule()     {}
func (Password) rule()  {}
func (Numeric) rule()   {}
func (MinLength) rule() {}
func (MaxLength) rule() {}
func (Pattern) rule()   {}

// Field binds an ordered rule list to a named input.
type Field struct {
	Name  string
	Rules []Rule
}

// Schema is an ordered list of fields; failures are reported in this order.
type Schema []Field

// Validate checks values against schema and returns every failure found.
// Missing fields read as the empty string.
func Validate(schema Schema, values map[string]string) []apperrors.FieldError {
	var failures []apperrors.FieldError
	for _, field := range schema {
		value := values[field.Name]
		empty := strings.TrimSpace(value) == ""

		for _, r := range field.Rules {
			if _, ok := r.(Required); ok {
				if empty {
					failures = append(failures, apperrors.FieldError{
						Field:   field.Name,
						Message: field.Name + " is required",
					})
					break
				}
				continue
			}
			if empty {
				break
			}
			if msg, ok := check(r, value); !ok {
				failures = append(failures, apperrors.FieldError{
					Field:   field.Name,
					Message: field.Name + " " + msg,
				})
			}
		}
	}
	return failures
}

// check evaluates a non-Required rule against a non-empty value and returns
// the message suffix on failure.
func check(r Rule, value string) (string, bool) {
	switch r := r.(type) {
	case Email:
		return "must be a valid email", emailPattern.MatchString(value)
	case Password:
		return fmt.Sprintf("must be at least %d characters", MinPasswordLength),
			utf8.RuneCountInString(value) >= MinPasswordLength
	case Numeric:
		_, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return "must be a number", err == nil
	case MinLength:
		return fmt.Sprintf("must be at least %d characters", r.N), utf8.RuneCountInString(value) >= r.N
	case MaxLength:
		return fmt.Sprintf("must not exceed %d characters", r.N), utf8.RuneCountInString(value) <= r.N
	case Pattern:
		return "format is invalid", r.Re.MatchString(value)
	default:
		panic(fmt.Sprintf("validation: unknown rule %T", r))
	}
}
