// Copyright (c) 2026 RootLink. All rights reserved.

// Package validate provides the input predicates used before calling the
// remote API and a chainable Validator that collects field-level errors into
// a single [apperr.AppError].
//
// # Architecture
//
// Checks run in the console's action handlers, never inside the session
// manager or the request pipeline: those components assume their input has
// already been validated.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/RuzhenWong/rootlink/internal/platform/apperr"
)

var (
	// phoneRegex matches a mainland mobile number.
	phoneRegex = regexp.MustCompile(`^1[3-9]\d{9}$`)
	// passwordCharset matches 6-20 ASCII letters and digits.
	passwordCharset = regexp.MustCompile(`^[a-zA-Z\d]{6,20}$`)
	// idCardRegex matches an 18-character resident identity card number.
	idCardRegex = regexp.MustCompile(`^[1-9]\d{5}(18|19|20)\d{2}(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])\d{3}[0-9Xx]$`)
	// codeRegex matches a 6-digit SMS verification code.
	codeRegex = regexp.MustCompile(`^\d{6}$`)

	hasLower = regexp.MustCompile(`[a-z]`)
	hasUpper = regexp.MustCompile(`[A-Z]`)
	hasDigit = regexp.MustCompile(`\d`)
)

// # Normalization

// Normalize trims the value and folds full-width characters to their ASCII
// forms, so digits typed with a CJK input method still match.
func Normalize(value string) string {
	return strings.TrimSpace(width.Narrow.String(value))
}

// # Predicates

// IsPhone reports whether value is a valid mobile number.
func IsPhone(value string) bool {
	return phoneRegex.MatchString(Normalize(value))
}

// IsPassword reports whether value has 6-20 letters and digits including at
// least one lowercase letter, one uppercase letter and one digit.
func IsPassword(value string) bool {
	return passwordCharset.MatchString(value) &&
		hasLower.MatchString(value) &&
		hasUpper.MatchString(value) &&
		hasDigit.MatchString(value)
}

// IsIDCard reports whether value is shaped like a resident identity card number.
func IsIDCard(value string) bool {
	return idCardRegex.MatchString(Normalize(value))
}

// IsCode reports whether value is a 6-digit verification code.
func IsCode(value string) bool {
	return codeRegex.MatchString(Normalize(value))
}

// # Validator

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every form submission.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// Phone fails if the value is not a valid mobile number.
func (v *Validator) Phone(field, value string) *Validator {
	if !IsPhone(value) {
		v.add(field, "Must be a valid mobile number")
	}
	return v
}

// Password fails if the value does not satisfy [IsPassword].
func (v *Validator) Password(field, value string) *Validator {
	if !IsPassword(value) {
		v.add(field, "Must be 6-20 characters with upper case, lower case and digits")
	}
	return v
}

// IDCard fails if the value is not a valid identity card number.
func (v *Validator) IDCard(field, value string) *Validator {
	if !IsIDCard(value) {
		v.add(field, "Must be a valid identity card number")
	}
	return v
}

// Code fails if the value is not a 6-digit verification code.
func (v *Validator) Code(field, value string) *Validator {
	if !IsCode(value) {
		v.add(field, "Must be a 6-digit code")
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// It is the only output method; call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}
