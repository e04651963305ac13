// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidOrExpired = errors.New("token invalid or expired")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrDuplicatePhone   = errors.New("phone number already registered")
)

// ValidationError reports a missing or malformed form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
