/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package db

import (
	"errors"
	"fmt"
)

var (
	ErrTokenNotFound  = errors.New("token not found")
	ErrTokenExpired   = errors.New("token expired")
	ErrDatabaseClosed = errors.New("database is closed")
	ErrCorruptedData  = errors.New("corrupted data")
)

// DatabaseError represents a database-specific error with context
type DatabaseError struct {
	Op      string // Operation that failed
	Err     error  // Underlying error
	Profile string // Token profile (if applicable)
}

func (e *DatabaseError) Error() string {
	if e.Profile != "" {
		return fmt.Sprintf("db %s (profile: %s): %v", e.Op, e.Profile, e.Err)
	}
	return fmt.Sprintf("db %s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// ValidationError represents a data validation error
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// NewDatabaseError creates a new database error
func NewDatabaseError(op string, err error) *DatabaseError {
	return &DatabaseError{Op: op, Err: err}
}

// NewDatabaseErrorWithProfile creates a new database error tied to a profile
func NewDatabaseErrorWithProfile(op string, err error, profile string) *DatabaseError {
	return &DatabaseError{Op: op, Err: err, Profile: profile}
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// IsNotFound reports whether err means the requested token does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTokenNotFound)
}
