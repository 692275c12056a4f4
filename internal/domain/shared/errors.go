// Package shared contains common domain types, errors and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")

	// State errors
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// External service errors
	ErrExternalService = errors.New("external service error")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "profile", "buddy", "reward"
	Op      string // Operation that failed, e.g., "CheckIn", "Sync"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Profile domain errors
var (
	ErrProfileNotFound = NewDomainError("profile", "Find", ErrNotFound, "profile not found")
	ErrProfileExists   = NewDomainError("profile", "Create", ErrAlreadyExists, "profile already exists")
	ErrUsernameTaken   = NewDomainError("profile", "ReserveUsername", ErrAlreadyExists, "username is already taken")
	ErrInvalidUsername = NewDomainError("profile", "Validate", ErrInvalidInput, "username must be 3-20 characters: letters, digits, underscore")
	ErrInvalidGoal     = NewDomainError("profile", "UpdateDailyGoal", ErrValueOutOfRange, "daily goal must be positive")
	ErrEmptyName       = NewDomainError("profile", "UpdateSettings", ErrEmptyValue, "display name cannot be empty")
)

// Schedule domain errors
var (
	ErrClassNotFound    = NewDomainError("schedule", "FindClass", ErrNotFound, "class not found in schedule")
	ErrDuplicateClass   = NewDomainError("schedule", "AddClass", ErrAlreadyExists, "class with this name already exists")
	ErrInvalidClassName = NewDomainError("schedule", "Validate", ErrEmptyValue, "class name cannot be empty")
	ErrInvalidWeekday   = NewDomainError("schedule", "Validate", ErrInvalidInput, "unknown day of week")
)

// Points domain errors
var (
	ErrInvalidDuration    = NewDomainError("points", "StudySession", ErrValueOutOfRange, "study duration must be positive")
	ErrNegativeBuddyCount = NewDomainError("points", "Award", ErrNegativeValue, "buddy count cannot be negative")
	ErrInsufficientPoints = NewDomainError("reward", "Redeem", ErrInsufficientBalance, "not enough points")
	ErrInvalidCost        = NewDomainError("reward", "Redeem", ErrValueOutOfRange, "reward cost must be positive")
	ErrUnknownReward      = NewDomainError("reward", "Find", ErrNotFound, "reward not found in catalog")
	ErrEmptyRewardName    = NewDomainError("reward", "Redeem", ErrEmptyValue, "reward name cannot be empty")
)

// Buddy domain errors
var (
	ErrBuddyNotFound  = NewDomainError("buddy", "Find", ErrNotFound, "buddy not found")
	ErrDuplicateBuddy = NewDomainError("buddy", "Sync", ErrAlreadyExists, "already synced with this buddy")
	ErrSelfSync       = NewDomainError("buddy", "Sync", ErrInvalidInput, "cannot sync with yourself")
)

// Auth errors
var (
	ErrInvalidCredentials = NewDomainError("auth", "Login", ErrUnauthorized, "invalid email or password")
	ErrEmailTaken         = NewDomainError("auth", "CreateAccount", ErrAlreadyExists, "email is already registered")
	ErrWeakPassword       = NewDomainError("auth", "CreateAccount", ErrInvalidInput, "password must be at least 6 characters")
	ErrInvalidEmail       = NewDomainError("auth", "CreateAccount", ErrInvalidInput, "email address is invalid")
	ErrNotSignedIn        = NewDomainError("auth", "CurrentUser", ErrUnauthorized, "no user is signed in")
)

// StoreError wraps a persistence or transport failure. The original driver
// error is preserved unmodified and reachable through errors.Unwrap / errors.As.
type StoreError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store.%s: %v", e.Op, e.Err)
}

// Unwrap returns the driver error.
func (e *StoreError) Unwrap() error { return e.Err }

// Is matches ErrExternalService in addition to the wrapped error.
func (e *StoreError) Is(target error) bool {
	return target == ErrExternalService
}

// NewStoreError wraps err. Returns nil for nil err and leaves
// domain errors and existing store errors untouched.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsInsufficientBalance checks if a redemption was rejected for lack of points.
func IsInsufficientBalance(err error) bool {
	return errors.Is(err, ErrInsufficientBalance)
}

// IsStoreError checks if the error came from the persistence layer.
func IsStoreError(err error) bool {
	return errors.Is(err, ErrExternalService)
}
