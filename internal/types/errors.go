package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type
type ErrorCode string

const (
	// Rejected before any credits move
	ErrInsufficientCredits ErrorCode = "INSUFFICIENT_CREDITS"
	ErrAlreadyActive       ErrorCode = "ALREADY_ACTIVE"
	ErrInvalidArgument     ErrorCode = "INVALID_ARGUMENT"

	// Setup failures
	ErrDeductionFailed ErrorCode = "DEDUCTION_FAILED"

	// Action errors
	ErrNotYourGame       ErrorCode = "NOT_YOUR_GAME"
	ErrGameEnded         ErrorCode = "GAME_ENDED"
	ErrActionUnavailable ErrorCode = "ACTION_UNAVAILABLE"

	// System errors
	ErrInternalError ErrorCode = "INTERNAL_ERROR"
	ErrDatabaseError ErrorCode = "DATABASE_ERROR"
)

// GameError represents a game-related error
type GameError struct {
	Code    ErrorCode
	Message string
	Err     error // Underlying error, if any
}

// Error implements the error interface
func (e *GameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *GameError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a GameError with the same code
func (e *GameError) Is(target error) bool {
	var other *GameError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewGameError creates a new GameError
func NewGameError(code ErrorCode, message string) *GameError {
	return &GameError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error in a GameError
func WrapError(code ErrorCode, message string, err error) *GameError {
	return &GameError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsGameError checks if an error is a GameError and has a specific code
func IsGameError(err error, code ErrorCode) bool {
	gameErr, ok := AsGameError(err)
	if !ok {
		return false
	}
	return gameErr.Code == code
}

// AsGameError finds the first GameError in err's chain
func AsGameError(err error) (*GameError, bool) {
	if err == nil {
		return nil, false
	}
	var gameErr *GameError
	if !errors.As(err, &gameErr) {
		return nil, false
	}
	return gameErr, true
}

// CodeOf returns the code of the first GameError in err's chain, or ErrInternalError
func CodeOf(err error) ErrorCode {
	if gameErr, ok := AsGameError(err); ok {
		return gameErr.Code
	}
	return ErrInternalError
}
