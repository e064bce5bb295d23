// Package domainerrors carries coded errors that services return and
// transports translate. Codes are stable strings that clients can match on.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

// Generic codes shared by every module.
const (
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"
	CodeValidation         Code = "validation_error"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeRateLimited        Code = "rate_limit_exceeded"
)

// Sale codes. Each one names a rejected contribution, rate change,
// finalization or refund claim.
const (
	CodeSaleNotOpen        Code = "sale_not_open"
	CodeSaleClosed         Code = "sale_closed"
	CodeNotWhitelisted     Code = "not_whitelisted"
	CodeBelowMinimum       Code = "below_minimum"
	CodeCapExceeded        Code = "cap_exceeded"
	CodeSupplyExceeded     Code = "supply_exceeded"
	CodeRateBelowFloor     Code = "rate_below_floor"
	CodeInvalidBeneficiary Code = "invalid_beneficiary"
	CodeSaleFinalized      Code = "sale_finalized"
	CodeAlreadyFinalized   Code = "already_finalized"
	CodeTooEarly           Code = "too_early"
	CodeNotFinalized       Code = "not_finalized"
	CodeGoalWasReached     Code = "goal_was_reached"
)

// Error is a domain error with a code, a client-safe message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a domain error with the same code, so callers
// can write errors.Is(err, dErrors.New(code, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// As extracts the outermost domain error from err.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CodeOf returns the code of the outermost domain error, or CodeInternal.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}

func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}
