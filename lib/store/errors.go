package store

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Is reports whether target is an *Error with the same code.
// This makes errors.Is(err, store.ErrNotFound) match any not-found error regardless of its message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new Error with the given code and a formatted message.
func NewError(code RetCode, format string, args ...interface{}) *Error {
	return &Error{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// CodeOf returns the RetCode carried by err.
// nil maps to RetCSuccess, errors without a code map to RetCInternalError.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return RetCInternalError
}

// Sentinels for errors.Is comparisons. Only the code is compared.
var (
	ErrNotFound          = &Error{Code: RetCNotFound, Msg: "key not found"}
	ErrAlreadyExists     = &Error{Code: RetCAlreadyExists, Msg: "key already exists"}
	ErrInvalidState      = &Error{Code: RetCInvalidState, Msg: "invalid state"}
	ErrInsufficientFunds = &Error{Code: RetCInsufficientFunds, Msg: "insufficient funds"}
	ErrLockTimeout       = &Error{Code: RetCLockTimeout, Msg: "lock wait exceeded"}
	ErrTxDone            = &Error{Code: RetCTxDone, Msg: "transaction already finished"}
)

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess           RetCode = iota // 0: Operation executed successfully.
	RetCInternalError                    // 1: Operation failed due to an internal error.
	RetCNotFound                         // 2: Referenced key is absent.
	RetCAlreadyExists                    // 3: Duplicate create.
	RetCInvalidState                     // 4: Negative balance or otherwise invalid request.
	RetCInsufficientFunds                // 5: A transfer would drive some balance negative.
	RetCLockTimeout                      // 6: Bounded lock wait exceeded.
	RetCTxDone                           // 7: Transaction is not active anymore.
)

// String returns the name of the code.
func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCNotFound:
		return "NotFound"
	case RetCAlreadyExists:
		return "AlreadyExists"
	case RetCInvalidState:
		return "InvalidState"
	case RetCInsufficientFunds:
		return "InsufficientFunds"
	case RetCLockTimeout:
		return "LockTimeout"
	case RetCTxDone:
		return "TxDone"
	default:
		return "Unknown"
	}
}
