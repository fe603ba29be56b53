package common

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess                RetCode = iota // 0: Command executed successfully.
	RetCInvalidRow                            // 1: Row shape does not satisfy the key type (local, never sent).
	RetCConcurrentModification                // 2: Remote state diverged from the row cache.
	RetCExecutionTimeout                      // 3: No response within the execution timeout.
	RetCProtocolError                         // 4: Malformed or error-typed response.
	RetCConnectionError                       // 5: The physical connection failed.
	RetCUnsupportedOperation                  // 6: Operation is not supported by the key type.
	RetCClosed                                // 7: The connection was closed.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInvalidRow:
		return "InvalidRow"
	case RetCConcurrentModification:
		return "ConcurrentModification"
	case RetCExecutionTimeout:
		return "ExecutionTimeout"
	case RetCProtocolError:
		return "ProtocolError"
	case RetCConnectionError:
		return "ConnectionError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error wraps a return code and an error message.
// Two errors are considered equal by errors.Is when their codes match, so the
// sentinel values below can be used to test for a kind.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message
	Err  error   // Optional cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewError creates a new Error with the given code and message
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new Error with the given code, message and cause
func WrapError(code RetCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// Sentinel errors, use with errors.Is
var (
	ErrInvalidRow             = NewError(RetCInvalidRow, "invalid row")
	ErrConcurrentModification = NewError(RetCConcurrentModification, "row already has changed, reload values and try again")
	ErrExecutionTimeout       = NewError(RetCExecutionTimeout, "execution timeout")
	ErrProtocol               = NewError(RetCProtocolError, "protocol error")
	ErrConnection             = NewError(RetCConnectionError, "connection error")
	ErrUnsupportedOperation   = NewError(RetCUnsupportedOperation, "unsupported operation")
	ErrClosed                 = NewError(RetCClosed, "connection closed")
)

// CodeOf returns the RetCode of err, RetCSuccess for nil
// and RetCProtocolError for foreign errors
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return RetCProtocolError
}
