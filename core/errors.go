package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode classifies the errors of layout requests. Layout itself is total;
// codes are reported only at the boundaries of the engine: for invalid input,
// for missing resources and for canceled requests.
type ErrorCode int

// Error codes
const (
	NOERROR     ErrorCode = 0
	EMISSING    ErrorCode = 122 // resource (font, node, stylesheet) does not exist
	EINVALID    ErrorCode = 123 // precondition violated at an API boundary
	ECONNECTION ErrorCode = 124 // request superseded or canceled
	EINTERNAL   ErrorCode = 125 // internal error
)

func (c ErrorCode) String() string {
	switch c {
	case NOERROR:
		return "OK"
	case EMISSING:
		return "not found"
	case EINVALID:
		return "invalid"
	case ECONNECTION:
		return "canceled"
	case EINTERNAL:
		return "internal error"
	}
	return fmt.Sprintf("error code %d", int(c))
}

// LayoutError is the error type of the engine's entry points. It carries a
// code, a message for the user and, optionally, the error which caused it.
type LayoutError struct {
	Code  ErrorCode
	Msg   string
	Cause error
}

func (e *LayoutError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Code, e.Msg)
	}
	return fmt.Sprintf("[%d] %s: %v", e.Code, e.Msg, e.Cause)
}

func (e *LayoutError) Unwrap() error {
	return e.Cause
}

// Is matches layout errors by code, thus
//
//     errors.Is(err, core.ErrInvalid)
//
// is true for every error created with code EINVALID.
func (e *LayoutError) Is(target error) bool {
	t, ok := target.(*LayoutError)
	return ok && t.Msg == "" && t.Cause == nil && t.Code == e.Code
}

// Targets for errors.Is
var (
	ErrMissing  = &LayoutError{Code: EMISSING}
	ErrInvalid  = &LayoutError{Code: EINVALID}
	ErrCanceled = &LayoutError{Code: ECONNECTION}
)

// Error creates an error with an error code and a user-message.
func Error(code ErrorCode, format string, v ...interface{}) error {
	return &LayoutError{Code: code, Msg: fmt.Sprintf(format, v...)}
}

// WrapError wraps err with an error code and a user message.
// A nil err is allowed.
func WrapError(err error, code ErrorCode, format string, v ...interface{}) error {
	return &LayoutError{Code: code, Msg: fmt.Sprintf(format, v...), Cause: err}
}

// Canceled wraps the error of a done context with code ECONNECTION.
// If ctx is not done, Canceled returns nil.
func Canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &LayoutError{Code: ECONNECTION, Msg: "layout request superseded", Cause: err}
	}
	return nil
}

// Code returns the code of the outermost layout error in err's chain.
// It is NOERROR for nil and EINTERNAL for errors of other types.
func Code(err error) ErrorCode {
	if err == nil {
		return NOERROR
	}
	var e *LayoutError
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// UserMessage returns the message of the outermost layout error in err's
// chain, or the text of its code.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *LayoutError
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return Code(err).String()
}
