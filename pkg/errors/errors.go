// Package errors defines the coded errors and warnings of acknowledge.
//
// Codes split into two groups. INVALID_* and UNAUTHORIZED abort a run
// ([IsFatal]). Everything else describes one dependency or repository; the
// run records it in a [Warnings] log and excludes that item.
//
//	if errors.Is(err, errors.ErrCodeUnauthorized) {
//	    // ask for a token
//	}
//
// The package shadows the standard library's errors; import that one as
// stderrors where both are needed.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidBreadth  Code = "INVALID_BREADTH"

	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	ErrCodeRepoUnresolved  Code = "REPO_UNRESOLVED"
	ErrCodeUnsupportedHost Code = "UNSUPPORTED_HOST"

	ErrCodeFetchFailed Code = "FETCH_FAILED"
	ErrCodeRateLimited Code = "RATE_LIMITED"
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeNetwork     Code = "NETWORK_ERROR"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error carries a code, a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the first coded error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode returns the code of the first *Error or *RateLimitedError in
// err's chain, or "" when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.Code()
	}
	return ""
}

// UserMessage is err's text without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// IsFatal reports whether err must abort a run rather than degrade it.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidManifest, ErrCodeInvalidFormat,
		ErrCodeInvalidBreadth, ErrCodeUnauthorized, ErrCodeInternal:
		return true
	}
	return false
}

// RateLimitedError reports that a provider refused a request because the
// caller exhausted its quota.
type RateLimitedError struct {
	RetryAfter time.Duration // zero when the provider sent no hint
	Message    string
}

func (e *RateLimitedError) Error() string {
	msg := "rate limited"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", msg, e.RetryAfter.Round(time.Second))
	}
	return msg
}

func (e *RateLimitedError) Code() Code { return ErrCodeRateLimited }
