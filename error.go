package scrapetmpl

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
	EFETCH    = "fetch"
	EINTERNAL = "internal"
)

// Error represents an application-specific error. Application errors can be
// unwrapped by the caller to extract the code and message.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("scrapetmpl error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	var fe *FetchError
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	} else if errors.As(err, &fe) {
		return EFETCH
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "internal error".
func ErrorMessage(err error) string {
	var e *Error
	var fe *FetchError
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	} else if errors.As(err, &fe) {
		return fe.Error()
	}
	return "internal error"
}

// FetchCause classifies why a page could not be fetched.
type FetchCause string

const (
	CauseTimeout    FetchCause = "timeout"
	CauseConnection FetchCause = "connection"
	CauseHTTPStatus FetchCause = "http-status"
	CauseTLS        FetchCause = "tls"
	CauseNoEngine   FetchCause = "no-engine"
)

// FetchError is returned when a page cannot be retrieved by any strategy.
type FetchError struct {
	Cause      FetchCause
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Cause == CauseHTTPStatus {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Cause, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a fetch failure is network-level and may succeed
// with a different strategy.
func (e *FetchError) Retryable() bool {
	switch e.Cause {
	case CauseTimeout, CauseConnection, CauseTLS:
		return true
	}
	return false
}

// FetchCauseOf returns the cause of a FetchError in err's chain, or "" if
// err is not a fetch failure.
func FetchCauseOf(err error) FetchCause {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Cause
	}
	return ""
}

// NoTemplateError returns the error reported when a domain has no stored template.
func NoTemplateError(domain string) *Error {
	return Errorf(ENOTFOUND, "no template for domain %q", domain)
}
