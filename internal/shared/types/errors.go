package types

import (
	"errors"
	"fmt"
)

const (
	// StatusOffline is reported when no network exchange took place because
	// the device is offline or the host was unreachable
	StatusOffline = 1009
	// StatusNoResponse is reported when the exchange failed before any HTTP status arrived
	StatusNoResponse = 0
)

// Kind classifies a failure
type Kind int

const (
	KindTransport Kind = iota
	KindOffline
	KindDecode
	KindCancelled
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindOffline:
		return "offline"
	case KindDecode:
		return "decode"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is the single failure type delivered to callers
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

var (
	ErrOffline   = &Error{Kind: KindOffline, StatusCode: StatusOffline}
	ErrCancelled = &Error{Kind: KindCancelled, StatusCode: StatusNoResponse}
)

// Error implements error
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Kind == KindOffline && e.Err == nil:
		return "internet connection appears to be offline"
	case e.Kind == KindCancelled && e.Err == nil:
		return "request cancelled"
	case e.Err == nil:
		return fmt.Sprintf("%s error (status %d)", e.Kind, e.StatusCode)
	default:
		return fmt.Sprintf("%s error (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so errors.Is(err, ErrOffline) works
// regardless of status or cause
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil || e == nil {
		return false
	}
	return e.Kind == t.Kind
}

// NewError builds an *Error
func NewError(kind Kind, status int, err error) *Error {
	return &Error{Kind: kind, StatusCode: status, Err: err}
}

// AsError extracts an *Error from err, classifying anything else as a transport failure
func AsError(err error, status int) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewError(KindTransport, status, err)
}
