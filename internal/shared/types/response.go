package types

import "net/http"

// RawResponse is what a transport hands back for a completed HTTP exchange
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType returns the response Content-Type header, if any
func (r *RawResponse) ContentType() string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}

// Outcome is a tagged result: either a value or a classified error.
// The status code lives next to it in every completion.
type Outcome[T any] struct {
	value T
	err   *Error
}

// Success creates a successful outcome
func Success[T any](value T) Outcome[T] {
	return Outcome[T]{value: value}
}

// Failure creates a failed outcome
func Failure[T any](err *Error) Outcome[T] {
	if err == nil {
		err = &Error{Kind: KindTransport, StatusCode: StatusNoResponse}
	}
	return Outcome[T]{err: err}
}

// OK reports whether the outcome is a success
func (o Outcome[T]) OK() bool {
	return o.err == nil
}

// Value returns the value and true on success
func (o Outcome[T]) Value() (T, bool) {
	return o.value, o.err == nil
}

// Err returns the classified error, or nil on success
func (o Outcome[T]) Err() *Error {
	return o.err
}

// Get unwraps the outcome into Go's usual (value, error) pair
func (o Outcome[T]) Get() (T, error) {
	if o.err != nil {
		var zero T
		return zero, o.err
	}
	return o.value, nil
}
