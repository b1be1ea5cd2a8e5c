package types

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout is applied when a RequestSpec carries no timeout
const DefaultTimeout = 60 * time.Second

// Method is an HTTP verb
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
)

// ParseMethod converts a case-insensitive verb into a Method
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(s))); m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodHead, MethodOptions:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported HTTP method: %q", s)
	}
}

// String returns the verb
func (m Method) String() string {
	return string(m)
}

// QueryOnly reports whether parameters for this method always travel in the query string
func (m Method) QueryOnly() bool {
	return m == MethodGet || m == MethodHead
}

// Encoding selects how parameters are serialized
type Encoding int

const (
	// EncodingJSON sends parameters as a JSON body
	EncodingJSON Encoding = iota
	// EncodingURL sends parameters as a form body (query string for GET/HEAD)
	EncodingURL
)

// String returns the encoding name
func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingURL:
		return "url"
	default:
		return "unknown"
	}
}

// ParseEncoding converts "json" or "url" into an Encoding
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return EncodingJSON, nil
	case "url", "form":
		return EncodingURL, nil
	default:
		return EncodingJSON, fmt.Errorf("unsupported encoding: %q", s)
	}
}

// RequestSpec describes a single call. It is built per call and never shared.
type RequestSpec struct {
	URL      string
	Method   Method
	Headers  map[string]string
	Params   map[string]interface{}
	Encoding Encoding
	Timeout  time.Duration
}

// EffectiveTimeout returns Timeout, or DefaultTimeout when unset
func (s RequestSpec) EffectiveTimeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultTimeout
	}
	return s.Timeout
}

// Validate checks the fields a transport cannot work without
func (s RequestSpec) Validate() error {
	if strings.TrimSpace(s.URL) == "" {
		return fmt.Errorf("url cannot be empty")
	}
	if _, err := ParseMethod(string(s.Method)); err != nil {
		return err
	}
	return nil
}
