// Package types provides shared data structures for the API manager.
//
// This package defines the request and result model used by every layer,
// from the transport backends up to the public facade.
//
// Request Types:
//   - Method: HTTP verb (GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS)
//   - Encoding: parameter encoding (JSON body, URL form/query)
//   - RequestSpec: one call's URL, method, headers, parameters and timeout
//
// Result Types:
//   - RawResponse: status, headers and body as produced by a transport
//   - Outcome[T]: tagged success/failure carrying a value or a classified *Error
//
// Errors:
//   - Kind: Offline, Transport, Decode, Cancelled
//   - StatusOffline, StatusNoResponse: sentinel status codes
//
// Example Usage:
//
//	spec := types.RequestSpec{
//	    URL:     "https://api.example.com/items",
//	    Method:  types.MethodGet,
//	    Timeout: types.DefaultTimeout,
//	}
package types
