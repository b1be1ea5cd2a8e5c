// Package transport executes single HTTP exchanges for the pipeline.
//
// A Backend owns one long-lived session built at construction: the pooled
// http.Transport, the TLS trust manager for the configured root domain, and an
// optional client-side rate limit. Per-request settings (timeout, headers,
// parameters, encoding) travel with each RequestSpec and never touch shared
// state, so concurrent calls with different timeouts cannot interfere.
//
// Two interchangeable backends are provided:
//
//	resty          go-resty/resty/v2 (default)
//	retryablehttp  hashicorp/go-retryablehttp with retries disabled
//
// Both return *types.Error for every failure:
//
//	host unreachable / network down -> KindOffline, StatusOffline
//	CancelAll or caller cancellation -> KindCancelled
//	anything else                    -> KindTransport with the status, if one arrived
//
// A completed HTTP exchange is never an error, whatever its status code.
package transport
