// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Output goes to stderr by default so that commands can write response
// bodies to stdout untouched.
//
// Lines about one request carry its ID under "request_id". ForRequest pulls
// the ID out of the request context, so transport backends and the pipeline
// tag their lines the same way.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.WithRequest(ctx).Info("Request failed", zap.String("url", url), zap.Error(err))
package logging
