package apimanager

import (
	"crypto/x509"
	"time"

	"github.com/GriffinCanCode/apimanager/internal/connectivity"
	"github.com/GriffinCanCode/apimanager/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/apimanager/internal/pipeline"
	"github.com/GriffinCanCode/apimanager/internal/shared/types"
	"github.com/GriffinCanCode/apimanager/internal/transport"
	"github.com/GriffinCanCode/apimanager/internal/trust"
	"go.uber.org/zap"
)

type options struct {
	logger  *zap.Logger
	probe   connectivity.Probe
	backend transport.Backend
	bundle  *trust.Bundle
	rootCAs *x509.CertPool
	sink    pipeline.DebugSink
	metrics *monitoring.Metrics
	hook    *statusHook
}

// Option configures a Manager
type Option func(*options)

// WithLogger sets the logger used for debug output and backend diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithProbe replaces the interface-scanning connectivity probe
func WithProbe(probe connectivity.Probe) Option {
	return func(o *options) {
		o.probe = probe
	}
}

// WithBackend installs a ready-made backend instead of the configured one.
// Trust and rate limit settings are then the backend's own business.
func WithBackend(backend transport.Backend) Option {
	return func(o *options) {
		o.backend = backend
	}
}

// WithPinBundle supplies pinning material instead of loading API_PINS_DIR
func WithPinBundle(bundle *trust.Bundle) Option {
	return func(o *options) {
		o.bundle = bundle
	}
}

// WithRootCAs overrides the system certificate pool
func WithRootCAs(pool *x509.CertPool) Option {
	return func(o *options) {
		o.rootCAs = pool
	}
}

// WithDebugSink replaces the debug sink chosen from API_DEBUG
func WithDebugSink(sink pipeline.DebugSink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithMetrics shares a metrics collector between managers
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// WithStatusHook calls fn whenever a response carries one of codes, with the
// string found under messageKey in the JSON body (empty if absent). The
// request's own completion still fires afterwards.
func WithStatusHook(codes []int, messageKey string, fn func(code int, message string)) Option {
	return func(o *options) {
		o.hook = newStatusHook(codes, messageKey, fn)
	}
}

// RequestOption adjusts a single request
type RequestOption func(*types.RequestSpec)

// WithHeaders merges headers into the request
func WithHeaders(headers map[string]string) RequestOption {
	return func(s *types.RequestSpec) {
		for k, v := range headers {
			WithHeader(k, v)(s)
		}
	}
}

// WithHeader sets one request header
func WithHeader(key, value string) RequestOption {
	return func(s *types.RequestSpec) {
		if s.Headers == nil {
			s.Headers = make(map[string]string)
		}
		s.Headers[key] = value
	}
}

// WithParams merges parameters into the request
func WithParams(params map[string]interface{}) RequestOption {
	return func(s *types.RequestSpec) {
		for k, v := range params {
			WithParam(k, v)(s)
		}
	}
}

// WithParam sets one request parameter
func WithParam(key string, value interface{}) RequestOption {
	return func(s *types.RequestSpec) {
		if s.Params == nil {
			s.Params = make(map[string]interface{})
		}
		s.Params[key] = value
	}
}

// WithTimeout sets the request timeout (default API_TIMEOUT)
func WithTimeout(d time.Duration) RequestOption {
	return func(s *types.RequestSpec) {
		s.Timeout = d
	}
}

// WithEncoding selects how parameters are sent (default JSON)
func WithEncoding(e types.Encoding) RequestOption {
	return func(s *types.RequestSpec) {
		s.Encoding = e
	}
}
