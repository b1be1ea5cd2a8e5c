package transport

import (
	"context"
	"crypto/x509"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/apimanager/internal/shared/types"
	"github.com/GriffinCanCode/apimanager/internal/trust"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Backend is the capability set the pipeline is polymorphic over
type Backend interface {
	// Execute performs one exchange and blocks until it completes. Errors are *types.Error.
	Execute(ctx context.Context, spec types.RequestSpec) (*types.RawResponse, error)
	// CancelAll aborts every exchange currently in flight
	CancelAll()
}

// Backend names accepted by New
const (
	BackendResty         = "resty"
	BackendRetryableHTTP = "retryablehttp"
)

// DefaultUserAgent is sent when the caller sets none
const DefaultUserAgent = "apimanager/1.0"

// Options configures the session shared by all requests of a backend
type Options struct {
	// Trust maps hosts to pinning evaluators. Nil or empty means standard CA verification only.
	Trust *trust.ServerTrustManager
	// RootCAs overrides the system pool
	RootCAs *x509.CertPool
	// UserAgent is the default User-Agent header
	UserAgent string
	// RateLimit in requests per second, 0 for unlimited
	RateLimit float64
	Logger    *zap.Logger
}

func (o Options) userAgent() string {
	if o.UserAgent == "" {
		return DefaultUserAgent
	}
	return o.UserAgent
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
}

// New creates the backend registered under name. An empty name selects resty.
func New(name string, opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendResty:
		return NewResty(opts), nil
	case BackendRetryableHTTP:
		return NewRetryable(opts), nil
	default:
		return nil, fmt.Errorf("unknown transport backend: %q", name)
	}
}

// roundTripFunc performs the backend-specific part of an exchange. The int
// is the HTTP status, when one arrived before a failure.
type roundTripFunc func(ctx context.Context, req *encodedRequest) (*types.RawResponse, int, error)

// dispatcher holds the per-backend state every backend shares: the rate
// limiter, the default User-Agent and the in-flight registry
type dispatcher struct {
	limiter   *rate.Limiter
	userAgent string
	inflight  *Inflight
}

func newDispatcher(opts Options) dispatcher {
	return dispatcher{
		limiter:   newLimiter(opts.RateLimit),
		userAgent: opts.userAgent(),
		inflight:  NewInflight(),
	}
}

func (d *dispatcher) execute(ctx context.Context, spec types.RequestSpec, do roundTripFunc) (*types.RawResponse, error) {
	req, err := encodeRequest(spec, d.userAgent)
	if err != nil {
		return nil, types.NewError(types.KindTransport, types.StatusNoResponse, err)
	}

	ctx, done := d.inflight.Begin(ctx)
	defer done()

	ctx, cancel := context.WithTimeout(ctx, spec.EffectiveTimeout())
	defer cancel()

	if err := d.limiter.Wait(ctx); err != nil {
		return nil, classify(ctx, fmt.Errorf("rate limit error: %w", err), types.StatusNoResponse)
	}

	resp, status, err := do(ctx, req)
	if err != nil {
		return nil, classify(ctx, err, status)
	}
	return resp, nil
}

// CancelAll aborts every request in flight. Calling it with nothing in flight is a no-op.
func (d *dispatcher) CancelAll() {
	d.inflight.CancelAll()
}

// Pending returns the number of requests in flight
func (d *dispatcher) Pending() int {
	return d.inflight.Len()
}
