package apimanager

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/GriffinCanCode/apimanager/internal/config"
	"github.com/GriffinCanCode/apimanager/internal/connectivity"
	"github.com/GriffinCanCode/apimanager/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/apimanager/internal/logging"
	"github.com/GriffinCanCode/apimanager/internal/pipeline"
	"github.com/GriffinCanCode/apimanager/internal/shared/types"
	"github.com/GriffinCanCode/apimanager/internal/transport"
	"github.com/GriffinCanCode/apimanager/internal/trust"
	"go.uber.org/zap"
)

// Manager issues requests through one backend configured at construction
type Manager struct {
	pipeline *pipeline.Pipeline
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	root     *url.URL
	timeout  time.Duration
}

// New builds a Manager from cfg. A nil cfg means config.Default().
func New(cfg *config.Config, opts ...Option) (*Manager, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = defaultLogger(cfg)
	}
	if o.probe == nil {
		if cfg.API.ConnectivityCheck {
			o.probe = connectivity.NewInterfaceProbe()
		} else {
			o.probe = connectivity.Always
		}
	}
	if o.metrics == nil {
		o.metrics = monitoring.NewMetrics()
	}

	backend := o.backend
	if backend == nil {
		trustManager, err := buildTrust(cfg, o)
		if err != nil {
			return nil, err
		}
		backend, err = transport.New(cfg.Transport.Backend, transport.Options{
			Trust:     trustManager,
			RootCAs:   o.rootCAs,
			UserAgent: cfg.Transport.UserAgent,
			RateLimit: cfg.Transport.RateLimit,
			Logger:    o.logger,
		})
		if err != nil {
			return nil, err
		}
	}

	sink := o.sink
	if sink == nil {
		if cfg.API.Debug {
			sink = pipeline.NewLogSink(o.logger)
		} else {
			sink = pipeline.NopSink{}
		}
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithProbe(o.probe),
		pipeline.WithDebugSink(sink),
		pipeline.WithObserver(o.metrics),
		pipeline.WithOfflineDelay(cfg.API.OfflineDelay),
	}
	if o.hook != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithResponseHook(o.hook.onResponse))
	}

	m := &Manager{
		pipeline: pipeline.New(backend, pipelineOpts...),
		metrics:  o.metrics,
		logger:   o.logger,
		timeout:  cfg.API.Timeout,
	}
	if root, err := url.Parse(cfg.API.RootURL); err == nil && root.IsAbs() {
		if !strings.HasSuffix(root.Path, "/") {
			root.Path += "/"
		}
		m.root = root
	}
	return m, nil
}

// defaultLogger is silent unless debug mode is on, in which case it follows
// LOG_LEVEL and LOG_DEV
func defaultLogger(cfg *config.Config) *zap.Logger {
	if !cfg.API.Debug {
		return zap.NewNop()
	}
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return logging.NewDevelopment().Logger
	}
	return logger.Logger
}

// buildTrust returns nil when pinning is disabled: the session then keeps
// the stock TLS path, proxies and HTTP/2 included
func buildTrust(cfg *config.Config, o *options) (*trust.ServerTrustManager, error) {
	mode := cfg.Trust.PinningMode
	if mode == trust.PinningDisabled {
		return nil, nil
	}

	bundle := o.bundle
	if bundle == nil && cfg.Trust.PinsDir != "" {
		loaded, err := trust.LoadBundle(cfg.Trust.PinsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load pins: %w", err)
		}
		bundle = loaded
	}

	evaluators := trust.Build(cfg.API.RootURL, mode, bundle)
	if len(evaluators) == 0 {
		o.logger.Warn("Pinning requested but no domain could be derived from the root URL; using standard verification",
			zap.String("root_url", cfg.API.RootURL),
			zap.Stringer("mode", mode))
	}
	for domain := range evaluators {
		o.logger.Debug("Trust evaluator configured", zap.String("domain", domain), zap.Stringer("mode", mode))
	}
	return trust.NewServerTrustManager(evaluators), nil
}

func (m *Manager) spec(target string, method types.Method, opts []RequestOption) types.RequestSpec {
	spec := types.RequestSpec{
		URL:      target,
		Method:   method,
		Encoding: types.EncodingJSON,
		Timeout:  m.timeout,
	}
	for _, opt := range opts {
		opt(&spec)
	}
	return spec
}

// resolve joins a relative endpoint onto the root URL. Absolute URLs and
// endpoints without a configured root are returned unchanged.
func (m *Manager) resolve(endpoint string) string {
	if m.root == nil {
		return endpoint
	}
	ref, err := url.Parse(strings.TrimPrefix(endpoint, "/"))
	if err != nil || ref.IsAbs() || ref.Host != "" {
		return endpoint
	}
	return m.root.ResolveReference(ref).String()
}

// RequestData issues a request and delivers the raw body. Non-2xx statuses
// are successes; branch on the status code.
func (m *Manager) RequestData(ctx context.Context, target string, method types.Method, completion pipeline.Completion[[]byte], opts ...RequestOption) {
	m.pipeline.RequestRaw(ctx, m.spec(target, method, opts), completion)
}

// RequestEndpoint is RequestData for an endpoint name relative to API_ROOT_URL
func (m *Manager) RequestEndpoint(ctx context.Context, endpoint string, method types.Method, completion pipeline.Completion[[]byte], opts ...RequestOption) {
	m.RequestData(ctx, m.resolve(endpoint), method, completion, opts...)
}

// RequestDecodable issues a request and delivers the body decoded as T
func RequestDecodable[T any](m *Manager, ctx context.Context, target string, method types.Method, completion pipeline.Completion[T], opts ...RequestOption) {
	pipeline.RequestDecoded(m.pipeline, ctx, m.spec(target, method, opts), completion)
}

// Fetch is the blocking form of RequestData
func (m *Manager) Fetch(ctx context.Context, target string, method types.Method, opts ...RequestOption) (int, []byte, error) {
	return m.pipeline.Fetch(ctx, m.spec(target, method, opts))
}

// FetchDecodable is the blocking form of RequestDecodable
func FetchDecodable[T any](m *Manager, ctx context.Context, target string, method types.Method, opts ...RequestOption) (int, T, error) {
	return pipeline.FetchDecoded[T](m.pipeline, ctx, m.spec(target, method, opts))
}

// CancelAllRequests aborts every request in flight. Each completes once, as cancelled.
func (m *Manager) CancelAllRequests() {
	m.pipeline.CancelAll()
}

// Wait blocks until every issued request has completed
func (m *Manager) Wait() {
	m.pipeline.Wait()
}

// Metrics returns the request metrics collector
func (m *Manager) Metrics() *monitoring.Metrics {
	return m.metrics
}

// Resolve returns the URL RequestEndpoint would call for endpoint
func (m *Manager) Resolve(endpoint string) string {
	return m.resolve(endpoint)
}
