package transport

import (
	"context"
	"io"
	"net/http"

	"github.com/GriffinCanCode/apimanager/internal/logging"
	"github.com/GriffinCanCode/apimanager/internal/shared/types"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// RetryableBackend executes requests through go-retryablehttp with retries
// turned off, so each call is exactly one exchange
type RetryableBackend struct {
	dispatcher
	client *retryablehttp.Client
}

// NewRetryable creates the go-retryablehttp backend
func NewRetryable(opts Options) *RetryableBackend {
	client := retryablehttp.NewClient()
	client.HTTPClient.Transport = newSession(opts)
	client.RetryMax = 0
	client.CheckRetry = noRetry
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	log := opts.logger().Named("retryablehttp")
	client.Logger = leveledLogger{log.Sugar()}
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, _ int) {
		logging.ForRequest(log, req.Context()).Debug("Sending request",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()))
	}
	client.ResponseLogHook = func(_ retryablehttp.Logger, resp *http.Response) {
		logging.ForRequest(log, resp.Request.Context()).Debug("Received response",
			zap.Int("status", resp.StatusCode))
	}

	return &RetryableBackend{
		dispatcher: newDispatcher(opts),
		client:     client,
	}
}

// Execute implements Backend
func (b *RetryableBackend) Execute(ctx context.Context, spec types.RequestSpec) (*types.RawResponse, error) {
	return b.execute(ctx, spec, b.roundTrip)
}

func (b *RetryableBackend) roundTrip(ctx context.Context, req *encodedRequest) (*types.RawResponse, int, error) {
	var body interface{}
	if req.Body != nil {
		body = req.Body
	}

	r, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, types.StatusNoResponse, err
	}
	r.Header = req.Header

	resp, err := b.client.Do(r)
	if err != nil {
		status := types.StatusNoResponse
		if resp != nil {
			status = resp.StatusCode
			resp.Body.Close()
		}
		return nil, status, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return &types.RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, resp.StatusCode, nil
}

func noRetry(context.Context, *http.Response, error) (bool, error) {
	return false, nil
}

// leveledLogger routes retryablehttp logs into zap
type leveledLogger struct {
	log *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, keysAndValues...)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Infow(msg, keysAndValues...)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warnw(msg, keysAndValues...)
}
