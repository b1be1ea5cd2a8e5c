package transport

import (
	"context"

	"github.com/GriffinCanCode/apimanager/internal/logging"
	"github.com/GriffinCanCode/apimanager/internal/shared/types"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RestyBackend executes requests through a resty client
type RestyBackend struct {
	dispatcher
	client *resty.Client
}

// NewResty creates the default backend. Retries are disabled.
func NewResty(opts Options) *RestyBackend {
	log := opts.logger().Named("resty")
	client := resty.New().
		SetTransport(newSession(opts)).
		SetRetryCount(0).
		SetLogger(log.Sugar())

	client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		logging.ForRequest(log, r.Context()).Debug("Sending request",
			zap.String("method", r.Method),
			zap.String("url", r.URL))
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logging.ForRequest(log, resp.Request.Context()).Debug("Received response",
			zap.Int("status", resp.StatusCode()),
			zap.Duration("elapsed", resp.Time()))
		return nil
	})
	client.OnError(func(r *resty.Request, err error) {
		logging.ForRequest(log, r.Context()).Debug("Request failed", zap.Error(err))
	})

	return &RestyBackend{
		dispatcher: newDispatcher(opts),
		client:     client,
	}
}

// Execute implements Backend
func (b *RestyBackend) Execute(ctx context.Context, spec types.RequestSpec) (*types.RawResponse, error) {
	return b.execute(ctx, spec, b.roundTrip)
}

func (b *RestyBackend) roundTrip(ctx context.Context, req *encodedRequest) (*types.RawResponse, int, error) {
	r := b.client.R().
		SetContext(ctx).
		SetHeaderMultiValues(req.Header)
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		status := types.StatusNoResponse
		if resp != nil && resp.RawResponse != nil {
			status = resp.StatusCode()
		}
		return nil, status, err
	}

	return &types.RawResponse{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}, resp.StatusCode(), nil
}
