package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/GriffinCanCode/apimanager/internal/codec"
	"github.com/GriffinCanCode/apimanager/internal/connectivity"
	"github.com/GriffinCanCode/apimanager/internal/shared/id"
	"github.com/GriffinCanCode/apimanager/internal/shared/types"
	"github.com/GriffinCanCode/apimanager/internal/transport"
)

// DefaultOfflineDelay is how long an offline rejection waits before completing
const DefaultOfflineDelay = 100 * time.Millisecond

// Completion receives the status code and outcome of one request
type Completion[T any] func(status int, outcome types.Outcome[T])

// Pipeline runs requests against one backend
type Pipeline struct {
	backend      transport.Backend
	probe        connectivity.Probe
	sink         DebugSink
	observer     Observer
	decoder      codec.Decoder
	onResponse   func(*types.RawResponse)
	offlineDelay time.Duration
	inflight     *transport.Inflight
	pending      sync.WaitGroup
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithProbe sets the connectivity probe (default: always connected)
func WithProbe(probe connectivity.Probe) Option {
	return func(p *Pipeline) {
		if probe != nil {
			p.probe = probe
		}
	}
}

// WithDebugSink sets the debug sink (default: NopSink)
func WithDebugSink(sink DebugSink) Option {
	return func(p *Pipeline) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithObserver sets the request observer (default: NopObserver)
func WithObserver(observer Observer) Option {
	return func(p *Pipeline) {
		if observer != nil {
			p.observer = observer
		}
	}
}

// WithOfflineDelay sets the offline rejection delay. Negative values are treated as zero.
func WithOfflineDelay(d time.Duration) Option {
	return func(p *Pipeline) {
		p.offlineDelay = max(d, 0)
	}
}

// WithDecoder forces one decoder instead of choosing by Content-Type
func WithDecoder(d codec.Decoder) Option {
	return func(p *Pipeline) {
		p.decoder = d
	}
}

// WithResponseHook registers fn to run on every completed HTTP exchange,
// before decoding and before the completion fires
func WithResponseHook(fn func(*types.RawResponse)) Option {
	return func(p *Pipeline) {
		p.onResponse = fn
	}
}

// New creates a pipeline over backend
func New(backend transport.Backend, opts ...Option) *Pipeline {
	p := &Pipeline{
		backend:      backend,
		probe:        connectivity.Always,
		sink:         NopSink{},
		observer:     NopObserver{},
		offlineDelay: DefaultOfflineDelay,
		inflight:     transport.NewInflight(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RequestRaw delivers the response body as-is. Any completed HTTP exchange is
// a success, whatever its status code.
func (p *Pipeline) RequestRaw(ctx context.Context, spec types.RequestSpec, completion Completion[[]byte]) {
	dispatch(p, ctx, spec, func(resp *types.RawResponse) ([]byte, *types.Error) {
		return resp.Body, nil
	}, completion)
}

// RequestDecoded delivers the response body parsed as T
func RequestDecoded[T any](p *Pipeline, ctx context.Context, spec types.RequestSpec, completion Completion[T]) {
	dispatch(p, ctx, spec, func(resp *types.RawResponse) (T, *types.Error) {
		value, err := codec.Decode[T](p.decoderFor(resp), resp.Body)
		if err != nil {
			return value, types.NewError(types.KindDecode, resp.StatusCode, err)
		}
		return value, nil
	}, completion)
}

// CancelAll aborts every dispatched request that has not completed yet, including
// those whose goroutine has not reached the backend. Each still completes
// exactly once, as KindCancelled unless its real outcome arrived first.
// Offline rejections are not affected.
func (p *Pipeline) CancelAll() {
	p.inflight.CancelAll()
	p.backend.CancelAll()
}

// Pending returns the number of dispatched requests not yet completed
func (p *Pipeline) Pending() int {
	return p.inflight.Len()
}

// Wait blocks until every completion issued so far has fired
func (p *Pipeline) Wait() {
	p.pending.Wait()
}

func (p *Pipeline) decoderFor(resp *types.RawResponse) codec.Decoder {
	if p.decoder != nil {
		return p.decoder
	}
	return codec.ForContentType(resp.ContentType())
}

func dispatch[T any](p *Pipeline, ctx context.Context, spec types.RequestSpec, convert func(*types.RawResponse) (T, *types.Error), completion Completion[T]) {
	if ctx == nil {
		ctx = context.Background()
	}
	rid := id.NewRequestID()
	ctx = id.WithRequestID(ctx, rid)
	started := time.Now()

	var once sync.Once
	release := func() {}
	p.pending.Add(1)
	finish := func(status int, outcome types.Outcome[T]) {
		once.Do(func() {
			defer p.pending.Done()
			release()
			p.observer.ObserveRequest(ctx, spec.Method, status, outcome.Err(), time.Since(started))
			if completion != nil {
				completion(status, outcome)
			}
		})
	}

	if !p.probe.IsConnected() {
		time.AfterFunc(p.offlineDelay, func() {
			finish(types.StatusOffline, types.Failure[T](types.NewError(types.KindOffline, types.StatusOffline, nil)))
		})
		return
	}

	ctx, release = p.inflight.Begin(ctx)

	go func() {
		if transport.Cancelled(ctx) {
			finish(types.StatusNoResponse, types.Failure[T](types.NewError(types.KindCancelled, types.StatusNoResponse, nil)))
			return
		}

		p.sink.LogRequest(RequestEntry{RequestID: rid, Spec: spec})

		resp, err := p.backend.Execute(ctx, spec)
		if err != nil {
			failure := types.AsError(err, types.StatusNoResponse)
			p.sink.LogResponse(ResponseEntry{
				RequestID:  rid,
				Spec:       spec,
				StatusCode: failure.StatusCode,
				Err:        failure,
				Elapsed:    time.Since(started),
			})
			finish(failure.StatusCode, types.Failure[T](failure))
			return
		}

		p.sink.LogResponse(ResponseEntry{
			RequestID:  rid,
			Spec:       spec,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Elapsed:    time.Since(started),
		})

		if p.onResponse != nil {
			p.onResponse(resp)
		}

		value, decodeErr := convert(resp)
		if decodeErr != nil {
			finish(resp.StatusCode, types.Failure[T](decodeErr))
			return
		}
		finish(resp.StatusCode, types.Success(value))
	}()
}
