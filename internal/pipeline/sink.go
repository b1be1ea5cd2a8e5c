package pipeline

import (
	"context"
	"time"

	"github.com/GriffinCanCode/apimanager/internal/shared/id"
	"github.com/GriffinCanCode/apimanager/internal/shared/types"
)

// RequestEntry is what the sink sees before dispatch
type RequestEntry struct {
	RequestID id.RequestID
	Spec      types.RequestSpec
}

// ResponseEntry is what the sink sees after the transport returns
type ResponseEntry struct {
	RequestID  id.RequestID
	Spec       types.RequestSpec
	StatusCode int
	Body       []byte
	Err        error
	Elapsed    time.Duration
}

// DebugSink receives request and response records. Implementations must not
// block and must not panic.
type DebugSink interface {
	LogRequest(entry RequestEntry)
	LogResponse(entry ResponseEntry)
}

// NopSink discards everything
type NopSink struct{}

func (NopSink) LogRequest(RequestEntry)   {}
func (NopSink) LogResponse(ResponseEntry) {}

// Observer is told about every finished request, offline rejections included.
// ctx carries the request ID (see id.FromContext).
type Observer interface {
	ObserveRequest(ctx context.Context, method types.Method, status int, err *types.Error, elapsed time.Duration)
}

// NopObserver ignores observations
type NopObserver struct{}

func (NopObserver) ObserveRequest(context.Context, types.Method, int, *types.Error, time.Duration) {}
