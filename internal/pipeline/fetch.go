package pipeline

import (
	"context"

	"github.com/GriffinCanCode/apimanager/internal/shared/types"
)

type fetchResult[T any] struct {
	status  int
	outcome types.Outcome[T]
}

// Fetch issues a raw request and blocks until it completes. The error, when
// non-nil, is a *types.Error.
func (p *Pipeline) Fetch(ctx context.Context, spec types.RequestSpec) (int, []byte, error) {
	done := make(chan fetchResult[[]byte], 1)
	p.RequestRaw(ctx, spec, func(status int, outcome types.Outcome[[]byte]) {
		done <- fetchResult[[]byte]{status, outcome}
	})
	res := <-done
	body, err := res.outcome.Get()
	return res.status, body, err
}

// FetchDecoded issues a decoded request and blocks until it completes
func FetchDecoded[T any](p *Pipeline, ctx context.Context, spec types.RequestSpec) (int, T, error) {
	done := make(chan fetchResult[T], 1)
	RequestDecoded(p, ctx, spec, func(status int, outcome types.Outcome[T]) {
		done <- fetchResult[T]{status, outcome}
	})
	res := <-done
	value, err := res.outcome.Get()
	return res.status, value, err
}
