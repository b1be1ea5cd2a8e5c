package transport

import (
	"context"
	"errors"
	"sync"

	"github.com/GriffinCanCode/apimanager/internal/shared/types"
)

// Inflight tracks cancel functions of dispatched requests so CancelAll can
// abort them. Entries are removed when their request finishes.
type Inflight struct {
	mu      sync.Mutex
	next    uint64
	pending map[uint64]context.CancelCauseFunc
}

// NewInflight creates an empty registry
func NewInflight() *Inflight {
	return &Inflight{pending: make(map[uint64]context.CancelCauseFunc)}
}

// Begin derives a cancellable context for one request. done must be called
// when the request finishes.
func (f *Inflight) Begin(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(ctx)

	f.mu.Lock()
	key := f.next
	f.next++
	f.pending[key] = cancel
	f.mu.Unlock()

	return ctx, func() {
		f.mu.Lock()
		delete(f.pending, key)
		f.mu.Unlock()
		cancel(nil)
	}
}

// CancelAll aborts every pending request with types.ErrCancelled as the cause
func (f *Inflight) CancelAll() {
	f.mu.Lock()
	cancels := make([]context.CancelCauseFunc, 0, len(f.pending))
	for key, cancel := range f.pending {
		cancels = append(cancels, cancel)
		delete(f.pending, key)
	}
	f.mu.Unlock()

	for _, cancel := range cancels {
		cancel(types.ErrCancelled)
	}
}

// Len returns the number of pending requests
func (f *Inflight) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Cancelled reports whether ctx was aborted by CancelAll
func Cancelled(ctx context.Context) bool {
	cause := context.Cause(ctx)
	return cause != nil && errors.Is(cause, types.ErrCancelled)
}
