package transport

import (
	"context"
	"errors"
	"syscall"

	"github.com/GriffinCanCode/apimanager/internal/shared/types"
)

// offlineErrnos are the system errors that mean the network itself is unavailable
var offlineErrnos = []syscall.Errno{
	syscall.ENETUNREACH,
	syscall.EHOSTUNREACH,
	syscall.ENETDOWN,
}

// IsOffline reports whether err means no route to the network or host
func IsOffline(err error) bool {
	if errors.Is(err, types.ErrOffline) {
		return true
	}
	for _, errno := range offlineErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// classify maps a failed exchange onto the error taxonomy. ctx is the
// request context, whose cause tells CancelAll apart from other failures.
func classify(ctx context.Context, err error, status int) *types.Error {
	var typed *types.Error
	if errors.As(err, &typed) {
		return typed
	}

	if cause := context.Cause(ctx); cause != nil {
		if errors.Is(cause, types.ErrCancelled) || errors.Is(cause, context.Canceled) {
			return types.NewError(types.KindCancelled, status, err)
		}
	}
	if IsOffline(err) {
		return types.NewError(types.KindOffline, types.StatusOffline, err)
	}
	return types.NewError(types.KindTransport, status, err)
}
