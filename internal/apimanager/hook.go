package apimanager

import (
	"github.com/GriffinCanCode/apimanager/internal/codec"
	"github.com/GriffinCanCode/apimanager/internal/shared/types"
)

type statusHook struct {
	codes      map[int]struct{}
	messageKey string
	fn         func(code int, message string)
}

func newStatusHook(codes []int, messageKey string, fn func(int, string)) *statusHook {
	if fn == nil || len(codes) == 0 {
		return nil
	}
	h := &statusHook{codes: make(map[int]struct{}, len(codes)), messageKey: messageKey, fn: fn}
	for _, code := range codes {
		h.codes[code] = struct{}{}
	}
	return h
}

func (h *statusHook) onResponse(resp *types.RawResponse) {
	if _, ok := h.codes[resp.StatusCode]; !ok {
		return
	}
	h.fn(resp.StatusCode, codec.LookupString(resp.Body, h.messageKey))
}
