package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GriffinCanCode/apimanager/internal/codec"
	"github.com/GriffinCanCode/apimanager/internal/connectivity"
	"github.com/GriffinCanCode/apimanager/internal/logging"
	"github.com/GriffinCanCode/apimanager/internal/shared/id"
	"github.com/GriffinCanCode/apimanager/internal/shared/types"
	"github.com/GriffinCanCode/apimanager/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"
)

type fakeBackend struct {
	calls     atomic.Int32
	cancelled atomic.Int32
	respond   func(ctx context.Context, spec types.RequestSpec) (*types.RawResponse, error)
}

func (f *fakeBackend) Execute(ctx context.Context, spec types.RequestSpec) (*types.RawResponse, error) {
	f.calls.Add(1)
	return f.respond(ctx, spec)
}

func (f *fakeBackend) CancelAll() {
	f.cancelled.Add(1)
}

func respondWith(status int, contentType, body string) *fakeBackend {
	return &fakeBackend{respond: func(context.Context, types.RequestSpec) (*types.RawResponse, error) {
		header := http.Header{}
		if contentType != "" {
			header.Set("Content-Type", contentType)
		}
		return &types.RawResponse{StatusCode: status, Header: header, Body: []byte(body)}, nil
	}}
}

type item struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

var getItems = types.RequestSpec{URL: "https://api.example.com/items", Method: types.MethodGet}

func TestOfflineNeverDispatches(t *testing.T) {
	backend := respondWith(http.StatusOK, "application/json", `{"id":1}`)
	p := New(backend, WithProbe(connectivity.NewStatic(false)), WithOfflineDelay(50*time.Millisecond))

	var called atomic.Bool
	done := make(chan struct{})
	p.RequestRaw(context.Background(), getItems, func(status int, outcome types.Outcome[[]byte]) {
		called.Store(true)
		assert.Equal(t, types.StatusOffline, status)
		if assert.NotNil(t, outcome.Err()) {
			assert.Equal(t, types.KindOffline, outcome.Err().Kind)
			assert.ErrorIs(t, outcome.Err(), types.ErrOffline)
		}
		close(done)
	})
	assert.False(t, called.Load(), "completion must not run on the caller's goroutine")

	<-done
	assert.Equal(t, int32(0), backend.calls.Load())
}

func TestOfflineDecodedZeroDelayIsAsync(t *testing.T) {
	backend := respondWith(http.StatusOK, "application/json", `{"id":1}`)
	p := New(backend, WithProbe(connectivity.ProbeFunc(func() bool { return false })), WithOfflineDelay(0))

	status, _, err := FetchDecoded[item](p, context.Background(), getItems)
	assert.Equal(t, types.StatusOffline, status)
	assert.ErrorIs(t, err, types.ErrOffline)
	assert.Equal(t, int32(0), backend.calls.Load())
}

func TestRequestRaw(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"ok", http.StatusOK, `{"id":1}`},
		{"not found is still success", http.StatusNotFound, `{"message":"not found"}`},
		{"garbage is still success", http.StatusOK, `<<<`},
		{"empty body", http.StatusNoContent, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(respondWith(tt.status, "application/json", tt.body))
			status, body, err := p.Fetch(context.Background(), getItems)
			require.NoError(t, err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.body, string(body))
		})
	}
}

func TestRequestDecoded(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		want        item
		wantKind    *types.Kind
	}{
		{"json", http.StatusOK, "application/json", `{"id":7,"name":"seven"}`, item{7, "seven"}, nil},
		{"no content type defaults to json", http.StatusCreated, "", `{"id":7,"name":"seven"}`, item{7, "seven"}, nil},
		{"yaml", http.StatusOK, "application/yaml", "id: 7\nname: seven\n", item{7, "seven"}, nil},
		{"malformed json keeps 200", http.StatusOK, "application/json", `{"id":`, item{}, kindPtr(types.KindDecode)},
		{"html error page keeps 502", http.StatusBadGateway, "text/html", `<html>bad gateway</html>`, item{}, kindPtr(types.KindDecode)},
		{"empty body", http.StatusOK, "application/json", ``, item{}, kindPtr(types.KindDecode)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(respondWith(tt.status, tt.contentType, tt.body))
			status, got, err := FetchDecoded[item](p, context.Background(), getItems)
			assert.Equal(t, tt.status, status)

			if tt.wantKind == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			require.Error(t, err)
			var e *types.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, *tt.wantKind, e.Kind)
			assert.Equal(t, tt.status, e.StatusCode)
		})
	}
}

func kindPtr(k types.Kind) *types.Kind { return &k }

func TestWithDecoderOverridesContentType(t *testing.T) {
	p := New(respondWith(http.StatusOK, "application/json", "id: 3\nname: three\n"), WithDecoder(codec.YAML))
	_, got, err := FetchDecoded[item](p, context.Background(), getItems)
	require.NoError(t, err)
	assert.Equal(t, item{3, "three"}, got)
}

func TestTransportFailurePropagates(t *testing.T) {
	backend := &fakeBackend{respond: func(context.Context, types.RequestSpec) (*types.RawResponse, error) {
		return nil, types.NewError(types.KindTransport, 0, errors.New("tls: bad certificate"))
	}}
	p := New(backend)

	status, _, err := p.Fetch(context.Background(), getItems)
	assert.Equal(t, types.StatusNoResponse, status)
	var e *types.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, types.KindTransport, e.Kind)

	plain := &fakeBackend{respond: func(context.Context, types.RequestSpec) (*types.RawResponse, error) {
		return nil, io.ErrUnexpectedEOF
	}}
	_, _, err = New(plain).Fetch(context.Background(), getItems)
	require.ErrorAs(t, err, &e)
	assert.Equal(t, types.KindTransport, e.Kind)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

type recordingSink struct {
	mu        sync.Mutex
	requests  []RequestEntry
	responses []ResponseEntry
}

func (s *recordingSink) LogRequest(e RequestEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, e)
}

func (s *recordingSink) LogResponse(e ResponseEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, e)
}

type recordingObserver struct {
	mu       sync.Mutex
	ids      []id.RequestID
	statuses []int
	kinds    []string
}

func (o *recordingObserver) ObserveRequest(ctx context.Context, method types.Method, status int, err *types.Error, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	rid, _ := id.FromContext(ctx)
	o.ids = append(o.ids, rid)
	o.statuses = append(o.statuses, status)
	if err != nil {
		o.kinds = append(o.kinds, err.Kind.String())
	} else {
		o.kinds = append(o.kinds, "ok")
	}
}

func TestDebugSinkAndObserver(t *testing.T) {
	var seenID id.RequestID
	backend := &fakeBackend{respond: func(ctx context.Context, spec types.RequestSpec) (*types.RawResponse, error) {
		seenID, _ = id.FromContext(ctx)
		return &types.RawResponse{StatusCode: http.StatusTeapot, Body: []byte("short and stout")}, nil
	}}
	sink := &recordingSink{}
	rec := &recordingObserver{}
	p := New(backend, WithDebugSink(sink), WithObserver(rec))

	_, _, err := p.Fetch(context.Background(), getItems)
	require.NoError(t, err)

	require.Len(t, sink.requests, 1)
	require.Len(t, sink.responses, 1)
	assert.Equal(t, seenID, sink.requests[0].RequestID)
	assert.Equal(t, seenID, sink.responses[0].RequestID)
	assert.Equal(t, getItems.URL, sink.requests[0].Spec.URL)
	assert.Equal(t, http.StatusTeapot, sink.responses[0].StatusCode)
	assert.Equal(t, "short and stout", string(sink.responses[0].Body))

	p.Wait()
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []id.RequestID{seenID}, rec.ids)
	assert.Equal(t, []int{http.StatusTeapot}, rec.statuses)
	assert.Equal(t, []string{"ok"}, rec.kinds)
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	backend := respondWith(http.StatusNotFound, "application/json", `{"message":"not found"}`)
	p := New(backend, WithDebugSink(NewLogSink(zap.New(core))))

	spec := types.RequestSpec{
		URL:     "https://api.example.com/items",
		Method:  types.MethodPost,
		Headers: map[string]string{"X-Token": "abc"},
		Params:  map[string]interface{}{"name": "first"},
	}
	_, _, err := p.Fetch(context.Background(), spec)
	require.NoError(t, err)

	failing := New(&fakeBackend{respond: func(context.Context, types.RequestSpec) (*types.RawResponse, error) {
		return nil, errors.New("connection refused")
	}}, WithDebugSink(NewLogSink(zap.New(core))))
	_, _, err = failing.Fetch(context.Background(), getItems)
	require.Error(t, err)

	entries := logs.All()
	require.Len(t, entries, 4)

	request := entries[0]
	assert.Equal(t, "Request", request.Message)
	assert.Equal(t, "api", request.LoggerName)
	fields := request.ContextMap()
	rid := fields[logging.RequestIDKey]
	assert.NotEmpty(t, rid)
	assert.Equal(t, spec.URL, fields["url"])
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, map[string]string{"X-Token": "abc"}, fields["headers"])

	response := entries[1].ContextMap()
	assert.Equal(t, "Response", entries[1].Message)
	assert.Equal(t, rid, response[logging.RequestIDKey])
	assert.EqualValues(t, http.StatusNotFound, response["status"])
	assert.Equal(t, `{"message":"not found"}`, response["response"])
	assert.NotContains(t, response, "error")

	failed := entries[3].ContextMap()
	assert.Equal(t, logging.NoData, failed["response"])
	assert.Contains(t, failed["error"], "connection refused")
}

func TestOfflineSkipsDebugSink(t *testing.T) {
	sink := &recordingSink{}
	p := New(respondWith(http.StatusOK, "", ""), WithDebugSink(sink), WithProbe(connectivity.NewStatic(false)), WithOfflineDelay(0))

	_, _, err := p.Fetch(context.Background(), getItems)
	require.Error(t, err)
	assert.Empty(t, sink.requests)
	assert.Empty(t, sink.responses)
}

func TestCancelAllIdempotent(t *testing.T) {
	backend := respondWith(http.StatusOK, "", "")
	p := New(backend)
	p.CancelAll()
	p.CancelAll()
	p.Wait()
	assert.Equal(t, int32(2), backend.cancelled.Load())
	assert.Equal(t, int32(0), backend.calls.Load())
}

func TestNilCompletion(t *testing.T) {
	backend := respondWith(http.StatusOK, "", "")
	p := New(backend)
	p.RequestRaw(context.Background(), getItems, nil)
	RequestDecoded[item](p, context.Background(), getItems, nil)
	p.Wait()
	assert.Equal(t, int32(2), backend.calls.Load())
}

// A backend that ignores its own CancelAll still sees requests aborted,
// including requests whose goroutine has not started yet.
func TestCancelAllRightAfterDispatch(t *testing.T) {
	backend := &fakeBackend{respond: func(ctx context.Context, spec types.RequestSpec) (*types.RawResponse, error) {
		<-ctx.Done()
		return nil, context.Cause(ctx)
	}}
	p := New(backend)

	const n = 20
	var counts [n]atomic.Int32
	var kinds [n]atomic.Value
	for i := 0; i < n; i++ {
		i := i
		p.RequestRaw(context.Background(), getItems, func(status int, outcome types.Outcome[[]byte]) {
			counts[i].Add(1)
			if err := outcome.Err(); err != nil {
				kinds[i].Store(err.Kind)
			}
		})
	}
	assert.Equal(t, n, p.Pending())

	p.CancelAll()
	p.Wait()

	for i := 0; i < n; i++ {
		assert.Equal(t, int32(1), counts[i].Load(), "request %d", i)
		assert.Equal(t, types.KindCancelled, kinds[i].Load(), "request %d", i)
	}
	assert.Equal(t, 0, p.Pending())
	assert.Equal(t, int32(1), backend.cancelled.Load())
}

// Every request issued before CancelAll against a slow server completes
// exactly once, as cancelled, without waiting for the server.
func TestCancelAllRace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delay, _ := strconv.Atoi(r.URL.Query().Get("delay"))
		select {
		case <-r.Context().Done():
			return
		case <-time.After(time.Duration(delay) * time.Millisecond):
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":%d}`, delay)
	}))
	defer server.Close()

	p := New(transport.NewResty(transport.Options{}))

	rapid.Check(t, func(t *rapid.T) {
		delays := rapid.SliceOfN(rapid.IntRange(1000, 3000), 1, 20).Draw(t, "delays")
		counts := make([]atomic.Int32, len(delays))
		kinds := make([]atomic.Value, len(delays))

		started := time.Now()
		for i, delay := range delays {
			i := i
			spec := types.RequestSpec{
				URL:    fmt.Sprintf("%s/items?delay=%d", server.URL, delay),
				Method: types.MethodGet,
			}
			RequestDecoded(p, context.Background(), spec, func(status int, outcome types.Outcome[item]) {
				counts[i].Add(1)
				if err := outcome.Err(); err != nil {
					kinds[i].Store(err.Kind.String())
					return
				}
				kinds[i].Store("ok")
			})
		}
		p.CancelAll()
		p.Wait()

		if elapsed := time.Since(started); elapsed >= time.Second {
			t.Fatalf("cancelled requests took %s to complete", elapsed)
		}
		for i := range delays {
			if got := counts[i].Load(); got != 1 {
				t.Fatalf("request %d completed %d times", i, got)
			}
			if kind := kinds[i].Load().(string); kind != types.KindCancelled.String() {
				t.Fatalf("request %d finished with %s, want cancelled", i, kind)
			}
		}
	})
}

func TestCancelAllLeavesCompletedAndOffline(t *testing.T) {
	p := New(respondWith(http.StatusOK, "", "done"))
	status, body, err := p.Fetch(context.Background(), getItems)
	require.NoError(t, err)
	p.CancelAll()
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "done", string(body))

	offline := New(respondWith(http.StatusOK, "", ""), WithProbe(connectivity.NewStatic(false)), WithOfflineDelay(20*time.Millisecond))
	done := make(chan *types.Error, 1)
	offline.RequestRaw(context.Background(), getItems, func(_ int, outcome types.Outcome[[]byte]) {
		done <- outcome.Err()
	})
	offline.CancelAll()
	err2 := <-done
	require.NotNil(t, err2)
	assert.Equal(t, types.KindOffline, err2.Kind)
}

func TestResponseHookRunsBeforeCompletion(t *testing.T) {
	var order []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}

	p := New(respondWith(http.StatusUnauthorized, "application/json", `{"message":"token expired"}`),
		WithResponseHook(func(resp *types.RawResponse) {
			record("hook " + strconv.Itoa(resp.StatusCode))
		}))

	status, _, err := p.Fetch(context.Background(), getItems)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	record("completion")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"hook 401", "completion"}, order)
}
