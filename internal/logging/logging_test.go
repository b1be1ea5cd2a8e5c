package logging

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/apimanager/internal/shared/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"development", DevelopmentConfig(), false},
		{"no outputs", Config{Level: "warn"}, false},
		{"bad level", Config{Level: "loud"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger.Logger)
		})
	}

	assert.NotNil(t, NewDefault())
	assert.NotNil(t, NewDevelopment())
	assert.NotNil(t, NewNop())
}

func TestRenderBody(t *testing.T) {
	tests := []struct {
		name string
		body []byte
		want string
	}{
		{"json", []byte(`{"message":"not found"}`), `{"message":"not found"}`},
		{"plain text", []byte("short and stout"), "short and stout"},
		{"html", []byte("<html><body>hi</body></html>"), "<html><body>hi</body></html>"},
		{"empty", nil, NoData},
		{"invalid utf-8", []byte{0xff, 0xfe, 0xfd}, NoData},
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), NoData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderBody(tt.body))
		})
	}
}

func TestForRequest(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)
	rid := id.NewRequestID()

	ForRequest(base, id.WithRequestID(context.Background(), rid)).Info("tagged")
	ForRequest(base, context.Background()).Info("untagged")
	(&Logger{Logger: base}).WithRequest(id.WithRequestID(context.Background(), rid)).Debug("wrapped")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, rid.String(), entries[0].ContextMap()[RequestIDKey])
	assert.NotContains(t, entries[1].ContextMap(), RequestIDKey)
	assert.Equal(t, rid.String(), entries[2].ContextMap()[RequestIDKey])

	assert.NotNil(t, ForRequest(nil, context.Background()))
}

func TestProductionEncoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Info("Response", zap.Duration("elapsed", 1500*time.Microsecond))
	logger.Debug("hidden")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "Response", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "timestamp")
	assert.NotContains(t, entry, "caller")
	assert.EqualValues(t, 1.5, entry["elapsed"])
}
