package pipeline

import (
	"github.com/GriffinCanCode/apimanager/internal/logging"
	"go.uber.org/zap"
)

// LogSink writes request and response records to a zap logger
type LogSink struct {
	log *zap.Logger
}

// NewLogSink creates a sink logging under the "api" name
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{log: logger.Named("api")}
}

// LogRequest implements DebugSink
func (s *LogSink) LogRequest(e RequestEntry) {
	s.log.Info("Request",
		logging.RequestField(e.RequestID),
		zap.String("url", e.Spec.URL),
		zap.String("method", e.Spec.Method.String()),
		zap.Any("headers", e.Spec.Headers),
		zap.Any("params", e.Spec.Params),
	)
}

// LogResponse implements DebugSink
func (s *LogSink) LogResponse(e ResponseEntry) {
	fields := []zap.Field{
		logging.RequestField(e.RequestID),
		zap.String("url", e.Spec.URL),
		zap.Int("status", e.StatusCode),
		zap.String("method", e.Spec.Method.String()),
		zap.Any("headers", e.Spec.Headers),
		zap.Any("params", e.Spec.Params),
		zap.String("response", logging.RenderBody(e.Body)),
		zap.Duration("elapsed", e.Elapsed),
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}
	s.log.Info("Response", fields...)
}
