package log

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type ctxMarkerLogger struct{}

var (
	ctxKeyLogger = &ctxMarkerLogger{}
	nullLogger   = zap.NewNop().Sugar()
)

type ctxLogger struct {
	mu     sync.Mutex
	logger *zap.SugaredLogger
	fields []interface{}
}

// AddFields adds key-value pairs to the call-scoped logger, if any.
func AddFields(ctx context.Context, fields ...interface{}) {
	l, ok := ctx.Value(ctxKeyLogger).(*ctxLogger)
	if !ok || l == nil {
		return
	}
	l.mu.Lock()
	l.fields = append(l.fields, fields...)
	l.mu.Unlock()
}

// ExtractLogger returns the call-scoped logger with every field added so far.
// A context without a logger yields a no-op logger.
func ExtractLogger(ctx context.Context) *zap.SugaredLogger {
	l, ok := ctx.Value(ctxKeyLogger).(*ctxLogger)
	if !ok || l == nil {
		return nullLogger
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logger.With(l.fields...)
}

// ToContext adds the logger to the context for extraction later.
func ToContext(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	l := &ctxLogger{logger: logger}
	return context.WithValue(ctx, ctxKeyLogger, l)
}
