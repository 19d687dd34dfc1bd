package log

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	AddFields(ctx, "address", "0x01")
	AddFields(ctx, "amount", "40")
	ExtractLogger(ctx).Info("sent")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("wrong number of entries, expected: 1, have: %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["address"] != "0x01" || fields["amount"] != "40" {
		t.Errorf("wrong fields: %v", fields)
	}
}

func TestContextWithoutLogger(t *testing.T) {
	ctx := context.Background()
	AddFields(ctx, "ignored", true) // must not panic
	if ExtractLogger(ctx) != nullLogger {
		t.Error("expected the no-op logger")
	}
}
