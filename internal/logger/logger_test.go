package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env     string
		level   string
		wantErr bool
		enabled zapcore.Level
	}{
		{"prod", "", false, zapcore.InfoLevel},
		{"local", "", false, zapcore.DebugLevel},
		{"docker", "warn", false, zapcore.WarnLevel},
		{"prod", "loud", true, 0},
		{"staging", "", true, 0},
	}
	for _, tc := range tests {
		t.Run(tc.env+"/"+tc.level, func(t *testing.T) {
			l, err := NewLogger(tc.env, tc.level)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !l.Core().Enabled(tc.enabled) {
				t.Errorf("level %s must be enabled", tc.enabled)
			}
			if tc.enabled > zapcore.DebugLevel && l.Core().Enabled(tc.enabled-1) {
				t.Errorf("level %s must be disabled", tc.enabled-1)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	reqLogger := zap.New(core).With(zap.String("request_id", "abc"))
	ctx := ContextWithLogger(context.Background(), reqLogger)

	FromContext(ctx).Info("hello")
	if logs.Len() != 1 || logs.All()[0].ContextMap()["request_id"] != "abc" {
		t.Fatalf("expected the request logger, got %v", logs.All())
	}

	if FromContext(context.Background()) == nil {
		t.Error("FromContext must never return nil")
	}
}

func TestFromContextOr(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	fallback := zap.New(core)

	FromContextOr(context.Background(), fallback).Info("fallback")
	if logs.Len() != 1 {
		t.Fatalf("expected fallback to receive the entry, got %d", logs.Len())
	}

	other, otherLogs := observer.New(zapcore.InfoLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(other))
	FromContextOr(ctx, fallback).Info("context")
	if otherLogs.Len() != 1 || logs.Len() != 1 {
		t.Error("context logger must win over the fallback")
	}
}
