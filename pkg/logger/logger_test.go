package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLevelPerEnv(t *testing.T) {
	ctx := context.Background()

	for _, env := range []string{"local", "dev"} {
		if !New(env, "callpay-api").Enabled(ctx, slog.LevelDebug) {
			t.Errorf("%s should log at debug", env)
		}
	}
	for _, env := range []string{"staging", "production"} {
		l := New(env, "callpay-api")
		if l.Enabled(ctx, slog.LevelDebug) {
			t.Errorf("%s should not log at debug", env)
		}
		if !l.Enabled(ctx, slog.LevelInfo) {
			t.Errorf("%s should log at info", env)
		}
	}
}

func TestFromFallsBack(t *testing.T) {
	if From(context.Background()) == nil {
		t.Fatal("From must never return nil")
	}

	l := New("dev", "callpay-api")
	ctx := With(context.Background(), l)
	if From(ctx) != l {
		t.Fatal("From must return the stored logger")
	}
}
