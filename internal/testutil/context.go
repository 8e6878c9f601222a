package testutil

import (
	"context"
	"testing"
	"time"
)

// ContextWithTimeout возвращает context, отменяемый по timeout или в конце теста.
func ContextWithTimeout(tb testing.TB, d time.Duration) context.Context {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	tb.Cleanup(cancel)
	return ctx
}

// ContextWithCancel возвращает context с cancel; cancel вызывается и в конце теста.
func ContextWithCancel(tb testing.TB) (context.Context, context.CancelFunc) {
	tb.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	tb.Cleanup(cancel)
	return ctx, cancel
}
