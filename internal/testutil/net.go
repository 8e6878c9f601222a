package testutil

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"
)

// ListenTCP открывает listener на случайном порту 127.0.0.1 и закрывает его
// в конце теста. Возвращает listener и адрес "host:port".
func ListenTCP(tb testing.TB) (net.Listener, string) {
	tb.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("listening on a random port: %v", err)
	}
	tb.Cleanup(func() { _ = ln.Close() })

	return ln, ln.Addr().String()
}

// WaitForTCPReady опрашивает addr, пока сервер не начнёт принимать соединения.
func WaitForTCPReady(addr string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for server at %s: %w", addr, ctx.Err())
		case <-ticker.C:
			conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
			if err == nil {
				_ = conn.Close()
				return nil
			}
		}
	}
}
