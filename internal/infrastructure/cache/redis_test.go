package cache

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestOpenRedis_Success(t *testing.T) {
	s := miniredis.RunT(t)

	c, err := OpenRedis(context.Background(), s.Addr(), 2, time.Second)
	if err != nil {
		t.Fatalf("OpenRedis returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	opts := c.Options()
	if opts.DB != 2 {
		t.Fatalf("client DB = %d, want 2", opts.DB)
	}
	if opts.DialTimeout != time.Second || opts.ReadTimeout != time.Second || opts.WriteTimeout != time.Second {
		t.Fatalf("timeouts not applied: dial=%s read=%s write=%s", opts.DialTimeout, opts.ReadTimeout, opts.WriteTimeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Set(ctx, "idemp:pr:k", "v", 0).Err(); err != nil {
		t.Fatalf("SET err: %v", err)
	}
	if v, _ := s.Get("idemp:pr:k"); v != "v" {
		t.Fatalf("stored value = %q, want %q", v, "v")
	}
}

func TestOpenRedis_CancelledContext(t *testing.T) {
	s := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := OpenRedis(ctx, s.Addr(), 0, 5*time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestOpenRedis_UnresponsiveServerHonoursTimeout(t *testing.T) {
	// accepts connections but never answers
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			t.Cleanup(func() { _ = conn.Close() })
		}
	}()

	start := time.Now()
	if _, err := OpenRedis(context.Background(), ln.Addr().String(), 0, 150*time.Millisecond); err == nil {
		t.Fatal("expected error, got nil")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("OpenRedis took %s, want it bounded by the timeout", elapsed)
	}
}

func TestOpenRedis_Failure(t *testing.T) {
	if _, err := OpenRedis(context.Background(), "not-a-real-host:6379", 0, time.Second); err == nil {
		t.Fatal("expected error, got nil")
	}
}
