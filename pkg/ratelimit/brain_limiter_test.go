package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestDebouncer_LocalFallback(t *testing.T) {
	d := NewDebouncer(nil, 100*time.Millisecond)
	ctx := context.Background()

	if d.IsDuplicate(ctx, "tg:acme:1") {
		t.Fatal("fresh key reported as duplicate")
	}

	d.Mark(ctx, "tg:acme:1")
	if !d.IsDuplicate(ctx, "tg:acme:1") {
		t.Error("marked key not reported as duplicate")
	}
	if d.IsDuplicate(ctx, "tg:acme:2") {
		t.Error("different key reported as duplicate")
	}

	time.Sleep(120 * time.Millisecond)
	if d.IsDuplicate(ctx, "tg:acme:1") {
		t.Error("expired key still reported as duplicate")
	}
}

func TestSlidingWindowLimiter_NoRedisFailsOpen(t *testing.T) {
	l := NewSlidingWindowLimiter(nil, 1, 0)

	for i := 0; i < 5; i++ {
		allowed, wait := l.Allow(context.Background(), "acme")
		if !allowed {
			t.Fatalf("request %d denied without redis", i)
		}
		if wait != 0 {
			t.Fatalf("request %d got wait %v without redis", i, wait)
		}
	}
}
