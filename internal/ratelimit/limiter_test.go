package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLimiter(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := New(client, 2, 1, time.Minute)

	allowed, err := limiter.Allow(ctx, "applicant-1")
	if err != nil || !allowed {
		t.Fatalf("expected first submission allowed got allowed=%v err=%v", allowed, err)
	}
	allowed, _ = limiter.Allow(ctx, "applicant-1")
	if !allowed {
		t.Fatalf("expected second submission allowed")
	}
	allowed, _ = limiter.Allow(ctx, "applicant-1")
	if allowed {
		t.Fatalf("expected third submission to be rejected")
	}

	// A different applicant has their own bucket.
	allowed, _ = limiter.Allow(ctx, "applicant-2")
	if !allowed {
		t.Fatalf("expected other applicant allowed")
	}

	// Note: refill cannot be tested with miniredis.FastForward() because the
	// Lua script receives time from Go's time.Now(), not Redis's clock.
}
