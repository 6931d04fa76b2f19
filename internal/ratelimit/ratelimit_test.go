package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{
			name:     "burst allows initial requests",
			rps:      1,
			burst:    3,
			calls:    3,
			wantPass: 3,
		},
		{
			name:     "exceeding burst blocks",
			rps:      1,
			burst:    2,
			calls:    5,
			wantPass: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if rl.Allow("www.haodoo.net") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	if !rl.Allow("host-a") {
		t.Error("first request for host-a should pass")
	}
	if rl.Allow("host-a") {
		t.Error("second request for host-a should be limited")
	}
	// A different upstream host carries its own bucket.
	if !rl.Allow("host-b") {
		t.Error("first request for host-b should pass")
	}
}

func TestKeyedRateLimiter_Wait(t *testing.T) {
	rl := New(100, 1)
	defer rl.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	// Burst token, then one refill within the deadline.
	if err := rl.Wait(ctx, "www.haodoo.net"); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}
	if err := rl.Wait(ctx, "www.haodoo.net"); err != nil {
		t.Fatalf("second Wait() error = %v", err)
	}
}

func TestKeyedRateLimiter_WaitCanceled(t *testing.T) {
	rl := New(0.001, 1)
	defer rl.Stop()

	// Drain the burst token.
	if !rl.Allow("www.haodoo.net") {
		t.Fatal("burst token should be available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx, "www.haodoo.net"); err == nil {
		t.Error("Wait() should fail when the context expires before a token")
	}
}

func TestKeyedRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := New(10, 1)

	rl.Stop()
	rl.Stop()

	// Existing limiters keep working after Stop.
	if !rl.Allow("www.haodoo.net") {
		t.Error("Allow() should still serve tokens after Stop")
	}
}
