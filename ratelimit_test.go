package grit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewRateLimiter(t *testing.T) {
	tests := []struct {
		name     string
		rate     int
		window   time.Duration
		identity string
		wantErr  bool
	}{
		{"valid", 10, time.Second, "api", false},
		{"valid subsecond window", 100, 50 * time.Millisecond, "burst", false},
		{"zero rate", 0, time.Second, "api", true},
		{"negative rate", -1, time.Second, "api", true},
		{"zero window", 10, 0, "api", true},
		{"negative window", 10, -time.Second, "api", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter, err := NewRateLimiter(tt.rate, tt.window, tt.identity)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewRateLimiter(%d, %v) error = %v, wantErr %v", tt.rate, tt.window, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if limiter.Rate() != tt.rate {
				t.Errorf("Rate() = %d, want %d", limiter.Rate(), tt.rate)
			}
			if limiter.Window() != tt.window {
				t.Errorf("Window() = %v, want %v", limiter.Window(), tt.window)
			}
			if limiter.Identity() != tt.identity {
				t.Errorf("Identity() = %q, want %q", limiter.Identity(), tt.identity)
			}
		})
	}
}

func TestNewRateLimiter_EmptyIdentityDefaults(t *testing.T) {
	limiter, err := NewRateLimiter(1, time.Second, "")
	if err != nil {
		t.Fatalf("NewRateLimiter() error = %v", err)
	}
	if limiter.Identity() != "default" {
		t.Errorf("Identity() = %q, want %q", limiter.Identity(), "default")
	}
}

func TestDefaultRateLimiter(t *testing.T) {
	limiter := DefaultRateLimiter()

	if limiter.Rate() != 10 {
		t.Errorf("Rate() = %d, want 10", limiter.Rate())
	}
	if limiter.Window() != time.Second {
		t.Errorf("Window() = %v, want 1s", limiter.Window())
	}
	if limiter.Identity() != "default" {
		t.Errorf("Identity() = %q, want %q", limiter.Identity(), "default")
	}
}

func TestRateLimiter_AcquireImmediate(t *testing.T) {
	limiter, err := NewRateLimiter(1, time.Second, "test")
	if err != nil {
		t.Fatalf("NewRateLimiter() error = %v", err)
	}

	start := time.Now()
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first Acquire took %v, want immediate", elapsed)
	}
}

// TestRateLimiter_AcquirePacesCalls verifies the limiter spreads concurrent
// acquisitions across its window: three calls at two per second cannot all
// finish inside one second, and must all finish inside two.
func TestRateLimiter_AcquirePacesCalls(t *testing.T) {
	start := time.Now()
	limiter, err := NewRateLimiter(2, time.Second, "paced")
	if err != nil {
		t.Fatalf("NewRateLimiter() error = %v", err)
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- limiter.Acquire(context.Background())
		}()
	}
	wg.Wait()
	close(errCh)
	elapsed := time.Since(start)

	for err := range errCh {
		if err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
	}

	if elapsed < time.Second {
		t.Errorf("elapsed = %v, three calls at 2/s must take over a second", elapsed)
	}
	if elapsed >= 2*time.Second {
		t.Errorf("elapsed = %v, three calls at 2/s must finish inside two seconds", elapsed)
	}
}

func TestRateLimiter_AcquireNil(t *testing.T) {
	var limiter *RateLimiter

	// a nil limiter admits everything
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Errorf("Acquire() on nil limiter error = %v, want nil", err)
	}
}

func TestRateLimiter_AcquireCancellation(t *testing.T) {
	limiter, err := NewRateLimiter(1, time.Hour, "slow")
	if err != nil {
		t.Fatalf("NewRateLimiter() error = %v", err)
	}

	// drain the single available permit
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = limiter.Acquire(ctx)
	elapsed := time.Since(start)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() = %v, want context.DeadlineExceeded", err)
	}
	if elapsed >= time.Second {
		t.Errorf("elapsed = %v, cancellation should interrupt the wait", elapsed)
	}
}
