package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastBackoff(attempts int) *Backoff {
	return &Backoff{
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   1.5,
		MaxAttempts:  attempts,
	}
}

func TestBackoff_SuccessAfterRetries(t *testing.T) {
	calls := 0
	err := fastBackoff(10).Do(context.Background(), func(attempt int) error {
		calls++
		if attempt < 3 {
			return fmt.Errorf("connection refused")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestBackoff_SingleAttemptReturnsBareError(t *testing.T) {
	inner := errors.New("connection refused")
	err := fastBackoff(1).Do(context.Background(), func(int) error { return inner })

	if err != inner {
		t.Errorf("got %v, want the unwrapped attempt error", err)
	}
}

func TestBackoff_PermanentError(t *testing.T) {
	calls := 0
	err := DefaultBackoff().Do(context.Background(), func(int) error {
		calls++
		return Permanent(fmt.Errorf("fatal"))
	})

	if err == nil || err.Error() != "fatal" {
		t.Fatalf("expected 'fatal', got %v", err)
	}
	if calls != 1 {
		t.Errorf("permanent error should stop after 1 call, got %d", calls)
	}
}

func TestBackoff_NotRetryable(t *testing.T) {
	b := fastBackoff(5)
	b.Retryable = func(error) bool { return false }

	calls := 0
	_ = b.Do(context.Background(), func(int) error {
		calls++
		return fmt.Errorf("no such host")
	})
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestBackoff_MaxAttempts(t *testing.T) {
	calls := 0
	var retries []int
	b := fastBackoff(3)
	b.OnRetry = func(attempt int, _ error, _ time.Duration) { retries = append(retries, attempt) }

	err := b.Do(context.Background(), func(int) error {
		calls++
		return fmt.Errorf("always fails")
	})

	if err == nil {
		t.Fatal("expected error after max attempts")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if len(retries) != 2 {
		t.Errorf("OnRetry ran %d times, want 2", len(retries))
	}
}

func TestBackoff_ContextCancelled(t *testing.T) {
	b := &Backoff{InitialDelay: 5 * time.Second, MaxAttempts: 100}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := b.Do(ctx, func(int) error { return fmt.Errorf("fail") })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestPermanent_Nil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"permanent", Permanent(fmt.Errorf("x")), true},
		{"wrapped permanent", fmt.Errorf("dial: %w", Permanent(fmt.Errorf("x"))), true},
		{"not permanent", fmt.Errorf("x"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPermanent(tt.err); got != tt.want {
				t.Errorf("IsPermanent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJitter_Range(t *testing.T) {
	d := 100 * time.Millisecond
	for i := 0; i < 100; i++ {
		j := addJitter(d)
		lower := time.Duration(float64(d) * 0.74)
		upper := time.Duration(float64(d) * 1.26)
		if j < lower || j > upper {
			t.Errorf("jitter %v out of expected range [%v, %v]", j, lower, upper)
		}
	}
}

func TestAttempts(t *testing.T) {
	b := Attempts(3, time.Millisecond, 5*time.Millisecond)
	if b.MaxAttempts != 3 || !b.Jitter {
		t.Errorf("unexpected backoff %+v", b)
	}
}

func TestAttempts_StartsFromDefault(t *testing.T) {
	def := DefaultBackoff()

	b := Attempts(2, 0, 0)
	if b.InitialDelay != def.InitialDelay || b.MaxDelay != def.MaxDelay {
		t.Errorf("zero delays should keep defaults, got %+v", b)
	}
	if b.Multiplier != def.Multiplier || b.Jitter != def.Jitter {
		t.Errorf("shape differs from default: %+v", b)
	}

	b = Attempts(2, time.Millisecond, 5*time.Millisecond)
	if b.InitialDelay != time.Millisecond || b.MaxDelay != 5*time.Millisecond {
		t.Errorf("explicit delays not applied: %+v", b)
	}
}
