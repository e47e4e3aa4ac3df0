package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// instant replaces real sleeping and records the requested delays.
func instant(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		*delays = append(*delays, d)
		return nil
	}
}

func TestWithExponentialBackoff_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWithExponentialBackoff_RetriesThenSucceeds(t *testing.T) {
	var delays []time.Duration
	calls := 0

	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	},
		WithMaxRetries(5),
		WithInitialDelay(time.Second),
		WithMaxDelay(10*time.Second),
		WithSleep(instant(&delays)),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	want := []time.Duration{time.Second, 2 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestWithExponentialBackoff_DelayCapped(t *testing.T) {
	var delays []time.Duration
	_ = WithExponentialBackoff(context.Background(), func() error {
		return errors.New("always")
	},
		WithMaxRetries(4),
		WithInitialDelay(4*time.Second),
		WithMaxDelay(10*time.Second),
		WithSleep(instant(&delays)),
	)

	for _, d := range delays {
		if d > 10*time.Second {
			t.Errorf("delay %v exceeds cap", d)
		}
	}
}

func TestWithExponentialBackoff_ExhaustsAndWrapsLastError(t *testing.T) {
	var delays []time.Duration
	lastErr := errors.New("still broken")

	err := WithExponentialBackoff(context.Background(), func() error {
		return lastErr
	},
		WithMaxRetries(2),
		WithSleep(instant(&delays)),
	)
	if !errors.Is(err, lastErr) {
		t.Fatalf("expected wrapped last error, got: %v", err)
	}
	if len(delays) != 2 {
		t.Errorf("slept %d times, want 2", len(delays))
	}
}

func TestWithExponentialBackoff_FatalNotRetried(t *testing.T) {
	calls := 0
	cause := errors.New("bad credentials")

	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		return Fatal(cause)
	}, WithMaxRetries(5))

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (fatal errors must not retry)", calls)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got: %v", err)
	}
}

func TestWithExponentialBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var delays []time.Duration
	err := WithExponentialBackoff(ctx, func() error {
		return errors.New("always")
	},
		WithMaxRetries(3),
		WithSleep(instant(&delays)),
	)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(errors.New("plain")) {
		t.Error("plain error reported as fatal")
	}
	if !IsFatal(Fatal(errors.New("bad"))) {
		t.Error("Fatal-wrapped error not reported as fatal")
	}
	if Fatal(nil) != nil {
		t.Error("Fatal(nil) should be nil")
	}
}
