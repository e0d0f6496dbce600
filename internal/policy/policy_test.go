package policy

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBoundedCount(t *testing.T) {
	t.Run("retries up to the attempt cap", func(t *testing.T) {
		calls := 0
		err := Filesystem.Do(context.Background(), func(context.Context) error {
			calls++
			return errors.New("still failing")
		})
		if err == nil {
			t.Fatal("expected error after exhaustion")
		}
		if calls != int(Filesystem.Attempts) {
			t.Errorf("got %d attempts, want %d", calls, Filesystem.Attempts)
		}
	})

	t.Run("stops on first success", func(t *testing.T) {
		calls := 0
		err := Filesystem.Do(context.Background(), func(context.Context) error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Errorf("got %d attempts, want 1", calls)
		}
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := Filesystem.Do(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 3 {
			t.Errorf("got %d attempts, want 3", calls)
		}
	})
}

func TestBoundedTime(t *testing.T) {
	t.Run("returns the last error after the elapsed cap", func(t *testing.T) {
		p := Policy{MaxElapsed: 100 * time.Millisecond, BaseDelay: 10 * time.Millisecond}
		sentinel := errors.New("network down")

		start := time.Now()
		err := p.Do(context.Background(), func(context.Context) error { return sentinel })
		if err == nil {
			t.Fatal("expected error after exhaustion")
		}
		if !errors.Is(err, sentinel) {
			t.Errorf("expected last op error, got %v", err)
		}
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("retry loop ran for %v, cap was 100ms", elapsed)
		}
	})

	t.Run("honors caller cancellation", func(t *testing.T) {
		p := Policy{MaxElapsed: time.Minute, BaseDelay: 5 * time.Millisecond}
		ctx, cancel := context.WithCancel(context.Background())

		calls := 0
		err := p.Do(ctx, func(context.Context) error {
			calls++
			if calls == 2 {
				cancel()
			}
			return errors.New("failing")
		})
		if err == nil {
			t.Fatal("expected error after cancellation")
		}
		if calls > 3 {
			t.Errorf("kept retrying after cancel: %d calls", calls)
		}
	})

	t.Run("propagates the deadline to the operation", func(t *testing.T) {
		p := Policy{MaxElapsed: time.Minute}
		err := p.Do(context.Background(), func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("operation context has no deadline")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
