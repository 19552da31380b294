package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"
)

func runPollerTest(t *testing.T, fn func(t *testing.T)) {
	t.Helper()
	synctest.Test(t, fn)
}

func TestPollerFiresImmediatelyThenOnInterval(t *testing.T) {
	runPollerTest(t, func(t *testing.T) {
		var attempts atomic.Int32
		p := New("orderbook", time.Second, func(ctx context.Context) error {
			attempts.Add(1)
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			p.Run(ctx)
		}()

		// First attempt fires before any time passes.
		synctest.Wait()
		if got := attempts.Load(); got != 1 {
			t.Fatalf("expected 1 immediate attempt, got %d", got)
		}

		time.Sleep(2500 * time.Millisecond)
		synctest.Wait()
		if got := attempts.Load(); got != 3 {
			t.Fatalf("expected 3 attempts after 2.5s, got %d", got)
		}

		cancel()
		<-done

		// No attempts after cancellation.
		final := attempts.Load()
		time.Sleep(5 * time.Second)
		synctest.Wait()
		if got := attempts.Load(); got != final {
			t.Errorf("poller kept running after cancel: %d -> %d", final, got)
		}
	})
}

func TestPollerErrorDoesNotStopLoop(t *testing.T) {
	runPollerTest(t, func(t *testing.T) {
		var attempts atomic.Int32
		var observed atomic.Int32

		p := New("trades", time.Second, func(ctx context.Context) error {
			attempts.Add(1)
			return errors.New("backend hiccup")
		})
		p.OnError = func(err error) { observed.Add(1) }

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			p.Run(ctx)
		}()

		time.Sleep(3 * time.Second)
		synctest.Wait()
		cancel()
		<-done

		if got := attempts.Load(); got != 4 {
			t.Errorf("expected 4 attempts (immediate + 3 ticks), got %d", got)
		}
		if observed.Load() != attempts.Load() {
			t.Errorf("OnError saw %d of %d failures", observed.Load(), attempts.Load())
		}
	})
}

func TestPollerStopsBeforeFirstAttemptWhenCancelled(t *testing.T) {
	runPollerTest(t, func(t *testing.T) {
		var attempts atomic.Int32
		p := New("noop", time.Second, func(ctx context.Context) error {
			attempts.Add(1)
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p.Run(ctx)
		if attempts.Load() != 0 {
			t.Error("cancelled context must suppress the immediate attempt")
		}
	})
}
