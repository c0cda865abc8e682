package publish

import (
	"context"
	"testing"
	"time"
)

func TestGateFirstWaitIsImmediate(t *testing.T) {
	gate := NewGate(time.Minute)

	start := time.Now()
	if err := gate.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Fatal("first wait should return immediately")
	}
}

func TestGateEnforcesMinimumInterval(t *testing.T) {
	gate := NewGate(20 * time.Millisecond)
	ctx := context.Background()

	var releases []time.Time
	for range 3 {
		if err := gate.Wait(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		releases = append(releases, time.Now())
	}
	for i := 1; i < len(releases); i++ {
		if gap := releases[i].Sub(releases[i-1]); gap < 20*time.Millisecond {
			t.Fatalf("release %d only %v after previous", i, gap)
		}
	}
}

func TestGateDoesNotBurstAfterIdle(t *testing.T) {
	gate := NewGate(15 * time.Millisecond)
	ctx := context.Background()

	_ = gate.Wait(ctx)
	time.Sleep(40 * time.Millisecond)

	_ = gate.Wait(ctx)
	second := time.Now()
	_ = gate.Wait(ctx)
	if gap := time.Since(second); gap < 15*time.Millisecond {
		t.Fatalf("idle time must not be banked, gap was %v", gap)
	}
}

func TestGateHonorsContext(t *testing.T) {
	gate := NewGate(time.Second)
	_ = gate.Wait(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := gate.Wait(ctx); err == nil {
		t.Fatal("expected context deadline error")
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Fatal("wait should stop after context cancellation")
	}
}

func TestGateZeroIntervalNeverBlocks(t *testing.T) {
	gate := NewGate(-time.Second)
	if gate.Interval() != 0 {
		t.Fatalf("negative interval should clamp to 0, got %v", gate.Interval())
	}
	for range 5 {
		if err := gate.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}
