package calls

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryTracker_StartEndIdempotent(t *testing.T) {
	ctx := context.Background()
	tr := NewMemoryTracker(time.Hour)

	for i := 0; i < 3; i++ {
		if err := tr.Start(ctx, "+441234567890", "CA1"); err != nil {
			t.Fatalf("start: %v", err)
		}
	}
	if err := tr.Start(ctx, "+441234567890", "CA2"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if n, _ := tr.ActiveCount(ctx, "+441234567890"); n != 2 {
		t.Fatalf("expected 2 active calls, got %d", n)
	}

	_ = tr.End(ctx, "+441234567890", "CA1")
	_ = tr.End(ctx, "+441234567890", "CA1")
	if n, _ := tr.ActiveCount(ctx, "+441234567890"); n != 1 {
		t.Fatalf("expected 1 active call, got %d", n)
	}

	// Unknown call on an unknown line is a no-op.
	if err := tr.End(ctx, "+440000000000", "CA9"); err != nil {
		t.Fatalf("end unknown: %v", err)
	}
}

func TestMemoryTracker_LinesAreIndependent(t *testing.T) {
	ctx := context.Background()
	tr := NewMemoryTracker(0)
	_ = tr.Start(ctx, "a", "CA1")

	if n, _ := tr.ActiveCount(ctx, "b"); n != 0 {
		t.Fatalf("expected 0 on other line, got %d", n)
	}
}

func TestMemoryTracker_ExpiresStaleCalls(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	tr := NewMemoryTracker(time.Hour)
	tr.Now = func() time.Time { return now }

	_ = tr.Start(ctx, "a", "CA1")
	now = now.Add(30 * time.Minute)
	_ = tr.Start(ctx, "a", "CA2")

	now = now.Add(31 * time.Minute)
	if n, _ := tr.ActiveCount(ctx, "a"); n != 1 {
		t.Fatalf("expected stale call pruned, got %d", n)
	}
}

func TestMemoryTracker_InvalidArgs(t *testing.T) {
	ctx := context.Background()
	tr := NewMemoryTracker(0)
	if err := tr.Start(ctx, "", "CA1"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := tr.End(ctx, "a", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := tr.ActiveCount(ctx, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRedisTracker_NilClient(t *testing.T) {
	tr := NewRedisTracker(nil, 0)
	if err := tr.Start(context.Background(), "a", "CA1"); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if tr.ttl != DefaultCallTTL {
		t.Fatalf("expected default ttl, got %v", tr.ttl)
	}
}

func TestTrackerScriptsInitialized(t *testing.T) {
	if startCallScript == nil || endCallScript == nil || countCallsScript == nil {
		t.Fatalf("expected scripts to be initialized")
	}
}
