package health

import (
	"context"
	"testing"
	"time"
)

func TestTrackerCachesWithinTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	tr := NewTracker(5*time.Minute, func(context.Context) Status {
		calls++
		return Up("API is responding", now)
	})
	tr.now = func() time.Time { return now }

	if s := tr.Get(context.Background()); !s.Healthy || s.State != StateUp {
		t.Fatalf("status=%+v want UP", s)
	}
	now = now.Add(4 * time.Minute)
	tr.Get(context.Background())
	if calls != 1 {
		t.Fatalf("check calls=%d want=1", calls)
	}
	now = now.Add(2 * time.Minute)
	tr.Get(context.Background())
	if calls != 2 {
		t.Fatalf("check calls=%d want=2 after ttl", calls)
	}
}

func TestTrackerMarkOverridesCheck(t *testing.T) {
	tr := NewTracker(time.Minute, func(context.Context) Status {
		t.Fatalf("check should not run while marked status is fresh")
		return Status{}
	})
	tr.MarkDown("Error during discovery: boom")
	s := tr.Get(context.Background())
	if s.Healthy || s.State != StateDown || s.Message != "Error during discovery: boom" {
		t.Fatalf("status=%+v", s)
	}
	tr.MarkDegraded("partial")
	if s := tr.Get(context.Background()); s.State != StateDegraded {
		t.Fatalf("state=%s want DEGRADED", s.State)
	}
}

func TestTrackerCheckPanicIsDown(t *testing.T) {
	tr := NewTracker(time.Minute, func(context.Context) Status { panic("boom") })
	if s := tr.Get(context.Background()); s.State != StateDown {
		t.Fatalf("state=%s want DOWN", s.State)
	}
}

func TestTrackerPeek(t *testing.T) {
	tr := NewTracker(0, nil)
	if _, ok := tr.Peek(); ok {
		t.Fatalf("peek on empty tracker reported cached")
	}
	tr.MarkUp("ok")
	if s, ok := tr.Peek(); !ok || s.State != StateUp {
		t.Fatalf("peek=%+v ok=%v", s, ok)
	}
}
