package ratelimit

import (
	"testing"
	"time"
)

func newTestService(now *time.Time) *Service {
	return &Service{
		entries: map[string]*entry{},
		now:     func() time.Time { return *now },
	}
}

func TestAdmitWithinWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&now)

	for i := 0; i < 5; i++ {
		d := svc.Admit("client", 5, time.Minute)
		if !d.Allowed {
			t.Fatalf("call %d should be admitted", i+1)
		}
		if d.Remaining != 4-i {
			t.Fatalf("call %d: remaining = %d, want %d", i+1, d.Remaining, 4-i)
		}
	}

	if d := svc.Admit("client", 5, time.Minute); d.Allowed {
		t.Fatal("6th call within the window should be rejected")
	}
}

func TestWindowReset(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&now)

	for i := 0; i < 5; i++ {
		svc.Admit("client", 5, time.Minute)
	}
	if d := svc.Admit("client", 5, time.Minute); d.Allowed {
		t.Fatal("limit should be exhausted")
	}

	now = now.Add(time.Minute)

	d := svc.Admit("client", 5, time.Minute)
	if !d.Allowed {
		t.Fatal("call after window elapsed should start a fresh window")
	}
	if d.Remaining != 4 {
		t.Fatalf("remaining = %d, want 4 (count reset to 1)", d.Remaining)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&now)

	for i := 0; i < 3; i++ {
		svc.Admit("a", 3, time.Minute)
	}
	if d := svc.Admit("a", 3, time.Minute); d.Allowed {
		t.Fatal("key a should be exhausted")
	}
	if d := svc.Admit("b", 3, time.Minute); !d.Allowed {
		t.Fatal("key b should be unaffected")
	}
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&now)

	svc.Admit("old", 5, time.Minute)

	// Past both the entry window and the sweep throttle.
	now = now.Add(2 * time.Minute)
	svc.Admit("fresh", 5, time.Minute)

	svc.mu.Lock()
	_, ok := svc.entries["old"]
	svc.mu.Unlock()

	if ok {
		t.Fatal("expired entry should have been swept")
	}
}
