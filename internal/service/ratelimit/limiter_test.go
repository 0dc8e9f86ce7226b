package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterConsumesBurst(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		if !l.Allow("client", 5, 0) {
			t.Fatalf("request %d inside burst denied", i)
		}
	}
	if l.Allow("client", 5, 0) {
		t.Fatalf("request beyond burst allowed")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatalf("first request for a denied")
	}
	if l.Allow("a", 1, 0) {
		t.Fatalf("second request for a allowed")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatalf("exhausting a starved b")
	}
}

func TestLimiterRefills(t *testing.T) {
	l := New()
	// Drain the bucket, then backdate its refill clock instead of sleeping.
	if !l.Allow("client", 1, 2) {
		t.Fatalf("first request denied")
	}
	if l.Allow("client", 1, 2) {
		t.Fatalf("drained bucket allowed a request")
	}
	l.mu.Lock()
	l.m["client"].last = l.m["client"].last.Add(-time.Second)
	l.mu.Unlock()
	if !l.Allow("client", 1, 2) {
		t.Fatalf("bucket did not refill")
	}
}
