package live

import (
	"testing"
	"time"
)

func TestStatusEmpty(t *testing.T) {
	s := New(10 * time.Second)
	now := time.Now()
	if _, ok := s.HeartRate(now); ok {
		t.Fatalf("empty status returned a heart rate")
	}
	if _, ok := s.ECGRate(now); ok {
		t.Fatalf("empty status returned an ECG rate")
	}
	if _, ok := s.RollingHRV(now); ok {
		t.Fatalf("empty status returned a rolling window")
	}
}

func TestStatusReturnsFreshReading(t *testing.T) {
	s := New(10 * time.Second)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s.SetHeartRate(72, at)
	hr, ok := s.HeartRate(at.Add(5 * time.Second))
	if !ok {
		t.Fatalf("fresh reading expired")
	}
	if hr.BPM != 72 || !hr.At.Equal(at) {
		t.Fatalf("unexpected reading: %+v", hr)
	}
}

func TestStatusExpiry(t *testing.T) {
	s := New(10 * time.Second)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s.SetHeartRate(72, at)
	s.SetECGRate(68, at)
	s.SetRollingHRV(RollingHRV{SDNN: 45, RMSSD: 38, WindowSize: 30, At: at})

	now := at.Add(11 * time.Second)
	if _, ok := s.HeartRate(now); ok {
		t.Fatalf("stale heart rate survived TTL")
	}
	if _, ok := s.ECGRate(now); ok {
		t.Fatalf("stale ECG rate survived TTL")
	}
	if _, ok := s.RollingHRV(now); ok {
		t.Fatalf("stale rolling window survived TTL")
	}
}

func TestStatusNewerReadingResetsExpiry(t *testing.T) {
	s := New(10 * time.Second)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s.SetHeartRate(72, at)
	s.SetHeartRate(75, at.Add(8*time.Second))

	hr, ok := s.HeartRate(at.Add(15 * time.Second))
	if !ok {
		t.Fatalf("refreshed reading expired")
	}
	if hr.BPM != 75 {
		t.Fatalf("expected latest reading, got %+v", hr)
	}
}

func TestStatusDefaultTTL(t *testing.T) {
	s := New(0)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.SetHeartRate(60, at)
	if _, ok := s.HeartRate(at.Add(9 * time.Second)); !ok {
		t.Fatalf("reading inside default TTL expired")
	}
	if _, ok := s.HeartRate(at.Add(11 * time.Second)); ok {
		t.Fatalf("reading outside default TTL survived")
	}
}
