// Package live holds the most recent acquisition state for the status
// endpoints: latest heart rate and the rolling HRV window computed over
// the live RR stream. Values expire so a stalled sensor reads as absent
// rather than stale.
package live

import (
	"sync"
	"time"
)

// HeartRate is the latest HR reading.
type HeartRate struct {
	BPM float64   `json:"bpm"`
	At  time.Time `json:"at"`
}

// ECGRate is heart rate derived by beat detection on the raw ECG stream,
// independent of the sensor's own HR characteristic.
type ECGRate struct {
	BPM float64   `json:"bpm"`
	At  time.Time `json:"at"`
}

// RollingHRV is the latest windowed HRV computation from the live RR
// stream.
type RollingHRV struct {
	SDNN       float64   `json:"sdnn"`
	RMSSD      float64   `json:"rmssd"`
	WindowSize int       `json:"window_size"`
	At         time.Time `json:"at"`
}

// Status is a concurrent snapshot store. Zero value is not usable; create
// with New.
type Status struct {
	mu  sync.RWMutex
	ttl time.Duration

	hr      HeartRate
	ecg     ECGRate
	rolling RollingHRV
}

// New creates a Status whose readings expire after ttl.
func New(ttl time.Duration) *Status {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Status{ttl: ttl}
}

// SetHeartRate records the latest HR reading.
func (s *Status) SetHeartRate(bpm float64, at time.Time) {
	s.mu.Lock()
	s.hr = HeartRate{BPM: bpm, At: at}
	s.mu.Unlock()
}

// SetECGRate records the latest ECG-derived heart rate.
func (s *Status) SetECGRate(bpm float64, at time.Time) {
	s.mu.Lock()
	s.ecg = ECGRate{BPM: bpm, At: at}
	s.mu.Unlock()
}

// SetRollingHRV records the latest windowed HRV computation.
func (s *Status) SetRollingHRV(r RollingHRV) {
	s.mu.Lock()
	s.rolling = r
	s.mu.Unlock()
}

// HeartRate returns the latest unexpired HR reading.
func (s *Status) HeartRate(now time.Time) (HeartRate, bool) {
	s.mu.RLock()
	hr := s.hr
	s.mu.RUnlock()
	if hr.At.IsZero() || now.Sub(hr.At) > s.ttl {
		return HeartRate{}, false
	}
	return hr, true
}

// ECGRate returns the latest unexpired ECG-derived heart rate.
func (s *Status) ECGRate(now time.Time) (ECGRate, bool) {
	s.mu.RLock()
	e := s.ecg
	s.mu.RUnlock()
	if e.At.IsZero() || now.Sub(e.At) > s.ttl {
		return ECGRate{}, false
	}
	return e, true
}

// RollingHRV returns the latest unexpired rolling HRV window.
func (s *Status) RollingHRV(now time.Time) (RollingHRV, bool) {
	s.mu.RLock()
	r := s.rolling
	s.mu.RUnlock()
	if r.At.IsZero() || now.Sub(r.At) > s.ttl {
		return RollingHRV{}, false
	}
	return r, true
}
