package models

import (
	"errors"
	"fmt"
	"time"
)

// SessionState is the recording lifecycle state.
type SessionState uint8

const (
	SessionOpen SessionState = iota
	SessionRecording
	SessionSealed
)

func (s SessionState) String() string {
	switch s {
	case SessionOpen:
		return "open"
	case SessionRecording:
		return "recording"
	case SessionSealed:
		return "sealed"
	}
	return fmt.Sprintf("SessionState(%d)", uint8(s))
}

var (
	ErrNotRecording     = errors.New("session is not recording")
	ErrAlreadyRecording = errors.New("session is already recording")
	ErrSessionSealed    = errors.New("session is sealed")
	ErrMarkerNotAfter   = errors.New("marker does not advance past previous marker")
)

// MarkedTimestamp is a wall-clock instant with an optional label, inserted
// by the operator during recording to delimit analysis segments.
type MarkedTimestamp struct {
	Timestamp time.Time
	Label     string
}

// Session owns one ordered sequence per signal type plus an ordered marker
// sequence, keyed by participant and start time. Append-only while
// recording; read-only once sealed.
type Session struct {
	Participant string
	StartedAt   time.Time
	StoppedAt   time.Time

	state   SessionState
	samples map[SignalType][]TimestampedSample
	markers []MarkedTimestamp
}

// NewSession creates an open session for a participant.
func NewSession(participant string, start time.Time) *Session {
	return &Session{
		Participant: participant,
		StartedAt:   start,
		state:       SessionOpen,
		samples:     make(map[SignalType][]TimestampedSample, len(SignalTypes)),
	}
}

func (s *Session) State() SessionState { return s.state }

// StartRecording transitions open -> recording.
func (s *Session) StartRecording() error {
	switch s.state {
	case SessionRecording:
		return ErrAlreadyRecording
	case SessionSealed:
		return ErrSessionSealed
	}
	s.state = SessionRecording
	return nil
}

// Seal transitions recording -> sealed. A sealed session never mutates
// again; the statistics engine only ever reads sealed sessions.
func (s *Session) Seal(stopped time.Time) error {
	if s.state != SessionRecording {
		return ErrNotRecording
	}
	s.state = SessionSealed
	s.StoppedAt = stopped
	return nil
}

// Append adds a timestamped sample to its stream. Only legal while
// recording; ordering within a stream is the caller's responsibility and
// is preserved here.
func (s *Session) Append(sig SignalType, ts TimestampedSample) error {
	if s.state != SessionRecording {
		return ErrNotRecording
	}
	s.samples[sig] = append(s.samples[sig], ts)
	return nil
}

// Mark inserts a marked timestamp. Markers must be strictly increasing.
func (s *Session) Mark(m MarkedTimestamp) error {
	if s.state != SessionRecording {
		return ErrNotRecording
	}
	if n := len(s.markers); n > 0 && !m.Timestamp.After(s.markers[n-1].Timestamp) {
		return ErrMarkerNotAfter
	}
	s.markers = append(s.markers, m)
	return nil
}

// Samples returns the recorded sequence for one stream.
func (s *Session) Samples(sig SignalType) []TimestampedSample {
	return s.samples[sig]
}

// Markers returns the marker sequence in insertion order.
func (s *Session) Markers() []MarkedTimestamp { return s.markers }
