// Package reconcile assigns decoded samples wall-clock timestamps that are
// consistent with arrival order and device-reported tick deltas. One
// Reconciler serves one recording session; per-stream state never crosses
// signal types.
package reconcile

import (
	"fmt"
	"time"

	"PulseLab/internal/domain/models"
)

// AnomalyKind classifies a reconciliation anomaly. Anomalies are recovered
// locally and surfaced for observability only.
type AnomalyKind uint8

const (
	AnomalyTickWrap AnomalyKind = iota
	AnomalyBackwardArrival
)

func (k AnomalyKind) String() string {
	switch k {
	case AnomalyTickWrap:
		return "tick_wrap"
	case AnomalyBackwardArrival:
		return "backward_arrival"
	}
	return fmt.Sprintf("AnomalyKind(%d)", uint8(k))
}

// Anomaly reports a recovered irregularity in one stream's timing.
type Anomaly struct {
	Signal models.SignalType
	Kind   AnomalyKind
	Tick   uint64
}

func (a *Anomaly) Error() string {
	return fmt.Sprintf("reconcile %s: %s at tick %d", a.Signal, a.Kind, a.Tick)
}

// StreamClock configures tick interpretation for one stream.
type StreamClock struct {
	// TicksPerSecond converts device tick deltas to elapsed time.
	TicksPerSecond float64
	// Modulus is the tick counter's wrap modulus; zero means the full
	// 64-bit range.
	Modulus uint64
}

// DefaultECGClock is the documented Polar H10 default: the PMD reference
// timestamp counts nanoseconds on a 64-bit counter.
// TODO: verify against a capture before relying on this for clinical-grade
// timing; the vendor documentation leaves the wrap behaviour open.
var DefaultECGClock = StreamClock{TicksPerSecond: 1e9}

type streamState struct {
	clock StreamClock

	anchored   bool
	anchorTick uint64
	anchorWall time.Time
	lastTick   uint64
	lastOut    time.Time
	haveOut    bool
}

// Reconciler maps device-relative ticks to wall-clock time, one anchor pair
// per stream, set on the first tick-bearing sample of the session.
type Reconciler struct {
	streams map[models.SignalType]*streamState
}

// New creates a Reconciler with the given per-stream clocks. Streams
// without a clock entry stamp samples with arrival time directly.
func New(clocks map[models.SignalType]StreamClock) *Reconciler {
	r := &Reconciler{streams: make(map[models.SignalType]*streamState, len(models.SignalTypes))}
	for _, sig := range models.SignalTypes {
		st := &streamState{}
		if c, ok := clocks[sig]; ok {
			st.clock = c
		}
		r.streams[sig] = st
	}
	return r
}

// Resolve assigns s a wall-clock timestamp. The returned anomaly, when
// non-nil, records a recovered tick wrap or backward arrival; the sample
// itself is always usable and its timestamp never precedes the previous
// sample of the same stream.
func (r *Reconciler) Resolve(s models.Sample, arrival time.Time) (models.TimestampedSample, *Anomaly) {
	sig := s.Signal()
	st := r.streams[sig]

	var (
		wall    time.Time
		anomaly *Anomaly
	)
	switch {
	case !s.HasDeviceTick || st.clock.TicksPerSecond <= 0:
		wall = arrival
	case !st.anchored:
		st.anchored = true
		st.anchorTick = s.DeviceTick
		st.anchorWall = arrival
		st.lastTick = s.DeviceTick
		wall = arrival
	default:
		tick := s.DeviceTick
		if tick < st.lastTick {
			// Counter wrapped: credit the modulus and re-anchor at the
			// wrapped position so later deltas stay small. A zero modulus
			// means the full 64-bit range, where unsigned subtraction
			// already yields the wrapped delta.
			anomaly = &Anomaly{Signal: sig, Kind: AnomalyTickWrap, Tick: tick}
			delta := tick + st.clock.Modulus - st.lastTick
			wall = r.project(st, st.lastTick).Add(r.elapsed(st, delta))
			st.anchorTick = tick
			st.anchorWall = wall
		} else {
			wall = r.project(st, tick)
		}
		st.lastTick = tick
	}

	// Per-stream output order is non-negotiable: clamp rather than let a
	// late frame move the stream backward.
	if st.haveOut && wall.Before(st.lastOut) {
		if anomaly == nil {
			anomaly = &Anomaly{Signal: sig, Kind: AnomalyBackwardArrival, Tick: s.DeviceTick}
		}
		wall = st.lastOut
	}
	st.lastOut = wall
	st.haveOut = true

	return models.TimestampedSample{Sample: s, Timestamp: wall}, anomaly
}

func (r *Reconciler) project(st *streamState, tick uint64) time.Time {
	return st.anchorWall.Add(r.elapsed(st, tick-st.anchorTick))
}

func (r *Reconciler) elapsed(st *streamState, ticks uint64) time.Duration {
	return time.Duration(float64(ticks) / st.clock.TicksPerSecond * float64(time.Second))
}
