// Package features derives beat events and instantaneous heart rate from
// the raw ECG stream. Detection is deliberately simple: an amplitude
// threshold with a refractory period, followed by IQR gating of the
// resulting beat-to-beat intervals so a missed or double-counted beat does
// not poison the rate estimate.
package features

import (
	"math"
	"sort"
	"time"

	"PulseLab/internal/domain/models"
)

const (
	// DefaultThresholdUV is the R-peak amplitude threshold in microvolts.
	DefaultThresholdUV = 210

	// DefaultRefractory is the minimum spacing between accepted beats.
	// A true beat cannot recur inside it at any physiological rate.
	DefaultRefractory = 500 * time.Millisecond

	// beatWindow is how many beat timestamps the detector retains for
	// interval statistics.
	beatWindow = 20

	iqrFence = 1.5
)

// Beat is one detected R peak.
type Beat struct {
	At time.Time
	// Synthetic marks a beat inserted at the mean interval after the real
	// detection landed outside the IQR fences.
	Synthetic bool
}

// Detector is a streaming ECG beat detector. Not safe for concurrent use;
// feed it one stream from one goroutine.
type Detector struct {
	thresholdUV int32
	refractory  time.Duration

	lastBeat time.Time
	beats    []time.Time
}

// NewDetector creates a Detector with the given threshold and refractory
// period. Zero values select the defaults.
func NewDetector(thresholdUV int32, refractory time.Duration) *Detector {
	if thresholdUV == 0 {
		thresholdUV = DefaultThresholdUV
	}
	if refractory == 0 {
		refractory = DefaultRefractory
	}
	return &Detector{
		thresholdUV: thresholdUV,
		refractory:  refractory,
		beats:       make([]time.Time, 0, beatWindow),
	}
}

// Process consumes one timestamped ECG sample and reports a beat when the
// sample crosses the threshold outside the refractory window. The returned
// Beat is nil when no beat fired.
func (d *Detector) Process(s models.TimestampedSample) *Beat {
	if s.Kind != models.KindECG {
		return nil
	}
	if s.Microvolts <= d.thresholdUV {
		return nil
	}
	if !d.lastBeat.IsZero() && s.Timestamp.Sub(d.lastBeat) <= d.refractory {
		return nil
	}
	d.lastBeat = s.Timestamp

	b := &Beat{At: s.Timestamp}
	if d.isOutlier(s.Timestamp) {
		// Replace the implausible beat with one at the mean interval so
		// the window keeps a steady cadence.
		mean := meanInterval(d.beats)
		b = &Beat{At: d.beats[len(d.beats)-1].Add(mean), Synthetic: true}
	}
	d.push(b.At)
	return b
}

// BPM estimates heart rate from the retained beat window, discarding
// intervals outside the IQR fences. It returns 0 until the window is full.
func (d *Detector) BPM() float64 {
	if len(d.beats) < beatWindow {
		return 0
	}
	intervals := intervalsSeconds(d.beats)
	lo, hi := iqrBounds(intervals)

	sum, n := 0.0, 0
	for _, iv := range intervals {
		if iv < lo || iv > hi {
			continue
		}
		sum += iv
		n++
	}
	if n == 0 {
		return 0
	}
	return 60.0 / (sum / float64(n))
}

func (d *Detector) push(t time.Time) {
	d.beats = append(d.beats, t)
	if len(d.beats) > beatWindow {
		d.beats = d.beats[1:]
	}
}

// isOutlier reports whether the interval a beat at t would form lies
// outside the IQR fences of the current window. With a short window there
// is no basis to reject anything.
func (d *Detector) isOutlier(t time.Time) bool {
	if len(d.beats) < beatWindow {
		return false
	}
	intervals := intervalsSeconds(append(append([]time.Time(nil), d.beats...), t))
	lo, hi := iqrBounds(intervals)
	newInterval := t.Sub(d.beats[len(d.beats)-1]).Seconds()
	return newInterval < lo || newInterval > hi
}

func intervalsSeconds(beats []time.Time) []float64 {
	out := make([]float64, 0, len(beats)-1)
	for i := 1; i < len(beats); i++ {
		out = append(out, beats[i].Sub(beats[i-1]).Seconds())
	}
	return out
}

func meanInterval(beats []time.Time) time.Duration {
	if len(beats) < 2 {
		return 0
	}
	total := beats[len(beats)-1].Sub(beats[0])
	return total / time.Duration(len(beats)-1)
}

func iqrBounds(vals []float64) (lo, hi float64) {
	q1 := percentile(vals, 25)
	q3 := percentile(vals, 75)
	iqr := q3 - q1
	return q1 - iqrFence*iqr, q3 + iqrFence*iqr
}

// percentile computes the p-th percentile with linear interpolation
// between closest ranks.
func percentile(vals []float64, p float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
