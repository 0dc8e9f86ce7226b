// Package hrv computes descriptive and heart-rate-variability statistics
// over a sealed session's RR-interval sequence. Given the same RR sequence
// and marker list the report is bit-for-bit reproducible: no randomness, no
// wall-clock reads.
package hrv

import (
	"fmt"
	"time"

	"PulseLab/internal/domain/models"
)

// Options tune one analysis run.
type Options struct {
	// Clean applies z-score outlier removal with linear interpolation to
	// the RR sequence before computing statistics.
	Clean bool
}

// Engine is the statistics engine. Stateless; safe for concurrent use.
type Engine struct{}

func New() *Engine { return &Engine{} }

// Analyze computes whole-session and per-segment statistics over an
// ordered RR sequence. Markers partition the sequence into closed-open
// segments: segment i holds the samples with timestamp in
// [marker_i, marker_i+1), the first segment reaching back to session start
// and the last forward to session end. Windows with fewer than two
// intervals are reported as insufficient rather than omitted.
func (e *Engine) Analyze(participant string, rr []models.TimestampedSample, markers []models.MarkedTimestamp, opts Options) models.HRVReport {
	values := make([]float64, len(rr))
	for i, s := range rr {
		values[i] = s.Sample.IntervalMS
	}
	if opts.Clean {
		values = Clean(values)
	}

	report := models.HRVReport{
		Participant: participant,
		Overall:     segmentStats("Overall", time.Time{}, time.Time{}, values),
		Cleaned:     opts.Clean,
	}
	if len(rr) > 0 {
		report.Overall.Start = rr[0].Timestamp
		report.Overall.End = rr[len(rr)-1].Timestamp
	}

	if len(markers) < 2 {
		return report
	}

	// Each sample lands in exactly one segment: the first segment's lower
	// bound and the last segment's upper bound are unbounded so nothing
	// recorded outside the marked range is dropped.
	report.Segments = make([]models.SegmentStats, 0, len(markers)-1)
	for i := 0; i < len(markers)-1; i++ {
		lo, hi := markers[i], markers[i+1]
		seg := make([]float64, 0)
		for j, s := range rr {
			if i > 0 && s.Timestamp.Before(lo.Timestamp) {
				continue
			}
			if i < len(markers)-2 && !s.Timestamp.Before(hi.Timestamp) {
				continue
			}
			seg = append(seg, values[j])
		}
		label := lo.Label
		if label == "" {
			label = fmt.Sprintf("Segment_%d", i+1)
		}
		report.Segments = append(report.Segments, segmentStats(label, lo.Timestamp, hi.Timestamp, seg))
	}
	return report
}

func segmentStats(label string, start, end time.Time, rrValues []float64) models.SegmentStats {
	s := models.SegmentStats{
		Label: label,
		Start: start,
		End:   end,
		RR:    summarize(rrValues),
		HR:    summarize(instantaneousHR(rrValues)),
	}
	var ok bool
	if s.RMSSD, ok = RMSSD(rrValues); !ok {
		return s
	}
	s.SDNN, _ = SDNN(rrValues)
	s.PNN50, _ = PNN50(rrValues)
	s.Sufficient = true
	return s
}

// instantaneousHR derives beats per minute from each RR interval.
func instantaneousHR(rrValues []float64) []float64 {
	hr := make([]float64, 0, len(rrValues))
	for _, ms := range rrValues {
		if ms > 0 {
			hr = append(hr, 60000/ms)
		}
	}
	return hr
}
