package models

import "time"

// StatSummary is the descriptive statistics block computed over one value
// sequence (RR in milliseconds, or derived instantaneous HR in BPM).
type StatSummary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	Stddev float64
}

// SegmentStats is the statistic set for one analysis window. Sufficient is
// false when the window held fewer than two RR intervals; the time-domain
// fields are then zero and must not be interpreted.
type SegmentStats struct {
	Label      string
	Start      time.Time
	End        time.Time
	RR         StatSummary
	HR         StatSummary
	RMSSD      float64
	SDNN       float64
	PNN50      float64
	Sufficient bool
}

// HRVReport is the derived analysis output: whole-session statistics plus
// one SegmentStats per inter-marker segment. Recomputed on demand from the
// RR sequence, never persisted as primary data.
type HRVReport struct {
	Participant string
	Overall     SegmentStats
	Segments    []SegmentStats
	Cleaned     bool
}
