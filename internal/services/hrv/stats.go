package hrv

import (
	"math"
	"sort"

	"PulseLab/internal/domain/models"
)

// summarize computes the descriptive block over one value sequence.
// Stddev is the sample standard deviation and is zero below two values.
func summarize(values []float64) models.StatSummary {
	s := models.StatSummary{Count: len(values)}
	if len(values) == 0 {
		return s
	}
	s.Min = values[0]
	s.Max = values[0]
	var sum float64
	for _, v := range values {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += v
	}
	s.Mean = sum / float64(len(values))
	s.Median = median(values)
	s.Stddev = sampleStddev(values, s.Mean)
	return s
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func sampleStddev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// RMSSD is the root mean square of successive RR differences. The second
// return is false when fewer than two intervals are available.
func RMSSD(rr []float64) (float64, bool) {
	if len(rr) < 2 {
		return 0, false
	}
	var ss float64
	for i := 1; i < len(rr); i++ {
		d := rr[i] - rr[i-1]
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(rr)-1)), true
}

// SDNN is the sample standard deviation of all RR intervals in the window.
func SDNN(rr []float64) (float64, bool) {
	if len(rr) < 2 {
		return 0, false
	}
	var sum float64
	for _, v := range rr {
		sum += v
	}
	return sampleStddev(rr, sum/float64(len(rr))), true
}

// PNN50 is the percentage of successive RR differences exceeding 50 ms.
func PNN50(rr []float64) (float64, bool) {
	if len(rr) < 2 {
		return 0, false
	}
	var nn50 int
	for i := 1; i < len(rr); i++ {
		if math.Abs(rr[i]-rr[i-1]) > 50 {
			nn50++
		}
	}
	return float64(nn50) / float64(len(rr)) * 100, true
}
