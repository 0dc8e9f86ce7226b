package models

import "time"

// SignalType identifies one of the three physiological streams produced by
// the sensor.
type SignalType string

const (
	SignalHeartRate  SignalType = "HeartRate"
	SignalRRInterval SignalType = "RRinterval"
	SignalECG        SignalType = "RawECG"
)

// SignalTypes lists every stream in a fixed order.
var SignalTypes = []SignalType{SignalHeartRate, SignalRRInterval, SignalECG}

// Valid reports whether s names a known stream.
func (s SignalType) Valid() bool {
	switch s {
	case SignalHeartRate, SignalRRInterval, SignalECG:
		return true
	}
	return false
}

// Characteristic identifies the BLE characteristic a raw payload was
// notified on. The gateway reports the short GATT UUID for the standard
// heart rate measurement and the full vendor UUID for PMD data.
type Characteristic string

const (
	CharHeartRateMeasurement Characteristic = "2a37"
	CharPMDData              Characteristic = "fb005c82-02e7-f387-1cad-8acd2d8df0c8"
)

// RawFrame is one BLE notification payload as delivered by the gateway:
// the raw bytes, the characteristic they arrived on, and the arrival
// wall-clock time. Consumed once by the decoder and not retained.
type RawFrame struct {
	Characteristic Characteristic
	Payload        []byte
	Arrival        time.Time
}

// SampleKind tags the variant held by a Sample.
type SampleKind uint8

const (
	KindHR SampleKind = iota
	KindRR
	KindECG
)

// Sample is a tagged union over the three sample variants. Exactly the
// fields of the tagged kind are meaningful. Samples are immutable values.
type Sample struct {
	Kind SampleKind

	// KindHR
	BPM int

	// KindRR
	IntervalMS float64

	// KindECG
	Microvolts    int32
	SequenceIndex int

	// DeviceTick is the device-relative tick carried by the frame, if any.
	// HR/RR notifications carry none; PMD frames carry the frame reference
	// timestamp.
	DeviceTick    uint64
	HasDeviceTick bool
}

// Signal returns the stream a sample belongs to.
func (s Sample) Signal() SignalType {
	switch s.Kind {
	case KindRR:
		return SignalRRInterval
	case KindECG:
		return SignalECG
	default:
		return SignalHeartRate
	}
}

// Value returns the scalar pushed to outlets and recorded per row.
func (s Sample) Value() float64 {
	switch s.Kind {
	case KindRR:
		return s.IntervalMS
	case KindECG:
		return float64(s.Microvolts)
	default:
		return float64(s.BPM)
	}
}

// Plausible reports whether the sample is inside the physiological sanity
// window. Used for filtering flags, not hard rejection.
func (s Sample) Plausible() bool {
	switch s.Kind {
	case KindHR:
		return s.BPM >= 25 && s.BPM <= 250
	case KindRR:
		return s.IntervalMS > 0
	default:
		return true
	}
}

// TimestampedSample pairs a decoded sample with its reconciled wall-clock
// timestamp. Within one stream timestamps are non-decreasing.
type TimestampedSample struct {
	Sample
	Timestamp time.Time
}
