package decode

import (
	"encoding/binary"

	"PulseLab/internal/domain/models"
)

// Flag bits of the standard 2a37 heart rate measurement, per the Bluetooth
// heart-rate-service profile:
//
//	| 0x10 | 0x08 | 0x04 0x02 | 0x01 |
//	|  rr  | nrg  | scs  cnt  | fmt  |
const (
	hrFlagFormat16      = 0x01
	hrFlagContact       = 0x02
	hrFlagContactOK     = 0x04
	hrFlagEnergy        = 0x08
	hrFlagRRPresent     = 0x10
	rrTicksPerSecond    = 1024
	rrFieldWidth        = 2
)

// RRTicksToMS converts a device RR value (1/1024 s ticks) to milliseconds.
func RRTicksToMS(ticks uint16) float64 {
	return float64(ticks) * 1000 / rrTicksPerSecond
}

// MSToRRTicks is the inverse of RRTicksToMS; exact for values that are
// multiples of the tick resolution.
func MSToRRTicks(ms float64) uint16 {
	return uint16(ms * rrTicksPerSecond / 1000)
}

// decodeHeartRate parses a 2a37 payload into one HR sample followed by
// zero or more RR samples, in their on-wire order.
func decodeHeartRate(data []byte) ([]models.Sample, error) {
	const c = models.CharHeartRateMeasurement
	if len(data) < 2 {
		return nil, errf(c, "payload too short: %d bytes", len(data))
	}
	flags := data[0]
	off := 1

	var bpm int
	if flags&hrFlagFormat16 != 0 {
		if len(data) < off+2 {
			return nil, errf(c, "missing 16-bit heart rate field")
		}
		bpm = int(binary.LittleEndian.Uint16(data[off:]))
		off += 2
	} else {
		bpm = int(data[off])
		off++
	}

	if flags&hrFlagEnergy != 0 {
		if len(data) < off+2 {
			return nil, errf(c, "missing energy expended field")
		}
		off += 2
	}

	samples := []models.Sample{{Kind: models.KindHR, BPM: bpm}}

	if flags&hrFlagRRPresent != 0 {
		rr := data[off:]
		if len(rr) == 0 || len(rr)%rrFieldWidth != 0 {
			return nil, errf(c, "rr field region is %d bytes, want a positive multiple of %d", len(rr), rrFieldWidth)
		}
		for i := 0; i < len(rr); i += rrFieldWidth {
			ticks := binary.LittleEndian.Uint16(rr[i:])
			samples = append(samples, models.Sample{
				Kind:       models.KindRR,
				IntervalMS: RRTicksToMS(ticks),
			})
		}
	}

	return samples, nil
}

// EncodeHeartRate builds a 2a37 payload from field values. It is the
// inverse of decodeHeartRate over the fixed-width fields and exists for
// round-trip tests and stream simulators.
func EncodeHeartRate(bpm int, rrTicks []uint16) []byte {
	var flags byte
	size := 2
	if bpm > 0xff {
		flags |= hrFlagFormat16
		size++
	}
	if len(rrTicks) > 0 {
		flags |= hrFlagRRPresent
		size += len(rrTicks) * rrFieldWidth
	}
	buf := make([]byte, 1, size)
	buf[0] = flags
	if flags&hrFlagFormat16 != 0 {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(bpm))
	} else {
		buf = append(buf, byte(bpm))
	}
	for _, t := range rrTicks {
		buf = binary.LittleEndian.AppendUint16(buf, t)
	}
	return buf
}
