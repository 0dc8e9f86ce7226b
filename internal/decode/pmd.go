package decode

import (
	"encoding/binary"

	"PulseLab/internal/domain/models"
)

// PMD data frame layout, per the Polar BLE SDK technical documentation:
// byte 0 measurement type, bytes 1..8 little-endian reference timestamp in
// device ticks since sensor boot, byte 9 frame type, sample data from
// byte 10.
const (
	pmdMeasureECG    = 0x00
	pmdECGFrameType0 = 0x00

	pmdTimestampOffset = 1
	pmdFrameTypeOffset = 9
	pmdDataOffset      = 10

	ecgSampleStride = 3 // signed little-endian int24 per sample

	// ECGSampleRate is the fixed PMD ECG streaming rate in Hz.
	ECGSampleRate = 130
)

// decodePMD parses a PMD data payload into its ordered ECG samples. Each
// sample carries the frame's reference tick and a sequence index relative
// to it.
func decodePMD(data []byte) ([]models.Sample, error) {
	const c = models.CharPMDData
	if len(data) < pmdDataOffset {
		return nil, errf(c, "payload too short: %d bytes", len(data))
	}
	if data[0] != pmdMeasureECG {
		return nil, errf(c, "unsupported measurement type %#x", data[0])
	}
	if data[pmdFrameTypeOffset] != pmdECGFrameType0 {
		return nil, errf(c, "unsupported ecg frame type %#x", data[pmdFrameTypeOffset])
	}
	tick := binary.LittleEndian.Uint64(data[pmdTimestampOffset:])

	raw := data[pmdDataOffset:]
	if len(raw) == 0 || len(raw)%ecgSampleStride != 0 {
		return nil, errf(c, "ecg data is %d bytes, want a positive multiple of %d", len(raw), ecgSampleStride)
	}

	samples := make([]models.Sample, 0, len(raw)/ecgSampleStride)
	for i := 0; i < len(raw); i += ecgSampleStride {
		samples = append(samples, models.Sample{
			Kind:          models.KindECG,
			Microvolts:    leInt24(raw[i:]),
			SequenceIndex: i / ecgSampleStride,
			DeviceTick:    tick,
			HasDeviceTick: true,
		})
	}
	return samples, nil
}

// EncodeECGFrame builds a PMD ECG data payload from a reference tick and
// sample values. Exists for tests and stream simulators.
func EncodeECGFrame(tick uint64, microvolts []int32) []byte {
	buf := make([]byte, pmdDataOffset, pmdDataOffset+len(microvolts)*ecgSampleStride)
	buf[0] = pmdMeasureECG
	binary.LittleEndian.PutUint64(buf[pmdTimestampOffset:], tick)
	buf[pmdFrameTypeOffset] = pmdECGFrameType0
	for _, v := range microvolts {
		buf = append(buf, byte(v), byte(v>>8), byte(v>>16))
	}
	return buf
}

func leInt24(b []byte) int32 {
	_ = b[2] // bounds check hint to compiler; see golang.org/issue/14808
	return int32(b[0]) | int32(b[1])<<8 | int32(int8(b[2]))<<16
}
