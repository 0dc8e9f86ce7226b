package decode

import (
	"errors"
	"math"
	"testing"

	"PulseLab/internal/domain/models"
)

func TestDecodeHeartRate8Bit(t *testing.T) {
	samples, err := Decode(models.RawFrame{
		Characteristic: models.CharHeartRateMeasurement,
		Payload:        []byte{0x00, 72},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(samples))
	}
	if samples[0].Kind != models.KindHR || samples[0].BPM != 72 {
		t.Fatalf("unexpected sample %+v", samples[0])
	}
}

func TestDecodeHeartRate16Bit(t *testing.T) {
	samples, err := Decode(models.RawFrame{
		Characteristic: models.CharHeartRateMeasurement,
		Payload:        []byte{0x01, 0x2c, 0x01}, // 300 bpm little-endian
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if samples[0].BPM != 300 {
		t.Fatalf("expected 300 bpm, got %d", samples[0].BPM)
	}
}

func TestDecodeHeartRateWithRR(t *testing.T) {
	// flags: RR present; 1024 ticks = 1000 ms, 512 ticks = 500 ms
	payload := []byte{0x10, 60, 0x00, 0x04, 0x00, 0x02}
	samples, err := Decode(models.RawFrame{
		Characteristic: models.CharHeartRateMeasurement,
		Payload:        payload,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected hr + 2 rr, got %d samples", len(samples))
	}
	if samples[1].Kind != models.KindRR || samples[1].IntervalMS != 1000 {
		t.Fatalf("unexpected first rr %+v", samples[1])
	}
	if samples[2].IntervalMS != 500 {
		t.Fatalf("unexpected second rr %+v", samples[2])
	}
}

func TestDecodeHeartRateSkipsEnergyField(t *testing.T) {
	// energy expended + RR present
	payload := []byte{0x18, 60, 0x34, 0x12, 0x00, 0x04}
	samples, err := Decode(models.RawFrame{
		Characteristic: models.CharHeartRateMeasurement,
		Payload:        payload,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 2 || samples[1].IntervalMS != 1000 {
		t.Fatalf("energy field not skipped: %+v", samples)
	}
}

func TestDecodeHeartRateErrors(t *testing.T) {
	bad := [][]byte{
		{},                       // empty
		{0x00},                   // flags only
		{0x01, 60},               // missing 16-bit hr byte
		{0x10, 60, 0x00},         // odd rr region
		{0x10, 60},               // rr flagged but absent
		{0x08, 60, 0x01},         // truncated energy field
	}
	for _, payload := range bad {
		_, err := Decode(models.RawFrame{
			Characteristic: models.CharHeartRateMeasurement,
			Payload:        payload,
		})
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("payload %v: expected DecodeError, got %v", payload, err)
		}
	}
}

func TestHeartRateRoundTrip(t *testing.T) {
	payload := EncodeHeartRate(305, []uint16{820, 1024})
	samples, err := Decode(models.RawFrame{
		Characteristic: models.CharHeartRateMeasurement,
		Payload:        payload,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if samples[0].BPM != 305 {
		t.Fatalf("expected 305 bpm, got %d", samples[0].BPM)
	}
	if got := samples[1].IntervalMS; math.Abs(got-RRTicksToMS(820)) > 1e-9 {
		t.Fatalf("unexpected rr %v", got)
	}
}

func TestRRTickConversion(t *testing.T) {
	if got := RRTicksToMS(1024); got != 1000 {
		t.Fatalf("1024 ticks should be 1000 ms, got %v", got)
	}
	if got := RRTicksToMS(512); got != 500 {
		t.Fatalf("512 ticks should be 500 ms, got %v", got)
	}
	if got := MSToRRTicks(RRTicksToMS(820)); got != 820 {
		t.Fatalf("round trip lost ticks: %d", got)
	}
}

func TestDecodePMDFrame(t *testing.T) {
	payload := EncodeECGFrame(123456789, []int32{100, -250, 0})
	samples, err := Decode(models.RawFrame{
		Characteristic: models.CharPMDData,
		Payload:        payload,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 ecg samples, got %d", len(samples))
	}
	want := []int32{100, -250, 0}
	for i, s := range samples {
		if s.Kind != models.KindECG {
			t.Fatalf("sample %d: wrong kind %v", i, s.Kind)
		}
		if s.Microvolts != want[i] {
			t.Fatalf("sample %d: expected %d uV, got %d", i, want[i], s.Microvolts)
		}
		if s.SequenceIndex != i {
			t.Fatalf("sample %d: wrong sequence index %d", i, s.SequenceIndex)
		}
		if !s.HasDeviceTick || s.DeviceTick != 123456789 {
			t.Fatalf("sample %d: wrong device tick %+v", i, s)
		}
	}
}

func TestDecodePMDNegativeInt24(t *testing.T) {
	payload := EncodeECGFrame(0, []int32{-1, -8388608, 8388607})
	samples, err := Decode(models.RawFrame{
		Characteristic: models.CharPMDData,
		Payload:        payload,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int32{-1, -8388608, 8388607}
	for i, s := range samples {
		if s.Microvolts != want[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, want[i], s.Microvolts)
		}
	}
}

func TestDecodePMDErrors(t *testing.T) {
	short := []byte{0x00, 1, 2, 3}
	if _, err := Decode(models.RawFrame{Characteristic: models.CharPMDData, Payload: short}); err == nil {
		t.Fatalf("expected error for short payload")
	}

	wrongType := EncodeECGFrame(0, []int32{1})
	wrongType[0] = 0x03
	if _, err := Decode(models.RawFrame{Characteristic: models.CharPMDData, Payload: wrongType}); err == nil {
		t.Fatalf("expected error for non-ecg measurement type")
	}

	ragged := append(EncodeECGFrame(0, []int32{1}), 0xff)
	if _, err := Decode(models.RawFrame{Characteristic: models.CharPMDData, Payload: ragged}); err == nil {
		t.Fatalf("expected error for ragged sample data")
	}
}

func TestDecodeUnknownCharacteristic(t *testing.T) {
	_, err := Decode(models.RawFrame{Characteristic: "2a19", Payload: []byte{0x64}})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}
