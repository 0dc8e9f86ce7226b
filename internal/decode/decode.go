// Package decode turns raw BLE notification payloads into typed sample
// batches. Decoding is stateless, performs no I/O, and never panics past
// this boundary: any payload whose length is inconsistent with its declared
// field widths yields a DecodeError the caller can drop and log.
package decode

import (
	"fmt"

	"PulseLab/internal/domain/models"
)

// DecodeError reports a malformed or unsupported payload. The frame is
// dropped; the stream continues.
type DecodeError struct {
	Characteristic models.Characteristic
	Reason         string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Characteristic, e.Reason)
}

func errf(c models.Characteristic, format string, args ...interface{}) error {
	return &DecodeError{Characteristic: c, Reason: fmt.Sprintf(format, args...)}
}

// table maps characteristic identity to its payload decoder. Every payload
// shape the pipeline accepts is enumerated here.
var table = map[models.Characteristic]func([]byte) ([]models.Sample, error){
	models.CharHeartRateMeasurement: decodeHeartRate,
	models.CharPMDData:              decodePMD,
}

// Decode parses one notification payload into its ordered sample batch.
// A single HR-service frame may bundle several RR intervals; a single PMD
// frame bundles many ECG points.
func Decode(f models.RawFrame) ([]models.Sample, error) {
	dec, ok := table[f.Characteristic]
	if !ok {
		return nil, errf(f.Characteristic, "unknown characteristic")
	}
	return dec(f.Payload)
}
