package repository

import "PulseLab/internal/domain/models"

// StreamInfo declares an outlet's transport identity: channel count and
// nominal sample rate, mirroring the upstream LSL stream declarations.
type StreamInfo struct {
	Signal      models.SignalType
	Channels    int
	NominalRate float64 // Hz; zero for irregular streams
}

var streamInfos = map[models.SignalType]StreamInfo{
	models.SignalHeartRate:  {Signal: models.SignalHeartRate, Channels: 1},
	models.SignalRRInterval: {Signal: models.SignalRRInterval, Channels: 1},
	models.SignalECG:        {Signal: models.SignalECG, Channels: 1, NominalRate: 130},
}

// InfoFor returns the outlet declaration for a signal type.
func InfoFor(sig models.SignalType) StreamInfo { return streamInfos[sig] }

// NormalizeSignal converts a raw string to a valid signal type, defaulting
// to RR intervals (the analysis-bearing stream).
func NormalizeSignal(s string) models.SignalType {
	sig := models.SignalType(s)
	if sig.Valid() {
		return sig
	}
	return models.SignalRRInterval
}
