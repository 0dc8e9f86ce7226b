package repository

import (
	"context"
	"time"

	"PulseLab/internal/domain/models"
)

// SensorStream is the upstream frame source: an external BLE gateway that
// owns adapter and GATT subscription management and delivers raw
// notification payloads with characteristic identity and arrival time.
type SensorStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.RawFrame, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Outlet is the pub/sub hand-off, one logical outlet per signal type.
// Publishing is fire-and-forget from the pipeline's point of view; a
// failure is surfaced but never removes a sample from the recorder path.
type Outlet interface {
	Publish(ctx context.Context, sig models.SignalType, s models.TimestampedSample) error
	PublishBatch(ctx context.Context, sig models.SignalType, batch []models.TimestampedSample) error
	Close() error
}

// Recorder is the durable session sink. Writes happen in arrival order;
// the pipeline never skips, reorders within a stream, or duplicates a
// sample it hands over.
type Recorder interface {
	Init(ctx context.Context) error
	Record(ctx context.Context, participant string, sig models.SignalType, s models.TimestampedSample) error
	RecordBatch(ctx context.Context, participant string, sig models.SignalType, batch []models.TimestampedSample) error
	RecordMarker(ctx context.Context, participant string, m models.MarkedTimestamp) error
	Health(ctx context.Context) error
	Close() error
}

// SessionStore reads sealed sessions back for analysis. The logical schema
// (one row per sample, wall-clock timestamp plus value; markers held
// separately) is what the statistics engine depends on.
type SessionStore interface {
	RRIntervals(ctx context.Context, participant string, from, to time.Time) ([]models.TimestampedSample, error)
	Markers(ctx context.Context, participant string) ([]models.MarkedTimestamp, error)
	Participants(ctx context.Context) ([]string, error)
}

// Metrics abstracts pipeline observability.
type Metrics interface {
	RecordSampleDecoded(signal string)
	RecordError(kind string)
	RecordLastHeartRate(bpm float64)
	RecordLatency(op string, seconds float64)
}
