package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"PulseLab/internal/domain/models"
	drepo "PulseLab/internal/domain/repository"
)

// TransportError reports a failed outlet publish. Publishing and recording
// are independent sinks: a transport failure is surfaced to the caller but
// never costs the recorder path a sample.
type TransportError struct {
	Signal models.SignalType
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.Signal, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SampleProcessor fans a timestamped batch out to both session sinks: the
// pub/sub outlet and the durable recorder.
type SampleProcessor struct {
	outlet   drepo.Outlet
	recorder drepo.Recorder
	metrics  drepo.Metrics

	mu          sync.RWMutex
	participant string
}

// NewSampleProcessor creates a new SampleProcessor instance.
func NewSampleProcessor(outlet drepo.Outlet, recorder drepo.Recorder, metrics drepo.Metrics) *SampleProcessor {
	return &SampleProcessor{outlet: outlet, recorder: recorder, metrics: metrics}
}

// Bind attaches the processor to the active session's participant. One
// session records at a time.
func (p *SampleProcessor) Bind(participant string) {
	p.mu.Lock()
	p.participant = participant
	p.mu.Unlock()
}

// Unbind detaches the processor when the session seals.
func (p *SampleProcessor) Unbind() { p.Bind("") }

// ProcessBatch delivers one batch to both sinks in arrival order. The
// recorder write happens regardless of the publish outcome; only the
// recorder error fails the batch, a publish failure comes back as a
// TransportError after recording succeeded.
func (p *SampleProcessor) ProcessBatch(ctx context.Context, sig models.SignalType, batch []models.TimestampedSample) error {
	if len(batch) == 0 {
		return nil
	}
	p.mu.RLock()
	participant := p.participant
	p.mu.RUnlock()
	if participant == "" {
		return fmt.Errorf("no active session")
	}

	start := time.Now()
	pubErr := p.outlet.PublishBatch(ctx, sig, batch)
	if pubErr != nil {
		p.metrics.RecordError("publish")
	}

	if err := p.recorder.RecordBatch(ctx, participant, sig, batch); err != nil {
		p.metrics.RecordError("record")
		return fmt.Errorf("record batch: %w", err)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	if pubErr != nil {
		return &TransportError{Signal: sig, Err: pubErr}
	}
	return nil
}

// Close releases both sink handles.
func (p *SampleProcessor) Close() {
	_ = p.outlet.Close()
	_ = p.recorder.Close()
}
