package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"PulseLab/internal/domain/models"
)

type fakeOutlet struct {
	published []models.TimestampedSample
	err       error
}

func (f *fakeOutlet) Publish(_ context.Context, _ models.SignalType, s models.TimestampedSample) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, s)
	return nil
}

func (f *fakeOutlet) PublishBatch(_ context.Context, _ models.SignalType, batch []models.TimestampedSample) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, batch...)
	return nil
}

func (f *fakeOutlet) Close() error { return nil }

type fakeRecorder struct {
	rows    []models.TimestampedSample
	markers []models.MarkedTimestamp
	err     error
}

func (f *fakeRecorder) Init(context.Context) error { return nil }

func (f *fakeRecorder) Record(_ context.Context, _ string, _ models.SignalType, s models.TimestampedSample) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, s)
	return nil
}

func (f *fakeRecorder) RecordBatch(_ context.Context, _ string, _ models.SignalType, batch []models.TimestampedSample) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, batch...)
	return nil
}

func (f *fakeRecorder) RecordMarker(_ context.Context, _ string, m models.MarkedTimestamp) error {
	if f.err != nil {
		return f.err
	}
	f.markers = append(f.markers, m)
	return nil
}

func (f *fakeRecorder) Health(context.Context) error { return nil }
func (f *fakeRecorder) Close() error                 { return nil }

type countMetrics struct {
	errors map[string]int
}

func newCountMetrics() *countMetrics { return &countMetrics{errors: make(map[string]int)} }

func (m *countMetrics) RecordSampleDecoded(string)    {}
func (m *countMetrics) RecordError(kind string)       { m.errors[kind]++ }
func (m *countMetrics) RecordLastHeartRate(float64)   {}
func (m *countMetrics) RecordLatency(string, float64) {}

func rrAt(ms float64, at time.Time) models.TimestampedSample {
	return models.TimestampedSample{
		Sample:    models.Sample{Kind: models.KindRR, IntervalMS: ms},
		Timestamp: at,
	}
}

func TestProcessBatchFansOutToBothSinks(t *testing.T) {
	outlet := &fakeOutlet{}
	recorder := &fakeRecorder{}
	p := NewSampleProcessor(outlet, recorder, newCountMetrics())
	p.Bind("p01")

	batch := []models.TimestampedSample{rrAt(800, time.Now()), rrAt(810, time.Now())}
	if err := p.ProcessBatch(context.Background(), models.SignalRRInterval, batch); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(outlet.published) != 2 || len(recorder.rows) != 2 {
		t.Fatalf("fan-out incomplete: published=%d recorded=%d", len(outlet.published), len(recorder.rows))
	}
}

func TestProcessBatchRequiresBinding(t *testing.T) {
	p := NewSampleProcessor(&fakeOutlet{}, &fakeRecorder{}, newCountMetrics())
	err := p.ProcessBatch(context.Background(), models.SignalRRInterval, []models.TimestampedSample{rrAt(800, time.Now())})
	if err == nil {
		t.Fatalf("expected error without a bound participant")
	}
	p.Bind("p01")
	p.Unbind()
	err = p.ProcessBatch(context.Background(), models.SignalRRInterval, []models.TimestampedSample{rrAt(800, time.Now())})
	if err == nil {
		t.Fatalf("expected error after unbind")
	}
}

func TestProcessBatchPublishFailureStillRecords(t *testing.T) {
	outlet := &fakeOutlet{err: errors.New("broker unreachable")}
	recorder := &fakeRecorder{}
	metrics := newCountMetrics()
	p := NewSampleProcessor(outlet, recorder, metrics)
	p.Bind("p01")

	err := p.ProcessBatch(context.Background(), models.SignalHeartRate, []models.TimestampedSample{
		{Sample: models.Sample{Kind: models.KindHR, BPM: 72}, Timestamp: time.Now()},
	})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.Signal != models.SignalHeartRate {
		t.Fatalf("transport error signal: %v", te.Signal)
	}
	if len(recorder.rows) != 1 {
		t.Fatalf("publish failure cost the recorder a sample: %d rows", len(recorder.rows))
	}
	if metrics.errors["publish"] != 1 {
		t.Fatalf("publish error not counted: %v", metrics.errors)
	}
}

func TestProcessBatchRecordFailureFails(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("insert failed")}
	metrics := newCountMetrics()
	p := NewSampleProcessor(&fakeOutlet{}, recorder, metrics)
	p.Bind("p01")

	err := p.ProcessBatch(context.Background(), models.SignalRRInterval, []models.TimestampedSample{rrAt(800, time.Now())})
	if err == nil {
		t.Fatalf("expected record error")
	}
	var te *TransportError
	if errors.As(err, &te) {
		t.Fatalf("record failure reported as transport error")
	}
	if metrics.errors["record"] != 1 {
		t.Fatalf("record error not counted: %v", metrics.errors)
	}
}

func TestProcessBatchEmptyIsNoop(t *testing.T) {
	outlet := &fakeOutlet{}
	p := NewSampleProcessor(outlet, &fakeRecorder{}, newCountMetrics())
	if err := p.ProcessBatch(context.Background(), models.SignalRRInterval, nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if len(outlet.published) != 0 {
		t.Fatalf("empty batch published samples")
	}
}
