package usecase

import (
	"context"
	"testing"
	"time"

	"PulseLab/internal/decode"
	"PulseLab/internal/domain/models"
	"PulseLab/internal/service/live"
	xlogger "PulseLab/pkg/logger"
)

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newTestManager(t *testing.T) (*SessionManager, *fakeOutlet, *fakeRecorder) {
	t.Helper()
	outlet := &fakeOutlet{}
	recorder := &fakeRecorder{}
	metrics := newCountMetrics()
	proc := NewSampleProcessor(outlet, recorder, metrics)
	return NewSessionManager(proc, recorder, metrics, testLogger(t), live.New(time.Second), 4), outlet, recorder
}

func hrFrame(bpm int, rrTicks ...uint16) *models.RawFrame {
	return &models.RawFrame{
		Characteristic: models.CharHeartRateMeasurement,
		Payload:        decode.EncodeHeartRate(bpm, rrTicks),
		Arrival:        time.Now(),
	}
}

func TestStopSessionFlushesIngestedSamples(t *testing.T) {
	m, outlet, recorder := newTestManager(t)
	ctx := context.Background()
	if _, err := m.StartSession(ctx, "p01"); err != nil {
		t.Fatalf("start: %v", err)
	}

	m.Ingest(ctx, hrFrame(72, 819, 921))

	s, err := m.StopSession(ctx)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if s.State() != models.SessionSealed {
		t.Fatalf("expected sealed session, got %v", s.State())
	}
	if got := len(s.Samples(models.SignalRRInterval)); got != 2 {
		t.Fatalf("session kept %d rr samples, want 2", got)
	}
	// One HR sample plus two RR intervals reach both sinks before the
	// handles are released.
	if got := len(outlet.published); got != 3 {
		t.Fatalf("outlet saw %d samples, want 3", got)
	}
	if got := len(recorder.rows); got != 3 {
		t.Fatalf("recorder saw %d rows, want 3", got)
	}
}

func TestStopSessionQuiescesConcurrentIngest(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	if _, err := m.StartSession(ctx, "p01"); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Hammer Ingest from the collector side while StopSession runs; frames
	// arriving after the seal are dropped, never appended or enqueued.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			m.Ingest(ctx, hrFrame(70, 819))
		}
	}()

	time.Sleep(time.Millisecond)
	if _, err := m.StopSession(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	<-done

	if _, active := m.Active(); active {
		t.Fatalf("session still active after stop")
	}
}
