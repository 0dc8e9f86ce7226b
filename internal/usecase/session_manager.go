package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"PulseLab/internal/decode"
	"PulseLab/internal/domain/models"
	drepo "PulseLab/internal/domain/repository"
	mid "PulseLab/internal/middleware"
	"PulseLab/internal/reconcile"
	"PulseLab/internal/service/live"
	"PulseLab/internal/services/features"
	xlogger "PulseLab/pkg/logger"
)

var ErrNoActiveSession = errors.New("no active session")

// SessionManager owns the recording lifecycle and is the only mutation
// entry point into it: StartSession, StopSession and MarkTimestamp are the
// commands the UI layer calls. It also sits between the frame collector
// and the sinks: every notification passes through Ingest.
type SessionManager struct {
	proc     *SampleProcessor
	recorder drepo.Recorder
	metrics  drepo.Metrics
	logger   *xlogger.Logger
	status   *live.Status
	bufSize  int

	// onSealed, when set, runs after a session seals (report precompute).
	onSealed func(participant string)

	mu         sync.Mutex
	session    *models.Session
	reconciler *reconcile.Reconciler
	pipeline   *mid.StreamPipeline
	detector   *features.Detector

	// inflight counts Ingest calls that hold a session snapshot. StopSession
	// waits on it before sealing, so Append and Enqueue never race Seal or
	// the queue close.
	inflight sync.WaitGroup
}

// NewSessionManager creates a new SessionManager instance.
func NewSessionManager(proc *SampleProcessor, recorder drepo.Recorder, metrics drepo.Metrics, logger *xlogger.Logger, status *live.Status, bufSize int) *SessionManager {
	return &SessionManager{
		proc:     proc,
		recorder: recorder,
		metrics:  metrics,
		logger:   logger,
		status:   status,
		bufSize:  bufSize,
	}
}

// OnSealed registers a hook invoked after StopSession seals a session.
func (m *SessionManager) OnSealed(fn func(participant string)) { m.onSealed = fn }

// StartSession opens a recording session for a participant. One session
// records at a time.
func (m *SessionManager) StartSession(ctx context.Context, participant string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		return nil, models.ErrAlreadyRecording
	}

	s := models.NewSession(participant, time.Now())
	if err := s.StartRecording(); err != nil {
		return nil, err
	}

	m.session = s
	m.reconciler = reconcile.New(map[models.SignalType]reconcile.StreamClock{
		models.SignalECG: reconcile.DefaultECGClock,
	})
	m.pipeline = mid.NewStreamPipeline(m.proc, m.metrics, mid.WithBufferSize(m.bufSize))
	m.detector = features.NewDetector(0, 0)
	m.pipeline.Start(ctx)
	m.proc.Bind(participant)

	m.logger.Info("session started", xlogger.String("participant", participant))
	return s, nil
}

// StopSession seals the active session. Every batch already enqueued is
// flushed to both sinks before the outlets and recorder handle are
// released.
func (m *SessionManager) StopSession(ctx context.Context) (*models.Session, error) {
	m.mu.Lock()
	s := m.session
	pipe := m.pipeline
	m.session = nil
	m.reconciler = nil
	m.pipeline = nil
	m.detector = nil
	m.mu.Unlock()

	if s == nil {
		return nil, ErrNoActiveSession
	}

	m.inflight.Wait() // quiesce Ingest calls that snapshotted this session
	pipe.Stop()       // drains in-flight batches
	m.proc.Unbind()
	if err := s.Seal(time.Now()); err != nil {
		return nil, err
	}

	m.logger.Info("session sealed",
		xlogger.String("participant", s.Participant),
		xlogger.Int("rr_samples", len(s.Samples(models.SignalRRInterval))),
		xlogger.Int("markers", len(s.Markers())))

	if m.onSealed != nil {
		m.onSealed(s.Participant)
	}
	return s, nil
}

// MarkTimestamp inserts a marked timestamp into the active session and
// persists it alongside the sample streams.
func (m *SessionManager) MarkTimestamp(ctx context.Context, label string) (models.MarkedTimestamp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return models.MarkedTimestamp{}, ErrNoActiveSession
	}

	marker := models.MarkedTimestamp{Timestamp: time.Now(), Label: label}
	if err := m.session.Mark(marker); err != nil {
		return models.MarkedTimestamp{}, err
	}
	if err := m.recorder.RecordMarker(ctx, m.session.Participant, marker); err != nil {
		m.metrics.RecordError("record_marker")
		return marker, fmt.Errorf("persist marker: %w", err)
	}
	return marker, nil
}

// Close releases the processor's sink handles. Call after the last
// session has sealed.
func (m *SessionManager) Close() { m.proc.Close() }

// Active returns the participant of the recording session, if any.
func (m *SessionManager) Active() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return "", false
	}
	return m.session.Participant, true
}

// Ingest decodes one raw frame and, when a session is recording, routes
// its samples through the reconciler into the pipeline. A malformed frame
// is dropped and logged; it never unwinds into the transport callback.
func (m *SessionManager) Ingest(ctx context.Context, f *models.RawFrame) {
	samples, err := decode.Decode(*f)
	if err != nil {
		m.metrics.RecordError("decode")
		m.logger.Warn("frame dropped", xlogger.String("characteristic", string(f.Characteristic)), xlogger.Error(err))
		return
	}

	for _, s := range samples {
		m.metrics.RecordSampleDecoded(string(s.Signal()))
		if s.Kind == models.KindHR {
			m.metrics.RecordLastHeartRate(float64(s.BPM))
			m.status.SetHeartRate(float64(s.BPM), f.Arrival)
		}
		if !s.Plausible() {
			m.metrics.RecordError("implausible_sample")
		}
	}

	m.mu.Lock()
	session := m.session
	reconciler := m.reconciler
	pipe := m.pipeline
	detector := m.detector
	if session == nil {
		m.mu.Unlock()
		return
	}
	m.inflight.Add(1)
	m.mu.Unlock()
	defer m.inflight.Done()

	// One frame decodes into at most a handful of per-signal runs; keep
	// the on-wire order inside each stream.
	batches := make(map[models.SignalType][]models.TimestampedSample)
	for _, s := range samples {
		ts, anomaly := reconciler.Resolve(s, f.Arrival)
		if anomaly != nil {
			m.metrics.RecordError("reconcile_" + anomaly.Kind.String())
			m.logger.Warn("reconciliation anomaly", xlogger.Error(anomaly))
		}
		sig := s.Signal()
		batches[sig] = append(batches[sig], ts)
		if err := session.Append(sig, ts); err != nil {
			return
		}
		if ts.Kind == models.KindECG {
			if beat := detector.Process(ts); beat != nil {
				if bpm := detector.BPM(); bpm > 0 {
					m.status.SetECGRate(bpm, beat.At)
				}
			}
		}
	}

	for _, sig := range models.SignalTypes {
		batch := batches[sig]
		if len(batch) == 0 {
			continue
		}
		if err := pipe.Enqueue(sig, batch); err != nil {
			m.metrics.RecordError("enqueue")
		}
	}
}
