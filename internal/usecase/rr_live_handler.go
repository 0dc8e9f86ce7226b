package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"PulseLab/internal/domain/models"
	domrepo "PulseLab/internal/domain/repository"
	"PulseLab/internal/service/live"
	"PulseLab/internal/services/hrv"
	pkgkafka "PulseLab/pkg/kafka"
)

// rrWindowSize is the number of intervals per rolling HRV computation.
const rrWindowSize = 50

// RRLiveHandler consumes the republished RR-interval stream and computes
// a rolling SDNN/RMSSD window, feeding the live status snapshot. It is a
// subscriber like any other: it sees exactly the samples the outlet
// published, in order.
type RRLiveHandler struct {
	topic   string
	status  *live.Status
	metrics domrepo.Metrics

	mu     sync.Mutex
	window []float64
}

func NewRRLiveHandler(topic string, status *live.Status, metrics domrepo.Metrics) *RRLiveHandler {
	return &RRLiveHandler{topic: topic, status: status, metrics: metrics}
}

func (h *RRLiveHandler) Topic() string { return h.topic }

// incoming message schema: {signal, t, v} with t in unix milliseconds and
// v the RR interval in milliseconds.
func (h *RRLiveHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Signal string  `json:"signal"`
		T      int64   `json:"t"`
		V      float64 `json:"v"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if domrepo.NormalizeSignal(m.Signal) != models.SignalRRInterval {
		// Stray republication on the RR topic; drop it rather than skew
		// the window.
		h.metrics.RecordError("consumer_signal")
		return nil
	}
	// E2E latency from publish time to now (approx)
	h.metrics.RecordLatency("rr_e2e_seconds", time.Since(time.UnixMilli(m.T)).Seconds())

	h.mu.Lock()
	h.window = append(h.window, m.V)
	if len(h.window) < rrWindowSize {
		h.mu.Unlock()
		return nil
	}
	window := h.window
	h.window = nil
	h.mu.Unlock()

	// Ectopic beats and dropped packets show up as extreme intervals;
	// clean the window the same way the offline report does before
	// computing the variability stats.
	window = hrv.Clean(window)
	sdnn, ok := hrv.SDNN(window)
	if !ok {
		return nil
	}
	rmssd, _ := hrv.RMSSD(window)
	h.status.SetRollingHRV(live.RollingHRV{
		SDNN:       sdnn,
		RMSSD:      rmssd,
		WindowSize: len(window),
		At:         time.Now(),
	})
	return nil
}

var _ pkgkafka.MessageHandler = (*RRLiveHandler)(nil)
