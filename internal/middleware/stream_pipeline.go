package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"PulseLab/internal/domain/models"
	domrepo "PulseLab/internal/domain/repository"
)

// Proc is the minimal downstream interface the pipeline needs.
type Proc interface {
	ProcessBatch(ctx context.Context, sig models.SignalType, batch []models.TimestampedSample) error
}

// StreamPipeline decouples the notification callback from sink I/O: one
// bounded FIFO queue per signal type, each drained by a single goroutine,
// so per-stream ordering survives the hand-off. Enqueue blocks when a
// queue is full rather than dropping, so samples already decoded and
// timestamped are never lost to backpressure.
type StreamPipeline struct {
	proc    Proc
	metrics domrepo.Metrics
	bufSize int

	mu      sync.Mutex
	started bool
	queues  map[models.SignalType]chan []models.TimestampedSample
	wg      sync.WaitGroup

	// sendMu serializes Stop against in-flight Enqueues: senders hold the
	// read lock across the channel send, Stop takes the write lock before
	// closing the queues. A blocked sender therefore always completes its
	// send (the drain goroutines keep consuming until close) and a sender
	// arriving after Stop sees stopped instead of a closed channel.
	sendMu  sync.RWMutex
	stopped bool
}

type PipelineOption func(*StreamPipeline)

// WithBufferSize sets the per-stream queue capacity in batches.
func WithBufferSize(n int) PipelineOption {
	return func(p *StreamPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewStreamPipeline creates a pipeline in front of proc.
func NewStreamPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *StreamPipeline {
	p := &StreamPipeline{
		proc:    proc,
		metrics: metrics,
		bufSize: 256,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.queues = make(map[models.SignalType]chan []models.TimestampedSample, len(models.SignalTypes))
	for _, sig := range models.SignalTypes {
		p.queues[sig] = make(chan []models.TimestampedSample, p.bufSize)
	}
	return p
}

// Start launches one drain goroutine per stream.
func (p *StreamPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	for sig, q := range p.queues {
		p.wg.Add(1)
		go p.drain(ctx, sig, q)
	}
}

func (p *StreamPipeline) drain(ctx context.Context, sig models.SignalType, q chan []models.TimestampedSample) {
	defer p.wg.Done()
	for batch := range q {
		start := time.Now()
		if err := p.proc.ProcessBatch(ctx, sig, batch); err != nil {
			p.metrics.RecordError("pipeline_process")
		}
		p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	}
}

// Enqueue hands one decoded, timestamped batch to a stream's queue. Batch
// boundaries carry no meaning downstream; they only amortize per-sample
// hand-off cost. Blocks under backpressure until space or shutdown.
func (p *StreamPipeline) Enqueue(sig models.SignalType, batch []models.TimestampedSample) error {
	if len(batch) == 0 {
		return nil
	}
	q, ok := p.queues[sig]
	if !ok {
		return fmt.Errorf("pipeline: unknown signal %q", sig)
	}
	p.sendMu.RLock()
	defer p.sendMu.RUnlock()
	if p.stopped {
		return fmt.Errorf("pipeline: stopped")
	}
	q <- batch
	return nil
}

// Stop closes the queues and waits until every queued batch has been
// processed, so a session stop never strands in-flight samples.
func (p *StreamPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	p.sendMu.Lock()
	p.stopped = true
	p.sendMu.Unlock()
	for _, q := range p.queues {
		close(q)
	}
	p.wg.Wait()
}
