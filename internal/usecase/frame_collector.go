package usecase

import (
	"context"

	"PulseLab/internal/domain/models"
	drepo "PulseLab/internal/domain/repository"
)

// FrameIngester receives raw frames from the collector, one at a time, in
// arrival order. Implemented by the SessionManager.
type FrameIngester interface {
	Ingest(ctx context.Context, f *models.RawFrame)
}

// FrameCollector reads raw BLE notification frames from the gateway stream
// and feeds them to the ingester. It is the single producer for the whole
// pipeline.
type FrameCollector struct {
	stream   drepo.SensorStream
	ingester FrameIngester
	metrics  drepo.Metrics
}

// NewFrameCollector creates a new FrameCollector instance.
func NewFrameCollector(stream drepo.SensorStream, ingester FrameIngester, metrics drepo.Metrics) *FrameCollector {
	return &FrameCollector{stream: stream, ingester: ingester, metrics: metrics}
}

// IsConnected returns true if the gateway stream is connected.
func (c *FrameCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *FrameCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	frCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, frCh, errCh)
	return nil
}

func (c *FrameCollector) consume(ctx context.Context, frCh <-chan *models.RawFrame, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case f := <-frCh:
			if f == nil {
				continue
			}
			c.ingester.Ingest(ctx, f)
		}
	}
}

func (c *FrameCollector) Stop() error { return c.stream.Close() }
