package usecase

import (
	"context"

	"CryptoHunter/internal/domain/models"
	drepo "CryptoHunter/internal/domain/repository"
	"CryptoHunter/pkg/logger"
)

// StreamCollector consumes a live snapshot stream and feeds the monitor's
// price cache, so volatility checks see intra-poll moves.
type StreamCollector struct {
	stream  drepo.SnapshotStream
	monitor *Monitor
	metrics drepo.Metrics
	log     *logger.Logger
}

// NewStreamCollector creates a new StreamCollector instance.
func NewStreamCollector(stream drepo.SnapshotStream, monitor *Monitor, metrics drepo.Metrics, log *logger.Logger) *StreamCollector {
	return &StreamCollector{stream: stream, monitor: monitor, metrics: metrics, log: log}
}

// IsConnected returns true if the stream is connected.
func (c *StreamCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *StreamCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	snapCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, snapCh, errCh)
	return nil
}

func (c *StreamCollector) consume(ctx context.Context, snapCh <-chan *models.CoinSnapshot, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordFetchError("stream")
				c.log.Warn("stream error, reconnecting", logger.Error(err))
				if rerr := c.stream.Reconnect(ctx); rerr != nil {
					c.log.Error("stream reconnect failed", logger.Error(rerr))
					return
				}
				snapCh, errCh = c.stream.Read(ctx)
			}
		case snap := <-snapCh:
			if snap == nil {
				continue
			}
			c.monitor.UpdatePrice(snap)
		}
	}
}

func (c *StreamCollector) Stop() error { return c.stream.Close() }
