package repository

import (
	"context"
	"time"

	"CryptoHunter/internal/domain/models"
)

// SnapshotSource supplies one batch of coin snapshots per poll cycle.
type SnapshotSource interface {
	FetchSnapshots(ctx context.Context, symbols []string) ([]models.CoinSnapshot, error)
}

// SnapshotStream pushes snapshots as they arrive (websocket sources).
type SnapshotStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.CoinSnapshot, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// HistoryStore persists price samples for trend and indicator input.
type HistoryStore interface {
	Append(ctx context.Context, symbol string, p models.PricePoint) error
	Series(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.PricePoint, error)
	Health(ctx context.Context) error
	Close() error
}

// AlertPublisher hands emitted alerts to an external event sink.
type AlertPublisher interface {
	Publish(ctx context.Context, a *models.Alert) error
	PublishBatch(ctx context.Context, alerts []*models.Alert) error
	Close() error
}

// Notifier delivers formatted text to one chat channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// ThresholdStore persists per-symbol price thresholds.
type ThresholdStore interface {
	Load(ctx context.Context) (map[string]models.Threshold, error)
	Save(ctx context.Context, thresholds map[string]models.Threshold) error
}

// Metrics records operational counters and gauges.
type Metrics interface {
	RecordCycle(outcome string)
	RecordAlert(alertType, severity string)
	RecordNotification(channel, outcome string)
	RecordFetchError(source string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
