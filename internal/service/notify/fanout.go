package notify

import (
	"context"
	"sync"

	"CryptoHunter/internal/domain/repository"
	"CryptoHunter/pkg/logger"
)

// Fanout broadcasts one report to every configured channel concurrently.
// A failing channel never blocks the others; failures are logged and counted
// but not propagated, so the monitor loop keeps its cadence.
type Fanout struct {
	channels []repository.Notifier
	metrics  repository.Metrics
	log      *logger.Logger
}

// NewFanout creates a broadcast notifier over the given channels.
func NewFanout(channels []repository.Notifier, metrics repository.Metrics, log *logger.Logger) *Fanout {
	return &Fanout{channels: channels, metrics: metrics, log: log}
}

// Channels reports how many channels are wired.
func (f *Fanout) Channels() int { return len(f.channels) }

// Broadcast sends text to all channels and returns how many succeeded.
func (f *Fanout) Broadcast(ctx context.Context, text string) int {
	if len(f.channels) == 0 {
		return 0
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	delivered := 0

	for _, ch := range f.channels {
		wg.Add(1)
		go func(ch repository.Notifier) {
			defer wg.Done()
			if err := ch.Send(ctx, text); err != nil {
				f.log.Error("notification failed",
					logger.String("channel", ch.Name()),
					logger.Error(err))
				f.metrics.RecordNotification(ch.Name(), "error")
				return
			}
			f.metrics.RecordNotification(ch.Name(), "ok")
			mu.Lock()
			delivered++
			mu.Unlock()
		}(ch)
	}
	wg.Wait()

	return delivered
}
