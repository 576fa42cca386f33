package alert

import (
	"context"
	"time"

	"CryptoHunter/internal/domain/models"
	"CryptoHunter/pkg/cache"
)

// DedupGate is the notification-level dedup layer: a (type, symbol) key that
// was already notified within the window is suppressed before the batch goes
// to the notifiers. This is deliberately redundant with the per-check
// cooldowns so multiple checks firing for one symbol in the same cycle
// cannot flood the channels. Backed by pkg/cache, so a Redis cache shares
// the window across replicas.
type DedupGate struct {
	store  cache.Service
	window time.Duration
}

// NewDedupGate creates a gate over the given cache backend.
func NewDedupGate(store cache.Service, window time.Duration) *DedupGate {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &DedupGate{store: store, window: window}
}

// Filter drops alerts whose dedup key fired within the window and stamps the
// keys of those that pass. Cache errors fail open: better a duplicate
// notification than a silently dropped one.
func (g *DedupGate) Filter(ctx context.Context, alerts []models.Alert) []models.Alert {
	if len(alerts) == 0 {
		return nil
	}
	out := make([]models.Alert, 0, len(alerts))
	for _, a := range alerts {
		key := "notify:" + a.DedupKey()
		exists, err := g.store.Exists(ctx, key)
		if err == nil && exists {
			continue
		}
		_ = g.store.Set(ctx, key, 1, g.window)
		out = append(out, a)
	}
	return out
}
