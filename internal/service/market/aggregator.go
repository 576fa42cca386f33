package market

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CryptoHunter/internal/domain/models"
	"CryptoHunter/internal/domain/repository"
	"CryptoHunter/pkg/logger"
)

// Aggregator merges snapshots from multiple live sources. Prices reported by
// more than one source are averaged; change, volume and market cap come from
// the first source that reported them. When every live source fails the
// fallback source is consulted, so a fixture table can keep the monitor
// running through an outage.
type Aggregator struct {
	sources  []repository.SnapshotSource
	fallback repository.SnapshotSource
	ttl      time.Duration
	log      *logger.Logger

	mu       sync.Mutex
	cached   []models.CoinSnapshot
	cachedAt time.Time
}

// NewAggregator creates a merging snapshot source with a result cache.
func NewAggregator(sources []repository.SnapshotSource, fallback repository.SnapshotSource, ttl time.Duration, log *logger.Logger) *Aggregator {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Aggregator{
		sources:  sources,
		fallback: fallback,
		ttl:      ttl,
		log:      log,
	}
}

func (a *Aggregator) FetchSnapshots(ctx context.Context, symbols []string) ([]models.CoinSnapshot, error) {
	a.mu.Lock()
	if time.Since(a.cachedAt) < a.ttl && len(a.cached) > 0 {
		out := make([]models.CoinSnapshot, len(a.cached))
		copy(out, a.cached)
		a.mu.Unlock()
		return out, nil
	}
	a.mu.Unlock()

	type result struct {
		name  string
		snaps []models.CoinSnapshot
		err   error
	}

	results := make([]result, len(a.sources))
	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src repository.SnapshotSource) {
			defer wg.Done()
			snaps, err := src.FetchSnapshots(ctx, symbols)
			results[i] = result{name: fmt.Sprintf("source_%d", i), snaps: snaps, err: err}
		}(i, src)
	}
	wg.Wait()

	merged := make(map[string]*models.CoinSnapshot)
	order := make([]string, 0, len(symbols))
	counts := make(map[string]int)
	for _, res := range results {
		if res.err != nil {
			a.log.Warn("snapshot source failed", logger.Error(res.err))
			continue
		}
		for _, snap := range res.snaps {
			m, ok := merged[snap.Symbol]
			if !ok {
				c := snap
				merged[snap.Symbol] = &c
				order = append(order, snap.Symbol)
				counts[snap.Symbol] = 1
				continue
			}
			counts[snap.Symbol]++
			// running average over contributing sources
			n := float64(counts[snap.Symbol])
			m.Price = m.Price + (snap.Price-m.Price)/n
			if m.Volume24h == 0 {
				m.Volume24h = snap.Volume24h
			}
			if m.MarketCap == 0 {
				m.MarketCap = snap.MarketCap
			}
			if m.Name == m.Symbol && snap.Name != snap.Symbol {
				m.Name = snap.Name
			}
			m.Sources = append(m.Sources, snap.Sources...)
		}
	}

	if len(merged) == 0 {
		if a.fallback == nil {
			return nil, fmt.Errorf("aggregate: all snapshot sources failed")
		}
		a.log.Warn("all live sources failed, using fallback")
		return a.fallback.FetchSnapshots(ctx, symbols)
	}

	out := make([]models.CoinSnapshot, 0, len(merged))
	for _, sym := range order {
		out = append(out, *merged[sym])
	}

	a.mu.Lock()
	a.cached = make([]models.CoinSnapshot, len(out))
	copy(a.cached, out)
	a.cachedAt = time.Now()
	a.mu.Unlock()

	return out, nil
}
