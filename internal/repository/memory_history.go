package repository

import (
	"context"
	"sync"
	"time"

	"CryptoHunter/internal/domain/models"
	"CryptoHunter/internal/domain/repository"
)

// MemoryHistory implements HistoryStore with per-symbol rings. It is the
// default when ClickHouse is disabled; enough history for trend fitting
// without any external dependency.
type MemoryHistory struct {
	mu      sync.RWMutex
	series  map[string][]models.PricePoint
	maxSize int
}

// NewMemoryHistory creates an in-memory price history keeping at most
// maxSize points per symbol.
func NewMemoryHistory(maxSize int) repository.HistoryStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MemoryHistory{
		series:  make(map[string][]models.PricePoint),
		maxSize: maxSize,
	}
}

func (s *MemoryHistory) Append(_ context.Context, symbol string, p models.PricePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	points := append(s.series[symbol], p)
	if len(points) > s.maxSize {
		points = points[len(points)-s.maxSize:]
	}
	s.series[symbol] = points
	return nil
}

func (s *MemoryHistory) Series(_ context.Context, symbol string, from, to time.Time, limit int) ([]models.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.PricePoint
	for _, p := range s.series[symbol] {
		if p.Timestamp.Before(from) || p.Timestamp.After(to) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryHistory) Health(context.Context) error { return nil }

func (s *MemoryHistory) Close() error { return nil }
