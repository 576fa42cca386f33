package models

import (
	"math"
	"time"
)

// CoinSnapshot is one observation of a traded asset. Snapshots are built
// fresh by a market source each poll cycle and never mutated afterwards.
type CoinSnapshot struct {
	Symbol           string    `json:"symbol"`
	Name             string    `json:"name"`
	Price            float64   `json:"price"`
	PercentChange24h float64   `json:"percent_change_24h"`
	Volume24h        float64   `json:"volume_24h"`
	MarketCap        float64   `json:"market_cap"`
	Sources          []string  `json:"sources,omitempty"`
	FetchedAt        time.Time `json:"fetched_at"`
}

// Validate reports whether the snapshot carries usable numbers. Malformed
// snapshots are skipped by the evaluator, never fatal for the batch.
func (s *CoinSnapshot) Validate() error {
	if s.Symbol == "" {
		return ErrInvalidSnapshot
	}
	if s.Price <= 0 || math.IsNaN(s.Price) || math.IsInf(s.Price, 0) {
		return ErrInvalidSnapshot
	}
	if math.IsNaN(s.PercentChange24h) || math.IsNaN(s.Volume24h) || math.IsNaN(s.MarketCap) {
		return ErrInvalidSnapshot
	}
	return nil
}

// VolumeRatio is 24h volume relative to market cap. The ratio degrades to 0
// for a zero market cap instead of propagating a division by zero.
func (s *CoinSnapshot) VolumeRatio() float64 {
	if s.MarketCap <= 0 {
		return 0
	}
	return s.Volume24h / s.MarketCap
}

// PricePoint is a single (timestamp, price) sample of a price series.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}
