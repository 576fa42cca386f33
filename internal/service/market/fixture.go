package market

import (
	"context"
	"time"

	"CryptoHunter/internal/domain/models"
	"CryptoHunter/pkg/util"
)

// fixtureCoins is a frozen market state used when no live source is
// configured, for local development and integration tests.
var fixtureCoins = []models.CoinSnapshot{
	{Symbol: "BTC", Name: "Bitcoin", Price: 71130.93, PercentChange24h: 2.92, Volume24h: 41748899685, MarketCap: 1.42e12},
	{Symbol: "ETH", Name: "Ethereum", Price: 2110.43, PercentChange24h: 2.88, Volume24h: 31968662174, MarketCap: 2.5436e11},
	{Symbol: "SOL", Name: "Solana", Price: 87.73, PercentChange24h: 13.63, Volume24h: 3759738821, MarketCap: 4.978e10},
	{Symbol: "BNB", Name: "BNB", Price: 643.45, PercentChange24h: 13.93, Volume24h: 1840711073, MarketCap: 8.774e10},
	{Symbol: "HYPE", Name: "Hyperliquid", Price: 31.55, PercentChange24h: 9.07, Volume24h: 337865145, MarketCap: 8.2e9},
	{Symbol: "PEPE", Name: "Pepe", Price: 0.00001234, PercentChange24h: 25.67, Volume24h: 1234567890, MarketCap: 5.2e9},
	{Symbol: "BONK", Name: "Bonk", Price: 0.00002345, PercentChange24h: 45.32, Volume24h: 456789012, MarketCap: 1.5e9},
	{Symbol: "CATI", Name: "Catizen", Price: 0.52, PercentChange24h: 35.21, Volume24h: 89012345, MarketCap: 2.6e8},
	{Symbol: "NOT", Name: "Notcoin", Price: 0.00789, PercentChange24h: 18.45, Volume24h: 234567890, MarketCap: 7.8e8},
	{Symbol: "PONKE", Name: "Ponke", Price: 0.00234, PercentChange24h: 52.13, Volume24h: 12345678, MarketCap: 2.3e8},
}

// FixtureSource serves the frozen table, filtered to the requested symbols.
// An empty symbol list returns everything.
type FixtureSource struct{}

// NewFixtureSource creates a fixture snapshot source.
func NewFixtureSource() *FixtureSource {
	return &FixtureSource{}
}

func (s *FixtureSource) FetchSnapshots(_ context.Context, symbols []string) ([]models.CoinSnapshot, error) {
	wanted := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		wanted[util.NormalizeSymbol(sym)] = true
	}

	out := make([]models.CoinSnapshot, 0, len(fixtureCoins))
	for _, c := range fixtureCoins {
		if len(wanted) > 0 && !wanted[c.Symbol] {
			continue
		}
		c.Sources = []string{"fixture"}
		c.FetchedAt = time.Now()
		out = append(out, c)
	}
	return out, nil
}
