package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"CryptoHunter/internal/domain/models"
	"CryptoHunter/internal/domain/repository"
	"CryptoHunter/pkg/logger"
)

type stubSource struct {
	snaps []models.CoinSnapshot
	err   error
	calls int
}

func (s *stubSource) FetchSnapshots(context.Context, []string) ([]models.CoinSnapshot, error) {
	s.calls++
	return s.snaps, s.err
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestAggregatorAveragesPrices(t *testing.T) {
	binance := &stubSource{snaps: []models.CoinSnapshot{
		{Symbol: "BTC", Name: "BTC", Price: 71000, PercentChange24h: 2.9, Sources: []string{"binance"}},
	}}
	gecko := &stubSource{snaps: []models.CoinSnapshot{
		{Symbol: "BTC", Name: "bitcoin", Price: 71200, PercentChange24h: 2.8, MarketCap: 1.4e12, Volume24h: 4e10, Sources: []string{"coingecko"}},
	}}

	agg := NewAggregator([]repository.SnapshotSource{binance, gecko}, nil, time.Minute, testLogger(t))
	out, err := agg.FetchSnapshots(context.Background(), []string{"BTC"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d snapshots", len(out))
	}
	if out[0].Price != 71100 {
		t.Fatalf("price = %v, want average 71100", out[0].Price)
	}
	if out[0].MarketCap != 1.4e12 {
		t.Fatalf("market cap not filled from second source")
	}
	if len(out[0].Sources) != 2 {
		t.Fatalf("sources = %v", out[0].Sources)
	}
}

func TestAggregatorFallsBackWhenAllSourcesFail(t *testing.T) {
	dead := &stubSource{err: errors.New("unreachable")}
	agg := NewAggregator([]repository.SnapshotSource{dead}, NewFixtureSource(), time.Minute, testLogger(t))

	out, err := agg.FetchSnapshots(context.Background(), []string{"SOL"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(out) != 1 || out[0].Symbol != "SOL" {
		t.Fatalf("expected fixture SOL, got %v", out)
	}
	if out[0].Sources[0] != "fixture" {
		t.Fatalf("source = %v", out[0].Sources)
	}
}

func TestAggregatorErrorsWithoutFallback(t *testing.T) {
	dead := &stubSource{err: errors.New("unreachable")}
	agg := NewAggregator([]repository.SnapshotSource{dead}, nil, time.Minute, testLogger(t))
	if _, err := agg.FetchSnapshots(context.Background(), []string{"BTC"}); err == nil {
		t.Fatalf("expected error when every source fails")
	}
}

func TestAggregatorCachesWithinTTL(t *testing.T) {
	src := &stubSource{snaps: []models.CoinSnapshot{
		{Symbol: "ETH", Name: "ETH", Price: 2100, Sources: []string{"binance"}},
	}}
	agg := NewAggregator([]repository.SnapshotSource{src}, nil, time.Minute, testLogger(t))

	if _, err := agg.FetchSnapshots(context.Background(), []string{"ETH"}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := agg.FetchSnapshots(context.Background(), []string{"ETH"}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("source called %d times, want cached second read", src.calls)
	}
}

func TestFixtureFiltersSymbols(t *testing.T) {
	out, err := NewFixtureSource().FetchSnapshots(context.Background(), []string{"btc", "sol"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(out))
	}
	for _, c := range out {
		if c.Symbol != "BTC" && c.Symbol != "SOL" {
			t.Fatalf("unexpected symbol %s", c.Symbol)
		}
	}
}
