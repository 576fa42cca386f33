package binance

import (
	"math"
	"sync"
	"testing"
	"time"

	"CryptoHunter/pkg/logger"
)

func TestTickerToSnapshot(t *testing.T) {
	snap := tickerToSnapshot(miniTicker{
		Event:       "24hrMiniTicker",
		Symbol:      "BTCUSDT",
		Close:       "71130.93",
		Open:        "69112.50",
		QuoteVolume: "41748899685",
	})
	if snap == nil {
		t.Fatalf("expected snapshot")
	}
	if snap.Symbol != "BTC" {
		t.Fatalf("symbol = %s, want BTC", snap.Symbol)
	}
	if snap.Price != 71130.93 {
		t.Fatalf("price = %v", snap.Price)
	}
	wantChange := (71130.93 - 69112.50) / 69112.50 * 100
	if math.Abs(snap.PercentChange24h-wantChange) > 1e-9 {
		t.Fatalf("change = %v, want %v", snap.PercentChange24h, wantChange)
	}
}

func TestTickerToSnapshotRejectsBadPrice(t *testing.T) {
	if snap := tickerToSnapshot(miniTicker{Symbol: "BTCUSDT", Close: "nope"}); snap != nil {
		t.Fatalf("expected nil for unparseable price")
	}
	if snap := tickerToSnapshot(miniTicker{Symbol: "BTCUSDT", Close: "0"}); snap != nil {
		t.Fatalf("expected nil for zero price")
	}
}

func TestTickerToSnapshotZeroOpen(t *testing.T) {
	snap := tickerToSnapshot(miniTicker{Symbol: "NEWUSDT", Close: "1.5", Open: "0"})
	if snap == nil || snap.PercentChange24h != 0 {
		t.Fatalf("zero open should read zero change, got %v", snap)
	}
}

func TestStreamStatusSafeUnderConcurrentClose(t *testing.T) {
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	s := NewStream("wss://unused", []string{"BTC"}, time.Millisecond, time.Second, log)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.IsConnected()
				_ = s.Close()
			}
		}()
	}
	wg.Wait()

	if s.IsConnected() {
		t.Fatalf("closed stream reports connected")
	}
}
