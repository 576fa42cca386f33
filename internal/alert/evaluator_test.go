package alert

import (
	"math"
	"testing"
	"time"

	"CryptoHunter/internal/domain/models"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)}
}

func snapshot(symbol string, price, change, volume, marketCap float64) models.CoinSnapshot {
	return models.CoinSnapshot{
		Symbol:           symbol,
		Name:             symbol,
		Price:            price,
		PercentChange24h: change,
		Volume24h:        volume,
		MarketCap:        marketCap,
	}
}

func TestExcludedSymbolEmitsNothing(t *testing.T) {
	e := New(Config{ExcludedSymbols: []string{"USDT", "USDC"}}, WithClock(newFakeClock()))
	alerts := e.Evaluate(snapshot("USDT", 1.0, 25, 5e10, 8e10), 0)
	if len(alerts) != 0 {
		t.Fatalf("excluded symbol produced %d alerts", len(alerts))
	}
}

func TestMalformedSnapshotSkipped(t *testing.T) {
	e := New(Config{}, WithClock(newFakeClock()))
	alerts := e.Evaluate(snapshot("BTC", math.NaN(), 2, 1e9, 1e12), 0)
	if alerts != nil {
		t.Fatalf("expected nil for NaN price, got %v", alerts)
	}
}

func TestThresholdCrossEmitsOnce(t *testing.T) {
	clock := newFakeClock()
	e := New(Config{}, WithClock(clock))
	e.SetThreshold("BTC", 75000, models.DirectionAbove)

	alerts := e.Evaluate(snapshot("BTC", 75500, 1.0, 1e9, 1.4e12), 74000)
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	a := alerts[0]
	if a.Type != models.AlertPrice {
		t.Fatalf("type = %v, want PRICE_ALERT", a.Type)
	}
	if a.Target != 75000 || a.Price != 75500 {
		t.Fatalf("target/price = %v/%v", a.Target, a.Price)
	}

	// second qualifying observation inside the cooldown window: suppressed
	clock.advance(time.Minute)
	if got := e.Evaluate(snapshot("BTC", 75600, 1.0, 1e9, 1.4e12), 75500); len(got) != 0 {
		t.Fatalf("cooldown should suppress, got %d alerts", len(got))
	}

	// after the window elapses the next qualifying observation fires again
	clock.advance(5 * time.Minute)
	if got := e.Evaluate(snapshot("BTC", 75700, 1.0, 1e9, 1.4e12), 75600); len(got) != 1 {
		t.Fatalf("expected one alert after cooldown, got %d", len(got))
	}
}

func TestSuppressedTriggerDoesNotRestampCooldown(t *testing.T) {
	clock := newFakeClock()
	e := New(Config{Cooldown: 5 * time.Minute}, WithClock(clock))
	e.SetThreshold("ETH", 2500, models.DirectionAbove)

	if got := e.Evaluate(snapshot("ETH", 2600, 1.0, 1e9, 3e11), 0); len(got) != 1 {
		t.Fatalf("first trigger: got %d", len(got))
	}

	// suppressed at +4m; if this restamped, +5m would still be cooled down
	clock.advance(4 * time.Minute)
	if got := e.Evaluate(snapshot("ETH", 2610, 1.0, 1e9, 3e11), 0); len(got) != 0 {
		t.Fatalf("suppressed trigger emitted %d", len(got))
	}
	clock.advance(time.Minute)
	if got := e.Evaluate(snapshot("ETH", 2620, 1.0, 1e9, 3e11), 0); len(got) != 1 {
		t.Fatalf("cooldown restamped by suppressed trigger")
	}
}

func TestBelowDirectionThreshold(t *testing.T) {
	e := New(Config{}, WithClock(newFakeClock()))
	e.SetThreshold("BTC", 60000, models.DirectionBelow)

	if got := e.Evaluate(snapshot("BTC", 61000, -1.0, 1e9, 1.2e12), 0); len(got) != 0 {
		t.Fatalf("price above a below-target should not fire")
	}
	got := e.Evaluate(snapshot("BTC", 59500, -2.0, 1e9, 1.2e12), 0)
	if len(got) != 1 || got[0].Direction != models.DirectionBelow {
		t.Fatalf("expected one below alert, got %v", got)
	}
}

func TestCustomThresholdOverridesDefault(t *testing.T) {
	e := New(Config{
		DefaultThresholds: map[string]models.Threshold{
			"BTC": {Symbol: "BTC", Target: 75000, Direction: models.DirectionAbove, Enabled: true},
		},
	}, WithClock(newFakeClock()))
	e.SetThreshold("BTC", 80000, models.DirectionAbove)

	// 76k crosses the default but not the custom override
	if got := e.Evaluate(snapshot("BTC", 76000, 1.0, 1e9, 1.4e12), 0); len(got) != 0 {
		t.Fatalf("custom threshold should override default, got %v", got)
	}

	e.DeleteThreshold("BTC")
	if got := e.Evaluate(snapshot("BTC", 76000, 1.0, 1e9, 1.4e12), 0); len(got) != 1 {
		t.Fatalf("default should apply after delete, got %d", len(got))
	}
}

func TestSolanaScenario(t *testing.T) {
	// SOL at +13.63%: critical volatility, no gainer (<15), volume spike
	// (3.76e9/4.98e10 ≈ 0.0755 ≥ 0.05)
	e := New(Config{}, WithClock(newFakeClock()))
	alerts := e.Evaluate(snapshot("SOL", 100, 13.63, 3.76e9, 4.98e10), 0)

	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want volatility + volume spike: %v", len(alerts), alerts)
	}
	if alerts[0].Type != models.AlertVolatility || alerts[0].Severity != models.SeverityCritical {
		// 13.63 >= 10 reads critical
		t.Fatalf("first alert = %v/%v", alerts[0].Type, alerts[0].Severity)
	}
	if alerts[1].Type != models.AlertVolumeSpike {
		t.Fatalf("second alert = %v, want VOLUME_SPIKE", alerts[1].Type)
	}
}

func TestVolatilityWarningBand(t *testing.T) {
	e := New(Config{}, WithClock(newFakeClock()))
	alerts := e.Evaluate(snapshot("ADA", 0.5, 7.2, 1e7, 1e10), 0)
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	if alerts[0].Severity != models.SeverityWarning {
		t.Fatalf("severity = %v, want warning for 5-10%%", alerts[0].Severity)
	}
}

func TestVolatilityPrefersPreviousPrice(t *testing.T) {
	e := New(Config{}, WithClock(newFakeClock()))
	// 24h change is calm but the cycle-over-cycle move is 12%
	alerts := e.Evaluate(snapshot("DOT", 11.2, 1.0, 1e7, 1e10), 10.0)
	if len(alerts) != 1 || alerts[0].Type != models.AlertVolatility {
		t.Fatalf("expected volatility from prev price, got %v", alerts)
	}
	if alerts[0].Severity != models.SeverityCritical {
		t.Fatalf("severity = %v, want critical for 12%%", alerts[0].Severity)
	}
}

func TestGainerSeverityTiers(t *testing.T) {
	e := New(Config{}, WithClock(newFakeClock()))

	got := e.Evaluate(snapshot("NOT", 0.008, 18.45, 2.3e8, 7.8e8), 0)
	var gainer *models.Alert
	for i := range got {
		if got[i].Type == models.AlertGainer {
			gainer = &got[i]
		}
	}
	if gainer == nil || gainer.Severity != models.SeverityWarning {
		t.Fatalf("18.45%% gainer should read warning, got %v", gainer)
	}

	got = e.Evaluate(snapshot("BONK", 0.00002, 45.32, 4.5e8, 1.5e9), 0)
	gainer = nil
	for i := range got {
		if got[i].Type == models.AlertGainer {
			gainer = &got[i]
		}
	}
	if gainer == nil || gainer.Severity != models.SeverityCritical {
		t.Fatalf("45.32%% gainer should read critical, got %v", gainer)
	}
}

func TestVolumeSpikeRequiresPositiveChange(t *testing.T) {
	e := New(Config{}, WithClock(newFakeClock()))
	// huge ratio but a falling price: no spike alert
	alerts := e.Evaluate(snapshot("XYZ", 1.0, -3.0, 9e9, 1e10), 0)
	for _, a := range alerts {
		if a.Type == models.AlertVolumeSpike {
			t.Fatalf("volume spike fired on negative change")
		}
	}
}

func TestZeroMarketCapDegradesToZeroRatio(t *testing.T) {
	e := New(Config{}, WithClock(newFakeClock()))
	alerts := e.Evaluate(snapshot("NEW", 0.01, 2.0, 5e6, 0), 0)
	for _, a := range alerts {
		if a.Type == models.AlertVolumeSpike {
			t.Fatalf("volume spike fired with zero market cap")
		}
	}
}

func TestHistoryRingNeverExceedsCapacity(t *testing.T) {
	clock := newFakeClock()
	e := New(Config{}, WithClock(clock))
	for i := 0; i < 150; i++ {
		e.Evaluate(snapshot("MEME", 1.0, 40, 1e6, 1e10), 0)
		clock.advance(10 * time.Minute) // keep clear of cooldowns
	}
	if got := len(e.History(0)); got != 100 {
		t.Fatalf("history length = %d, want capped at 100", got)
	}
	// newest first
	hist := e.History(2)
	if !hist[0].Timestamp.After(hist[1].Timestamp) {
		t.Fatalf("history not newest-first")
	}
}

func TestResetCooldowns(t *testing.T) {
	clock := newFakeClock()
	e := New(Config{}, WithClock(clock))
	e.SetThreshold("SOL", 100, models.DirectionAbove)

	if got := e.Evaluate(snapshot("SOL", 101, 1.0, 1e8, 5e10), 0); len(got) != 1 {
		t.Fatalf("first trigger: %d", len(got))
	}
	if got := e.Evaluate(snapshot("SOL", 102, 1.0, 1e8, 5e10), 0); len(got) != 0 {
		t.Fatalf("expected cooldown suppression")
	}
	e.ResetCooldowns()
	if got := e.Evaluate(snapshot("SOL", 103, 1.0, 1e8, 5e10), 0); len(got) != 1 {
		t.Fatalf("reset should clear cooldowns, got %d", len(got))
	}
}

func TestStats(t *testing.T) {
	clock := newFakeClock()
	e := New(Config{}, WithClock(clock))
	e.Evaluate(snapshot("BONK", 0.00002, 45.32, 4.5e8, 1.5e9), 0) // critical gainer + critical volatility + spike

	stats := e.Stats()
	if stats.Total == 0 || stats.Last24h != stats.Total {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.ByType[models.AlertGainer] != 1 {
		t.Fatalf("gainer count = %d", stats.ByType[models.AlertGainer])
	}
}
