package trend

import (
	"errors"
	"math"
	"testing"
	"time"

	"CryptoHunter/internal/domain/models"
)

func hourlySeries(n int, f func(hour int) float64) []models.PricePoint {
	start := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	out := make([]models.PricePoint, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.PricePoint{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Price:     f(i),
		})
	}
	return out
}

func TestFitPerfectLine(t *testing.T) {
	e := New(Config{})
	if err := e.Fit(hourlySeries(24, func(h int) float64 { return 100 + 2*float64(h) })); err != nil {
		t.Fatalf("fit: %v", err)
	}
	m, err := e.Model()
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	if math.Abs(m.Slope-2) > 1e-9 {
		t.Fatalf("slope = %v, want 2", m.Slope)
	}
	if math.Abs(m.Intercept-100) > 1e-9 {
		t.Fatalf("intercept = %v, want 100", m.Intercept)
	}
	if math.Abs(m.RSquared-1) > 1e-9 {
		t.Fatalf("r2 = %v, want 1", m.RSquared)
	}
}

func TestFitInsufficientData(t *testing.T) {
	e := New(Config{MinDataPoints: 24})
	err := e.Fit(hourlySeries(5, func(h int) float64 { return 100 }))
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestPredictBeforeFit(t *testing.T) {
	e := New(Config{})
	if _, err := e.Predict(24); !errors.Is(err, models.ErrModelNotFitted) {
		t.Fatalf("expected ErrModelNotFitted, got %v", err)
	}
}

func TestPredictExtrapolatesLine(t *testing.T) {
	e := New(Config{})
	series := hourlySeries(24, func(h int) float64 { return 100 + 2*float64(h) })
	if err := e.Fit(series); err != nil {
		t.Fatalf("fit: %v", err)
	}
	pred, err := e.Predict(24)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	// last sample is at hour 23; 24h ahead lands on hour 47
	if math.Abs(pred.Price-(100+2*47)) > 1e-6 {
		t.Fatalf("predicted = %v, want %v", pred.Price, 100+2*47)
	}
	want := series[len(series)-1].Timestamp.Add(24 * time.Hour)
	if !pred.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", pred.Timestamp, want)
	}
	// perfect fit has zero residual error, so the band collapses
	if pred.Confidence.Lower != pred.Price || pred.Confidence.Upper != pred.Price {
		t.Fatalf("band should collapse on a perfect fit: %+v", pred.Confidence)
	}
}

func TestConstantSeriesDegeneratesCleanly(t *testing.T) {
	e := New(Config{})
	if err := e.Fit(hourlySeries(24, func(h int) float64 { return 42 })); err != nil {
		t.Fatalf("fit: %v", err)
	}
	m, _ := e.Model()
	if m.Slope != 0 {
		t.Fatalf("slope = %v, want 0", m.Slope)
	}
	if m.RSquared != 0 {
		t.Fatalf("r2 = %v, want 0 for constant series", m.RSquared)
	}
	trend, err := e.ClassifyTrend()
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if trend.Direction != models.TrendUncertain || trend.Strength != 0 {
		t.Fatalf("constant series should classify UNCERTAIN/0, got %+v", trend)
	}
}

func TestClassifyStrongUptrend(t *testing.T) {
	e := New(Config{})
	if err := e.Fit(hourlySeries(24, func(h int) float64 { return 100 + 2*float64(h) })); err != nil {
		t.Fatalf("fit: %v", err)
	}
	trend, err := e.ClassifyTrend()
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if trend.Direction != models.TrendUp {
		t.Fatalf("direction = %v, want UP", trend.Direction)
	}
	// projected change over 24h is well past 5% of the current price
	if trend.Strength != 3 {
		t.Fatalf("strength = %d, want 3", trend.Strength)
	}
}

func TestClassifyNoisySeriesUncertain(t *testing.T) {
	e := New(Config{})
	err := e.Fit(hourlySeries(24, func(h int) float64 {
		if h%2 == 0 {
			return 100
		}
		return 101
	}))
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	trend, _ := e.ClassifyTrend()
	if trend.Direction != models.TrendUncertain {
		t.Fatalf("direction = %v, want UNCERTAIN for low r2", trend.Direction)
	}
	if trend.Strength != 0 {
		t.Fatalf("strength = %d, want 0", trend.Strength)
	}
}

func TestGenerateSignalBuyOnStrongUptrend(t *testing.T) {
	e := New(Config{})
	if err := e.Fit(hourlySeries(24, func(h int) float64 { return 100 + 2*float64(h) })); err != nil {
		t.Fatalf("fit: %v", err)
	}
	sig := e.GenerateSignal()
	if sig.Action != models.ActionBuy {
		t.Fatalf("action = %v, want BUY (score %d)", sig.Action, sig.Score)
	}
	if sig.Score != 100 {
		t.Fatalf("score = %d, want clamp at 100", sig.Score)
	}
}

func TestGenerateSignalHoldWhenUnfitted(t *testing.T) {
	e := New(Config{})
	sig := e.GenerateSignal()
	if sig.Action != models.ActionHold {
		t.Fatalf("action = %v, want HOLD", sig.Action)
	}
	if len(sig.Reasons) == 0 || sig.Reasons[0] != "insufficient data" {
		t.Fatalf("reasons = %v", sig.Reasons)
	}
}

func TestPredictionSummarySweepsHorizons(t *testing.T) {
	e := New(Config{})
	sum, err := e.PredictionSummary(hourlySeries(48, func(h int) float64 { return 100 + float64(h) }))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, key := range []string{"1h", "6h", "12h", "24h", "48h", "72h"} {
		if _, ok := sum.Predictions[key]; !ok {
			t.Fatalf("missing horizon %s", key)
		}
	}
	if sum.Quality.DataPoints != 48 {
		t.Fatalf("data points = %d, want 48", sum.Quality.DataPoints)
	}
	if sum.CurrentPrice != 147 {
		t.Fatalf("current price = %v, want 147", sum.CurrentPrice)
	}
}
