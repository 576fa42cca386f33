// Package indicators provides the classic technical indicators the monitor
// reports on: RSI, EMA, MACD, Bollinger bands and pivot points. All
// calculations are pure functions over an ordered closing-price series.
package indicators

import (
	"fmt"
	"math"
	"time"

	"CryptoHunter/internal/domain/models"
)

// Config holds the indicator periods and bounds.
type Config struct {
	RSIPeriod     int
	RSIOverbought float64
	RSIOversold   float64

	MACDFastPeriod   int
	MACDSlowPeriod   int
	MACDSignalPeriod int

	BollingerPeriod int
	BollingerStdDev float64
}

// DefaultConfig is the conventional 14/12-26-9/20-2 setup.
func DefaultConfig() Config {
	return Config{
		RSIPeriod:        14,
		RSIOverbought:    70,
		RSIOversold:      30,
		MACDFastPeriod:   12,
		MACDSlowPeriod:   26,
		MACDSignalPeriod: 9,
		BollingerPeriod:  20,
		BollingerStdDev:  2,
	}
}

// Analyzer computes indicators with one fixed configuration. It holds no
// state between calls and is safe for concurrent use.
type Analyzer struct {
	cfg Config
}

// New creates an Analyzer, filling zero config fields with defaults.
func New(cfg Config) *Analyzer {
	def := DefaultConfig()
	if cfg.RSIPeriod <= 0 {
		cfg.RSIPeriod = def.RSIPeriod
	}
	if cfg.RSIOverbought <= 0 {
		cfg.RSIOverbought = def.RSIOverbought
	}
	if cfg.RSIOversold <= 0 {
		cfg.RSIOversold = def.RSIOversold
	}
	if cfg.MACDFastPeriod <= 0 {
		cfg.MACDFastPeriod = def.MACDFastPeriod
	}
	if cfg.MACDSlowPeriod <= 0 {
		cfg.MACDSlowPeriod = def.MACDSlowPeriod
	}
	if cfg.MACDSignalPeriod <= 0 {
		cfg.MACDSignalPeriod = def.MACDSignalPeriod
	}
	if cfg.BollingerPeriod <= 0 {
		cfg.BollingerPeriod = def.BollingerPeriod
	}
	if cfg.BollingerStdDev <= 0 {
		cfg.BollingerStdDev = def.BollingerStdDev
	}
	return &Analyzer{cfg: cfg}
}

// RSI computes the relative strength index over the most recent period
// deltas using simple averages (not Wilder smoothing). The result is always
// within [0,100]; a lossless window reads 100/OVERBOUGHT.
func (a *Analyzer) RSI(prices []float64) (models.RSIResult, error) {
	period := a.cfg.RSIPeriod
	if len(prices) < period+1 {
		return models.RSIResult{Signal: models.SignalNeutral},
			fmt.Errorf("rsi: need %d prices, have %d: %w", period+1, len(prices), models.ErrInsufficientData)
	}

	var gains, losses float64
	for i := len(prices) - period; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	result := models.RSIResult{
		Overbought: a.cfg.RSIOverbought,
		Oversold:   a.cfg.RSIOversold,
	}
	if avgLoss == 0 {
		result.Value = 100
		result.Signal = models.SignalOverbought
		return result, nil
	}

	rs := avgGain / avgLoss
	result.Value = 100 - 100/(1+rs)
	switch {
	case result.Value >= a.cfg.RSIOverbought:
		result.Signal = models.SignalOverbought
	case result.Value <= a.cfg.RSIOversold:
		result.Signal = models.SignalOversold
	default:
		result.Signal = models.SignalNeutral
	}
	return result, nil
}

// EMA is the exponential moving average over the whole series, seeded with
// the first price: ema = price*k + ema*(1-k), k = 2/(period+1).
func EMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	k := 2 / (float64(period) + 1)
	ema := prices[0]
	for _, p := range prices[1:] {
		ema = p*k + ema*(1-k)
	}
	return ema
}

// MACD computes the MACD line over the full series and a signal line as the
// EMA of the trailing signal-period window of MACD values (the textbook
// definition, not the source's shifting sub-slice recomputation).
func (a *Analyzer) MACD(prices []float64) (models.MACDResult, error) {
	need := a.cfg.MACDSlowPeriod + a.cfg.MACDSignalPeriod
	if len(prices) < need {
		return models.MACDResult{Reading: models.SignalNeutral},
			fmt.Errorf("macd: need %d prices, have %d: %w", need, len(prices), models.ErrInsufficientData)
	}

	kFast := 2 / (float64(a.cfg.MACDFastPeriod) + 1)
	kSlow := 2 / (float64(a.cfg.MACDSlowPeriod) + 1)
	emaFast := prices[0]
	emaSlow := prices[0]
	macdSeries := make([]float64, len(prices))
	for i, p := range prices {
		if i > 0 {
			emaFast = p*kFast + emaFast*(1-kFast)
			emaSlow = p*kSlow + emaSlow*(1-kSlow)
		}
		macdSeries[i] = emaFast - emaSlow
	}

	macdLine := macdSeries[len(macdSeries)-1]
	signalLine := EMA(macdSeries[len(macdSeries)-a.cfg.MACDSignalPeriod:], a.cfg.MACDSignalPeriod)
	histogram := macdLine - signalLine

	reading := models.SignalNeutral
	if macdLine > signalLine && histogram > 0 {
		reading = models.SignalBullish
	} else if macdLine < signalLine && histogram < 0 {
		reading = models.SignalBearish
	}

	return models.MACDResult{
		MACD:      macdLine,
		Signal:    signalLine,
		Histogram: histogram,
		Reading:   reading,
	}, nil
}

// Bollinger computes the bands over the last period prices using the
// population standard deviation. On a constant window the bands collapse and
// position reads 50.
func (a *Analyzer) Bollinger(prices []float64) (models.BollingerResult, error) {
	period := a.cfg.BollingerPeriod
	if len(prices) < period {
		return models.BollingerResult{Signal: models.SignalNeutral},
			fmt.Errorf("bollinger: need %d prices, have %d: %w", period, len(prices), models.ErrInsufficientData)
	}

	window := prices[len(prices)-period:]
	var sum float64
	for _, p := range window {
		sum += p
	}
	middle := sum / float64(period)

	var variance float64
	for _, p := range window {
		variance += (p - middle) * (p - middle)
	}
	variance /= float64(period)
	stdDev := math.Sqrt(variance)

	upper := middle + a.cfg.BollingerStdDev*stdDev
	lower := middle - a.cfg.BollingerStdDev*stdDev
	last := prices[len(prices)-1]

	position := 50.0
	if upper != lower {
		position = (last - lower) / (upper - lower) * 100
	}
	volatility := 0.0
	if middle != 0 {
		volatility = stdDev / middle * 100
	}

	signal := models.SignalNeutral
	if last >= upper {
		signal = models.SignalOverbought
	} else if last <= lower {
		signal = models.SignalOversold
	}

	return models.BollingerResult{
		Upper:      upper,
		Middle:     middle,
		Lower:      lower,
		Position:   position,
		Volatility: volatility,
		Signal:     signal,
	}, nil
}

// PivotPoints computes the classic pivot support/resistance levels from the
// prior period's high, low and close.
func PivotPoints(ohlc models.OHLC) models.PivotLevels {
	pivot := (ohlc.High + ohlc.Low + ohlc.Close) / 3
	return models.PivotLevels{
		Pivot: pivot,
		Resistance: [3]float64{
			2*pivot - ohlc.Low,
			pivot + (ohlc.High - ohlc.Low),
			ohlc.High + 2*(pivot-ohlc.Low),
		},
		Support: [3]float64{
			2*pivot - ohlc.High,
			pivot - (ohlc.High - ohlc.Low),
			ohlc.Low - 2*(ohlc.High-pivot),
		},
	}
}

// AnalysisReport runs every indicator and folds the readings into a
// composite 0-100 score with a BUY/SELL/HOLD recommendation. Indicators
// short on data contribute a NEUTRAL reading instead of failing the report.
func (a *Analyzer) AnalysisReport(prices []float64, ohlc *models.OHLC) models.AnalysisReport {
	report := models.AnalysisReport{Timestamp: time.Now()}
	report.RSI, _ = a.RSI(prices)
	report.MACD, _ = a.MACD(prices)
	report.Bollinger, _ = a.Bollinger(prices)
	if ohlc != nil {
		pivots := PivotPoints(*ohlc)
		report.Pivots = &pivots
	}

	score := 50
	switch report.RSI.Signal {
	case models.SignalOversold:
		score += 15
	case models.SignalOverbought:
		score -= 15
	}
	switch report.MACD.Reading {
	case models.SignalBullish:
		score += 15
	case models.SignalBearish:
		score -= 15
	}
	switch report.Bollinger.Signal {
	case models.SignalOversold:
		score += 10
	case models.SignalOverbought:
		score -= 10
	}
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	report.Score = score
	switch {
	case score >= 60:
		report.Recommendation = models.ActionBuy
	case score <= 40:
		report.Recommendation = models.ActionSell
	default:
		report.Recommendation = models.ActionHold
	}
	return report
}
