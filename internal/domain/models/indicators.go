package models

import "time"

// IndicatorSignal is the categorical reading of one indicator.
type IndicatorSignal string

const (
	SignalOverbought IndicatorSignal = "OVERBOUGHT"
	SignalOversold   IndicatorSignal = "OVERSOLD"
	SignalBullish    IndicatorSignal = "BULLISH"
	SignalBearish    IndicatorSignal = "BEARISH"
	SignalNeutral    IndicatorSignal = "NEUTRAL"
)

// RSIResult is a relative strength index reading, always within [0,100].
type RSIResult struct {
	Value      float64         `json:"value"`
	Signal     IndicatorSignal `json:"signal"`
	Overbought float64         `json:"overbought"`
	Oversold   float64         `json:"oversold"`
}

// MACDResult carries the MACD line, signal line and histogram.
type MACDResult struct {
	MACD      float64         `json:"macd"`
	Signal    float64         `json:"signal_line"`
	Histogram float64         `json:"histogram"`
	Reading   IndicatorSignal `json:"signal"`
}

// BollingerResult carries the band levels and the last price's position
// within them. Position is a percent and is intentionally unclamped: prices
// outside the bands read below 0 or above 100.
type BollingerResult struct {
	Upper      float64         `json:"upper"`
	Middle     float64         `json:"middle"`
	Lower      float64         `json:"lower"`
	Position   float64         `json:"position"`
	Volatility float64         `json:"volatility"`
	Signal     IndicatorSignal `json:"signal"`
}

// OHLC is the prior-period candle used for pivot point levels.
type OHLC struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// PivotLevels are classic pivot-point support/resistance estimates.
type PivotLevels struct {
	Pivot      float64    `json:"pivot"`
	Resistance [3]float64 `json:"resistance"`
	Support    [3]float64 `json:"support"`
}

// AnalysisReport is the composite technical-analysis readout for a series.
type AnalysisReport struct {
	Timestamp      time.Time       `json:"timestamp"`
	RSI            RSIResult       `json:"rsi"`
	MACD           MACDResult      `json:"macd"`
	Bollinger      BollingerResult `json:"bollinger"`
	Pivots         *PivotLevels    `json:"support_resistance,omitempty"`
	Score          int             `json:"score"`
	Recommendation TradeAction     `json:"recommendation"`
}
