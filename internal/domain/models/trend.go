package models

import "time"

// TrendDirection classifies the sign of the fitted slope.
type TrendDirection string

const (
	TrendUp        TrendDirection = "UP"
	TrendDown      TrendDirection = "DOWN"
	TrendFlat      TrendDirection = "FLAT"
	TrendUncertain TrendDirection = "UNCERTAIN"
)

// TrendModel is an ordinary least-squares fit over a time-price series.
// RSquared is 0 for degenerate (constant) series.
type TrendModel struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
}

// ConfidenceBand is the symmetric interval around a predicted price.
// The band uses a fixed z of 1.96, a 95% approximation rather than a true
// Student-t interval.
type ConfidenceBand struct {
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	Interval float64 `json:"interval"` // percent, e.g. 95
}

// Prediction extrapolates the fitted line to a future horizon.
type Prediction struct {
	Price      float64        `json:"predicted_price"`
	Timestamp  time.Time      `json:"timestamp"`
	Horizon    int            `json:"horizon_hours"`
	Confidence ConfidenceBand `json:"confidence"`
}

// TrendAnalysis is the classified direction and strength of a fit.
// Strength is 0 (uncertain) to 3 (strong).
type TrendAnalysis struct {
	Direction     TrendDirection `json:"direction"`
	Strength      int            `json:"strength"`
	ChangePercent float64        `json:"change_percent"`
	HourlySlope   float64        `json:"hourly_slope"`
	RSquared      float64        `json:"r_squared"`
}

// TradeAction is a BUY/SELL/HOLD recommendation.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
	ActionHold TradeAction = "HOLD"
)

// TradeSignal scores a fitted trend into an action with reasons.
type TradeSignal struct {
	Action    TradeAction   `json:"signal"`
	Score     int           `json:"score"`
	Reasons   []string      `json:"reasons"`
	Predicted float64       `json:"predicted_price,omitempty"`
	Trend     TrendAnalysis `json:"trend"`
	Timestamp time.Time     `json:"timestamp"`
}

// ModelQuality reports how trustworthy a fit is.
type ModelQuality struct {
	RSquared   float64       `json:"r_squared"`
	DataPoints int           `json:"data_points"`
	Trend      TrendAnalysis `json:"trend"`
}

// PredictionSummary is the multi-horizon sweep over a price series.
type PredictionSummary struct {
	CurrentPrice float64               `json:"current_price"`
	Predictions  map[string]Prediction `json:"predictions"`
	Signal       TradeSignal           `json:"signal"`
	Quality      ModelQuality          `json:"model_quality"`
}
