// Package trend fits a least-squares line over a time-price series and
// turns it into predictions, trend classification and a trade signal.
package trend

import (
	"fmt"
	"math"
	"time"

	"CryptoHunter/internal/domain/models"
)

// Horizons is the multi-horizon sweep used by PredictionSummary, in hours.
var Horizons = []int{1, 6, 12, 24, 48, 72}

// zValue is a fixed 95% normal approximation. A true interval would use the
// Student-t distribution; this matches the documented simplification.
const zValue = 1.96

// Config controls fitting and signal generation.
type Config struct {
	HorizonHours   int     // default prediction horizon
	MinDataPoints  int     // minimum samples Fit accepts
	TrendThreshold float64 // percent change that boosts the signal score
}

// DefaultConfig mirrors the monitor's stock ML settings.
func DefaultConfig() Config {
	return Config{HorizonHours: 24, MinDataPoints: 24, TrendThreshold: 2.0}
}

// Estimator owns one fitted model at a time. It is not safe for concurrent
// use; the evaluation loop is its single writer.
type Estimator struct {
	cfg    Config
	model  *models.TrendModel
	series []models.PricePoint
}

// New creates an Estimator, filling zero config fields with defaults.
func New(cfg Config) *Estimator {
	def := DefaultConfig()
	if cfg.HorizonHours <= 0 {
		cfg.HorizonHours = def.HorizonHours
	}
	if cfg.MinDataPoints <= 0 {
		cfg.MinDataPoints = def.MinDataPoints
	}
	if cfg.TrendThreshold <= 0 {
		cfg.TrendThreshold = def.TrendThreshold
	}
	return &Estimator{cfg: cfg}
}

// Fit runs ordinary least squares over the series, with time normalized to
// hours since the first sample. The previous model is replaced wholesale.
func (e *Estimator) Fit(series []models.PricePoint) error {
	if len(series) < e.cfg.MinDataPoints {
		return fmt.Errorf("fit: need %d points, have %d: %w", e.cfg.MinDataPoints, len(series), models.ErrInsufficientData)
	}

	x := make([]float64, len(series))
	y := make([]float64, len(series))
	start := series[0].Timestamp
	for i, p := range series {
		x[i] = p.Timestamp.Sub(start).Hours()
		y[i] = p.Price
	}

	m := leastSquares(x, y)
	e.model = &m
	e.series = series
	return nil
}

// Model returns the current fit.
func (e *Estimator) Model() (models.TrendModel, error) {
	if e.model == nil {
		return models.TrendModel{}, models.ErrModelNotFitted
	}
	return *e.model, nil
}

// Predict extrapolates the fitted line horizonHours past the last sample and
// attaches the symmetric confidence band.
func (e *Estimator) Predict(horizonHours int) (models.Prediction, error) {
	if e.model == nil {
		return models.Prediction{}, models.ErrModelNotFitted
	}
	if horizonHours <= 0 {
		horizonHours = e.cfg.HorizonHours
	}

	start := e.series[0].Timestamp
	last := e.series[len(e.series)-1]
	tx := last.Timestamp.Sub(start).Hours() + float64(horizonHours)
	predicted := e.model.Slope*tx + e.model.Intercept

	margin := zValue * e.residualStdError() * math.Sqrt(1+1/float64(len(e.series)))

	return models.Prediction{
		Price:     predicted,
		Timestamp: last.Timestamp.Add(time.Duration(horizonHours) * time.Hour),
		Horizon:   horizonHours,
		Confidence: models.ConfidenceBand{
			Lower:    predicted - margin,
			Upper:    predicted + margin,
			Interval: 95,
		},
	}, nil
}

// ClassifyTrend derives direction and a 0-3 strength score from the fitted
// slope and R². Low-R² fits are forced to UNCERTAIN regardless of slope.
func (e *Estimator) ClassifyTrend() (models.TrendAnalysis, error) {
	if e.model == nil || len(e.series) < 2 {
		return models.TrendAnalysis{Direction: models.TrendUncertain}, models.ErrModelNotFitted
	}

	hourly := e.model.Slope
	current := e.series[len(e.series)-1].Price
	changePercent := hourly * float64(e.cfg.HorizonHours) / current * 100

	// Dead zone: a slope within 0.01% of the price per hour counts as flat.
	direction := models.TrendFlat
	if hourly > 0.0001*current {
		direction = models.TrendUp
	} else if hourly < -0.0001*current {
		direction = models.TrendDown
	}

	magnitude := math.Abs(changePercent)
	strength := 0
	switch {
	case e.model.RSquared >= 0.7:
		if magnitude >= 5 {
			strength = 3
		} else if magnitude >= 2 {
			strength = 2
		} else {
			strength = 1
		}
	case e.model.RSquared >= 0.4:
		strength = int(math.Floor(magnitude / 3))
		if strength < 1 {
			strength = 1
		}
	default:
		strength = 0
		direction = models.TrendUncertain
	}

	return models.TrendAnalysis{
		Direction:     direction,
		Strength:      strength,
		ChangePercent: changePercent,
		HourlySlope:   hourly,
		RSquared:      e.model.RSquared,
	}, nil
}

// GenerateSignal scores the current fit into BUY/SELL/HOLD. Without a fitted
// model it degrades to HOLD rather than failing the caller's cycle.
func (e *Estimator) GenerateSignal() models.TradeSignal {
	if e.model == nil {
		return models.TradeSignal{
			Action:    models.ActionHold,
			Score:     50,
			Reasons:   []string{"insufficient data"},
			Timestamp: time.Now(),
		}
	}

	trend, _ := e.ClassifyTrend()
	pred, _ := e.Predict(e.cfg.HorizonHours)

	score := 50.0
	switch trend.Direction {
	case models.TrendUp:
		score += float64(trend.Strength) * 15
	case models.TrendDown:
		score -= float64(trend.Strength) * 15
	}
	if trend.ChangePercent > e.cfg.TrendThreshold {
		score += 20
	} else if trend.ChangePercent < -e.cfg.TrendThreshold {
		score -= 20
	}
	score += (trend.RSquared - 0.5) * 30

	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	action := models.ActionHold
	var reasons []string
	switch {
	case score >= 70:
		action = models.ActionBuy
		reasons = append(reasons, "trend forecast bullish")
	case score <= 30:
		action = models.ActionSell
		reasons = append(reasons, "trend forecast bearish")
	default:
		reasons = append(reasons, "trend unclear")
	}
	if trend.RSquared < 0.4 {
		reasons = append(reasons, "low model confidence")
	}
	if width := pred.Confidence.Upper - pred.Confidence.Lower; pred.Price > 0 && width/pred.Price*100 > 10 {
		reasons = append(reasons, "wide prediction band")
	}

	return models.TradeSignal{
		Action:    action,
		Score:     int(math.Round(score)),
		Reasons:   reasons,
		Predicted: pred.Price,
		Trend:     trend,
		Timestamp: time.Now(),
	}
}

// PredictionSummary fits the series and sweeps the standard horizons.
func (e *Estimator) PredictionSummary(series []models.PricePoint) (models.PredictionSummary, error) {
	if err := e.Fit(series); err != nil {
		return models.PredictionSummary{}, err
	}

	predictions := make(map[string]models.Prediction, len(Horizons))
	for _, h := range Horizons {
		pred, err := e.Predict(h)
		if err != nil {
			continue
		}
		predictions[fmt.Sprintf("%dh", h)] = pred
	}

	trend, _ := e.ClassifyTrend()
	return models.PredictionSummary{
		CurrentPrice: series[len(series)-1].Price,
		Predictions:  predictions,
		Signal:       e.GenerateSignal(),
		Quality: models.ModelQuality{
			RSquared:   e.model.RSquared,
			DataPoints: len(series),
			Trend:      trend,
		},
	}, nil
}

// residualStdError is sqrt(SSres/(n-2)); 0 when the fit has no spare degrees
// of freedom.
func (e *Estimator) residualStdError() float64 {
	n := len(e.series)
	if n <= 2 {
		return 0
	}
	start := e.series[0].Timestamp
	var ssRes float64
	for _, p := range e.series {
		x := p.Timestamp.Sub(start).Hours()
		fitted := e.model.Slope*x + e.model.Intercept
		ssRes += (p.Price - fitted) * (p.Price - fitted)
	}
	return math.Sqrt(ssRes / float64(n-2))
}

// leastSquares computes slope, intercept and R² for y over x. A degenerate
// x spread yields a flat line; a constant y yields R²=0, never NaN.
func leastSquares(x, y []float64) models.TrendModel {
	n := float64(len(x))
	if n == 0 {
		return models.TrendModel{}
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return models.TrendModel{Intercept: sumY / n}
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	yMean := sumY / n
	var ssTotal, ssRes float64
	for i := range x {
		fitted := slope*x[i] + intercept
		ssTotal += (y[i] - yMean) * (y[i] - yMean)
		ssRes += (y[i] - fitted) * (y[i] - fitted)
	}
	r2 := 0.0
	if ssTotal != 0 {
		r2 = 1 - ssRes/ssTotal
	}

	return models.TrendModel{Slope: slope, Intercept: intercept, RSquared: r2}
}
