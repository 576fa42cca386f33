package usecase

import (
	"context"
	"fmt"
	"time"

	"CryptoHunter/internal/analysis/indicators"
	"CryptoHunter/internal/analysis/trend"
	"CryptoHunter/internal/domain/models"
	drepo "CryptoHunter/internal/domain/repository"
	"CryptoHunter/pkg/cache"
	"CryptoHunter/pkg/logger"
	"CryptoHunter/pkg/util"
)

// lookback bounds how much history feeds a fit. A week of hourly samples is
// plenty for the linear model; older points only dilute the current regime.
const lookback = 7 * 24 * time.Hour

// PredictionService runs trend fits and technical analysis over stored price
// history. Summaries are cached briefly: fitting is cheap but the HTTP API
// may be polled far more often than prices move.
type PredictionService struct {
	history  drepo.HistoryStore
	trendCfg trend.Config
	analyzer *indicators.Analyzer
	cache    cache.Service
	cacheTTL time.Duration
	log      *logger.Logger
}

// NewPredictionService creates the analysis facade.
func NewPredictionService(
	history drepo.HistoryStore,
	trendCfg trend.Config,
	analyzer *indicators.Analyzer,
	store cache.Service,
	cacheTTL time.Duration,
	log *logger.Logger,
) *PredictionService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &PredictionService{
		history:  history,
		trendCfg: trendCfg,
		analyzer: analyzer,
		cache:    store,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Predict fits the stored series and sweeps the standard horizons. points
// bounds how many trailing samples feed the fit (0 means all of the lookback
// window); horizon adds the requested hour mark when the sweep does not
// already cover it.
func (s *PredictionService) Predict(ctx context.Context, symbol string, points, horizon int) (models.PredictionSummary, error) {
	symbol = util.NormalizeSymbol(symbol)
	key := cache.GenerateKey("prediction", fmt.Sprintf("%s:%d:%d", symbol, points, horizon))

	var cached models.PredictionSummary
	if err := s.cache.Get(ctx, key, &cached); err == nil && cached.Quality.DataPoints > 0 {
		return cached, nil
	}

	series, err := s.series(ctx, symbol, points)
	if err != nil {
		return models.PredictionSummary{}, err
	}

	est := trend.New(s.trendCfg)
	summary, err := est.PredictionSummary(series)
	if err != nil {
		return models.PredictionSummary{}, fmt.Errorf("predict %s: %w", symbol, err)
	}
	if horizon > 0 {
		mark := fmt.Sprintf("%dh", horizon)
		if _, ok := summary.Predictions[mark]; !ok {
			if pred, perr := est.Predict(horizon); perr == nil {
				summary.Predictions[mark] = pred
			}
		}
	}

	if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
		s.log.Warn("prediction cache write failed", logger.String("symbol", symbol), logger.Error(err))
	}
	return summary, nil
}

// Signal fits the stored series and returns just the trade signal. Too little
// history degrades to HOLD instead of erroring: callers poll this blindly.
func (s *PredictionService) Signal(ctx context.Context, symbol string, points int) (models.TradeSignal, error) {
	series, err := s.series(ctx, util.NormalizeSymbol(symbol), points)
	if err != nil {
		return models.TradeSignal{}, err
	}

	est := trend.New(s.trendCfg)
	_ = est.Fit(series) // an unfitted estimator yields HOLD
	return est.GenerateSignal(), nil
}

// Analyze runs the indicator suite over the stored series. Pivot levels come
// from the previous 24h window when enough history exists.
func (s *PredictionService) Analyze(ctx context.Context, symbol string, points int) (models.AnalysisReport, error) {
	symbol = util.NormalizeSymbol(symbol)
	series, err := s.series(ctx, symbol, points)
	if err != nil {
		return models.AnalysisReport{}, err
	}

	prices := make([]float64, len(series))
	for i, p := range series {
		prices[i] = p.Price
	}

	return s.analyzer.AnalysisReport(prices, dailyOHLC(series)), nil
}

// History exposes the stored series for the HTTP API.
func (s *PredictionService) History(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.PricePoint, error) {
	from, to = util.AlignRange(from, to, time.Minute)
	return s.history.Series(ctx, util.NormalizeSymbol(symbol), from, to, limit)
}

func (s *PredictionService) series(ctx context.Context, symbol string, points int) ([]models.PricePoint, error) {
	now := time.Now()
	series, err := s.history.Series(ctx, symbol, now.Add(-lookback), now, 0)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", symbol, err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrInsufficientData)
	}
	if points > 0 && len(series) > points {
		series = series[len(series)-points:]
	}
	return series, nil
}

// dailyOHLC condenses the trailing 24h of samples into one candle; nil when
// the window holds fewer than two points.
func dailyOHLC(series []models.PricePoint) *models.OHLC {
	if len(series) == 0 {
		return nil
	}
	cutoff := series[len(series)-1].Timestamp.Add(-24 * time.Hour)

	var window []models.PricePoint
	for _, p := range series {
		if !p.Timestamp.Before(cutoff) {
			window = append(window, p)
		}
	}
	if len(window) < 2 {
		return nil
	}

	ohlc := models.OHLC{
		Open:  window[0].Price,
		High:  window[0].Price,
		Low:   window[0].Price,
		Close: window[len(window)-1].Price,
	}
	for _, p := range window {
		if p.Price > ohlc.High {
			ohlc.High = p.Price
		}
		if p.Price < ohlc.Low {
			ohlc.Low = p.Price
		}
	}
	return &ohlc
}
