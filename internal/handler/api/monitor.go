package api

import (
	"errors"
	"sort"
	"strings"
	"time"

	"CryptoHunter/internal/alert"
	"CryptoHunter/internal/domain/models"
	drepo "CryptoHunter/internal/domain/repository"
	"CryptoHunter/internal/service/ratelimit"
	"CryptoHunter/internal/usecase"
	xhttp "CryptoHunter/pkg/http"
	xlogger "CryptoHunter/pkg/logger"
	"CryptoHunter/pkg/util"

	"github.com/labstack/echo/v4"
)

// MonitorHandler exposes the monitor, analysis and ledger operations over
// Echo.
type MonitorHandler struct {
	logger     *xlogger.Logger
	source     drepo.SnapshotSource
	monitor    *usecase.Monitor
	evaluator  *alert.Evaluator
	prediction *usecase.PredictionService
	portfolio  *usecase.PortfolioManager
	paper      *usecase.PaperTrader
	rl         *ratelimit.Limiter
	symbols    []string
	started    time.Time
}

func NewMonitorHandler(
	logger *xlogger.Logger,
	source drepo.SnapshotSource,
	monitor *usecase.Monitor,
	evaluator *alert.Evaluator,
	prediction *usecase.PredictionService,
	portfolio *usecase.PortfolioManager,
	paper *usecase.PaperTrader,
	symbols []string,
) *MonitorHandler {
	return &MonitorHandler{
		logger:     logger,
		source:     source,
		monitor:    monitor,
		evaluator:  evaluator,
		prediction: prediction,
		portfolio:  portfolio,
		paper:      paper,
		rl:         ratelimit.New(),
		symbols:    symbols,
		started:    time.Now(),
	}
}

func (h *MonitorHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/health", h.Health)
	g.GET("/prices", h.Prices)

	g.GET("/prices/top", h.TopPrices)

	g.GET("/alerts", h.Alerts)
	g.GET("/alerts/stats", h.AlertStats)
	g.GET("/alerts/report", h.AlertReport)
	g.POST("/alerts/check", h.CheckNow)
	g.POST("/alerts/reset", h.ResetCooldowns)

	g.GET("/thresholds", h.Thresholds)
	g.POST("/thresholds", h.SetThreshold)
	g.DELETE("/thresholds/:symbol", h.DeleteThreshold)

	g.GET("/analysis", h.Analysis)
	g.GET("/prediction", h.Prediction)
	g.GET("/signal", h.Signal)
	g.GET("/history", h.History)

	g.GET("/portfolio", h.Portfolio)
	g.POST("/portfolio/trade", h.PortfolioTrade)
	g.GET("/portfolio/transactions", h.PortfolioTransactions)

	g.GET("/paper", h.PaperAccount)
	g.GET("/paper/trades", h.PaperTrades)
	g.POST("/paper/trade", h.PaperTrade)
	g.POST("/paper/reset", h.PaperReset)
}

func (h *MonitorHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":     "ok",
		"uptime":     time.Since(h.started).Round(time.Second).String(),
		"last_cycle": h.monitor.LastRun(),
		"watched":    h.symbols,
	})
}

func (h *MonitorHandler) Prices(c echo.Context) error {
	req := &models.PricesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	symbols := h.symbols
	if req.Symbols != "" {
		symbols = nil
		for _, s := range strings.Split(req.Symbols, ",") {
			if s = util.NormalizeSymbol(s); s != "" {
				symbols = append(symbols, s)
			}
		}
	}

	snaps, err := h.source.FetchSnapshots(c.Request().Context(), symbols)
	if err != nil {
		h.logger.Error("prices fetch failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("market data unavailable").WithError(err))
	}
	return xhttp.ListResponse(c, snaps, int64(len(snaps)))
}

// TopPrices returns the watched coins ordered by market cap.
func (h *MonitorHandler) TopPrices(c echo.Context) error {
	snaps, err := h.source.FetchSnapshots(c.Request().Context(), h.symbols)
	if err != nil {
		h.logger.Error("prices fetch failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("market data unavailable").WithError(err))
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].MarketCap > snaps[j].MarketCap })
	return xhttp.ListResponse(c, snaps, int64(len(snaps)))
}

// CheckNow forces an immediate monitor cycle outside the regular interval.
func (h *MonitorHandler) CheckNow(c echo.Context) error {
	if err := h.monitor.RunCycle(c.Request().Context()); err != nil {
		h.logger.Error("manual cycle failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("cycle failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"checked_at": h.monitor.LastRun(),
		"report":     h.monitor.LastReport(),
		"stats":      h.evaluator.Stats(),
	})
}

func (h *MonitorHandler) ResetCooldowns(c echo.Context) error {
	h.evaluator.ResetCooldowns()
	return xhttp.SuccessResponse(c, map[string]string{"status": "cooldowns cleared"})
}

func (h *MonitorHandler) Alerts(c echo.Context) error {
	req := &models.AlertsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	alerts := h.evaluator.History(req.Limit)
	if req.Severity != "" {
		want, _ := models.ParseSeverity(req.Severity)
		filtered := make([]models.Alert, 0, len(alerts))
		for _, a := range alerts {
			if a.Severity == want {
				filtered = append(filtered, a)
			}
		}
		alerts = filtered
	}
	return xhttp.ListResponse(c, alerts, int64(len(alerts)))
}

func (h *MonitorHandler) AlertStats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.evaluator.Stats())
}

func (h *MonitorHandler) AlertReport(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"report":       h.monitor.LastReport(),
		"generated_at": h.monitor.LastRun(),
	})
}

func (h *MonitorHandler) Thresholds(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"watched": h.evaluator.WatchedSymbols(),
		"custom":  h.evaluator.CustomThresholds(),
	})
}

func (h *MonitorHandler) SetThreshold(c echo.Context) error {
	req := &models.ThresholdRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	th, err := h.monitor.SetThreshold(c.Request().Context(), req.Symbol, req.Target, models.Direction(req.Direction))
	if err != nil {
		h.logger.Error("threshold save failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("threshold not saved").WithError(err))
	}
	return xhttp.CreatedResponse(c, th)
}

func (h *MonitorHandler) DeleteThreshold(c echo.Context) error {
	symbol := util.NormalizeSymbol(c.Param("symbol"))
	if _, ok := h.evaluator.GetThreshold(symbol); !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no threshold for %s", symbol))
	}
	if err := h.monitor.DeleteThreshold(c.Request().Context(), symbol); err != nil {
		h.logger.Error("threshold delete failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("threshold not removed").WithError(err))
	}
	return xhttp.NoContentResponse(c)
}

func (h *MonitorHandler) Analysis(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":analysis", 5, 2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	report, err := h.prediction.Analyze(c.Request().Context(), req.Symbol, req.Points)
	if err != nil {
		return h.analysisError(c, req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *MonitorHandler) Prediction(c echo.Context) error {
	req := &models.PredictionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":prediction", 5, 2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	summary, err := h.prediction.Predict(c.Request().Context(), req.Symbol, req.Points, req.Horizon)
	if err != nil {
		return h.analysisError(c, req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, summary)
}

func (h *MonitorHandler) Signal(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig, err := h.prediction.Signal(c.Request().Context(), req.Symbol, req.Points)
	if err != nil {
		return h.analysisError(c, req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, sig)
}

func (h *MonitorHandler) History(c echo.Context) error {
	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now()
	from := xhttp.ParseTimeDefault(req.From, now.Add(-24*time.Hour))
	to := xhttp.ParseTimeDefault(req.To, now)

	points, err := h.prediction.History(c.Request().Context(), req.Symbol, from, to, req.Limit)
	if err != nil {
		h.logger.Error("history query failed", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("history unavailable").WithError(err))
	}
	return xhttp.ListResponse(c, points, int64(len(points)))
}

func (h *MonitorHandler) Portfolio(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.portfolio.Valuation(h.monitor.Prices()))
}

func (h *MonitorHandler) PortfolioTrade(c echo.Context) error {
	req := &models.TradeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var (
		p   *models.Portfolio
		err error
	)
	if req.Action == "buy" {
		p, err = h.portfolio.AddHolding(c.Request().Context(), req.Symbol, req.Amount, req.Price, req.Exchange)
	} else {
		p, err = h.portfolio.SellHolding(c.Request().Context(), req.Symbol, req.Amount, req.Price, req.Exchange)
	}
	if err != nil {
		if errors.Is(err, usecase.ErrInsufficientHolding) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
		}
		h.logger.Error("portfolio trade failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("trade not recorded").WithError(err))
	}
	return xhttp.CreatedResponse(c, p)
}

func (h *MonitorHandler) PortfolioTransactions(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	txs := h.portfolio.Transactions(req.Limit)
	return xhttp.ListResponse(c, txs, int64(len(txs)))
}

func (h *MonitorHandler) PaperAccount(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.paper.Stats())
}

// PaperTrades returns up to limit paper trades, newest first.
func (h *MonitorHandler) PaperTrades(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	account := h.paper.Stats()
	trades := account.Trades
	for i, j := 0, len(trades)-1; i < j; i, j = i+1, j-1 {
		trades[i], trades[j] = trades[j], trades[i]
	}
	if req.Limit > 0 && req.Limit < len(trades) {
		trades = trades[:req.Limit]
	}
	return xhttp.ListResponse(c, trades, int64(len(trades)))
}

func (h *MonitorHandler) PaperTrade(c echo.Context) error {
	req := &models.TradeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var (
		a   *models.PaperAccount
		err error
	)
	if req.Action == "buy" {
		a, err = h.paper.MarketBuy(c.Request().Context(), req.Symbol, req.Amount, req.Price)
	} else {
		a, err = h.paper.MarketSell(c.Request().Context(), req.Symbol, req.Amount, req.Price)
	}
	if err != nil {
		if errors.Is(err, usecase.ErrInsufficientBalance) || errors.Is(err, usecase.ErrInsufficientPosition) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
		}
		h.logger.Error("paper trade failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("trade not recorded").WithError(err))
	}
	return xhttp.CreatedResponse(c, a)
}

func (h *MonitorHandler) PaperReset(c echo.Context) error {
	a, err := h.paper.Reset(c.Request().Context())
	if err != nil {
		h.logger.Error("paper reset failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("account not reset").WithError(err))
	}
	return xhttp.SuccessResponse(c, a)
}

// analysisError maps thin-history errors to 404, everything else to 500.
func (h *MonitorHandler) analysisError(c echo.Context, symbol string, err error) error {
	if errors.Is(err, models.ErrInsufficientData) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("not enough history for %s", symbol))
	}
	h.logger.Error("analysis failed", xlogger.String("symbol", symbol), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalError("analysis unavailable").WithError(err))
}
