package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CryptoHunter/internal/alert"
	"CryptoHunter/internal/domain/models"
	drepo "CryptoHunter/internal/domain/repository"
	"CryptoHunter/internal/service/notify"
	"CryptoHunter/pkg/logger"
)

// MonitorConfig holds the polling loop settings.
type MonitorConfig struct {
	Interval time.Duration
	Symbols  []string
}

// Monitor runs the poll cycle: fetch snapshots, evaluate alerts, publish,
// dedup and notify. It also keeps the previous-cycle price per symbol, which
// sharpens volatility detection between 24h windows.
type Monitor struct {
	cfg        MonitorConfig
	source     drepo.SnapshotSource
	evaluator  *alert.Evaluator
	dedup      *alert.DedupGate
	notifier   *notify.Fanout
	history    drepo.HistoryStore
	publisher  drepo.AlertPublisher // optional
	thresholds drepo.ThresholdStore
	metrics    drepo.Metrics
	log        *logger.Logger

	mu         sync.RWMutex
	lastPrices map[string]float64
	lastReport string
	lastRun    time.Time
}

// NewMonitor creates the monitor loop. publisher may be nil when no event
// sink is configured.
func NewMonitor(
	cfg MonitorConfig,
	source drepo.SnapshotSource,
	evaluator *alert.Evaluator,
	dedup *alert.DedupGate,
	notifier *notify.Fanout,
	history drepo.HistoryStore,
	publisher drepo.AlertPublisher,
	thresholds drepo.ThresholdStore,
	metrics drepo.Metrics,
	log *logger.Logger,
) *Monitor {
	return &Monitor{
		cfg:        cfg,
		source:     source,
		evaluator:  evaluator,
		dedup:      dedup,
		notifier:   notifier,
		history:    history,
		publisher:  publisher,
		thresholds: thresholds,
		metrics:    metrics,
		log:        log,
		lastPrices: make(map[string]float64),
	}
}

// Start launches the polling loop. The first cycle runs immediately.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.cfg.Interval)
		defer ticker.Stop()

		if err := m.RunCycle(ctx); err != nil {
			m.log.Error("monitor cycle failed", logger.Error(err))
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.RunCycle(ctx); err != nil {
					m.log.Error("monitor cycle failed", logger.Error(err))
				}
			}
		}
	}()
}

// RunCycle executes one fetch-evaluate-notify pass. A fetch failure skips the
// whole cycle: stale evaluation against old prices would only produce noise.
func (m *Monitor) RunCycle(ctx context.Context) error {
	start := time.Now()

	snaps, err := m.source.FetchSnapshots(ctx, m.cfg.Symbols)
	if err != nil {
		m.metrics.RecordFetchError("poll")
		m.metrics.RecordCycle("fetch_error")
		return fmt.Errorf("fetch snapshots: %w", err)
	}

	var emitted []models.Alert
	for _, snap := range snaps {
		m.metrics.RecordLastPrice(snap.Symbol, snap.Price)
		if err := m.history.Append(ctx, snap.Symbol, models.PricePoint{Timestamp: snap.FetchedAt, Price: snap.Price}); err != nil {
			m.log.Warn("history append failed", logger.String("symbol", snap.Symbol), logger.Error(err))
		}

		m.mu.Lock()
		prev := m.lastPrices[snap.Symbol]
		m.lastPrices[snap.Symbol] = snap.Price
		m.mu.Unlock()

		alerts := m.evaluator.Evaluate(snap, prev)
		for _, a := range alerts {
			m.metrics.RecordAlert(string(a.Type), a.Severity.String())
		}
		emitted = append(emitted, alerts...)
	}

	if m.publisher != nil && len(emitted) > 0 {
		batch := make([]*models.Alert, len(emitted))
		for i := range emitted {
			batch[i] = &emitted[i]
		}
		if err := m.publisher.PublishBatch(ctx, batch); err != nil {
			m.log.Error("alert publish failed", logger.Error(err))
		}
	}

	fresh := m.dedup.Filter(ctx, emitted)
	if len(fresh) > 0 {
		report := alert.FormatReport(fresh, time.Now())
		delivered := m.notifier.Broadcast(ctx, report)
		m.log.Info("alerts notified",
			logger.Int("alerts", len(fresh)),
			logger.Int("channels", delivered))

		m.mu.Lock()
		m.lastReport = report
		m.mu.Unlock()
	}

	m.mu.Lock()
	m.lastRun = time.Now()
	m.mu.Unlock()

	m.metrics.RecordCycle("ok")
	m.metrics.RecordLatency("cycle", time.Since(start).Seconds())
	m.log.Debug("monitor cycle done",
		logger.Int("snapshots", len(snaps)),
		logger.Int("alerts", len(emitted)),
		logger.Duration("took", time.Since(start)))
	return nil
}

// UpdatePrice folds a streamed snapshot into the previous-price cache so the
// next poll cycle compares against the freshest observation.
func (m *Monitor) UpdatePrice(snap *models.CoinSnapshot) {
	if snap == nil || snap.Price <= 0 {
		return
	}
	m.metrics.RecordLastPrice(snap.Symbol, snap.Price)
	m.mu.Lock()
	m.lastPrices[snap.Symbol] = snap.Price
	m.mu.Unlock()
}

// LastPrice returns the most recent price seen for a symbol.
func (m *Monitor) LastPrice(symbol string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.lastPrices[symbol]
	return p, ok
}

// Prices returns a copy of the latest known price per symbol.
func (m *Monitor) Prices() map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]float64, len(m.lastPrices))
	for k, v := range m.lastPrices {
		out[k] = v
	}
	return out
}

// LastReport returns the most recent notification report text.
func (m *Monitor) LastReport() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastReport
}

// LastRun returns when the last successful cycle finished.
func (m *Monitor) LastRun() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRun
}

// SetThreshold updates the evaluator and persists custom thresholds.
func (m *Monitor) SetThreshold(ctx context.Context, symbol string, target float64, direction models.Direction) (models.Threshold, error) {
	th := m.evaluator.SetThreshold(symbol, target, direction)
	if err := m.thresholds.Save(ctx, m.evaluator.CustomThresholds()); err != nil {
		return th, fmt.Errorf("persist thresholds: %w", err)
	}
	return th, nil
}

// DeleteThreshold removes a custom threshold and persists the change.
func (m *Monitor) DeleteThreshold(ctx context.Context, symbol string) error {
	m.evaluator.DeleteThreshold(symbol)
	if err := m.thresholds.Save(ctx, m.evaluator.CustomThresholds()); err != nil {
		return fmt.Errorf("persist thresholds: %w", err)
	}
	return nil
}
