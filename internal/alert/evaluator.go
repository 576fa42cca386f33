// Package alert turns periodic coin snapshots into deduplicated, leveled
// alerts: price-threshold crossings, volatility, gainers and volume spikes.
package alert

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"CryptoHunter/internal/domain/models"
	"CryptoHunter/pkg/logger"
	"CryptoHunter/pkg/util"
)

// Clock abstracts time for deterministic cooldown tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Condition kinds used as cooldown keys alongside the symbol.
const (
	condPriceAbove = "price-above"
	condPriceBelow = "price-below"
	condVolatility = "volatility"
)

// Config holds the evaluator's thresholds and windows.
type Config struct {
	VolatilityWarning  float64       // percent, default 5
	VolatilityCritical float64       // percent, default 10
	MinGainers24h      float64       // percent, default 15
	StrongGainer24h    float64       // percent, default 30: gainers past this read critical

	// VolumeRatio is volume24h/marketCap expressed as a plain ratio
	// (0.05 = 5%), never a whole-number multiplier.
	VolumeRatio float64

	Cooldown     time.Duration // per-(symbol,condition) window, default 5m
	HistoryLimit int           // alert ring capacity, default 100

	DefaultThresholds map[string]models.Threshold
	ExcludedSymbols   []string
}

func (c *Config) applyDefaults() {
	if c.VolatilityWarning <= 0 {
		c.VolatilityWarning = 5
	}
	if c.VolatilityCritical <= 0 {
		c.VolatilityCritical = 10
	}
	if c.MinGainers24h <= 0 {
		c.MinGainers24h = 15
	}
	if c.StrongGainer24h <= 0 {
		c.StrongGainer24h = 30
	}
	if c.VolumeRatio <= 0 {
		c.VolumeRatio = 0.05
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 5 * time.Minute
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 100
	}
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock injects a clock, letting tests drive cooldowns deterministically.
func WithClock(c Clock) Option {
	return func(e *Evaluator) { e.clock = c }
}

// WithLogger attaches a logger for skipped-snapshot warnings.
func WithLogger(l *logger.Logger) Option {
	return func(e *Evaluator) { e.log = l }
}

// WithThresholds seeds the custom (user-set) thresholds, e.g. from a store.
func WithThresholds(custom map[string]models.Threshold) Option {
	return func(e *Evaluator) {
		for sym, th := range custom {
			e.custom[strings.ToUpper(sym)] = th
		}
	}
}

// Evaluator holds the cooldown table, custom thresholds and the bounded
// alert history. All state is guarded by one mutex: evaluate() may be called
// from both the monitor loop and HTTP handlers.
type Evaluator struct {
	mu sync.Mutex

	cfg      Config
	clock    Clock
	log      *logger.Logger
	custom   map[string]models.Threshold
	cooldown map[string]time.Time
	history  []models.Alert // newest first, capped at cfg.HistoryLimit
	excluded map[string]struct{}
}

// New creates an Evaluator with defaults filled in.
func New(cfg Config, opts ...Option) *Evaluator {
	cfg.applyDefaults()
	defaults := make(map[string]models.Threshold, len(cfg.DefaultThresholds))
	for sym, th := range cfg.DefaultThresholds {
		defaults[strings.ToUpper(sym)] = th
	}
	cfg.DefaultThresholds = defaults

	e := &Evaluator{
		cfg:      cfg,
		clock:    systemClock{},
		custom:   make(map[string]models.Threshold),
		cooldown: make(map[string]time.Time),
		excluded: make(map[string]struct{}, len(cfg.ExcludedSymbols)),
	}
	for _, sym := range cfg.ExcludedSymbols {
		e.excluded[strings.ToUpper(sym)] = struct{}{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs the four checks against one snapshot and returns the alerts
// in fixed order: price threshold, volatility, gainer, volume spike.
// prevPrice sharpens the volatility reading when the caller has the prior
// cycle's price; pass 0 to fall back to the 24h change.
func (e *Evaluator) Evaluate(snap models.CoinSnapshot, prevPrice float64) []models.Alert {
	if err := snap.Validate(); err != nil {
		e.warn("skipping malformed snapshot", snap.Symbol, err)
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	symbol := strings.ToUpper(snap.Symbol)
	if _, skip := e.excluded[symbol]; skip {
		return nil
	}

	now := e.clock.Now()
	var alerts []models.Alert

	if a := e.checkThreshold(symbol, snap, now); a != nil {
		alerts = append(alerts, *a)
	}
	if a := e.checkVolatility(symbol, snap, prevPrice, now); a != nil {
		alerts = append(alerts, *a)
	}
	if a := e.checkGainer(symbol, snap, now); a != nil {
		alerts = append(alerts, *a)
	}
	if a := e.checkVolumeSpike(symbol, snap, now); a != nil {
		alerts = append(alerts, *a)
	}

	for i := range alerts {
		e.record(alerts[i])
	}
	return alerts
}

// checkThreshold resolves the effective threshold (custom overrides default)
// and fires when the price is on the configured side of the target. A
// suppressed trigger must not restamp the cooldown.
func (e *Evaluator) checkThreshold(symbol string, snap models.CoinSnapshot, now time.Time) *models.Alert {
	th, ok := e.effectiveThreshold(symbol)
	if !ok {
		return nil
	}

	triggered := false
	cond := condPriceBelow
	if th.Direction == models.DirectionAbove {
		cond = condPriceAbove
		triggered = snap.Price >= th.Target
	} else {
		triggered = snap.Price <= th.Target
	}
	if !triggered {
		return nil
	}
	if !e.cooldownElapsed(symbol, cond, now) {
		return nil
	}
	e.cooldown[cooldownKey(symbol, cond)] = now

	verb := "broke above"
	if th.Direction == models.DirectionBelow {
		verb = "dropped below"
	}
	return &models.Alert{
		Type:      models.AlertPrice,
		Severity:  models.SeverityCritical,
		Symbol:    symbol,
		Name:      snap.Name,
		Price:     snap.Price,
		Target:    th.Target,
		Direction: th.Direction,
		Message:   fmt.Sprintf("💰 %s %s %s (now %s)", symbol, verb, util.FormatPrice(th.Target), util.FormatPrice(snap.Price)),
		Timestamp: now,
	}
}

func (e *Evaluator) checkVolatility(symbol string, snap models.CoinSnapshot, prevPrice float64, now time.Time) *models.Alert {
	change := snap.PercentChange24h
	volatility := abs(change)
	if prevPrice > 0 {
		volatility = abs((snap.Price - prevPrice) / prevPrice * 100)
	}

	var severity models.Severity
	switch {
	case volatility >= e.cfg.VolatilityCritical:
		severity = models.SeverityCritical
	case volatility >= e.cfg.VolatilityWarning:
		severity = models.SeverityWarning
	default:
		return nil
	}
	if !e.cooldownElapsed(symbol, condVolatility, now) {
		return nil
	}
	e.cooldown[cooldownKey(symbol, condVolatility)] = now

	emoji := "⚠️"
	if severity == models.SeverityCritical {
		emoji = "🚨"
	}
	return &models.Alert{
		Type:      models.AlertVolatility,
		Severity:  severity,
		Symbol:    symbol,
		Name:      snap.Name,
		Price:     snap.Price,
		Change:    change,
		Value:     fmt.Sprintf("%.2f%%", volatility),
		Message:   fmt.Sprintf("%s %s volatility %s: %s in 24h", emoji, symbol, severity, util.FormatPercent(change)),
		Timestamp: now,
	}
}

func (e *Evaluator) checkGainer(symbol string, snap models.CoinSnapshot, now time.Time) *models.Alert {
	change := snap.PercentChange24h
	if change < e.cfg.MinGainers24h {
		return nil
	}
	severity := models.SeverityWarning
	if change >= e.cfg.StrongGainer24h {
		severity = models.SeverityCritical
	}
	return &models.Alert{
		Type:      models.AlertGainer,
		Severity:  severity,
		Symbol:    symbol,
		Name:      snap.Name,
		Price:     snap.Price,
		Change:    change,
		Value:     fmt.Sprintf("%.2f%%", change),
		Message:   fmt.Sprintf("🚀 %s (%s) 24h %s", symbol, snap.Name, util.FormatPercent(change)),
		Timestamp: now,
	}
}

func (e *Evaluator) checkVolumeSpike(symbol string, snap models.CoinSnapshot, now time.Time) *models.Alert {
	ratio := snap.VolumeRatio()
	if ratio < e.cfg.VolumeRatio || snap.PercentChange24h <= 0 {
		return nil
	}
	return &models.Alert{
		Type:      models.AlertVolumeSpike,
		Severity:  models.SeverityWarning,
		Symbol:    symbol,
		Name:      snap.Name,
		Price:     snap.Price,
		Change:    snap.PercentChange24h,
		Value:     fmt.Sprintf("%.0f%%", ratio*100),
		Message:   fmt.Sprintf("📊 %s volume surge %s at %.0f%% of market cap", symbol, util.FormatCompact(snap.Volume24h), ratio*100),
		Timestamp: now,
	}
}

// SetThreshold adds or replaces the custom threshold for a symbol.
func (e *Evaluator) SetThreshold(symbol string, target float64, direction models.Direction) models.Threshold {
	e.mu.Lock()
	defer e.mu.Unlock()

	th := models.Threshold{
		Symbol:    strings.ToUpper(symbol),
		Target:    target,
		Direction: direction,
		Enabled:   true,
		UpdatedAt: e.clock.Now(),
	}
	e.custom[th.Symbol] = th
	return th
}

// DeleteThreshold removes the custom threshold for a symbol.
func (e *Evaluator) DeleteThreshold(symbol string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.custom, strings.ToUpper(symbol))
}

// GetThreshold resolves the effective threshold for a symbol.
func (e *Evaluator) GetThreshold(symbol string) (models.Threshold, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.effectiveThreshold(strings.ToUpper(symbol))
}

// CustomThresholds snapshots the user-set thresholds for persistence.
func (e *Evaluator) CustomThresholds() map[string]models.Threshold {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]models.Threshold, len(e.custom))
	for sym, th := range e.custom {
		out[sym] = th
	}
	return out
}

// WatchedSymbols lists every symbol with an enabled threshold.
func (e *Evaluator) WatchedSymbols() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[string]struct{})
	for sym, th := range e.custom {
		if th.Enabled {
			seen[sym] = struct{}{}
		}
	}
	for sym := range e.cfg.DefaultThresholds {
		seen[strings.ToUpper(sym)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// ResetCooldowns clears the cooldown table.
func (e *Evaluator) ResetCooldowns() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cooldown = make(map[string]time.Time)
}

// History returns up to limit alerts, newest first.
func (e *Evaluator) History(limit int) []models.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	if limit <= 0 || limit > len(e.history) {
		limit = len(e.history)
	}
	out := make([]models.Alert, limit)
	copy(out, e.history[:limit])
	return out
}

// Stats summarizes the history ring: totals plus a 24h breakdown.
func (e *Evaluator) Stats() models.AlertStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := models.AlertStats{
		Total:      len(e.history),
		BySeverity: make(map[string]int),
		ByType:     make(map[models.AlertType]int),
	}
	cutoff := e.clock.Now().Add(-24 * time.Hour)
	for _, a := range e.history {
		if a.Timestamp.Before(cutoff) {
			continue
		}
		stats.Last24h++
		stats.BySeverity[a.Severity.String()]++
		stats.ByType[a.Type]++
	}
	return stats
}

func (e *Evaluator) effectiveThreshold(symbol string) (models.Threshold, bool) {
	if th, ok := e.custom[symbol]; ok && th.Enabled {
		return th, true
	}
	if th, ok := e.cfg.DefaultThresholds[symbol]; ok {
		return th, true
	}
	return models.Threshold{}, false
}

func (e *Evaluator) cooldownElapsed(symbol, cond string, now time.Time) bool {
	last, ok := e.cooldown[cooldownKey(symbol, cond)]
	if !ok {
		return true
	}
	return now.Sub(last) >= e.cfg.Cooldown
}

func (e *Evaluator) record(a models.Alert) {
	e.history = append([]models.Alert{a}, e.history...)
	if len(e.history) > e.cfg.HistoryLimit {
		e.history = e.history[:e.cfg.HistoryLimit]
	}
}

func (e *Evaluator) warn(msg, symbol string, err error) {
	if e.log != nil {
		e.log.Warn(msg, logger.String("symbol", symbol), logger.Error(err))
	}
}

func cooldownKey(symbol, cond string) string { return symbol + "_" + cond }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
