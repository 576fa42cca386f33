package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"CryptoHunter/internal/domain/models"
	"CryptoHunter/internal/repository"
	"CryptoHunter/pkg/util"
)

// ErrInsufficientHolding is returned when a sell exceeds the held amount.
var ErrInsufficientHolding = errors.New("insufficient holding")

// nowFn is swapped out by ledger tests for deterministic timestamps.
var nowFn = time.Now

// PortfolioManager tracks manually entered positions at average cost and
// values them against live prices. Every mutation is persisted immediately.
type PortfolioManager struct {
	store *repository.PortfolioFileStore

	mu        sync.Mutex
	portfolio *models.Portfolio
}

// NewPortfolioManager loads the persisted ledger, starting empty when none
// exists yet.
func NewPortfolioManager(ctx context.Context, store *repository.PortfolioFileStore) (*PortfolioManager, error) {
	p, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	return &PortfolioManager{store: store, portfolio: p}, nil
}

// AddHolding merges a buy into an existing position at blended average cost,
// or opens a new one, and records the transaction.
func (m *PortfolioManager) AddHolding(ctx context.Context, symbol string, amount, price float64, exchange string) (*models.Portfolio, error) {
	if amount <= 0 || price <= 0 {
		return nil, fmt.Errorf("amount and price must be positive")
	}
	symbol = util.NormalizeSymbol(symbol)

	m.mu.Lock()
	defer m.mu.Unlock()

	merged := false
	for i := range m.portfolio.Holdings {
		h := &m.portfolio.Holdings[i]
		if h.Symbol != symbol {
			continue
		}
		totalCost := h.Amount*h.AvgPrice + amount*price
		h.Amount += amount
		h.AvgPrice = totalCost / h.Amount
		if exchange != "" {
			h.Exchange = exchange
		}
		merged = true
		break
	}
	if !merged {
		m.portfolio.Holdings = append(m.portfolio.Holdings, models.Holding{
			Symbol:   symbol,
			Amount:   amount,
			AvgPrice: price,
			Exchange: exchange,
			AddedAt:  nowFn(),
		})
	}

	m.portfolio.Transactions = append(m.portfolio.Transactions, models.Transaction{
		Type:      models.ActionBuy,
		Symbol:    symbol,
		Amount:    amount,
		Price:     price,
		Total:     amount * price,
		Exchange:  exchange,
		Timestamp: nowFn(),
	})

	return m.snapshotLocked(ctx)
}

// SellHolding reduces a position, removing it when fully sold. Selling more
// than held fails without touching the ledger.
func (m *PortfolioManager) SellHolding(ctx context.Context, symbol string, amount, price float64, exchange string) (*models.Portfolio, error) {
	if amount <= 0 || price <= 0 {
		return nil, fmt.Errorf("amount and price must be positive")
	}
	symbol = util.NormalizeSymbol(symbol)

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i := range m.portfolio.Holdings {
		if m.portfolio.Holdings[i].Symbol == symbol {
			idx = i
			break
		}
	}
	if idx < 0 || m.portfolio.Holdings[idx].Amount < amount {
		return nil, fmt.Errorf("%s: %w", symbol, ErrInsufficientHolding)
	}

	m.portfolio.Holdings[idx].Amount -= amount
	if m.portfolio.Holdings[idx].Amount <= 0 {
		m.portfolio.Holdings = append(m.portfolio.Holdings[:idx], m.portfolio.Holdings[idx+1:]...)
	}

	m.portfolio.Transactions = append(m.portfolio.Transactions, models.Transaction{
		Type:      models.ActionSell,
		Symbol:    symbol,
		Amount:    amount,
		Price:     price,
		Total:     amount * price,
		Exchange:  exchange,
		Timestamp: nowFn(),
	})

	return m.snapshotLocked(ctx)
}

// Valuation prices every holding against the given price map; symbols without
// a live price fall back to their average cost.
func (m *PortfolioManager) Valuation(prices map[string]float64) models.PortfolioValuation {
	m.mu.Lock()
	defer m.mu.Unlock()

	var v models.PortfolioValuation
	for _, h := range m.portfolio.Holdings {
		current, ok := prices[h.Symbol]
		if !ok || current <= 0 {
			current = h.AvgPrice
		}
		value := h.Amount * current
		cost := h.Amount * h.AvgPrice
		profit := value - cost
		profitPercent := 0.0
		if cost > 0 {
			profitPercent = profit / cost * 100
		}

		v.Holdings = append(v.Holdings, models.HoldingValue{
			Holding:       h,
			CurrentPrice:  current,
			Value:         value,
			Profit:        profit,
			ProfitPercent: profitPercent,
		})
		v.TotalValue += value
		v.TotalCost += cost
	}

	v.TotalProfit = v.TotalValue - v.TotalCost
	if v.TotalCost > 0 {
		v.TotalProfitPercent = v.TotalProfit / v.TotalCost * 100
	}
	return v
}

// Transactions returns up to limit ledger entries, newest first.
func (m *PortfolioManager) Transactions(limit int) []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Transaction, len(m.portfolio.Transactions))
	copy(out, m.portfolio.Transactions)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func (m *PortfolioManager) snapshotLocked(ctx context.Context) (*models.Portfolio, error) {
	if err := m.store.Save(ctx, m.portfolio); err != nil {
		return nil, fmt.Errorf("persist portfolio: %w", err)
	}
	out := *m.portfolio
	out.Holdings = append([]models.Holding(nil), m.portfolio.Holdings...)
	out.Transactions = append([]models.Transaction(nil), m.portfolio.Transactions...)
	return &out, nil
}
