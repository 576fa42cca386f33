package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"CryptoHunter/internal/domain/models"
	"CryptoHunter/internal/repository"
	"CryptoHunter/pkg/util"
)

var (
	// ErrInsufficientBalance is returned when a buy costs more than the
	// account balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInsufficientPosition is returned when a sell exceeds the open
	// position.
	ErrInsufficientPosition = errors.New("insufficient position")
)

// PaperTrader simulates market orders against a cash account. A win is a
// sell above the position's average cost; profit is the realized balance
// delta, ignoring unrealized value still deployed in open positions.
type PaperTrader struct {
	store          *repository.PaperFileStore
	initialBalance float64

	mu      sync.Mutex
	account *models.PaperAccount
}

// NewPaperTrader loads the persisted account, seeding a fresh one with the
// initial balance when none exists.
func NewPaperTrader(ctx context.Context, store *repository.PaperFileStore, initialBalance float64) (*PaperTrader, error) {
	if initialBalance <= 0 {
		initialBalance = 10000
	}
	a, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load paper account: %w", err)
	}
	if a.StartTime.IsZero() {
		a = freshAccount(initialBalance)
	}
	return &PaperTrader{store: store, initialBalance: initialBalance, account: a}, nil
}

// MarketBuy opens or extends a long position at the given price.
func (t *PaperTrader) MarketBuy(ctx context.Context, symbol string, amount, price float64) (*models.PaperAccount, error) {
	if amount <= 0 || price <= 0 {
		return nil, fmt.Errorf("amount and price must be positive")
	}
	symbol = util.NormalizeSymbol(symbol)
	cost := amount * price

	t.mu.Lock()
	defer t.mu.Unlock()

	if cost > t.account.Balance {
		return nil, fmt.Errorf("need %s, have %s: %w", util.FormatPrice(cost), util.FormatPrice(t.account.Balance), ErrInsufficientBalance)
	}
	t.account.Balance -= cost

	merged := false
	for i := range t.account.Positions {
		p := &t.account.Positions[i]
		if p.Symbol != symbol {
			continue
		}
		totalCost := p.Amount*p.AvgPrice + cost
		p.Amount += amount
		p.AvgPrice = totalCost / p.Amount
		merged = true
		break
	}
	if !merged {
		t.account.Positions = append(t.account.Positions, models.Position{
			Symbol:   symbol,
			Amount:   amount,
			AvgPrice: price,
			Side:     "LONG",
		})
	}

	t.account.Trades = append(t.account.Trades, models.Transaction{
		Type:      models.ActionBuy,
		Symbol:    symbol,
		Amount:    amount,
		Price:     price,
		Total:     cost,
		Timestamp: nowFn(),
	})

	return t.commitLocked(ctx)
}

// MarketSell closes part or all of a position at the given price.
func (t *PaperTrader) MarketSell(ctx context.Context, symbol string, amount, price float64) (*models.PaperAccount, error) {
	if amount <= 0 || price <= 0 {
		return nil, fmt.Errorf("amount and price must be positive")
	}
	symbol = util.NormalizeSymbol(symbol)

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := -1
	for i := range t.account.Positions {
		if t.account.Positions[i].Symbol == symbol {
			idx = i
			break
		}
	}
	if idx < 0 || t.account.Positions[idx].Amount < amount {
		return nil, fmt.Errorf("%s: %w", symbol, ErrInsufficientPosition)
	}

	avgCost := t.account.Positions[idx].AvgPrice
	t.account.Balance += amount * price
	t.account.Positions[idx].Amount -= amount
	if t.account.Positions[idx].Amount <= 0 {
		t.account.Positions = append(t.account.Positions[:idx], t.account.Positions[idx+1:]...)
	}

	t.account.Trades = append(t.account.Trades, models.Transaction{
		Type:      models.ActionSell,
		Symbol:    symbol,
		Amount:    amount,
		Price:     price,
		Total:     amount * price,
		Timestamp: nowFn(),
	})
	if price > avgCost {
		t.account.Stats.WinningTrades++
	}

	return t.commitLocked(ctx)
}

// Stats returns the account summary.
func (t *PaperTrader) Stats() models.PaperAccount {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.copyLocked()
}

// Reset wipes the account back to the initial balance.
func (t *PaperTrader) Reset(ctx context.Context) (*models.PaperAccount, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.account = freshAccount(t.initialBalance)
	return t.commitLocked(ctx)
}

func (t *PaperTrader) commitLocked(ctx context.Context) (*models.PaperAccount, error) {
	t.refreshStatsLocked()
	if err := t.store.Save(ctx, t.account); err != nil {
		return nil, fmt.Errorf("persist paper account: %w", err)
	}
	out := t.copyLocked()
	return &out, nil
}

// refreshStatsLocked recomputes the derived counters. Win rate is winning
// sells over total sells; profit is the realized balance delta.
func (t *PaperTrader) refreshStatsLocked() {
	t.account.Stats.TotalTrades = len(t.account.Trades)
	t.account.Stats.TotalProfit = t.account.Balance - t.initialBalance

	sells := 0
	for _, tr := range t.account.Trades {
		if tr.Type == models.ActionSell {
			sells++
		}
	}
	if sells > 0 {
		t.account.Stats.WinRate = float64(t.account.Stats.WinningTrades) / float64(sells) * 100
	} else {
		t.account.Stats.WinRate = 0
	}
}

func (t *PaperTrader) copyLocked() models.PaperAccount {
	out := *t.account
	out.Positions = append([]models.Position(nil), t.account.Positions...)
	out.Trades = append([]models.Transaction(nil), t.account.Trades...)
	return out
}

func freshAccount(balance float64) *models.PaperAccount {
	return &models.PaperAccount{
		Balance:   balance,
		StartTime: nowFn(),
	}
}
