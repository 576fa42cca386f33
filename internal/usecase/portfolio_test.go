package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"CryptoHunter/internal/domain/models"
	"CryptoHunter/internal/repository"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newTestPortfolio(t *testing.T) (*PortfolioManager, string) {
	t.Helper()
	dir := t.TempDir()
	m, err := NewPortfolioManager(context.Background(), repository.NewPortfolioFileStore(dir))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m, dir
}

func TestAddHoldingMergesAtAverageCost(t *testing.T) {
	m, _ := newTestPortfolio(t)
	ctx := context.Background()

	if _, err := m.AddHolding(ctx, "sol", 10, 85, "binance"); err != nil {
		t.Fatalf("first buy: %v", err)
	}
	p, err := m.AddHolding(ctx, "SOL", 10, 95, "")
	if err != nil {
		t.Fatalf("second buy: %v", err)
	}

	if len(p.Holdings) != 1 {
		t.Fatalf("got %d holdings, want 1 merged", len(p.Holdings))
	}
	h := p.Holdings[0]
	if h.Symbol != "SOL" || !approx(h.Amount, 20) || !approx(h.AvgPrice, 90) {
		t.Fatalf("holding = %+v", h)
	}
	if h.Exchange != "binance" {
		t.Fatalf("merge must keep exchange, got %q", h.Exchange)
	}
	if len(p.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(p.Transactions))
	}
}

func TestSellHoldingChecksAmount(t *testing.T) {
	m, _ := newTestPortfolio(t)
	ctx := context.Background()

	if _, err := m.AddHolding(ctx, "BTC", 2, 70000, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}

	if _, err := m.SellHolding(ctx, "BTC", 3, 71000, ""); !errors.Is(err, ErrInsufficientHolding) {
		t.Fatalf("oversell err = %v", err)
	}
	if _, err := m.SellHolding(ctx, "ETH", 1, 2000, ""); !errors.Is(err, ErrInsufficientHolding) {
		t.Fatalf("unknown symbol err = %v", err)
	}

	p, err := m.SellHolding(ctx, "BTC", 2, 71000, "")
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if len(p.Holdings) != 0 {
		t.Fatalf("fully sold holding should be removed, got %+v", p.Holdings)
	}
	if len(p.Transactions) != 2 || p.Transactions[1].Type != models.ActionSell {
		t.Fatalf("transactions = %+v", p.Transactions)
	}
}

func TestOversellLeavesLedgerUntouched(t *testing.T) {
	m, _ := newTestPortfolio(t)
	ctx := context.Background()

	if _, err := m.AddHolding(ctx, "BTC", 1, 70000, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := m.SellHolding(ctx, "BTC", 5, 71000, ""); err == nil {
		t.Fatalf("expected oversell error")
	}

	v := m.Valuation(nil)
	if len(v.Holdings) != 1 || !approx(v.Holdings[0].Amount, 1) {
		t.Fatalf("holding mutated by failed sell: %+v", v.Holdings)
	}
	if got := len(m.Transactions(0)); got != 1 {
		t.Fatalf("got %d transactions, want 1", got)
	}
}

func TestValuationFallsBackToAvgCost(t *testing.T) {
	m, _ := newTestPortfolio(t)
	ctx := context.Background()

	if _, err := m.AddHolding(ctx, "SOL", 10, 80, ""); err != nil {
		t.Fatalf("buy sol: %v", err)
	}
	if _, err := m.AddHolding(ctx, "BONK", 1000, 0.00002, ""); err != nil {
		t.Fatalf("buy bonk: %v", err)
	}

	v := m.Valuation(map[string]float64{"SOL": 100})

	if !approx(v.TotalCost, 800+0.02) {
		t.Fatalf("total cost = %v", v.TotalCost)
	}
	// SOL priced live, BONK at avg cost (zero profit)
	if !approx(v.TotalValue, 1000+0.02) {
		t.Fatalf("total value = %v", v.TotalValue)
	}
	if !approx(v.TotalProfit, 200) {
		t.Fatalf("total profit = %v", v.TotalProfit)
	}
	if !approx(v.TotalProfitPercent, 200/800.02*100) {
		t.Fatalf("profit percent = %v", v.TotalProfitPercent)
	}
}

func TestTransactionsNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	nowFn = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}
	t.Cleanup(func() { nowFn = time.Now })

	m, _ := newTestPortfolio(t)
	ctx := context.Background()
	for _, sym := range []string{"BTC", "ETH", "SOL"} {
		if _, err := m.AddHolding(ctx, sym, 1, 100, ""); err != nil {
			t.Fatalf("buy %s: %v", sym, err)
		}
	}

	txs := m.Transactions(2)
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	if txs[0].Symbol != "SOL" || txs[1].Symbol != "ETH" {
		t.Fatalf("order = %s, %s", txs[0].Symbol, txs[1].Symbol)
	}
}

func TestPortfolioSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	m, err := NewPortfolioManager(ctx, repository.NewPortfolioFileStore(dir))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if _, err := m.AddHolding(ctx, "SOL", 5, 90, "kraken"); err != nil {
		t.Fatalf("buy: %v", err)
	}

	reloaded, err := NewPortfolioManager(ctx, repository.NewPortfolioFileStore(dir))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	v := reloaded.Valuation(nil)
	if len(v.Holdings) != 1 || v.Holdings[0].Symbol != "SOL" || !approx(v.Holdings[0].Amount, 5) {
		t.Fatalf("reloaded holdings = %+v", v.Holdings)
	}
}
