package usecase

import (
	"context"
	"errors"
	"testing"

	"CryptoHunter/internal/repository"
)

func newTestTrader(t *testing.T, balance float64) *PaperTrader {
	t.Helper()
	tr, err := NewPaperTrader(context.Background(), repository.NewPaperFileStore(t.TempDir()), balance)
	if err != nil {
		t.Fatalf("new trader: %v", err)
	}
	return tr
}

func TestPaperBuyDebitsBalance(t *testing.T) {
	tr := newTestTrader(t, 10000)
	ctx := context.Background()

	a, err := tr.MarketBuy(ctx, "sol", 10, 100)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if !approx(a.Balance, 9000) {
		t.Fatalf("balance = %v", a.Balance)
	}
	if len(a.Positions) != 1 || a.Positions[0].Symbol != "SOL" || a.Positions[0].Side != "LONG" {
		t.Fatalf("positions = %+v", a.Positions)
	}

	// second buy blends the average price
	a, err = tr.MarketBuy(ctx, "SOL", 10, 120)
	if err != nil {
		t.Fatalf("second buy: %v", err)
	}
	if !approx(a.Positions[0].Amount, 20) || !approx(a.Positions[0].AvgPrice, 110) {
		t.Fatalf("merged position = %+v", a.Positions[0])
	}
}

func TestPaperBuyRejectsOverdraft(t *testing.T) {
	tr := newTestTrader(t, 500)

	if _, err := tr.MarketBuy(context.Background(), "BTC", 1, 70000); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v", err)
	}
	if a := tr.Stats(); !approx(a.Balance, 500) || len(a.Positions) != 0 {
		t.Fatalf("failed buy mutated account: %+v", a)
	}
}

func TestPaperSellTracksWins(t *testing.T) {
	tr := newTestTrader(t, 10000)
	ctx := context.Background()

	if _, err := tr.MarketBuy(ctx, "SOL", 20, 100); err != nil {
		t.Fatalf("buy: %v", err)
	}

	// sell above average cost counts as a win
	a, err := tr.MarketSell(ctx, "SOL", 10, 120)
	if err != nil {
		t.Fatalf("winning sell: %v", err)
	}
	if a.Stats.WinningTrades != 1 || !approx(a.Stats.WinRate, 100) {
		t.Fatalf("stats after win = %+v", a.Stats)
	}

	// sell below average cost does not
	a, err = tr.MarketSell(ctx, "SOL", 10, 80)
	if err != nil {
		t.Fatalf("losing sell: %v", err)
	}
	if a.Stats.WinningTrades != 1 || !approx(a.Stats.WinRate, 50) {
		t.Fatalf("stats after loss = %+v", a.Stats)
	}
	if len(a.Positions) != 0 {
		t.Fatalf("closed position should be removed: %+v", a.Positions)
	}

	// balance: 10000 - 2000 + 1200 + 800 = 10000, profit 0
	if !approx(a.Balance, 10000) || !approx(a.Stats.TotalProfit, 0) {
		t.Fatalf("balance = %v, profit = %v", a.Balance, a.Stats.TotalProfit)
	}
	if a.Stats.TotalTrades != 3 {
		t.Fatalf("total trades = %d", a.Stats.TotalTrades)
	}
}

func TestPaperSellRequiresPosition(t *testing.T) {
	tr := newTestTrader(t, 10000)
	ctx := context.Background()

	if _, err := tr.MarketSell(ctx, "SOL", 1, 100); !errors.Is(err, ErrInsufficientPosition) {
		t.Fatalf("no position err = %v", err)
	}

	if _, err := tr.MarketBuy(ctx, "SOL", 5, 100); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := tr.MarketSell(ctx, "SOL", 6, 100); !errors.Is(err, ErrInsufficientPosition) {
		t.Fatalf("oversell err = %v", err)
	}
}

func TestPaperResetRestoresInitialBalance(t *testing.T) {
	tr := newTestTrader(t, 10000)
	ctx := context.Background()

	if _, err := tr.MarketBuy(ctx, "SOL", 10, 100); err != nil {
		t.Fatalf("buy: %v", err)
	}
	a, err := tr.Reset(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !approx(a.Balance, 10000) || len(a.Positions) != 0 || len(a.Trades) != 0 {
		t.Fatalf("account after reset = %+v", a)
	}
	if a.StartTime.IsZero() {
		t.Fatalf("reset must restamp start time")
	}
}

func TestPaperAccountSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	tr, err := NewPaperTrader(ctx, repository.NewPaperFileStore(dir), 10000)
	if err != nil {
		t.Fatalf("new trader: %v", err)
	}
	if _, err := tr.MarketBuy(ctx, "BTC", 0.1, 70000); err != nil {
		t.Fatalf("buy: %v", err)
	}

	reloaded, err := NewPaperTrader(ctx, repository.NewPaperFileStore(dir), 10000)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	a := reloaded.Stats()
	if !approx(a.Balance, 3000) || len(a.Positions) != 1 {
		t.Fatalf("reloaded account = %+v", a)
	}
}
