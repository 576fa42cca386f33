package repository

import (
	"context"
	"testing"
	"time"

	"CryptoHunter/internal/domain/models"
)

func TestMemoryHistoryKeepsOrder(t *testing.T) {
	h := NewMemoryHistory(100)
	ctx := context.Background()
	base := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		err := h.Append(ctx, "BTC", models.PricePoint{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Price:     70000 + float64(i)*100,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	points, err := h.Series(ctx, "BTC", base, base.Add(10*time.Hour), 0)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if len(points) != 5 {
		t.Fatalf("got %d points", len(points))
	}
	if points[0].Price != 70000 || points[4].Price != 70400 {
		t.Fatalf("order broken: %v", points)
	}
}

func TestMemoryHistoryEvictsOldest(t *testing.T) {
	h := NewMemoryHistory(3)
	ctx := context.Background()
	base := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_ = h.Append(ctx, "ETH", models.PricePoint{Timestamp: base.Add(time.Duration(i) * time.Hour), Price: float64(i)})
	}

	points, _ := h.Series(ctx, "ETH", base, base.Add(10*time.Hour), 0)
	if len(points) != 3 {
		t.Fatalf("got %d points, want capped 3", len(points))
	}
	if points[0].Price != 2 {
		t.Fatalf("oldest not evicted: %v", points)
	}
}

func TestMemoryHistoryRangeAndLimit(t *testing.T) {
	h := NewMemoryHistory(100)
	ctx := context.Background()
	base := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		_ = h.Append(ctx, "SOL", models.PricePoint{Timestamp: base.Add(time.Duration(i) * time.Hour), Price: float64(i)})
	}

	points, _ := h.Series(ctx, "SOL", base.Add(2*time.Hour), base.Add(8*time.Hour), 3)
	if len(points) != 3 {
		t.Fatalf("limit not applied: %d", len(points))
	}
	if points[0].Price != 2 {
		t.Fatalf("range start wrong: %v", points[0])
	}

	empty, _ := h.Series(ctx, "UNKNOWN", base, base.Add(time.Hour), 0)
	if len(empty) != 0 {
		t.Fatalf("unknown symbol should be empty")
	}
}
