package alert

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"CryptoHunter/internal/domain/models"
	"CryptoHunter/pkg/cache"
)

func TestDedupGateSuppressesRepeatKeys(t *testing.T) {
	store := cache.NewMemoryCache()
	defer store.Close()
	gate := NewDedupGate(store, 5*time.Minute)

	batch := []models.Alert{
		{Type: models.AlertGainer, Symbol: "SOL"},
		{Type: models.AlertVolatility, Symbol: "SOL"},
	}

	first := gate.Filter(context.Background(), batch)
	if len(first) != 2 {
		t.Fatalf("first pass kept %d, want 2", len(first))
	}

	second := gate.Filter(context.Background(), batch)
	if len(second) != 0 {
		t.Fatalf("second pass kept %d, want 0", len(second))
	}
}

func TestDedupGateDistinctSymbolsPass(t *testing.T) {
	store := cache.NewMemoryCache()
	defer store.Close()
	gate := NewDedupGate(store, 5*time.Minute)

	gate.Filter(context.Background(), []models.Alert{{Type: models.AlertGainer, Symbol: "SOL"}})
	out := gate.Filter(context.Background(), []models.Alert{{Type: models.AlertGainer, Symbol: "BONK"}})
	if len(out) != 1 {
		t.Fatalf("different symbol should pass, kept %d", len(out))
	}
}

type failingCache struct {
	cache.Service
}

func (failingCache) Exists(context.Context, ...string) (bool, error) {
	return false, errors.New("backend down")
}

func (failingCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("backend down")
}

func TestDedupGateFailsOpen(t *testing.T) {
	gate := NewDedupGate(failingCache{}, 5*time.Minute)
	out := gate.Filter(context.Background(), []models.Alert{{Type: models.AlertPrice, Symbol: "BTC"}})
	if len(out) != 1 {
		t.Fatalf("cache failure should not drop alerts, kept %d", len(out))
	}
}

func TestDedupGateEmptyBatch(t *testing.T) {
	store := cache.NewMemoryCache()
	defer store.Close()
	gate := NewDedupGate(store, 0)
	if out := gate.Filter(context.Background(), nil); out != nil {
		t.Fatalf("expected nil for empty batch, got %v", out)
	}
}

func TestReportEmptyBatch(t *testing.T) {
	now := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	out := FormatReport(nil, now)
	if !strings.Contains(out, "No unusual market activity") {
		t.Fatalf("empty report missing calm line:\n%s", out)
	}
	if !strings.Contains(out, "2024-11-01T12:00:00Z") {
		t.Fatalf("report missing timestamp:\n%s", out)
	}
}

func TestReportGroupsBySeverity(t *testing.T) {
	now := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	alerts := []models.Alert{
		{Type: models.AlertGainer, Symbol: "BONK", Severity: models.SeverityCritical, Message: "BONK up big"},
		{Type: models.AlertVolumeSpike, Symbol: "NOT", Severity: models.SeverityWarning, Message: "NOT volume surge"},
	}
	out := FormatReport(alerts, now)

	critIdx := strings.Index(out, "Critical")
	warnIdx := strings.Index(out, "Warning")
	if critIdx == -1 || warnIdx == -1 || critIdx > warnIdx {
		t.Fatalf("sections missing or out of order:\n%s", out)
	}
	if !strings.Contains(out, "BONK up big") || !strings.Contains(out, "NOT volume surge") {
		t.Fatalf("messages missing:\n%s", out)
	}
	if !strings.Contains(out, "gainers: 1") || !strings.Contains(out, "volume spikes: 1") {
		t.Fatalf("summary tallies wrong:\n%s", out)
	}
}
