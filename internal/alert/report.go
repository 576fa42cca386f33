package alert

import (
	"fmt"
	"strings"
	"time"

	"CryptoHunter/internal/domain/models"
)

// FormatReport renders an alert batch as the text block sent to chat
// channels and the console, grouped by severity in descending order with a
// per-type tally at the bottom.
func FormatReport(alerts []models.Alert, now time.Time) string {
	var b strings.Builder
	rule := strings.Repeat("=", 50)

	b.WriteString(rule + "\n")
	b.WriteString("🐂 Crypto Hunter Market Report\n")
	b.WriteString("Generated: " + now.UTC().Format(time.RFC3339) + "\n")
	b.WriteString(rule + "\n\n")

	if len(alerts) == 0 {
		b.WriteString("✅ No unusual market activity\n")
		return b.String()
	}

	sections := []struct {
		severity models.Severity
		header   string
	}{
		{models.SeverityCritical, "🚨 Critical"},
		{models.SeverityWarning, "⚡ Warning"},
		{models.SeverityNormal, "ℹ️ Info"},
	}
	for _, sec := range sections {
		var group []models.Alert
		for _, a := range alerts {
			if a.Severity == sec.severity {
				group = append(group, a)
			}
		}
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s (%d)\n%s\n", sec.header, len(group), strings.Repeat("-", 30))
		for _, a := range group {
			b.WriteString("  " + a.Message + "\n")
		}
		b.WriteString("\n")
	}

	counts := map[models.AlertType]int{}
	for _, a := range alerts {
		counts[a.Type]++
	}
	b.WriteString("📈 Summary:\n")
	fmt.Fprintf(&b, "  - price alerts: %d\n", counts[models.AlertPrice])
	fmt.Fprintf(&b, "  - volatility: %d\n", counts[models.AlertVolatility])
	fmt.Fprintf(&b, "  - gainers: %d\n", counts[models.AlertGainer])
	fmt.Fprintf(&b, "  - volume spikes: %d\n", counts[models.AlertVolumeSpike])
	b.WriteString("\n" + rule + "\n")

	return b.String()
}
