package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// AlertType identifies which check produced an alert.
type AlertType string

const (
	AlertPrice       AlertType = "PRICE_ALERT"
	AlertVolatility  AlertType = "VOLATILITY"
	AlertGainer      AlertType = "GAINER"
	AlertVolumeSpike AlertType = "VOLUME_SPIKE"
)

// Severity is the single ordered severity scale all producers map onto.
// Legacy HIGH/MEDIUM/LOW vocabularies translate via SeverityFromPriority.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityWarning:
		return "warning"
	default:
		return "normal"
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw {
	case "critical":
		*s = SeverityCritical
	case "warning":
		*s = SeverityWarning
	case "normal":
		*s = SeverityNormal
	default:
		return fmt.Errorf("unknown severity %q", raw)
	}
	return nil
}

// SeverityFromPriority maps the HIGH/MEDIUM/LOW vocabulary onto Severity.
func SeverityFromPriority(p string) Severity {
	switch p {
	case "HIGH":
		return SeverityCritical
	case "MEDIUM":
		return SeverityWarning
	default:
		return SeverityNormal
	}
}

// ParseSeverity reads either the lowercase severity names or the legacy
// HIGH/MEDIUM/LOW vocabulary. The second return is false for anything else.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "critical":
		return SeverityCritical, true
	case "warning":
		return SeverityWarning, true
	case "normal":
		return SeverityNormal, true
	}
	switch up := strings.ToUpper(s); up {
	case "HIGH", "MEDIUM", "LOW":
		return SeverityFromPriority(up), true
	}
	return SeverityNormal, false
}

// Direction tells which side of a target price triggers a threshold.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// Threshold is a configured price trigger for one symbol.
type Threshold struct {
	Symbol    string    `json:"symbol"`
	Target    float64   `json:"target"`
	Direction Direction `json:"direction"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Alert is one emitted signal. Alerts are immutable after creation.
type Alert struct {
	Type      AlertType `json:"type"`
	Severity  Severity  `json:"severity"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name,omitempty"`
	Message   string    `json:"message"`
	Price     float64   `json:"price"`
	Target    float64   `json:"target,omitempty"`
	Direction Direction `json:"direction,omitempty"`
	Change    float64   `json:"change,omitempty"`
	Value     string    `json:"value,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DedupKey groups alerts for notification-level deduplication.
func (a *Alert) DedupKey() string {
	return string(a.Type) + "_" + a.Symbol
}

// AlertStats summarizes the alert history ring.
type AlertStats struct {
	Total      int               `json:"total"`
	Last24h    int               `json:"last_24h"`
	BySeverity map[string]int    `json:"by_severity"`
	ByType     map[AlertType]int `json:"by_type"`
}
