package util

import (
	"testing"
	"time"
)

func TestParseTimeFormats(t *testing.T) {
	if _, ok := ParseTime("2024-11-01T12:00:00Z"); !ok {
		t.Fatalf("RFC3339 should parse")
	}
	got, ok := ParseTime("1730462400")
	if !ok {
		t.Fatalf("unix seconds should parse")
	}
	if got.Unix() != 1730462400 {
		t.Fatalf("unix = %d", got.Unix())
	}
	if _, ok := ParseTime("not-a-time"); ok {
		t.Fatalf("garbage should not parse")
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := ParseTimeDefault("", def); !got.Equal(def) {
		t.Fatalf("empty input should return default")
	}
}

func TestAlignRange(t *testing.T) {
	from := time.Date(2024, 11, 1, 9, 42, 13, 0, time.UTC)
	to := time.Date(2024, 11, 1, 15, 5, 0, 0, time.UTC)
	af, at := AlignRange(from, to, time.Hour)
	if af.Minute() != 0 || at.Minute() != 0 {
		t.Fatalf("range not aligned: %v %v", af, at)
	}
	if af.Hour() != 9 || at.Hour() != 15 {
		t.Fatalf("wrong hours: %v %v", af, at)
	}
}
