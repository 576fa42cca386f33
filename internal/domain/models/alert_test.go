package models

import "testing"

func TestParseSeverity(t *testing.T) {
	cases := []struct {
		in   string
		want Severity
		ok   bool
	}{
		{"critical", SeverityCritical, true},
		{"Warning", SeverityWarning, true},
		{"normal", SeverityNormal, true},
		{"HIGH", SeverityCritical, true},
		{"MEDIUM", SeverityWarning, true},
		{"LOW", SeverityNormal, true},
		{"urgent", SeverityNormal, false},
		{"", SeverityNormal, false},
	}
	for _, tc := range cases {
		got, ok := ParseSeverity(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseSeverity(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !(SeverityNormal < SeverityWarning && SeverityWarning < SeverityCritical) {
		t.Fatalf("severity scale out of order")
	}
}
