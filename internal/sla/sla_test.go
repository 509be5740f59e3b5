package sla

import (
	"bytes"
	"log"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/models"
)

var baseTime = time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)

func TestEvaluateClassification(t *testing.T) {
	created := baseTime.Format(time.RFC3339)
	cases := []struct {
		name     string
		hours    float64
		elapsed  time.Duration
		status   Status
		left     int
		breached bool
	}{
		{"fresh", 24, 0, StatusSafe, 24, false},
		{"five hours left", 24, 19 * time.Hour, StatusSafe, 5, false},
		{"just under five", 24, 19*time.Hour + time.Minute, StatusWarning, 4, false},
		{"four hours left", 24, 20 * time.Hour, StatusWarning, 4, false},
		{"three hours left", 24, 21 * time.Hour, StatusWarning, 3, false},
		{"two hours left", 24, 22 * time.Hour, StatusCritical, 2, false},
		{"minutes left", 24, 23*time.Hour + 50*time.Minute, StatusCritical, 0, false},
		{"at deadline", 24, 24 * time.Hour, StatusCritical, 0, false},
		{"past deadline", 24, 24*time.Hour + time.Nanosecond, StatusBreached, 0, true},
		{"long past", 4, 72 * time.Hour, StatusBreached, 0, true},
		{"fractional allowance", 0.5, 10 * time.Minute, StatusCritical, 0, false},
	}

	for _, tt := range cases {
		got := Evaluate(created, tt.hours, baseTime.Add(tt.elapsed))
		if got.Status != tt.status || got.HoursLeft != tt.left || got.IsBreached != tt.breached {
			t.Fatalf("%s: got %+v, want {%s %d %v}", tt.name, got, tt.status, tt.left, tt.breached)
		}
	}
}

func TestEvaluateUnknown(t *testing.T) {
	cases := []struct {
		createdAt string
		hours     float64
	}{
		{"", 24},
		{"   ", 24},
		{baseTime.Format(time.RFC3339), 0},
		{baseTime.Format(time.RFC3339), -3},
		{baseTime.Format(time.RFC3339), math.NaN()},
		{"not-a-date", 24},
		{"2026-13-45T99:00:00Z", 24},
	}

	for _, tt := range cases {
		got := Evaluate(tt.createdAt, tt.hours, baseTime)
		if got != (Result{Status: StatusUnknown}) {
			t.Fatalf("Evaluate(%q, %v)=%+v, want unknown tuple", tt.createdAt, tt.hours, got)
		}
	}
}

func TestEvaluateTimestampFormats(t *testing.T) {
	now := baseTime.Add(time.Hour)
	inputs := []string{
		"2026-01-12T08:00:00Z",
		"2026-01-12T08:00:00.000Z",
		"2026-01-12T10:00:00+02:00",
		"2026-01-12T08:00:00",
		"2026-01-12T08:00:00.123456",
		"2026-01-12 08:00:00",
		"2026-01-12T08:00",
	}
	for _, input := range inputs {
		got := Evaluate(input, 10, now)
		if got.Status != StatusSafe || got.HoursLeft != 9 {
			t.Fatalf("Evaluate(%q)=%+v, want safe with 9 hours", input, got)
		}
	}

	got := Evaluate("2026-01-12", 10, now)
	if got.HoursLeft != 1 || got.Status != StatusCritical {
		t.Fatalf("date-only input: got %+v", got)
	}
}

func TestEvaluateSameInstantIsStable(t *testing.T) {
	created := baseTime.Format(time.RFC3339)
	now := baseTime.Add(3 * time.Hour)
	first := Evaluate(created, 8, now)
	second := Evaluate(created, 8, now)
	if first != second {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
	later := Evaluate(created, 8, now.Add(4*time.Hour))
	if later == first {
		t.Fatalf("expected elapsed time to change the result")
	}
}

func TestEvaluateHugeAllowance(t *testing.T) {
	got := Evaluate(baseTime.Format(time.RFC3339), 1e12, baseTime)
	if got.Status != StatusSafe || got.IsBreached {
		t.Fatalf("expected safe for huge allowance, got %+v", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		hours float64
		want  string
	}{
		{0, "Expired"},
		{-5, "Expired"},
		{math.NaN(), "Expired"},
		{math.Inf(1), "Expired"},
		{0.5, "30 minutes"},
		{0.25, "15 minutes"},
		{0.999, "60 minutes"},
		{1, "1 hour"},
		{1.5, "1.5 hours"},
		{2, "2 hours"},
		{23, "23 hours"},
		{24, "1 day"},
		{25, "1d 1h"},
		{47, "1d 23h"},
		{48, "2 days"},
		{49.5, "2d 1.5h"},
		{72, "3 days"},
	}

	for _, tt := range cases {
		if got := FormatDuration(tt.hours); got != tt.want {
			t.Fatalf("FormatDuration(%v)=%q, want %q", tt.hours, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label(Result{Status: StatusUnknown}); got != "N/A" {
		t.Fatalf("expected N/A, got %q", got)
	}
	if got := Label(Result{Status: StatusBreached, IsBreached: true}); got != "Expired" {
		t.Fatalf("expected Expired, got %q", got)
	}
	if got := Label(Result{Status: StatusSafe, HoursLeft: 30}); got != "1d 6h" {
		t.Fatalf("expected 1d 6h, got %q", got)
	}
}

func TestEvaluatorUsesInjectedClock(t *testing.T) {
	now := baseTime.Add(23 * time.Hour)
	var buf bytes.Buffer
	evaluator := NewEvaluator(Options{
		Clock:  func() time.Time { return now },
		Logger: log.New(&buf, "", 0),
	})

	got := evaluator.Evaluate(baseTime.Format(time.RFC3339), 24)
	if got.Status != StatusCritical || got.HoursLeft != 1 {
		t.Fatalf("unexpected result %+v", got)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no diagnostics, got %q", buf.String())
	}

	got = evaluator.Evaluate("yesterday", 24)
	if got.Status != StatusUnknown {
		t.Fatalf("expected unknown, got %+v", got)
	}
	if !strings.Contains(buf.String(), "malformed created_at") {
		t.Fatalf("expected diagnostic log, got %q", buf.String())
	}
}

func TestResolveHours(t *testing.T) {
	rules := []models.SLARule{
		{Product: "Loan", Issue: "Payment Issue", Severity: models.SeverityHigh, SLAHours: 6, IsActive: false},
		{Product: "Loan", Issue: "Payment Issue", Severity: models.SeverityHigh, SLAHours: 8, IsActive: true},
		{Product: "Loan", Issue: "Payment Issue", Severity: models.SeverityHigh, SLAHours: 10, IsActive: true},
	}
	if got := ResolveHours(rules, "Loan", "Payment Issue", models.SeverityHigh); got != 8 {
		t.Fatalf("expected first active rule, got %d", got)
	}
	if got := ResolveHours(rules, "Loan", "Billing Error", models.SeverityCritical); got != 4 {
		t.Fatalf("expected critical default 4, got %d", got)
	}
	if got := ResolveHours(nil, "Loan", "Billing Error", models.SeverityLow); got != 48 {
		t.Fatalf("expected low default 48, got %d", got)
	}
	if got := DefaultHours("unheard-of"); got != 24 {
		t.Fatalf("expected fallback 24, got %d", got)
	}
}
