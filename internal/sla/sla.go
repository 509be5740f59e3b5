// Package sla classifies how close a complaint is to breaching its SLA
// allowance and renders remaining-time labels.
//
// Results depend on the evaluation instant: the same inputs evaluated at
// different times may legitimately classify differently. Callers that need a
// stable snapshot pass the instant explicitly to Evaluate.
package sla

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	StatusUnknown  Status = "unknown"
	StatusSafe     Status = "safe"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
	StatusBreached Status = "breached"
)

const (
	criticalHours = 2
	warningHours  = 4
)

// Result is the status tuple for one evaluation.
type Result struct {
	Status     Status `json:"status"`
	HoursLeft  int    `json:"hours_left"`
	IsBreached bool   `json:"is_breached"`
}

var unknownResult = Result{Status: StatusUnknown}

// maxHours keeps created+allowance inside time.Duration range.
var maxHours = float64(math.MaxInt64 / int64(time.Hour))

var ErrInvalidTimestamp = errors.New("invalid timestamp")

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without a zone offset
// are read as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}

// Evaluate classifies a complaint created at createdAt with an allowance of
// slaHours, as seen at now. Missing, zero or malformed input yields the
// unknown result; it never fails.
func Evaluate(createdAt string, slaHours float64, now time.Time) Result {
	if strings.TrimSpace(createdAt) == "" || !validHours(slaHours) {
		return unknownResult
	}
	created, err := ParseTimestamp(createdAt)
	if err != nil {
		return unknownResult
	}
	return EvaluateTime(created, slaHours, now)
}

// EvaluateNow is Evaluate against the live clock.
func EvaluateNow(createdAt string, slaHours float64) Result {
	return Evaluate(createdAt, slaHours, time.Now())
}

func EvaluateTime(created time.Time, slaHours float64, now time.Time) Result {
	if created.IsZero() || !validHours(slaHours) {
		return unknownResult
	}
	deadline := Deadline(created, slaHours)

	isBreached := now.After(deadline)
	hoursLeft := int(deadline.Sub(now) / time.Hour)
	if hoursLeft < 0 {
		hoursLeft = 0
	}

	status := StatusSafe
	switch {
	case isBreached:
		status = StatusBreached
	case hoursLeft <= criticalHours:
		status = StatusCritical
	case hoursLeft <= warningHours:
		status = StatusWarning
	}
	return Result{Status: status, HoursLeft: hoursLeft, IsBreached: isBreached}
}

func Deadline(created time.Time, slaHours float64) time.Time {
	if slaHours > maxHours {
		slaHours = maxHours
	}
	return created.Add(time.Duration(slaHours * float64(time.Hour)))
}

func validHours(hours float64) bool {
	return hours > 0 && !math.IsNaN(hours)
}

// FormatDuration renders an hour count as a human label. Zero, negative and
// non-finite input render as "Expired".
func FormatDuration(hours float64) string {
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return "Expired"
	}
	if hours < 1 {
		return fmt.Sprintf("%d minutes", int64(math.Round(hours*60)))
	}
	if hours == 1 {
		return "1 hour"
	}
	if hours < 24 {
		return formatNumber(hours) + " hours"
	}

	days := math.Floor(hours / 24)
	remaining := math.Mod(hours, 24)
	if days == 1 && remaining == 0 {
		return "1 day"
	}
	if remaining == 0 {
		return formatNumber(days) + " days"
	}
	return formatNumber(days) + "d " + formatNumber(remaining) + "h"
}

// Label is the remaining-time label shown next to a status badge.
func Label(result Result) string {
	if result.Status == StatusUnknown {
		return "N/A"
	}
	return FormatDuration(float64(result.HoursLeft))
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
