package sla

import (
	"log"
	"strings"
	"time"
)

type Options struct {
	Clock  func() time.Time
	Logger *log.Logger
}

// Evaluator binds the evaluation instant to an injected clock and reports
// malformed timestamps on a diagnostic logger. The returned results are the
// same as Evaluate's.
type Evaluator struct {
	clock  func() time.Time
	logger *log.Logger
}

func NewEvaluator(options Options) *Evaluator {
	clock := options.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Evaluator{clock: clock, logger: options.Logger}
}

func (e *Evaluator) Now() time.Time {
	return e.clock()
}

func (e *Evaluator) Evaluate(createdAt string, slaHours float64) Result {
	now := e.clock()
	if strings.TrimSpace(createdAt) != "" && validHours(slaHours) {
		if _, err := ParseTimestamp(createdAt); err != nil {
			e.logf("sla malformed created_at value=%q err=%v", createdAt, err)
			return unknownResult
		}
	}
	return Evaluate(createdAt, slaHours, now)
}

func (e *Evaluator) EvaluateTime(created time.Time, slaHours float64) Result {
	return EvaluateTime(created, slaHours, e.clock())
}

func (e *Evaluator) logf(format string, args ...interface{}) {
	if e.logger == nil {
		log.Printf(format, args...)
		return
	}
	e.logger.Printf(format, args...)
}
