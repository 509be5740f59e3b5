package sweeper

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/hub"
	"github.com/beashaj2001/complaintsManagement/internal/metrics"
	"github.com/beashaj2001/complaintsManagement/internal/models"
	"github.com/beashaj2001/complaintsManagement/internal/notify"
	"github.com/beashaj2001/complaintsManagement/internal/sla"
	"github.com/beashaj2001/complaintsManagement/internal/telemetry"

	"go.opentelemetry.io/otel/attribute"
)

const breachTemplate = "Complaint {number} exceeded its {hours} hour SLA (severity {severity})."

type Store interface {
	MarkBreaches(ctx context.Context, now time.Time, batchSize int, breached func(models.Complaint) bool) ([]models.Complaint, error)
	GetUser(ctx context.Context, userID string) (models.User, error)
}

type Publisher interface {
	PublishComplaint(eventType string, complaint models.Complaint, extra interface{})
}

type Options struct {
	BatchSize int
	Evaluator *sla.Evaluator
	Publisher Publisher
	Notifier  notify.Provider
	Metrics   *metrics.Metrics
}

// Sweeper flags complaints whose SLA deadline has passed.
type Sweeper struct {
	store     Store
	batchSize int
	evaluator *sla.Evaluator
	publisher Publisher
	notifier  notify.Provider
	metrics   *metrics.Metrics
	running   int32
}

func New(store Store, options Options) *Sweeper {
	batch := options.BatchSize
	if batch <= 0 {
		batch = 200
	}
	evaluator := options.Evaluator
	if evaluator == nil {
		evaluator = sla.NewEvaluator(sla.Options{})
	}
	notifier := options.Notifier
	if notifier == nil {
		notifier = notify.NewProvider("noop", "")
	}
	return &Sweeper{
		store:     store,
		batchSize: batch,
		evaluator: evaluator,
		publisher: options.Publisher,
		notifier:  notifier,
		metrics:   options.Metrics,
	}
}

// RunOnce performs a single sweep. Overlapping calls return immediately
// with no results.
func (s *Sweeper) RunOnce(ctx context.Context) ([]models.Complaint, error) {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return nil, nil
	}
	defer atomic.StoreInt32(&s.running, 0)

	ctx, span := telemetry.Tracer().Start(ctx, "sla.sweep")
	defer span.End()

	evaluated := 0
	now := s.evaluator.Now().UTC()
	marked, err := s.store.MarkBreaches(ctx, now, s.batchSize, func(complaint models.Complaint) bool {
		evaluated++
		return s.evaluator.EvaluateTime(complaint.CreatedAt, float64(complaint.SLAHours)).IsBreached
	})
	s.metrics.AddEvaluated(evaluated)
	span.SetAttributes(attribute.Int("sla.evaluated", evaluated), attribute.Int("sla.marked", len(marked)))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.metrics.AddBreachesMarked(len(marked))

	for _, complaint := range marked {
		if s.publisher != nil {
			s.publisher.PublishComplaint(hub.EventSLABreached, complaint, nil)
		}
		s.notify(ctx, complaint)
	}
	if len(marked) > 0 {
		log.Printf("sla sweep marked=%d evaluated=%d", len(marked), evaluated)
	}
	return marked, nil
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if _, err := s.RunOnce(runCtx); err != nil {
				log.Printf("sla sweep error: %v", err)
			}
			cancel()
		}
	}
}

func (s *Sweeper) notify(ctx context.Context, complaint models.Complaint) {
	recipients := []string{complaint.CustomerID}
	if complaint.AssignedToID != nil {
		recipients = append(recipients, *complaint.AssignedToID)
	}
	message := notify.RenderTemplate(breachTemplate, map[string]string{
		"number":   complaint.ComplaintNumber,
		"hours":    strconv.Itoa(complaint.SLAHours),
		"severity": complaint.Severity,
	})
	for _, userID := range recipients {
		user, err := s.store.GetUser(ctx, userID)
		if err != nil {
			log.Printf("sla notify lookup user=%s err=%v", userID, err)
			continue
		}
		if err := s.notifier.Send(ctx, message, user.Email); err != nil {
			log.Printf("sla notify send complaint=%s err=%v", complaint.ComplaintNumber, fmt.Errorf("to %s: %w", user.Email, err))
		}
	}
}
