package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox/payloads"
)

func TestResponseDeadlineJobEmitsForExpiredOrders(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	deadline := now.Add(-3 * time.Minute)
	waiting := uuid.New()
	answered := uuid.New()
	order := models.Order{
		ID:               uuid.New(),
		Status:           enums.OrderStatusPending,
		ResponseDeadline: &deadline,
		AcceptanceRecords: []models.AcceptanceRecord{
			{PartyID: waiting, Status: enums.AcceptancePending},
			{PartyID: answered, Status: enums.AcceptanceAccepted},
		},
	}
	reader := &fakeExpiredReader{orders: []models.Order{order}}
	emitter := &fakeDeadlineEmitter{}
	job := newResponseDeadlineJob(t, reader, emitter)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if reader.lastCutoff != now {
		t.Fatalf("expected cutoff %s, got %s", now, reader.lastCutoff)
	}
	if reader.lastLimit != defaultDeadlineSweepBatch {
		t.Fatalf("expected batch %d, got %d", defaultDeadlineSweepBatch, reader.lastLimit)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(emitter.events))
	}
	event := emitter.events[0]
	if event.EventType != enums.EventDeadlineElapsed {
		t.Fatalf("unexpected event type: %s", event.EventType)
	}
	if event.AggregateID != order.ID {
		t.Fatal("aggregate id mismatch")
	}
	payload, ok := event.Data.(payloads.DeadlineElapsedEvent)
	if !ok {
		t.Fatalf("expected deadline payload, got %T", event.Data)
	}
	if !payload.Deadline.Equal(deadline) {
		t.Fatal("deadline mismatch")
	}
	if len(payload.PendingParties) != 1 || payload.PendingParties[0] != waiting {
		t.Fatal("expected only the unanswered party in the payload")
	}
}

func TestResponseDeadlineJobSkipsOrdersWithoutDeadline(t *testing.T) {
	reader := &fakeExpiredReader{orders: []models.Order{{ID: uuid.New(), Status: enums.OrderStatusPending}}}
	emitter := &fakeDeadlineEmitter{}
	job := newResponseDeadlineJob(t, reader, emitter)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(emitter.events) != 0 {
		t.Fatalf("expected no events, got %d", len(emitter.events))
	}
}

func TestResponseDeadlineJobContinuesAfterEmitFailure(t *testing.T) {
	deadline := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{ID: uuid.New(), Status: enums.OrderStatusPending, ResponseDeadline: &deadline},
		{ID: uuid.New(), Status: enums.OrderStatusPending, ResponseDeadline: &deadline},
	}
	reader := &fakeExpiredReader{orders: orders}
	emitter := &fakeDeadlineEmitter{failFirst: true}
	job := newResponseDeadlineJob(t, reader, emitter)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected combined error")
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected second order still swept, got %d events", len(emitter.events))
	}
	if emitter.events[0].AggregateID != orders[1].ID {
		t.Fatal("expected the surviving event to belong to the second order")
	}
}

func TestResponseDeadlineJobPropagatesReadErrors(t *testing.T) {
	reader := &fakeExpiredReader{err: errors.New("db down")}
	job := newResponseDeadlineJob(t, reader, &fakeDeadlineEmitter{})

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newResponseDeadlineJob(t *testing.T, reader *fakeExpiredReader, emitter *fakeDeadlineEmitter) *responseDeadlineJob {
	t.Helper()
	jobIface, err := NewResponseDeadlineJob(ResponseDeadlineJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		DB:     deadlineFakeTxRunner{},
		Orders: reader,
		Outbox: emitter,
	})
	if err != nil {
		t.Fatalf("NewResponseDeadlineJob: %v", err)
	}
	job, ok := jobIface.(*responseDeadlineJob)
	if !ok {
		t.Fatalf("expected responseDeadlineJob, got %T", jobIface)
	}
	return job
}

type fakeExpiredReader struct {
	orders     []models.Order
	err        error
	lastCutoff time.Time
	lastLimit  int
}

func (f *fakeExpiredReader) ListOrdersPastDeadline(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	f.lastCutoff = cutoff
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

type fakeDeadlineEmitter struct {
	events    []outbox.DomainEvent
	failFirst bool
}

func (f *fakeDeadlineEmitter) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if f.failFirst {
		f.failFirst = false
		return errors.New("emit failed")
	}
	f.events = append(f.events, event)
	return nil
}

type deadlineFakeTxRunner struct{}

func (deadlineFakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
