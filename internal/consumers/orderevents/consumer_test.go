package orderevents

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox/payloads"
)

func TestOrderEventsDispatchesResponseRecorded(t *testing.T) {
	trigger := &fakeReassigner{}
	consumer := mustConsumer(t, trigger, passthroughIdempotency())

	orderID := uuid.New()
	partyID := uuid.New()
	msg := buildMessage(t, uuid.New(), enums.EventResponseRecorded, payloads.ResponseRecordedEvent{
		OrderID:     orderID,
		PartyID:     partyID,
		Role:        enums.PartyRoleWorker,
		Status:      enums.AcceptanceRejected,
		RespondedAt: time.Now(),
	})

	result := consumer.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(trigger.responses) != 1 {
		t.Fatalf("expected 1 response dispatch, got %d", len(trigger.responses))
	}
	if trigger.responses[0].OrderID != orderID || trigger.responses[0].PartyID != partyID {
		t.Fatal("dispatched payload does not match the envelope")
	}
	if len(trigger.deadlines) != 0 {
		t.Fatal("deadline handler should not run for response events")
	}
}

func TestOrderEventsDispatchesDeadlineElapsed(t *testing.T) {
	trigger := &fakeReassigner{}
	consumer := mustConsumer(t, trigger, passthroughIdempotency())

	orderID := uuid.New()
	msg := buildMessage(t, uuid.New(), enums.EventDeadlineElapsed, payloads.DeadlineElapsedEvent{
		OrderID:        orderID,
		Deadline:       time.Now().Add(-time.Minute),
		PendingParties: []uuid.UUID{uuid.New()},
	})

	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(trigger.deadlines) != 1 {
		t.Fatalf("expected 1 deadline dispatch, got %d", len(trigger.deadlines))
	}
	if trigger.deadlines[0].OrderID != orderID {
		t.Fatal("dispatched payload does not match the envelope")
	}
}

func TestOrderEventsAcksUnrelatedEvents(t *testing.T) {
	trigger := &fakeReassigner{}
	manager := fakeIdempotency{
		check: func(_ context.Context, _ string, _ uuid.UUID) (bool, error) {
			t.Fatal("unrelated events must not touch the idempotency store")
			return false, nil
		},
	}
	consumer := mustConsumer(t, trigger, manager)

	msg := buildMessage(t, uuid.New(), enums.EventOrderChanged, map[string]any{"order_id": uuid.NewString()})
	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(trigger.responses) != 0 || len(trigger.deadlines) != 0 {
		t.Fatal("no dispatch expected for unrelated events")
	}
}

func TestOrderEventsAcksMalformedEnvelope(t *testing.T) {
	trigger := &fakeReassigner{}
	consumer := mustConsumer(t, trigger, passthroughIdempotency())

	msg := &pubsub.Message{
		Data:       []byte("{not json"),
		Attributes: map[string]string{"event_type": string(enums.EventResponseRecorded)},
	}
	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("expected ack for malformed envelope, got %+v", result)
	}
	if len(trigger.responses) != 0 {
		t.Fatal("no dispatch expected for malformed envelopes")
	}
}

func TestOrderEventsSkipsProcessedEvents(t *testing.T) {
	trigger := &fakeReassigner{}
	manager := fakeIdempotency{
		check: func(_ context.Context, _ string, _ uuid.UUID) (bool, error) {
			return true, nil
		},
	}
	consumer := mustConsumer(t, trigger, manager)

	msg := buildMessage(t, uuid.New(), enums.EventResponseRecorded, payloads.ResponseRecordedEvent{
		OrderID: uuid.New(),
		PartyID: uuid.New(),
		Status:  enums.AcceptanceRejected,
	})
	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("expected ack for processed event, got %+v", result)
	}
	if len(trigger.responses) != 0 {
		t.Fatal("processed events must not dispatch")
	}
}

func TestOrderEventsNacksAndClearsMarkerOnTriggerFailure(t *testing.T) {
	trigger := &fakeReassigner{err: errors.New("database timeout")}
	deleted := false
	manager := fakeIdempotency{
		check: func(_ context.Context, _ string, _ uuid.UUID) (bool, error) {
			return false, nil
		},
		deleteFn: func(_ context.Context, _ string, _ uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	consumer := mustConsumer(t, trigger, manager)

	msg := buildMessage(t, uuid.New(), enums.EventResponseRecorded, payloads.ResponseRecordedEvent{
		OrderID: uuid.New(),
		PartyID: uuid.New(),
		Status:  enums.AcceptanceRejected,
	})
	result := consumer.process(context.Background(), msg)
	if !result.nack {
		t.Fatalf("expected nack on trigger failure, got %+v", result)
	}
	if !deleted {
		t.Fatal("expected idempotency marker deletion on failure")
	}
}

func TestOrderEventsNacksOnIdempotencyError(t *testing.T) {
	trigger := &fakeReassigner{}
	manager := fakeIdempotency{
		check: func(_ context.Context, _ string, _ uuid.UUID) (bool, error) {
			return false, errors.New("redis unavailable")
		},
	}
	consumer := mustConsumer(t, trigger, manager)

	msg := buildMessage(t, uuid.New(), enums.EventResponseRecorded, payloads.ResponseRecordedEvent{
		OrderID: uuid.New(),
	})
	result := consumer.process(context.Background(), msg)
	if !result.nack {
		t.Fatalf("expected nack on idempotency error, got %+v", result)
	}
	if len(trigger.responses) != 0 {
		t.Fatal("no dispatch expected when the idempotency store is down")
	}
}

type fakeReassigner struct {
	responses []payloads.ResponseRecordedEvent
	deadlines []payloads.DeadlineElapsedEvent
	err       error
}

func (f *fakeReassigner) HandleResponseRecorded(ctx context.Context, event payloads.ResponseRecordedEvent) error {
	f.responses = append(f.responses, event)
	return f.err
}

func (f *fakeReassigner) HandleDeadlineElapsed(ctx context.Context, event payloads.DeadlineElapsedEvent) error {
	f.deadlines = append(f.deadlines, event)
	return f.err
}

type fakeIdempotency struct {
	check    func(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	deleteFn func(ctx context.Context, consumer string, eventID uuid.UUID) error
}

func (f fakeIdempotency) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	return f.check(ctx, consumer, eventID)
}

func (f fakeIdempotency) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, consumer, eventID)
}

func passthroughIdempotency() fakeIdempotency {
	return fakeIdempotency{
		check: func(_ context.Context, _ string, _ uuid.UUID) (bool, error) {
			return false, nil
		},
	}
}

func mustConsumer(t *testing.T, trigger reassigner, manager idempotencyChecker) *Consumer {
	t.Helper()
	consumer, err := NewConsumer(trigger, &pubsub.Subscriber{}, manager, logger.New(logger.Options{
		ServiceName: "order-events-test",
		Level:       logger.ParseLevel("debug"),
		Output:      io.Discard,
	}))
	if err != nil {
		t.Fatalf("failed to build consumer: %v", err)
	}
	return consumer
}

func buildMessage(t *testing.T, eventID uuid.UUID, eventType enums.OutboxEventType, payload any) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID.String(),
		OccurredAt: time.Now(),
		Data:       data,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return &pubsub.Message{
		Data:       raw,
		Attributes: map[string]string{"event_type": string(eventType)},
	}
}
