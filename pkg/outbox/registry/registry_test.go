package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/pkg/config"
	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox/payloads"
)

func testConfig() config.PubSubConfig {
	return config.PubSubConfig{
		OrderEventsTopic:  "order-events",
		NotificationTopic: "notification-events",
	}
}

func TestNewEventRegistryRequiresTopics(t *testing.T) {
	if _, err := NewEventRegistry(config.PubSubConfig{NotificationTopic: "n"}); err == nil {
		t.Fatal("expected error when order events topic missing")
	}
	if _, err := NewEventRegistry(config.PubSubConfig{OrderEventsTopic: "o"}); err == nil {
		t.Fatal("expected error when notification topic missing")
	}
}

func TestResolveDecodesTypedPayload(t *testing.T) {
	reg, err := NewEventRegistry(testConfig())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	orderID := uuid.New()
	data, err := json.Marshal(payloads.OrderChangedEvent{
		OrderID:     orderID,
		Status:      enums.OrderStatusAccepted,
		LockVersion: 3,
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	resolved, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventOrderChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Payload:       envelope,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Descriptor.Topic != "order-events" {
		t.Fatalf("unexpected topic %s", resolved.Descriptor.Topic)
	}
	payload, ok := resolved.Payload.(*payloads.OrderChangedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if payload.OrderID != orderID || payload.LockVersion != 3 {
		t.Fatalf("payload fields not preserved: %+v", payload)
	}
}

func TestResolveRejectsUnknownEventType(t *testing.T) {
	reg, err := NewEventRegistry(testConfig())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	_, err = reg.Resolve(models.OutboxEvent{
		EventType:     enums.OutboxEventType("mystery"),
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
	})
	var nonRetry NonRetryableError
	if !errors.As(err, &nonRetry) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}

func TestResolveRejectsAggregateMismatch(t *testing.T) {
	reg, err := NewEventRegistry(testConfig())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	_, err = reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventOrderChanged,
		AggregateType: enums.AggregateNotification,
		AggregateID:   uuid.New(),
	})
	var nonRetry NonRetryableError
	if !errors.As(err, &nonRetry) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}

func TestResolveRejectsEmptyPayload(t *testing.T) {
	reg, err := NewEventRegistry(testConfig())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version: 1,
		EventID: uuid.NewString(),
		Data:    json.RawMessage("null"),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	_, err = reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventOrderChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       envelope,
	})
	var nonRetry NonRetryableError
	if !errors.As(err, &nonRetry) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}
