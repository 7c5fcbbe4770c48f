package orderevents

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox/payloads"
)

const orderEventsConsumer = "order-events-worker"

// reassigner is the slice of the fulfillment trigger this consumer drives.
type reassigner interface {
	HandleResponseRecorded(ctx context.Context, event payloads.ResponseRecordedEvent) error
	HandleDeadlineElapsed(ctx context.Context, event payloads.DeadlineElapsedEvent) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer feeds the order change feed into the reassignment trigger.
// Malformed messages are acknowledged and dropped; only transient trigger
// failures are redelivered.
type Consumer struct {
	trigger      reassigner
	subscription *pubsub.Subscriber
	idempotency  idempotencyChecker
	logg         *logger.Logger
}

// NewConsumer builds an order events consumer.
func NewConsumer(trigger reassigner, subscription *pubsub.Subscriber, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if trigger == nil {
		return nil, fmt.Errorf("fulfillment trigger required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("order events subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		trigger:      trigger,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType.String(),
	})

	switch eventType {
	case enums.EventResponseRecorded, enums.EventDeadlineElapsed:
	default:
		c.logg.Info(logCtx, "event does not drive reassignment")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, orderEventsConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.dispatch(ctx, eventType, envelope.Data); err != nil {
		c.logg.Error(logCtx, "reassignment dispatch failed", err)
		_ = c.idempotency.Delete(ctx, orderEventsConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) dispatch(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage) error {
	switch eventType {
	case enums.EventResponseRecorded:
		var payload payloads.ResponseRecordedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.trigger.HandleResponseRecorded(ctx, payload)
	case enums.EventDeadlineElapsed:
		var payload payloads.DeadlineElapsedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.trigger.HandleDeadlineElapsed(ctx, payload)
	}
	return nil
}
