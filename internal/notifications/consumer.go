package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/internal/pricing"
	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox/idempotency"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox/payloads"
)

const notificationConsumer = "party-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
	MarkSent(ctx context.Context, notificationID uuid.UUID, now time.Time) error
}

type quoter interface {
	Quote(ctx context.Context, input pricing.QuoteInput) (*pricing.Quote, error)
}

// Consumer watches the notification feed and turns offer and order events
// into inbox rows plus a delivery attempt.
type Consumer struct {
	repo         repository
	sender       Sender
	quotes       quoter
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a party notification consumer.
func NewConsumer(repo repository, sender Sender, quotes quoter, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if sender == nil {
		return nil, fmt.Errorf("notification sender required")
	}
	if quotes == nil {
		return nil, fmt.Errorf("pricing service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		sender:       sender,
		quotes:       quotes,
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
	case enums.EventOfferCreated, enums.EventOrderAssigned, enums.EventOrderShortage:
	default:
		c.logg.Info(logCtx, "skipping event with no notification mapping")
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

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, notificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, notificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventOfferCreated:
		var payload payloads.OfferCreatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		variables := map[string]string{
			"order_id": payload.OrderID.String(),
			"role":     payload.Role.String(),
		}
		if payload.ResponseDeadline != nil {
			variables["respond_by"] = payload.ResponseDeadline.Format(time.RFC3339)
		}
		return c.notify(ctx, payload.PartyID, &payload.OrderID, enums.NotificationTypeOffer, TemplateOfferCreated, variables, logCtx)

	case enums.EventOrderAssigned:
		var payload payloads.OrderAssignedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		variables := map[string]string{
			"order_id":    payload.OrderID.String(),
			"service":     payload.Service.String(),
			"party_count": strconv.Itoa(len(payload.AssignedParties)),
		}
		// A missing rate must not block the farmer alert, so a failed
		// quote only drops the cost line.
		quote, err := c.quotes.Quote(ctx, pricing.QuoteInput{
			Service:      payload.Service,
			MaleCount:    payload.RequiredMale,
			FemaleCount:  payload.RequiredFemale,
			TotalCount:   payload.RequiredCount,
			VehicleClass: payload.VehicleClass,
			DriverCount:  payload.DriverCount,
		})
		if err != nil {
			c.logg.Warn(logCtx, "order cost unavailable for notification")
		} else {
			variables["labor_total"] = quote.LaborTotal.StringFixed(2)
			variables["transport_total"] = quote.TransportTotal.StringFixed(2)
			variables["total_cost"] = quote.GrandTotal.StringFixed(2)
		}
		return c.notify(ctx, payload.FarmerID, &payload.OrderID, enums.NotificationTypeOrderUpdate, TemplateOrderAssigned, variables, logCtx)

	case enums.EventOrderShortage:
		var payload payloads.OrderShortageEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		variables := map[string]string{
			"order_id": payload.OrderID.String(),
			"service":  payload.Service.String(),
			"missing":  strconv.Itoa(payload.Missing),
		}
		if payload.Message != "" {
			variables["reason"] = payload.Message
		}
		return c.notify(ctx, payload.FarmerID, &payload.OrderID, enums.NotificationTypeShortageAlert, TemplateOrderShortage, variables, logCtx)
	}
	return nil
}

// notify persists the inbox row first, then attempts delivery. A failed
// delivery is logged and swallowed so the row survives for a later reminder.
func (c *Consumer) notify(
	ctx context.Context,
	partyID uuid.UUID,
	orderID *uuid.UUID,
	notificationType enums.NotificationType,
	templateID string,
	variables map[string]string,
	logCtx context.Context,
) error {
	if partyID == uuid.Nil {
		return fmt.Errorf("recipient party id missing")
	}

	encoded, err := json.Marshal(variables)
	if err != nil {
		return err
	}
	notification := &models.Notification{
		ID:         uuid.New(),
		PartyID:    partyID,
		OrderID:    orderID,
		Type:       notificationType,
		TemplateID: templateID,
		Variables:  encoded,
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}

	if err := c.sender.Send(ctx, partyID, templateID, variables); err != nil {
		c.logg.Warn(c.logg.WithField(logCtx, "party_id", partyID.String()), "notification delivery failed")
		return nil
	}
	if err := c.repo.MarkSent(ctx, notification.ID, time.Now().UTC()); err != nil {
		c.logg.Error(logCtx, "failed to mark notification sent", err)
	}
	c.logg.Info(c.logg.WithField(logCtx, "party_id", partyID.String()), "party notified")
	return nil
}
