package fulfillment

import (
	"context"

	"github.com/khetisathi/khetisathi-backend/pkg/config"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	pkgerrors "github.com/khetisathi/khetisathi-backend/pkg/errors"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox/payloads"
)

// Trigger reacts to the order change feed. Rejections and elapsed deadlines
// start a reassignment pass with the shorter watcher window; everything else
// is an acknowledged no-op, so redelivered events are harmless.
type Trigger struct {
	svc  Service
	cfg  config.FulfillmentConfig
	logg *logger.Logger
}

// NewTrigger builds the reassignment trigger.
func NewTrigger(svc Service, cfg config.FulfillmentConfig, logg *logger.Logger) *Trigger {
	return &Trigger{svc: svc, cfg: cfg, logg: logg}
}

// HandleResponseRecorded reassigns when a party rejected an offer. The state
// machine emits one response_recorded per transition, so each rejection runs
// exactly one pass.
func (t *Trigger) HandleResponseRecorded(ctx context.Context, event payloads.ResponseRecordedEvent) error {
	if event.Status != enums.AcceptanceRejected {
		return nil
	}
	ctx = t.logg.WithOrderID(ctx, event.OrderID.String())
	outcome, err := t.svc.AutoAssign(ctx, AutoAssignInput{
		OrderID: event.OrderID,
		Window:  t.cfg.WatcherResponseWindow,
	})
	return t.settle(ctx, outcome, err)
}

// HandleDeadlineElapsed expires overdue offers and reassigns. The service
// re-reads the order, so a deadline extended after this event was emitted
// turns the call into a no-op.
func (t *Trigger) HandleDeadlineElapsed(ctx context.Context, event payloads.DeadlineElapsedEvent) error {
	ctx = t.logg.WithOrderID(ctx, event.OrderID.String())
	outcome, err := t.svc.ReassignAfterDeadline(ctx, AutoAssignInput{
		OrderID: event.OrderID,
		Window:  t.cfg.WatcherResponseWindow,
	})
	return t.settle(ctx, outcome, err)
}

// settle classifies the pass result. Shortages and terminal orders are final
// for this event; only transient failures propagate for redelivery.
func (t *Trigger) settle(ctx context.Context, outcome *AssignmentOutcome, err error) error {
	if err == nil {
		if outcome != nil && outcome.NoChange {
			t.logg.Info(ctx, "reassignment pass found nothing to do")
		}
		return nil
	}
	switch {
	case pkgerrors.IsCode(err, pkgerrors.CodeShortage):
		t.logg.Warn(t.logg.WithField(ctx, "reason", err.Error()), "reassignment halted on shortage")
		return nil
	case pkgerrors.IsCode(err, pkgerrors.CodeStateConflict):
		t.logg.Info(ctx, "order reached a final state, skipping reassignment")
		return nil
	case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		t.logg.Warn(ctx, "order vanished before reassignment")
		return nil
	default:
		t.logg.Error(ctx, "reassignment pass failed", err)
		return err
	}
}
