package fulfillment

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/pkg/config"
	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	pkgerrors "github.com/khetisathi/khetisathi-backend/pkg/errors"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox/payloads"
	"github.com/khetisathi/khetisathi-backend/pkg/pagination"
)

type triggerCall struct {
	method string
	input  AutoAssignInput
}

type stubService struct {
	calls   []triggerCall
	outcome *AssignmentOutcome
	err     error
}

func (s *stubService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	return nil, nil
}
func (s *stubService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return nil, nil
}
func (s *stubService) ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	return nil, nil
}
func (s *stubService) AutoAssign(ctx context.Context, input AutoAssignInput) (*AssignmentOutcome, error) {
	s.calls = append(s.calls, triggerCall{method: "AutoAssign", input: input})
	return s.outcome, s.err
}
func (s *stubService) ManualAssign(ctx context.Context, input ManualAssignInput) (*AssignmentOutcome, error) {
	return nil, nil
}
func (s *stubService) AssignDrivers(ctx context.Context, input AssignDriversInput) (*AssignmentOutcome, error) {
	return nil, nil
}
func (s *stubService) RecordResponse(ctx context.Context, input RecordResponseInput) error {
	return nil
}
func (s *stubService) ReassignAfterDeadline(ctx context.Context, input AutoAssignInput) (*AssignmentOutcome, error) {
	s.calls = append(s.calls, triggerCall{method: "ReassignAfterDeadline", input: input})
	return s.outcome, s.err
}
func (s *stubService) CancelOrder(ctx context.Context, input CancelOrderInput) error {
	return nil
}

func newTestTrigger(stub *stubService) *Trigger {
	cfg := config.FulfillmentConfig{
		ResponseWindow:        10 * time.Minute,
		WatcherResponseWindow: 2 * time.Minute,
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewTrigger(stub, cfg, logg)
}

func TestTriggerReassignsOnRejection(t *testing.T) {
	stub := &stubService{outcome: &AssignmentOutcome{}}
	trigger := newTestTrigger(stub)
	orderID := uuid.New()

	err := trigger.HandleResponseRecorded(context.Background(), payloads.ResponseRecordedEvent{
		OrderID: orderID,
		PartyID: uuid.New(),
		Status:  enums.AcceptanceRejected,
	})
	if err != nil {
		t.Fatalf("HandleResponseRecorded: %v", err)
	}
	if len(stub.calls) != 1 {
		t.Fatalf("expected exactly 1 reassignment pass, got %d", len(stub.calls))
	}
	call := stub.calls[0]
	if call.method != "AutoAssign" {
		t.Fatalf("expected AutoAssign, got %s", call.method)
	}
	if call.input.OrderID != orderID {
		t.Fatalf("expected order %s, got %s", orderID, call.input.OrderID)
	}
	if call.input.Window != 2*time.Minute {
		t.Fatalf("expected the watcher window, got %v", call.input.Window)
	}
}

func TestTriggerIgnoresNonRejections(t *testing.T) {
	stub := &stubService{}
	trigger := newTestTrigger(stub)

	for _, status := range []enums.AcceptanceStatus{enums.AcceptanceAccepted, enums.AcceptanceCompleted} {
		err := trigger.HandleResponseRecorded(context.Background(), payloads.ResponseRecordedEvent{
			OrderID: uuid.New(),
			Status:  status,
		})
		if err != nil {
			t.Fatalf("HandleResponseRecorded(%s): %v", status, err)
		}
	}
	if len(stub.calls) != 0 {
		t.Fatalf("expected no reassignment passes, got %d", len(stub.calls))
	}
}

func TestTriggerHandlesDeadlineElapsed(t *testing.T) {
	stub := &stubService{outcome: &AssignmentOutcome{NoChange: true}}
	trigger := newTestTrigger(stub)
	orderID := uuid.New()

	err := trigger.HandleDeadlineElapsed(context.Background(), payloads.DeadlineElapsedEvent{
		OrderID:  orderID,
		Deadline: time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("HandleDeadlineElapsed: %v", err)
	}
	if len(stub.calls) != 1 || stub.calls[0].method != "ReassignAfterDeadline" {
		t.Fatalf("expected one ReassignAfterDeadline call, got %+v", stub.calls)
	}
	if stub.calls[0].input.Window != 2*time.Minute {
		t.Fatalf("expected the watcher window, got %v", stub.calls[0].input.Window)
	}
}

func TestTriggerSwallowsFinalOutcomes(t *testing.T) {
	for _, code := range []pkgerrors.Code{
		pkgerrors.CodeShortage,
		pkgerrors.CodeStateConflict,
		pkgerrors.CodeNotFound,
	} {
		stub := &stubService{err: pkgerrors.New(code, "final")}
		trigger := newTestTrigger(stub)
		err := trigger.HandleResponseRecorded(context.Background(), payloads.ResponseRecordedEvent{
			OrderID: uuid.New(),
			Status:  enums.AcceptanceRejected,
		})
		if err != nil {
			t.Fatalf("expected %s swallowed, got %v", code, err)
		}
	}
}

func TestTriggerPropagatesTransientErrors(t *testing.T) {
	stub := &stubService{err: pkgerrors.New(pkgerrors.CodeConflict, "lost the race")}
	trigger := newTestTrigger(stub)

	err := trigger.HandleDeadlineElapsed(context.Background(), payloads.DeadlineElapsedEvent{OrderID: uuid.New()})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected the conflict to propagate for redelivery, got %v", err)
	}
}
