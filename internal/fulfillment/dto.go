package fulfillment

import (
	"time"

	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox"
)

// CreateOrderInput captures a farmer's booking request.
type CreateOrderInput struct {
	FarmerID       uuid.UUID
	Service        enums.ServiceType
	RequiredMale   int
	RequiredFemale int
	RequiredCount  int
	FarmerPincode  string
	StartDate      time.Time
}

// AutoAssignInput runs one automatic matching pass over an order.
// A zero Window falls back to the configured response window.
type AutoAssignInput struct {
	OrderID uuid.UUID
	Window  time.Duration
	Actor   *outbox.ActorRef
}

// ManualAssignInput assigns an operator-chosen set of parties to an order.
type ManualAssignInput struct {
	OrderID  uuid.UUID
	PartyIDs []uuid.UUID
	Actor    *outbox.ActorRef
}

// AssignDriversInput resolves the transport tier for an order's accepted
// workers and offers the resulting driver slots.
type AssignDriversInput struct {
	OrderID uuid.UUID
	Actor   *outbox.ActorRef
}

// RecordResponseInput applies one party's answer to an open offer.
type RecordResponseInput struct {
	OrderID  uuid.UUID
	PartyID  uuid.UUID
	Response enums.AcceptanceStatus
	Actor    *outbox.ActorRef
}

// CancelOrderInput withdraws an order from fulfillment.
type CancelOrderInput struct {
	OrderID uuid.UUID
	Reason  string
	Actor   *outbox.ActorRef
}

// AssignmentOutcome reports what an assignment pass changed.
type AssignmentOutcome struct {
	OrderID          uuid.UUID
	NewParties       []uuid.UUID
	Outstanding      int
	ResponseDeadline *time.Time
	NoChange         bool
}
