package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/pkg/enums"
)

// OrderChangedEvent signals that an order's assignment state was committed.
type OrderChangedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	Status      enums.OrderStatus `json:"status"`
	LockVersion int               `json:"lock_version"`
}

// OrderAssignedEvent surfaces the final roster when an order is fully staffed.
// The requirement counts ride along so consumers can price the staffed order
// without a second lookup.
type OrderAssignedEvent struct {
	OrderID         uuid.UUID           `json:"order_id"`
	FarmerID        uuid.UUID           `json:"farmer_id"`
	Service         enums.ServiceType   `json:"service"`
	AssignedParties []uuid.UUID         `json:"assigned_parties"`
	Mode            string              `json:"mode"`
	RequiredMale    int                 `json:"required_male,omitempty"`
	RequiredFemale  int                 `json:"required_female,omitempty"`
	RequiredCount   int                 `json:"required_count,omitempty"`
	VehicleClass    *enums.VehicleClass `json:"vehicle_class,omitempty"`
	DriverCount     int                 `json:"driver_count,omitempty"`
}

// OrderShortageEvent is emitted when matching finds too few qualifying candidates.
type OrderShortageEvent struct {
	OrderID  uuid.UUID         `json:"order_id"`
	FarmerID uuid.UUID         `json:"farmer_id"`
	Service  enums.ServiceType `json:"service"`
	Missing  int               `json:"missing"`
	Message  string            `json:"message,omitempty"`
}

// OrderCompletedEvent reports that every assigned party finished the job.
type OrderCompletedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// OfferCreatedEvent tells the notification pipeline to alert a candidate.
type OfferCreatedEvent struct {
	OrderID          uuid.UUID       `json:"order_id"`
	PartyID          uuid.UUID       `json:"party_id"`
	Role             enums.PartyRole `json:"role"`
	OfferedAt        time.Time       `json:"offered_at"`
	ResponseDeadline *time.Time      `json:"response_deadline,omitempty"`
}

// ResponseRecordedEvent is emitted whenever a party accepts or rejects an offer.
type ResponseRecordedEvent struct {
	OrderID     uuid.UUID              `json:"order_id"`
	PartyID     uuid.UUID              `json:"party_id"`
	Role        enums.PartyRole        `json:"role"`
	Status      enums.AcceptanceStatus `json:"status"`
	RespondedAt time.Time              `json:"responded_at"`
}

// DriversRequestedEvent records the vehicle tier resolved for an accepted order.
type DriversRequestedEvent struct {
	OrderID      uuid.UUID          `json:"order_id"`
	VehicleClass enums.VehicleClass `json:"vehicle_class"`
	DriverCount  int                `json:"driver_count"`
}

// DeadlineElapsedEvent is emitted by the sweep when a response window expires.
type DeadlineElapsedEvent struct {
	OrderID        uuid.UUID   `json:"order_id"`
	Deadline       time.Time   `json:"deadline"`
	PendingParties []uuid.UUID `json:"pending_parties"`
}
