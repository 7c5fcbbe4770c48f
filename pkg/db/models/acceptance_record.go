package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/pkg/enums"
)

// AcceptanceRecord tracks one assigned party's offer -> response lifecycle for
// an order. At most one record exists per (order, party) pair.
type AcceptanceRecord struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID              `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_acceptance_records_order_party"`
	PartyID     uuid.UUID              `gorm:"column:party_id;type:uuid;not null;uniqueIndex:ux_acceptance_records_order_party"`
	Role        enums.PartyRole        `gorm:"column:role;type:text;not null"`
	Status      enums.AcceptanceStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	OfferedAt   time.Time              `gorm:"column:offered_at;autoCreateTime"`
	RespondedAt *time.Time             `gorm:"column:responded_at"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
