package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/khetisathi/khetisathi-backend/pkg/db/types"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
)

// Order is a farmer's request for labor over a start date. Assignment state
// lives directly on the row so a single transaction can update the selection,
// the acceptance records and the response deadline together.
type Order struct {
	ID       uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FarmerID uuid.UUID         `gorm:"column:farmer_id;type:uuid;not null"`
	Service  enums.ServiceType `gorm:"column:service_type;type:text;not null"`

	// Requirement as captured at creation. Gendered services use the male and
	// female counts; every other service uses the flat count.
	RequiredMale   int `gorm:"column:required_male;not null;default:0"`
	RequiredFemale int `gorm:"column:required_female;not null;default:0"`
	RequiredCount  int `gorm:"column:required_count;not null;default:0"`

	FarmerPincode string    `gorm:"column:farmer_pincode"`
	StartDate     time.Time `gorm:"column:start_date;type:date;not null"`

	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	StatusMessage *string           `gorm:"column:status_message"`

	ResponseDeadline *time.Time `gorm:"column:response_deadline"`

	AssignedParties  dbtypes.UUIDArray `gorm:"column:assigned_parties;type:uuid[];not null;default:'{}'"`
	AttemptedParties dbtypes.UUIDArray `gorm:"column:attempted_parties;type:uuid[];not null;default:'{}'"`
	AttemptedDrivers dbtypes.UUIDArray `gorm:"column:attempted_drivers;type:uuid[];not null;default:'{}'"`

	// Driver requirement derived from accepted workers by the tiering resolver.
	RequiredVehicleClass *enums.VehicleClass `gorm:"column:required_vehicle_class;type:text"`
	RequiredDriverCount  int                 `gorm:"column:required_driver_count;not null;default:0"`

	AcceptanceRecords []AcceptanceRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	// LockVersion implements optimistic concurrency; every assignment write
	// bumps it and fails when another writer got there first.
	LockVersion int `gorm:"column:lock_version;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
