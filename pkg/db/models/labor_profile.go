package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	dbtypes "github.com/khetisathi/khetisathi-backend/pkg/db/types"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
)

// LaborProfile is a worker or driver in the directory. The fulfillment core
// treats these rows as read-only; onboarding and profile editing live in the
// surrounding application.
type LaborProfile struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string               `gorm:"column:name;not null"`
	Phone     string               `gorm:"column:phone;not null"`
	Role      enums.PartyRole      `gorm:"column:role;type:text;not null"`
	Status    enums.ApprovalStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Readiness enums.Readiness      `gorm:"column:readiness;type:text;not null;default:'busy'"`
	Gender    *enums.Gender        `gorm:"column:gender;type:text"`
	Pincode   string               `gorm:"column:pincode;not null"`

	Skills        pq.StringArray `gorm:"column:skills;type:text[];not null;default:'{}'"`
	VehicleSkills pq.StringArray `gorm:"column:vehicle_skills;type:text[];not null;default:'{}'"`

	// Availability calendar. Empty working days means any day; off days win
	// when a date appears in both.
	WorkingDays dbtypes.DateArray `gorm:"column:working_days;type:date[];not null;default:'{}'"`
	OffDays     dbtypes.DateArray `gorm:"column:off_days;type:date[];not null;default:'{}'"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
