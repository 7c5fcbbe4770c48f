package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/khetisathi/khetisathi-backend/pkg/enums"
)

// ServiceRate holds per-service daily wages. Gendered services carry distinct
// male/female wages; other services use the flat rate.
type ServiceRate struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Service    enums.ServiceType `gorm:"column:service_type;type:text;not null;uniqueIndex"`
	MaleWage   decimal.Decimal   `gorm:"column:male_wage;type:numeric(12,2);not null;default:0"`
	FemaleWage decimal.Decimal   `gorm:"column:female_wage;type:numeric(12,2);not null;default:0"`
	FlatWage   decimal.Decimal   `gorm:"column:flat_wage;type:numeric(12,2);not null;default:0"`
	BundleRate decimal.Decimal   `gorm:"column:bundle_rate;type:numeric(12,2);not null;default:0"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// VehicleRate holds the per-trip charge for ferrying workers by vehicle class.
type VehicleRate struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Vehicle   enums.VehicleClass `gorm:"column:vehicle_class;type:text;not null;uniqueIndex"`
	TripRate  decimal.Decimal    `gorm:"column:trip_rate;type:numeric(12,2);not null;default:0"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
