package pricing

import (
	"context"

	"gorm.io/gorm"

	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
)

// Repository reads the rate tables maintained by operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindServiceRate(ctx context.Context, service enums.ServiceType) (*models.ServiceRate, error)
	FindVehicleRate(ctx context.Context, vehicle enums.VehicleClass) (*models.VehicleRate, error)
	ListServiceRates(ctx context.Context) ([]models.ServiceRate, error)
	ListVehicleRates(ctx context.Context) ([]models.VehicleRate, error)
	UpsertServiceRate(ctx context.Context, rate *models.ServiceRate) error
	UpsertVehicleRate(ctx context.Context, rate *models.VehicleRate) error
}
