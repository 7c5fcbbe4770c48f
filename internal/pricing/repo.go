package pricing

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a pricing repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindServiceRate(ctx context.Context, service enums.ServiceType) (*models.ServiceRate, error) {
	var rate models.ServiceRate
	err := r.db.WithContext(ctx).
		Where("service_type = ?", service).
		First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *repository) FindVehicleRate(ctx context.Context, vehicle enums.VehicleClass) (*models.VehicleRate, error) {
	var rate models.VehicleRate
	err := r.db.WithContext(ctx).
		Where("vehicle_class = ?", vehicle).
		First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *repository) ListServiceRates(ctx context.Context) ([]models.ServiceRate, error) {
	var rates []models.ServiceRate
	err := r.db.WithContext(ctx).
		Order("service_type ASC").
		Find(&rates).Error
	return rates, err
}

func (r *repository) ListVehicleRates(ctx context.Context) ([]models.VehicleRate, error) {
	var rates []models.VehicleRate
	err := r.db.WithContext(ctx).
		Order("vehicle_class ASC").
		Find(&rates).Error
	return rates, err
}

func (r *repository) UpsertServiceRate(ctx context.Context, rate *models.ServiceRate) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "service_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"male_wage", "female_wage", "flat_wage", "bundle_rate", "updated_at"}),
		}).
		Create(rate).Error
}

func (r *repository) UpsertVehicleRate(ctx context.Context, rate *models.VehicleRate) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "vehicle_class"}},
			DoUpdates: clause.AssignmentColumns([]string{"trip_rate", "updated_at"}),
		}).
		Create(rate).Error
}
