package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	pkgerrors "github.com/khetisathi/khetisathi-backend/pkg/errors"
)

// QuoteInput describes the staffed order the quote is computed for.
type QuoteInput struct {
	Service      enums.ServiceType
	MaleCount    int
	FemaleCount  int
	TotalCount   int
	VehicleClass *enums.VehicleClass
	DriverCount  int
}

// Quote is the monetary breakdown fed into notifications and payment totals.
type Quote struct {
	LaborTotal     decimal.Decimal
	TransportTotal decimal.Decimal
	GrandTotal     decimal.Decimal
}

// Service resolves order cost from the configured rate tables.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*Quote, error)
}

type service struct {
	repo Repository
}

// NewService builds the pricing service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	if !input.Service.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid service type")
	}

	rate, err := s.repo.FindServiceRate(ctx, input.Service)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no rate configured for service")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service rate")
	}

	labor := laborTotal(input, rate)

	transport := decimal.Zero
	if input.VehicleClass != nil && input.DriverCount > 0 {
		vehicleRate, err := s.repo.FindVehicleRate(ctx, *input.VehicleClass)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no rate configured for vehicle class")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle rate")
		}
		transport = vehicleRate.TripRate.Mul(decimal.NewFromInt(int64(input.DriverCount)))
	}

	return &Quote{
		LaborTotal:     labor,
		TransportTotal: transport,
		GrandTotal:     labor.Add(transport),
	}, nil
}

func laborTotal(input QuoteInput, rate *models.ServiceRate) decimal.Decimal {
	if input.Service.IsGendered() {
		male := rate.MaleWage.Mul(decimal.NewFromInt(int64(input.MaleCount)))
		female := rate.FemaleWage.Mul(decimal.NewFromInt(int64(input.FemaleCount)))
		return male.Add(female)
	}
	// Bundle-priced services charge per job, not per head.
	if rate.BundleRate.IsPositive() {
		return rate.BundleRate
	}
	return rate.FlatWage.Mul(decimal.NewFromInt(int64(input.TotalCount)))
}
